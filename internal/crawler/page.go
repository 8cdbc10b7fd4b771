package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Page is one crawled record, the shape the index builder consumes as a
// document (links are dropped at indexing time).
type Page struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Links       []string `json:"links"`
}

// parsePage extracts the title, the first paragraph, and every same-domain
// link from an HTML document. Relative links are resolved against base.
func parsePage(root *html.Node, base *url.URL) Page {
	page := Page{URL: base.String(), Links: []string{}}
	var firstParagraph *html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if page.Title == "" {
					page.Title = strings.TrimSpace(textContent(n))
				}
			case "p":
				if firstParagraph == nil {
					firstParagraph = n
				}
			case "a":
				if link, ok := resolveLink(n, base); ok {
					page.Links = append(page.Links, link)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	if firstParagraph != nil {
		page.Description = strings.TrimSpace(textContent(firstParagraph))
	}
	return page
}

// resolveLink extracts an href, resolves it against base, and keeps it only
// when it stays on the same host. Fragments are stripped so equivalent pages
// deduplicate.
func resolveLink(n *html.Node, base *url.URL) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			return "", false
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return "", false
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return "", false
		}
		resolved.Fragment = ""
		return resolved.String(), true
	}
	return "", false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
