// Package crawler implements the polite data-acquisition front end: it
// respects robots.txt, prioritises product pages, follows same-domain links
// only, and rate-limits itself with a configurable delay. Its output records
// map directly onto the document shape the index builder consumes.
package crawler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/config"
	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/resilience"
)

// productPriority ranks product URLs ahead of everything else in the queue.
const (
	productPriority = 0
	defaultPriority = 1
)

// Crawler walks one domain breadth-first by priority, starting from the
// configured URL.
type Crawler struct {
	cfg     config.CrawlerConfig
	host    string
	client  *http.Client
	robots  *robotstxt.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMetrics wires Prometheus counters for fetch outcomes and queue depth.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) { c.metrics = m }
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) { c.client = client }
}

// New creates a Crawler and fetches the domain's robots.txt. A missing or
// unreadable robots.txt permits everything, matching the usual crawler
// convention.
func New(cfg config.CrawlerConfig, opts ...Option) (*Crawler, error) {
	start, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("parsing start URL %s: %w", cfg.StartURL, err)
	}
	c := &Crawler{
		cfg:  cfg,
		host: start.Host,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		breaker: resilience.NewCircuitBreaker("crawler-fetch", resilience.CircuitBreakerConfig{}),
		logger:  logger.WithComponent("crawler"),
	}
	for _, opt := range opts {
		opt(c)
	}

	robots, err := c.loadRobots(cfg.StartURL)
	if err != nil {
		return nil, err
	}
	c.robots = robots
	return c, nil
}

// Run crawls from the start URL until the page limit is reached, the
// queue drains, or ctx is cancelled. Fetch failures skip the page; they
// never abort the crawl.
func (c *Crawler) Run(ctx context.Context) ([]Page, error) {
	visited := make(map[string]struct{})
	queued := make(map[string]struct{})
	pages := make([]Page, 0, c.cfg.MaxPages)

	queue := &urlQueue{}
	heap.Init(queue)
	seq := 0
	push := func(rawURL string) {
		if _, ok := queued[rawURL]; ok {
			return
		}
		queued[rawURL] = struct{}{}
		heap.Push(queue, queueItem{priority: urlPriority(rawURL), seq: seq, url: rawURL})
		seq++
	}
	push(c.cfg.StartURL)

	for queue.Len() > 0 && len(visited) < c.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		item := heap.Pop(queue).(queueItem)
		c.gaugeQueueDepth(queue.Len())

		if _, ok := visited[item.url]; ok {
			continue
		}
		pageURL, err := url.Parse(item.url)
		if err != nil {
			c.countFetch("error")
			continue
		}
		// robots.txt rules match against the path, not the full URL.
		if !c.robots.Test(pageURL.Path) {
			c.countFetch("denied")
			c.logger.Debug("fetch denied by robots.txt", "url", item.url)
			continue
		}

		page, err := c.fetchPage(ctx, item.url)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrFetchDenied) {
				c.countFetch("denied")
			} else {
				c.countFetch("error")
			}
			c.logger.Warn("fetch failed, skipping page", "url", item.url, "error", err)
			continue
		}
		c.countFetch("ok")

		visited[item.url] = struct{}{}
		for _, link := range page.Links {
			if _, ok := visited[link]; !ok {
				push(link)
			}
		}
		pages = append(pages, page)
		c.logger.Info("page crawled",
			"url", item.url,
			"links", len(page.Links),
			"crawled", len(visited),
		)

		// Politeness delay between requests.
		select {
		case <-time.After(c.cfg.Delay):
		case <-ctx.Done():
			return pages, ctx.Err()
		}
	}
	return pages, nil
}

// fetchPage downloads and parses one page, retrying transient failures
// behind the circuit breaker. Links are resolved against the URL the
// response actually came from, which may differ from rawURL after
// redirects.
func (c *Crawler) fetchPage(ctx context.Context, rawURL string) (Page, error) {
	var body []byte
	var finalURL *url.URL
	err := resilience.Retry(ctx, "crawl-fetch", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		return c.breaker.Execute(func() error {
			data, final, err := c.get(ctx, rawURL)
			if err != nil {
				return err
			}
			body, finalURL = data, final
			return nil
		})
	})
	if err != nil {
		return Page{}, err
	}

	if finalURL.Host != c.host {
		return Page{}, fmt.Errorf("%w: %s redirected off the crawl domain", pkgerrors.ErrFetchDenied, rawURL)
	}

	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return Page{}, fmt.Errorf("parsing HTML from %s: %w", rawURL, err)
	}
	return parsePage(root, finalURL), nil
}

// get fetches one URL and returns the body together with the final URL
// after any redirects.
func (c *Crawler) get(ctx context.Context, rawURL string) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return body, resp.Request.URL, nil
}

// loadRobots fetches and parses robots.txt for the start URL's host.
func (c *Crawler) loadRobots(startURL string) (*robotstxt.Group, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parsing start URL %s: %w", startURL, err)
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	resp, err := c.client.Get(robotsURL)
	if err != nil {
		c.logger.Warn("robots.txt unreachable, allowing all", "url", robotsURL, "error", err)
		data, _ := robotstxt.FromString("")
		return data.FindGroup(c.cfg.UserAgent), nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parsing robots.txt from %s: %w", robotsURL, err)
	}
	return data.FindGroup(c.cfg.UserAgent), nil
}

// urlPriority prefers product pages, mirroring the corpus this engine is
// built for.
func urlPriority(rawURL string) int {
	if strings.Contains(strings.ToLower(rawURL), "product") {
		return productPriority
	}
	return defaultPriority
}

func (c *Crawler) countFetch(outcome string) {
	if c.metrics != nil {
		c.metrics.CrawlFetchesTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Crawler) gaugeQueueDepth(depth int) {
	if c.metrics != nil {
		c.metrics.CrawlQueueDepth.Set(float64(depth))
	}
}
