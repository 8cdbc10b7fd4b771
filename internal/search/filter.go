package search

import "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"

// TokenIndex is the read-only view the filter needs: which documents
// contain a token. Positional and feature indexes both satisfy it; a
// document counts as containing a token whenever its URL is a key,
// regardless of position list contents.
type TokenIndex interface {
	DocsFor(token string) []string
}

// FilterAny returns the union over all tokens of the documents containing at
// least one of them in the given index.
func FilterAny(tokens []string, idx TokenIndex) map[string]struct{} {
	docs := make(map[string]struct{})
	for _, t := range tokens {
		for _, url := range idx.DocsFor(t) {
			docs[url] = struct{}{}
		}
	}
	return docs
}

// FilterAll returns the intersection over all tokens of the documents
// containing each of them. An empty token set yields an empty result, never
// the full corpus, and a single absent token empties the intersection.
func FilterAll(tokens []string, idx TokenIndex) map[string]struct{} {
	if len(tokens) == 0 {
		return map[string]struct{}{}
	}
	result := make(map[string]struct{})
	for _, url := range idx.DocsFor(tokens[0]) {
		result[url] = struct{}{}
	}
	for _, t := range tokens[1:] {
		if len(result) == 0 {
			return result
		}
		keep := make(map[string]struct{}, len(result))
		for _, url := range idx.DocsFor(t) {
			if _, ok := result[url]; ok {
				keep[url] = struct{}{}
			}
		}
		result = keep
	}
	return result
}

// filterCandidates applies the hybrid strategy: OR across every available
// index maximises recall, while AND on the title index alone promotes exact
// multi-token title matches into the candidate pool. Scoring separates good
// matches from weak ones afterwards.
func filterCandidates(tokens []string, c *index.Corpus) map[string]struct{} {
	candidates := make(map[string]struct{})
	if len(tokens) == 0 {
		return candidates
	}

	indexes := []TokenIndex{c.Title, c.Description}
	for _, key := range c.FeatureKeys() {
		indexes = append(indexes, c.Features[key])
	}
	for _, idx := range indexes {
		for url := range FilterAny(tokens, idx) {
			candidates[url] = struct{}{}
		}
	}
	for url := range FilterAll(tokens, c.Title) {
		candidates[url] = struct{}{}
	}
	return candidates
}
