// Package index builds and holds the read-only index structures: positional
// inverted indexes for text fields, per-feature inverted indexes, and the
// review statistics table. Everything here follows a construction-then-freeze
// lifecycle: Build (or Load) produces a Corpus that is never mutated again,
// so query-time readers need no locking.
package index

import "sort"

// PositionalIndex maps token -> document URL -> ordered 0-based positions of
// the token within the tokenized field. Positions are strictly increasing
// and record every occurrence.
type PositionalIndex map[string]map[string][]int

// Add appends one occurrence of token at pos in the given document.
func (idx PositionalIndex) Add(token, url string, pos int) {
	postings, ok := idx[token]
	if !ok {
		postings = make(map[string][]int)
		idx[token] = postings
	}
	postings[url] = append(postings[url], pos)
}

// Postings returns the URL -> positions map for token, or nil when the token
// is absent.
func (idx PositionalIndex) Postings(token string) map[string][]int {
	return idx[token]
}

// TermFrequency returns the number of recorded occurrences of token in the
// document, 0 when either is absent.
func (idx PositionalIndex) TermFrequency(token, url string) int {
	return len(idx[token][url])
}

// DocFrequency returns the number of documents containing token.
func (idx PositionalIndex) DocFrequency(token string) int {
	return len(idx[token])
}

// DocsFor returns the URLs of documents containing token, sorted for
// determinism.
func (idx PositionalIndex) DocsFor(token string) []string {
	postings, ok := idx[token]
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(postings))
	for url := range postings {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// FeatureIndex maps token -> set of document URLs whose feature value
// contains that token. Set semantics: a URL appears at most once per token.
type FeatureIndex map[string]map[string]struct{}

// Add records that the document's feature value contains token.
func (idx FeatureIndex) Add(token, url string) {
	set, ok := idx[token]
	if !ok {
		set = make(map[string]struct{})
		idx[token] = set
	}
	set[url] = struct{}{}
}

// DocsFor returns the URLs recorded for token, sorted for determinism.
func (idx FeatureIndex) DocsFor(token string) []string {
	set, ok := idx[token]
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(set))
	for url := range set {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// ReviewStats summarises one document's review list. MeanMark and LastRating
// are nil, not zero, when the document has no usable reviews; "no data" must
// stay distinguishable from "score zero".
type ReviewStats struct {
	TotalReviews int      `json:"total_reviews"`
	MeanMark     *float64 `json:"mean_mark"`
	LastRating   *int     `json:"last_rating"`
}

// ReviewStatsTable maps document URL to its ReviewStats.
type ReviewStatsTable map[string]ReviewStats

// FieldStats holds per-document tokenized lengths for one text field plus
// the corpus-wide aggregates BM25 needs. Aggregates are complete before any
// score is computed.
type FieldStats struct {
	DocLengths  map[string]int `json:"doc_lengths"`
	TotalTokens int            `json:"total_tokens"`
}

// NewFieldStats returns empty stats.
func NewFieldStats() FieldStats {
	return FieldStats{DocLengths: make(map[string]int)}
}

// Record stores the tokenized length of one document's field.
func (s *FieldStats) Record(url string, length int) {
	s.DocLengths[url] = length
	s.TotalTokens += length
}

// DocCount returns the number of documents with this field.
func (s FieldStats) DocCount() int {
	return len(s.DocLengths)
}

// Length returns the tokenized field length of the document, 0 if unknown.
func (s FieldStats) Length(url string) int {
	return s.DocLengths[url]
}

// AvgDocLength returns the corpus-average field length, 0 when the field is
// empty everywhere.
func (s FieldStats) AvgDocLength() float64 {
	if len(s.DocLengths) == 0 {
		return 0
	}
	return float64(s.TotalTokens) / float64(len(s.DocLengths))
}

// DocMeta is the display metadata kept per document for result rendering.
type DocMeta struct {
	Title       string
	Description string
}

// Corpus bundles every structure built from one corpus snapshot. It is
// frozen after Build/Load and passed by reference into the query pipeline.
type Corpus struct {
	Title       PositionalIndex
	Description PositionalIndex
	ReviewText  PositionalIndex
	Features    map[string]FeatureIndex

	Reviews ReviewStatsTable

	TitleStats       FieldStats
	DescriptionStats FieldStats

	Docs     map[string]DocMeta
	DocCount int

	// SkippedRecords counts malformed corpus records dropped during the
	// build; they never abort it.
	SkippedRecords int
}
