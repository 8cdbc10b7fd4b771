package search

import "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"

// Combined-score weights. These are exact business rules: occurrence counts
// are summed term frequencies, the coverage bonus requires every expanded
// query token to appear in the title, and the review bonus scales with the
// document's total review count.
const (
	TitleWeight        = 3.0
	DescriptionWeight  = 1.0
	ReviewTextWeight   = 0.5
	TitleCoverageBonus = 5.0
	ReviewCountWeight  = 0.1
)

// Scorer computes relevance scores for candidate documents against a frozen
// corpus. It is safe for concurrent use: all reads hit immutable indexes.
type Scorer struct {
	corpus *index.Corpus
}

// NewScorer creates a Scorer over the given corpus.
func NewScorer(c *index.Corpus) *Scorer {
	return &Scorer{corpus: c}
}

// CombinedScore is the production ranking signal for one candidate:
//
//	3.0 * title occurrences
//	1.0 * description occurrences
//	0.5 * review-text occurrences
//	5.0 if every query token appears in the title
//	0.1 * total reviews
func (s *Scorer) CombinedScore(url string, tokens []string) float64 {
	score := 0.0
	for _, t := range tokens {
		score += TitleWeight * float64(s.corpus.Title.TermFrequency(t, url))
		score += DescriptionWeight * float64(s.corpus.Description.TermFrequency(t, url))
		score += ReviewTextWeight * float64(s.corpus.ReviewText.TermFrequency(t, url))
	}
	if s.titleCovers(url, tokens) {
		score += TitleCoverageBonus
	}
	score += ReviewCountWeight * float64(s.corpus.Reviews[url].TotalReviews)
	return score
}

// BM25 reports the diagnostic BM25 ranking for the candidates over the given
// field index ("title" or "description").
func (s *Scorer) BM25(tokens []string, field string) map[string]float64 {
	switch field {
	case "description":
		return BM25Scores(tokens, s.corpus.Description, s.corpus.DescriptionStats)
	default:
		return BM25Scores(tokens, s.corpus.Title, s.corpus.TitleStats)
	}
}

// titleCovers reports whether the document's title contains every query
// token. Full coverage of the entire expanded token set is required, not
// just one token.
func (s *Scorer) titleCovers(url string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if s.corpus.Title.TermFrequency(t, url) == 0 {
			return false
		}
	}
	return true
}
