package search

import (
	"math"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
)

// BM25 parameters (Okapi variant). Pinned by tests; change them and the
// ranking contract changes.
const (
	BM25K1 = 1.5
	BM25B  = 0.75
)

// bm25TermScore computes one term-document contribution:
// idf(t) * tf*(k1+1) / (tf + k1*(1-b+b*|d|/avgdl)). A tf of 0 contributes
// exactly 0, never a negative value; the +1 inside the log keeps idf
// non-negative even when df = N.
func bm25TermScore(tf, df, docLen int, avgdl float64, totalDocs int) float64 {
	if tf == 0 || avgdl == 0 {
		return 0
	}
	idf := math.Log(1 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
	tfNorm := (float64(tf) * (BM25K1 + 1)) /
		(float64(tf) + BM25K1*(1-BM25B+BM25B*float64(docLen)/avgdl))
	return idf * tfNorm
}

// BM25Scores computes, per document, the sum of BM25 term scores over the
// query tokens against one field's positional index. With zero documents in
// the field the result is empty; there is no division by zero.
func BM25Scores(tokens []string, idx index.PositionalIndex, stats index.FieldStats) map[string]float64 {
	totalDocs := stats.DocCount()
	avgdl := stats.AvgDocLength()
	scores := make(map[string]float64)
	if totalDocs == 0 {
		return scores
	}

	for _, t := range tokens {
		postings := idx.Postings(t)
		if postings == nil {
			continue
		}
		df := len(postings)
		for url, positions := range postings {
			scores[url] += bm25TermScore(len(positions), df, stats.Length(url), avgdl, totalDocs)
		}
	}
	return scores
}
