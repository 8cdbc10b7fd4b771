package search

import (
	"math"
	"sort"
)

// Result is one scored document in its response form. Field order matches
// the interchange format.
type Result struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Response is the query-result envelope.
type Response struct {
	Query             string   `json:"query"`
	TotalDocuments    int      `json:"total_documents"`
	FilteredDocuments int      `json:"filtered_documents"`
	Results           []Result `json:"results"`
}

// Rank sorts results by score descending. Ties break by URL ascending so
// the output is fully deterministic across runs.
func Rank(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].URL < results[j].URL
	})
}

// roundScore trims scores to three decimals for the interchange format.
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
