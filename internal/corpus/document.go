// Package corpus defines the product document model and the line-delimited
// JSON loader shared by the index builder and the search service.
package corpus

// Review is one customer review attached to a product document. Rating is a
// pointer so that a review missing its rating is distinguishable from a
// rating of zero; such reviews are excluded from the statistics.
type Review struct {
	Rating *int   `json:"rating"`
	Date   string `json:"date"`
	Text   string `json:"text"`
}

// Document is one product record. URL is the primary key; every other field
// is optional and contributes nothing to the indexes when absent. Documents
// are immutable once loaded.
type Document struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Features    map[string]string `json:"product_features"`
	Reviews     []Review          `json:"product_reviews"`
}
