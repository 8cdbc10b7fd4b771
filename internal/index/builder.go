package index

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/tokenizer"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/metrics"
)

// Builder constructs a frozen Corpus from a document collection. Rebuilding
// from the same collection yields structurally identical indexes.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{
		logger: logger.WithComponent("index-builder"),
	}
}

// Build tokenizes every document once per field and produces the positional
// indexes, feature indexes, and review statistics. skipped is the number of
// malformed records dropped by the loader, carried through for reporting.
//
// The per-field structures have no cross-field dependency, so they are built
// concurrently; each goroutine owns its output exclusively.
func (b *Builder) Build(docs []corpus.Document, skipped int) *Corpus {
	c := &Corpus{
		Features: make(map[string]FeatureIndex),
		Reviews:  make(ReviewStatsTable, len(docs)),
		Docs:     make(map[string]DocMeta, len(docs)),
		DocCount: len(docs),

		SkippedRecords: skipped,
	}

	var g errgroup.Group
	g.Go(func() error {
		c.Title, c.TitleStats = buildPositional(docs, func(d *corpus.Document) string { return d.Title })
		return nil
	})
	g.Go(func() error {
		c.Description, c.DescriptionStats = buildPositional(docs, func(d *corpus.Document) string { return d.Description })
		return nil
	})
	g.Go(func() error {
		c.ReviewText, _ = buildPositional(docs, joinedReviewText)
		return nil
	})
	g.Go(func() error {
		c.Features = buildFeatures(docs)
		return nil
	})
	g.Go(func() error {
		for i := range docs {
			c.Reviews[docs[i].URL] = summariseReviews(docs[i].Reviews)
		}
		return nil
	})
	g.Wait()

	for i := range docs {
		c.Docs[docs[i].URL] = DocMeta{
			Title:       docs[i].Title,
			Description: docs[i].Description,
		}
	}

	b.logger.Info("index build complete",
		"documents", c.DocCount,
		"skipped_records", c.SkippedRecords,
		"title_tokens", len(c.Title),
		"description_tokens", len(c.Description),
		"feature_indexes", len(c.Features),
	)
	return c
}

// buildPositional indexes one text field across all documents. Documents
// with an empty field are skipped for that field; they simply have no
// entries and no recorded length.
func buildPositional(docs []corpus.Document, field func(*corpus.Document) string) (PositionalIndex, FieldStats) {
	idx := make(PositionalIndex)
	stats := NewFieldStats()
	for i := range docs {
		text := field(&docs[i])
		if text == "" {
			continue
		}
		tokens := tokenizer.Tokenize(text)
		for _, t := range tokens {
			idx.Add(t.Term, docs[i].URL, t.Position)
		}
		stats.Record(docs[i].URL, len(tokens))
	}
	return idx, stats
}

// buildFeatures discovers every feature key present in the corpus and builds
// one inverted index per key, tokenizing feature values with the shared
// tokenizer.
func buildFeatures(docs []corpus.Document) map[string]FeatureIndex {
	keys := make(map[string]struct{})
	for i := range docs {
		for key := range docs[i].Features {
			keys[key] = struct{}{}
		}
	}

	indexes := make(map[string]FeatureIndex, len(keys))
	for key := range keys {
		idx := make(FeatureIndex)
		for i := range docs {
			value, ok := docs[i].Features[key]
			if !ok {
				continue
			}
			for _, token := range tokenizer.Terms(value) {
				idx.Add(token, docs[i].URL)
			}
		}
		indexes[key] = idx
	}
	return indexes
}

// joinedReviewText concatenates a document's review texts so their tokens
// land in one positional sequence.
func joinedReviewText(d *corpus.Document) string {
	if len(d.Reviews) == 0 {
		return ""
	}
	texts := make([]string, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return strings.Join(texts, " ")
}

// summariseReviews derives the review statistics for one document.
// TotalReviews counts every entry; the mean is over present ratings only.
// LastRating is the rating of the last rated entry in the list's given
// order; the list is never re-sorted by date.
func summariseReviews(reviews []corpus.Review) ReviewStats {
	stats := ReviewStats{TotalReviews: len(reviews)}

	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating != nil {
			ratings = append(ratings, *r.Rating)
		}
	}
	if len(ratings) == 0 {
		return stats
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	last := ratings[len(ratings)-1]
	stats.MeanMark = &mean
	stats.LastRating = &last
	return stats
}

// FeatureKeys returns the corpus's feature keys, sorted.
func (c *Corpus) FeatureKeys() []string {
	keys := make([]string, 0, len(c.Features))
	for key := range c.Features {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ObserveBuild records the build outcome on the Prometheus counters.
func (c *Corpus) ObserveBuild(m *metrics.Metrics) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Add(float64(c.DocCount))
	m.RecordsSkippedTotal.Add(float64(c.SkippedRecords))
}
