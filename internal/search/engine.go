package search

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/tracing"
)

const defaultScoreWorkers = 4

// Engine composes the query pipeline over one frozen corpus: process the
// query, filter candidates, score them, rank. A single Engine serves
// concurrent queries; it holds no per-query state.
type Engine struct {
	corpus    *index.Corpus
	processor *Processor
	scorer    *Scorer
	workers   int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithScoreWorkers sets the number of goroutines scoring disjoint candidate
// chunks.
func WithScoreWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine over the given corpus and synonym table.
func New(c *index.Corpus, synonyms SynonymTable, opts ...Option) *Engine {
	e := &Engine{
		corpus:    c,
		processor: NewProcessor(synonyms),
		scorer:    NewScorer(c),
		workers:   defaultScoreWorkers,
		logger:    logger.WithComponent("search-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Corpus exposes the frozen corpus, for health checks and diagnostics.
func (e *Engine) Corpus() *index.Corpus {
	return e.corpus
}

// Search runs the full pipeline for one query. limit <= 0 returns every
// scored candidate. An empty corpus or an empty expanded token set yields an
// empty result list, not an error; ctx cancellation abandons scoring early.
func (e *Engine) Search(ctx context.Context, rawQuery string, limit int) (*Response, error) {
	resp := &Response{
		Query:          rawQuery,
		TotalDocuments: e.corpus.DocCount,
		Results:        []Result{},
	}
	if e.corpus.DocCount == 0 {
		return resp, nil
	}

	_, span := tracing.StartChild(ctx, "process_query")
	tokens := e.processor.Process(rawQuery)
	span.SetAttr("tokens", len(tokens))
	span.End()
	if len(tokens) == 0 {
		return resp, nil
	}

	_, span = tracing.StartChild(ctx, "filter_candidates")
	candidateSet := filterCandidates(tokens, e.corpus)
	span.SetAttr("candidates", len(candidateSet))
	span.End()
	resp.FilteredDocuments = len(candidateSet)
	if len(candidateSet) == 0 {
		return resp, nil
	}

	candidates := make([]string, 0, len(candidateSet))
	for url := range candidateSet {
		candidates = append(candidates, url)
	}
	sort.Strings(candidates)

	_, span = tracing.StartChild(ctx, "score_candidates")
	results, err := e.scoreAll(ctx, candidates, tokens)
	span.End()
	if err != nil {
		return nil, err
	}

	Rank(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	resp.Results = results

	e.logger.Debug("query executed",
		"query", rawQuery,
		"tokens", tokens,
		"candidates", resp.FilteredDocuments,
		"results", len(results),
	)
	return resp, nil
}

// BM25 exposes the diagnostic BM25 ranking over a field index.
func (e *Engine) BM25(rawQuery, field string) map[string]float64 {
	return e.scorer.BM25(e.processor.Process(rawQuery), field)
}

// scoreAll computes combined scores for disjoint candidate chunks in
// parallel. The indexes are immutable, so workers need no locking; each
// writes only its own slice region.
func (e *Engine) scoreAll(ctx context.Context, candidates []string, tokens []string) ([]Result, error) {
	results := make([]Result, len(candidates))

	workers := e.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(candidates); start += chunk {
		start := start
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				url := candidates[i]
				meta := e.corpus.Docs[url]
				results[i] = Result{
					Title:       meta.Title,
					URL:         url,
					Description: meta.Description,
					Score:       roundScore(e.scorer.CombinedScore(url, tokens)),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
