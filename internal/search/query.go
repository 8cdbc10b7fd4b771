// Package search implements the query-time pipeline: query processing with
// synonym expansion, hybrid candidate filtering, BM25 and combined-signal
// scoring, and deterministic ranking. All stages read a frozen index.Corpus
// and share no mutable state.
package search

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/tokenizer"
	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
)

// SynonymTable maps a canonical token to its equivalent tokens. Expansion
// follows the table's direction only; no reverse lookups and no transitive
// chaining.
type SynonymTable map[string][]string

// LoadSynonyms reads a synonym table from a JSON file of the form
// {"usa": ["united", "states", "america"]}. An unreadable or unparsable
// table is fatal; queries cannot be expanded without it.
func LoadSynonyms(path string) (SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonym table %s: %w", path, err)
	}
	var table SynonymTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", pkgerrors.ErrSynonymsInvalid, path, err)
	}
	return table, nil
}

// Processor turns a raw query string into an expanded token set.
type Processor struct {
	synonyms SynonymTable
}

// NewProcessor creates a Processor. A nil table disables expansion.
func NewProcessor(synonyms SynonymTable) *Processor {
	return &Processor{synonyms: synonyms}
}

// Process tokenizes the raw query (stop-words are removed by the shared
// tokenizer, so normalisation is idempotent here) and expands it one level
// through the synonym table. Expansion is additive only: original tokens are
// never removed. The result is sorted so downstream stages are
// deterministic.
func (p *Processor) Process(rawQuery string) []string {
	terms := tokenizer.Terms(rawQuery)

	expanded := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		expanded[t] = struct{}{}
	}
	for _, t := range terms {
		for _, synonym := range p.synonyms[t] {
			expanded[synonym] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(expanded))
	for t := range expanded {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}
