package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
)

// Snapshot file names. Feature indexes are named <key>_index.json, with the
// "made in" feature renamed to origin for interop with existing tooling.
const (
	titleIndexFile       = "title_index.json"
	descriptionIndexFile = "description_index.json"
	reviewTextIndexFile  = "reviews_text_index.json"
	reviewStatsFile      = "reviews_index.json"

	indexFileSuffix = "_index.json"
)

const madeInFeature = "made in"

// MarshalJSON serialises the feature index in its interchange form,
// {token: [url, ...]} with URLs sorted.
func (idx FeatureIndex) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(idx))
	for token := range idx {
		out[token] = idx.DocsFor(token)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the interchange form back into set semantics,
// collapsing any duplicate URLs.
func (idx *FeatureIndex) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FeatureIndex, len(raw))
	for token, urls := range raw {
		for _, url := range urls {
			out.Add(token, url)
		}
	}
	*idx = out
	return nil
}

// Save writes every index structure as an indented JSON snapshot into dir,
// creating it if needed. The on-disk formats are the interchange formats:
// positional index {token: {url: [int, ...]}}, feature index
// {token: [url, ...]}, review stats {url: {"total_reviews", "mean_mark",
// "last_rating"}}.
func (c *Corpus) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	files := map[string]any{
		titleIndexFile:       c.Title,
		descriptionIndexFile: c.Description,
		reviewTextIndexFile:  c.ReviewText,
		reviewStatsFile:      c.Reviews,
	}
	for key, idx := range c.Features {
		files[featureFileName(key)] = idx
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeSnapshotFile(filepath.Join(dir, name), files[name]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a snapshot directory written by Save and rebuilds a frozen
// Corpus. The original documents are still needed for result rendering and
// the document count; field statistics are reconstructed from the position
// lists. An unreadable or unparsable snapshot is fatal.
func Load(dir string, docs []corpus.Document) (*Corpus, error) {
	c := &Corpus{
		Features: make(map[string]FeatureIndex),
		Reviews:  make(ReviewStatsTable),
		Docs:     make(map[string]DocMeta, len(docs)),
		DocCount: len(docs),
	}

	if err := readSnapshotFile(filepath.Join(dir, titleIndexFile), &c.Title); err != nil {
		return nil, err
	}
	if err := readSnapshotFile(filepath.Join(dir, descriptionIndexFile), &c.Description); err != nil {
		return nil, err
	}
	if err := readSnapshotFile(filepath.Join(dir, reviewTextIndexFile), &c.ReviewText); err != nil {
		return nil, err
	}
	if err := readSnapshotFile(filepath.Join(dir, reviewStatsFile), &c.Reviews); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, indexFileSuffix) {
			continue
		}
		key := strings.TrimSuffix(name, indexFileSuffix)
		switch key {
		case "title", "description", "reviews_text", "reviews":
			continue
		}
		idx := make(FeatureIndex)
		if err := readSnapshotFile(filepath.Join(dir, name), &idx); err != nil {
			return nil, err
		}
		c.Features[key] = idx
	}

	c.TitleStats = statsFromIndex(c.Title)
	c.DescriptionStats = statsFromIndex(c.Description)

	for i := range docs {
		c.Docs[docs[i].URL] = DocMeta{
			Title:       docs[i].Title,
			Description: docs[i].Description,
		}
	}
	return c, nil
}

// statsFromIndex recovers per-document field lengths by summing position
// list lengths; a field length is exactly the number of recorded
// occurrences across all tokens.
func statsFromIndex(idx PositionalIndex) FieldStats {
	stats := NewFieldStats()
	lengths := make(map[string]int)
	for _, postings := range idx {
		for url, positions := range postings {
			lengths[url] += len(positions)
		}
	}
	for url, length := range lengths {
		stats.Record(url, length)
	}
	return stats
}

func featureFileName(key string) string {
	if key == madeInFeature {
		return "origin" + indexFileSuffix
	}
	return key + indexFileSuffix
}

func writeSnapshotFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

func readSnapshotFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", pkgerrors.ErrSnapshotInvalid, path, err)
	}
	return nil
}
