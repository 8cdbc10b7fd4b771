package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
)

// maxLineBytes bounds a single JSONL record; descriptions and review lists
// can make lines long.
const maxLineBytes = 4 * 1024 * 1024

// LoadJSONL reads one document per line from path. Malformed lines and
// records without a URL are skipped, not fatal; the second return value is
// the number of skipped records. An unreadable file is an error.
func LoadJSONL(path string) ([]Document, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening %s: %v", pkgerrors.ErrCorpusUnreadable, path, err)
	}
	defer f.Close()

	var docs []Document
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(line, &doc); err != nil {
			skipped++
			continue
		}
		if doc.URL == "" {
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: reading %s: %v", pkgerrors.ErrCorpusUnreadable, path, err)
	}
	return docs, skipped, nil
}

// WriteJSONL writes one JSON record per line, the format the crawler emits
// and the index builder consumes.
func WriteJSONL[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing output file %s: %w", path, err)
	}
	return nil
}
