// Package e2e exercises the full batch pipeline in-process (corpus file ->
// index build -> snapshot -> reload -> query) and, when one is running, a
// live searcher instance over HTTP.
//
// Run with:
//
//	go test -timeout=60s ./test/e2e/...
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/search"
)

const corpusJSONL = `{"url":"https://shop.example/p/beanie","title":"White Wool Beanie","description":"A soft white beanie knitted from wool.","product_features":{"made in":"France","material":"Wool"},"product_reviews":[{"rating":5,"date":"2023-03-01","text":"Great beanie"},{"rating":4,"date":"2023-03-04","text":"Very warm"}]}
{"url":"https://shop.example/p/chocolate-box","title":"Box of Chocolate Candy","description":"A gift box of rich dark chocolate.","product_features":{"made in":"Belgium"},"product_reviews":[{"rating":5,"date":"2023-02-10","text":"Delicious"}]}
{"url":"https://shop.example/p/potion","title":"Dark Red Energy Potion","description":"Bright red potion for energy."}
{not a json line}
{"title":"record without url"}
`

func TestBatchPipeline(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "products.jsonl")
	snapshotDir := filepath.Join(dir, "indexes")

	if err := os.WriteFile(corpusPath, []byte(corpusJSONL), 0o644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}

	// Load and build.
	docs, skipped, err := corpus.LoadJSONL(corpusPath)
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(docs) != 3 || skipped != 2 {
		t.Fatalf("loaded %d docs (%d skipped), want 3 (2 skipped)", len(docs), skipped)
	}
	built := index.NewBuilder().Build(docs, skipped)

	// Snapshot and reload, then query through the reloaded corpus.
	if err := built.Save(snapshotDir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := index.Load(snapshotDir, docs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	engine := search.New(loaded, search.SynonymTable{"hat": {"beanie"}})

	resp, err := engine.Search(context.Background(), "wool hat", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalDocuments != 3 {
		t.Errorf("TotalDocuments = %d, want 3", resp.TotalDocuments)
	}
	if len(resp.Results) == 0 || resp.Results[0].URL != "https://shop.example/p/beanie" {
		t.Fatalf("Results = %+v, want the beanie first", resp.Results)
	}

	// The reloaded corpus must score exactly like the freshly built one.
	fresh := search.New(built, search.SynonymTable{"hat": {"beanie"}})
	freshResp, err := fresh.Search(context.Background(), "wool hat", 10)
	if err != nil {
		t.Fatalf("Search on built corpus: %v", err)
	}
	if len(freshResp.Results) != len(resp.Results) {
		t.Fatalf("result counts differ: built %d, reloaded %d", len(freshResp.Results), len(resp.Results))
	}
	for i := range resp.Results {
		if resp.Results[i] != freshResp.Results[i] {
			t.Errorf("result %d differs: built %+v, reloaded %+v", i, freshResp.Results[i], resp.Results[i])
		}
	}
}

func TestLiveSearcher(t *testing.T) {
	baseURL := os.Getenv("E2E_SEARCHER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(baseURL + "/health/ready")
	if err != nil {
		t.Skipf("searcher unavailable: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("searcher not ready: %d", resp.StatusCode)
	}

	resp, err = client.Get(baseURL + "/api/v1/search?q=chocolate&limit=5")
	if err != nil {
		t.Fatalf("querying searcher: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body search.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Query != "chocolate" {
		t.Errorf("Query = %q", body.Query)
	}
	if len(body.Results) > 5 {
		t.Errorf("limit not applied: %d results", len(body.Results))
	}
}
