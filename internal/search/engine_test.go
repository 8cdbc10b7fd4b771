package search

import (
	"context"
	"testing"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
)

func intPtr(v int) *int { return &v }

// buildTestCorpus indexes a small three-product catalogue used across the
// filter, scorer, and engine tests.
func buildTestCorpus() *index.Corpus {
	docs := []corpus.Document{
		{
			URL:         "https://shop.example/p/beanie",
			Title:       "White Wool Beanie",
			Description: "A soft white beanie knitted from wool.",
			Features:    map[string]string{"material": "Wool", "made in": "France"},
			Reviews: []corpus.Review{
				{Rating: intPtr(5), Date: "2023-03-01", Text: "Great beanie"},
				{Rating: intPtr(4), Date: "2023-03-04", Text: "Very warm"},
			},
		},
		{
			URL:         "https://shop.example/p/chocolate-box",
			Title:       "Box of Chocolate Candy",
			Description: "A gift box of rich dark chocolate.",
			Features:    map[string]string{"made in": "Belgium", "flavor": "Dark"},
			Reviews: []corpus.Review{
				{Rating: intPtr(5), Date: "2023-02-10", Text: "Delicious"},
			},
		},
		{
			URL:         "https://shop.example/p/potion",
			Title:       "Dark Red Energy Potion",
			Description: "Bright red potion for energy.",
		},
	}
	return index.NewBuilder().Build(docs, 0)
}

func TestSearchSingleMatch(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	resp, err := e.Search(context.Background(), "chocolate", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalDocuments != 3 {
		t.Errorf("TotalDocuments = %d, want 3", resp.TotalDocuments)
	}
	if resp.FilteredDocuments != 1 {
		t.Errorf("FilteredDocuments = %d, want 1", resp.FilteredDocuments)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].URL != "https://shop.example/p/chocolate-box" {
		t.Errorf("Results[0].URL = %q", resp.Results[0].URL)
	}
	if resp.Results[0].Title != "Box of Chocolate Candy" {
		t.Errorf("Results[0].Title = %q", resp.Results[0].Title)
	}
}

func TestSearchRanksTitleMatchFirst(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	resp, err := e.Search(context.Background(), "dark", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// "dark" is in the potion's title but only in the chocolate box's
	// description and flavor feature, so the potion wins the title weight
	// plus the coverage bonus.
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].URL != "https://shop.example/p/potion" {
		t.Errorf("Results[0].URL = %q, want the potion", resp.Results[0].URL)
	}
	if resp.Results[0].Score <= resp.Results[1].Score {
		t.Errorf("scores not descending: %v then %v", resp.Results[0].Score, resp.Results[1].Score)
	}
}

func TestSearchSynonymExpansion(t *testing.T) {
	e := New(buildTestCorpus(), SynonymTable{"hat": {"beanie"}})

	resp, err := e.Search(context.Background(), "hat", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://shop.example/p/beanie" {
		t.Fatalf("Results = %+v, want just the beanie", resp.Results)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	for _, query := range []string{"", "   ", "the of and"} {
		resp, err := e.Search(context.Background(), query, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", query, err)
		}
		if len(resp.Results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(resp.Results))
		}
		if resp.FilteredDocuments != 0 {
			t.Errorf("Search(%q) FilteredDocuments = %d, want 0", query, resp.FilteredDocuments)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	resp, err := e.Search(context.Background(), "submarine", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 || resp.FilteredDocuments != 0 {
		t.Errorf("Results = %v, FilteredDocuments = %d, want empty", resp.Results, resp.FilteredDocuments)
	}
	if resp.Results == nil {
		t.Error("Results must be an empty slice, not nil")
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	e := New(index.NewBuilder().Build(nil, 0), nil)

	resp, err := e.Search(context.Background(), "chocolate", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalDocuments != 0 || len(resp.Results) != 0 {
		t.Errorf("resp = %+v, want empty", resp)
	}
}

func TestSearchLimit(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	resp, err := e.Search(context.Background(), "dark", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].URL != "https://shop.example/p/potion" {
		t.Errorf("truncation dropped the top result: %q", resp.Results[0].URL)
	}
	// FilteredDocuments reports the candidate pool before truncation.
	if resp.FilteredDocuments != 2 {
		t.Errorf("FilteredDocuments = %d, want 2", resp.FilteredDocuments)
	}

	// limit <= 0 returns everything.
	resp, err = e.Search(context.Background(), "dark", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("len(Results) with no limit = %d, want 2", len(resp.Results))
	}
}

func TestSearchCancelledContext(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Search(ctx, "dark", 10); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestSearchDeterministic(t *testing.T) {
	e := New(buildTestCorpus(), nil, WithScoreWorkers(3))

	first, err := e.Search(context.Background(), "dark chocolate box", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Search(context.Background(), "dark chocolate box", 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(again.Results) != len(first.Results) {
			t.Fatalf("result count changed between runs")
		}
		for j := range again.Results {
			if again.Results[j] != first.Results[j] {
				t.Fatalf("run %d result %d = %+v, want %+v", i, j, again.Results[j], first.Results[j])
			}
		}
	}
}

func TestEngineBM25Diagnostic(t *testing.T) {
	e := New(buildTestCorpus(), nil)

	scores := e.BM25("white beanie", "title")
	if len(scores) != 1 {
		t.Fatalf("scores = %v, want one document", scores)
	}
	if s := scores["https://shop.example/p/beanie"]; s <= 0 {
		t.Errorf("beanie title score = %v, want > 0", s)
	}
}
