package search

import (
	"reflect"
	"testing"
)

func TestRank(t *testing.T) {
	results := []Result{
		{URL: "u3", Score: 1.5},
		{URL: "u1", Score: 8.0},
		{URL: "u2", Score: 3.2},
	}
	Rank(results)

	want := []string{"u1", "u2", "u3"}
	for i, url := range want {
		if results[i].URL != url {
			t.Errorf("results[%d].URL = %q, want %q", i, results[i].URL, url)
		}
	}
}

func TestRankTieBreaksByURL(t *testing.T) {
	results := []Result{
		{URL: "https://shop.example/p/b", Score: 2.0},
		{URL: "https://shop.example/p/a", Score: 2.0},
		{URL: "https://shop.example/p/c", Score: 2.0},
	}
	Rank(results)

	got := []string{results[0].URL, results[1].URL, results[2].URL}
	want := []string{
		"https://shop.example/p/a",
		"https://shop.example/p/b",
		"https://shop.example/p/c",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie order = %v, want %v", got, want)
	}
}

func TestRankEmpty(t *testing.T) {
	var results []Result
	Rank(results)
	if len(results) != 0 {
		t.Errorf("Rank changed an empty slice: %v", results)
	}
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{13.70000001, 13.7},
		{0.0004, 0},
		{0.0005, 0.001},
		{2.6666666, 2.667},
		{0, 0},
	}
	for _, tt := range tests {
		if got := roundScore(tt.in); got != tt.want {
			t.Errorf("roundScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
