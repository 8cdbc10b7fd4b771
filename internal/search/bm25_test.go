package search

import (
	"math"
	"testing"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
)

func bm25Fixture() (index.PositionalIndex, index.FieldStats) {
	idx := make(index.PositionalIndex)
	// u1: "white wool beanie", u2: "white socks", u3: "chocolate box".
	idx.Add("white", "u1", 0)
	idx.Add("wool", "u1", 1)
	idx.Add("beanie", "u1", 2)
	idx.Add("white", "u2", 0)
	idx.Add("socks", "u2", 1)
	idx.Add("chocolate", "u3", 0)
	idx.Add("box", "u3", 1)

	stats := index.NewFieldStats()
	stats.Record("u1", 3)
	stats.Record("u2", 2)
	stats.Record("u3", 2)
	return idx, stats
}

func TestBM25ScoresExactValue(t *testing.T) {
	idx := make(index.PositionalIndex)
	idx.Add("chocolate", "u1", 0)
	stats := index.NewFieldStats()
	stats.Record("u1", 1)

	scores := BM25Scores([]string{"chocolate"}, idx, stats)

	// One document of average length: tf normalisation is exactly 1 and the
	// score reduces to idf = ln(1 + (1-1+0.5)/(1+0.5)) = ln(4/3).
	want := math.Log(4.0 / 3.0)
	if got := scores["u1"]; math.Abs(got-want) > 1e-12 {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestBM25ScoresRareTermBeatsCommonTerm(t *testing.T) {
	idx, stats := bm25Fixture()

	scores := BM25Scores([]string{"beanie", "white"}, idx, stats)
	// "beanie" (df=1) must contribute more to u1 than "white" (df=2) does
	// to u2, even though u2 is the shorter document.
	if scores["u1"] <= scores["u2"] {
		t.Errorf("u1 = %v, u2 = %v; rare term should dominate", scores["u1"], scores["u2"])
	}
}

func TestBM25ScoresAbsentTerm(t *testing.T) {
	idx, stats := bm25Fixture()

	scores := BM25Scores([]string{"submarine"}, idx, stats)
	if len(scores) != 0 {
		t.Errorf("scores = %v, want empty", scores)
	}
}

func TestBM25ScoresEmptyField(t *testing.T) {
	scores := BM25Scores([]string{"chocolate"}, make(index.PositionalIndex), index.NewFieldStats())
	if len(scores) != 0 {
		t.Errorf("scores = %v, want empty for empty field", scores)
	}
}

// idf stays non-negative even when every document contains the term.
func TestBM25TermInEveryDocument(t *testing.T) {
	idx := make(index.PositionalIndex)
	idx.Add("the", "u1", 0)
	idx.Add("the", "u2", 0)
	stats := index.NewFieldStats()
	stats.Record("u1", 1)
	stats.Record("u2", 1)

	scores := BM25Scores([]string{"the"}, idx, stats)
	for url, s := range scores {
		if s < 0 {
			t.Errorf("score[%s] = %v, must not be negative", url, s)
		}
	}
}

func TestBM25TermFrequencySaturation(t *testing.T) {
	lowTF := bm25TermScoreForTest(1)
	highTF := bm25TermScoreForTest(10)
	veryHighTF := bm25TermScoreForTest(100)

	if !(lowTF < highTF && highTF < veryHighTF) {
		t.Fatalf("scores not monotonic in tf: %v %v %v", lowTF, highTF, veryHighTF)
	}
	// Gains shrink as tf grows.
	if (veryHighTF - highTF) >= (highTF - lowTF) {
		t.Errorf("tf gains should saturate: %v %v %v", lowTF, highTF, veryHighTF)
	}
}

func bm25TermScoreForTest(tf int) float64 {
	return bm25TermScore(tf, 1, 10, 10, 5)
}
