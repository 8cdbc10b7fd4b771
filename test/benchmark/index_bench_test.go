package benchmark

import (
	"fmt"
	"testing"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/corpus"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
)

// syntheticCatalogue fabricates n product documents with rotating titles,
// descriptions, features, and review lists.
func syntheticCatalogue(n int) []corpus.Document {
	titles := []string{
		"Box of Chocolate Candy",
		"White Wool Beanie",
		"Dark Red Energy Potion",
		"Stainless Steel Water Bottle",
		"Organic Cotton T Shirt",
	}
	origins := []string{"France", "Belgium", "Italy", "Spain", "Portugal"}
	rating := 4

	docs := make([]corpus.Document, n)
	for i := 0; i < n; i++ {
		docs[i] = corpus.Document{
			URL:         fmt.Sprintf("https://shop.example/p/%d", i),
			Title:       titles[i%len(titles)],
			Description: "A quality product with fast shipping and careful packaging, variant " + fmt.Sprint(i),
			Features: map[string]string{
				"made in":  origins[i%len(origins)],
				"material": "Mixed",
			},
			Reviews: []corpus.Review{
				{Rating: &rating, Date: "2023-01-01", Text: "Solid product, works as described"},
			},
		}
	}
	return docs
}

func BenchmarkBuild(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		docs := syntheticCatalogue(size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c := index.NewBuilder().Build(docs, 0)
				_ = c
			}
		})
	}
}

func BenchmarkSnapshotSave(b *testing.B) {
	c := index.NewBuilder().Build(syntheticCatalogue(1000), 0)
	dir := b.TempDir()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Save(dir); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnapshotLoad(b *testing.B) {
	docs := syntheticCatalogue(1000)
	c := index.NewBuilder().Build(docs, 0)
	dir := b.TempDir()
	if err := c.Save(dir); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := index.Load(dir, docs); err != nil {
			b.Fatal(err)
		}
	}
}
