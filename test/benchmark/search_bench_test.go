package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/index"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/search"
)

var benchQueries = []string{
	"chocolate",
	"white wool beanie",
	"water bottle",
	"made in france",
	"organic cotton shirt variant",
}

func BenchmarkSearch(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		engine := search.New(index.NewBuilder().Build(syntheticCatalogue(size), 0), nil)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			ctx := context.Background()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Search(ctx, benchQueries[i%len(benchQueries)], 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearchWorkers(b *testing.B) {
	corpus := index.NewBuilder().Build(syntheticCatalogue(5000), 0)
	for _, workers := range []int{1, 2, 4, 8} {
		engine := search.New(corpus, nil, search.WithScoreWorkers(workers))
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			ctx := context.Background()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Search(ctx, "quality product variant", 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	engine := search.New(index.NewBuilder().Build(syntheticCatalogue(1000), 0), nil)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			if _, err := engine.Search(ctx, benchQueries[i%len(benchQueries)], 10); err != nil {
				b.Fatal(err)
			}
			i++
		}
	})
}
