package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/internal/tokenizer"
)

var sampleTexts = map[string]string{
	"title": "Box of Chocolate Candy",
	"description": `A rich assortment of dark and milk chocolate pieces in a
        decorative gift box. Each piece is crafted from single-origin cocoa
        and finished by hand. Perfect for holidays, birthdays, and thank-you
        gifts, with a shelf life of twelve months when stored in a cool dry
        place.`,
	"reviews": strings.Repeat(`Absolutely delicious chocolate, arrived quickly
        and well packed. The dark pieces are rich without being bitter and
        the box itself looks great on the table. Would order again for any
        occasion. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Tokenize(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["description"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tokenizer.Tokenize(text)
			_ = tokens
		}
	})
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "white wool beanie chocolate candy potion "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenizer.Tokenize(text)
				_ = tokens
			}
		})
	}
}
