// Package tokenizer provides the text normalisation pipeline shared by
// indexing and querying. It lower-cases input, treats every non-letter,
// non-digit rune as a separator, and removes stop-words. Token positions are
// offsets within the filtered token sequence, so the same pipeline must be
// applied on both sides of the index.
package tokenizer

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"if": {}, "while": {}, "with": {}, "of": {}, "at": {}, "by": {},
	"for": {}, "in": {}, "on": {}, "to": {}, "from": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"has": {}, "have": {}, "it": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "so": {}, "not": {}, "your": {},
	"my": {}, "their": {}, "our": {}, "can": {}, "will": {},
	"just": {}, "i": {}, "you": {}, "he": {}, "she": {}, "they": {},
	"we": {}, "me": {}, "him": {}, "her": {}, "them": {}, "do": {},
	"does": {}, "did": {},
}

// Token is a single normalised term and its 0-based offset within the
// tokenized field.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into lowercased tokens with punctuation stripped and
// stop-words removed. Order is preserved and positions are strictly
// increasing. Empty or whitespace-only input yields an empty slice.
func Tokenize(text string) []Token {
	words := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, Token{Term: word, Position: pos})
		pos++
	}
	return tokens
}

// Terms returns only the token strings, for callers that do not need
// positions (query processing, feature values).
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// IsStopWord reports whether the given (already lowercased) word is in the
// fixed stop-word set.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
