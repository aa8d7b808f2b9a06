// Package tokenizer provides the text normalisation shared by the index
// builder and the query side. Both must tokenise identically or postings
// lookups silently miss.
package tokenizer

import (
	"strings"
	"unicode"
)

// Normalize lowercases the input, collapses every run of non-letter,
// non-digit characters into a single space, and trims the result.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokenize returns all tokens of the normalised text in order, duplicates
// included. This is the indexing-side view, where term frequency matters.
func Tokenize(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

// UniqueTokens returns the deduplicated tokens of the normalised text,
// preserving first-seen order. This is the query-side view.
func UniqueTokens(text string) []string {
	all := Tokenize(text)
	if len(all) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, t := range all {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
