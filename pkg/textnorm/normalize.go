// FILE: pkg/textnorm/normalize.go
// PURPOSE: Accent-insensitive normalization and tokenization for pt/es utterances

package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics, replaces any non letter/digit with a
// space and collapses whitespace. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Fresh chain per call: transform.Transformer values are stateful.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}

	var sb strings.Builder
	sb.Grow(len(stripped))
	lastSpace := true
	for _, r := range stripped {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			sb.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(sb.String())
}

// Tokenize splits already-normalized text on whitespace.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// NormalizeTokens is Normalize followed by Tokenize.
func NormalizeTokens(text string) []string {
	return Tokenize(Normalize(text))
}

// Fold lowercases and strips diacritics but keeps punctuation, so currency marks
// and decimal separators survive for slot extraction.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}
