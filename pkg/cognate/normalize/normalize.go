// Package normalize turns raw sentence tokens into comparable word forms.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultElisions are the French elided articles removed before lookup.
var DefaultElisions = []string{"l'", "d'", "l’", "d’"}

// stripMarks builds a fresh transformer per call; transform chains keep
// internal state and cannot be shared between goroutines.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lowercases raw, strips diacritics and drops every rune that is
// not a letter, an underscore or whitespace. Digits and punctuation vanish,
// so numerals and pure punctuation normalize to "".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks(), strings.ToLower(raw))
	if err != nil {
		folded = strings.ToLower(raw)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits sentence on whitespace and returns the raw tokens in
// order, skipping tokens that normalize to "". With trimShort, tokens whose
// normalized form has two runes or fewer are skipped too.
func Tokenize(sentence string, trimShort bool) []string {
	fields := strings.Fields(sentence)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		n := Normalize(f)
		if n == "" {
			continue
		}
		if trimShort && RuneLen(n) <= 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// StripElision removes one leading elision marker such as "l'" from raw.
// Matching is case-insensitive and the remainder keeps its casing.
func StripElision(raw string, prefixes []string) string {
	lower := strings.ToLower(raw)
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(p)) && len(raw) > len(p) {
			return raw[len(p):]
		}
	}
	return raw
}

// IsCapitalized reports whether the first letter of raw is upper case.
// Leading punctuation such as quotes is skipped.
func IsCapitalized(raw string) bool {
	for _, r := range raw {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

// TrimPartialWord flattens newlines and cuts text at its last whitespace so
// a word truncated by a token limit is dropped. Text without whitespace is
// returned trimmed.
func TrimPartialWord(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if i := strings.LastIndexFunc(text, unicode.IsSpace); i > 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}
