package analytics

import (
	"strings"
	"unicode"
)

// stopWords are filler tokens that carry no signal for duplicate detection.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "on": {}, "in": {}, "of": {}, "at": {},
	"to": {}, "for": {}, "is": {}, "are": {}, "and": {}, "or": {}, "when": {},
	"with": {}, "it": {},
}

// suffixes stripped by the light stemmer, longest first so that e.g.
// "failure" and "fails" both reduce to "fail".
var suffixes = []string{"ing", "ure", "ed", "es", "s"}

// TitleSimilarity computes the token-overlap ratio between two issue titles:
// |tokens(a) ∩ tokens(b)| / |tokens(a) ∪ tokens(b)| over lower-cased,
// punctuation-stripped, stemmed word sets. Titles with no tokens score 0.
func TitleSimilarity(a, b string) float64 {
	setA := Tokenize(a)
	setB := Tokenize(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Tokenize reduces a title to its set of normalized word stems.
func Tokenize(title string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)

	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		tokens[stem(word)] = struct{}{}
	}
	return tokens
}

// stem strips one common inflection suffix, keeping at least 3 characters.
func stem(word string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= 3 {
			return word[:len(word)-len(suffix)]
		}
	}
	return word
}
