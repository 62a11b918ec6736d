package matcher

import (
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// SimilarityScorer scores how alike two transaction descriptions are.
// Implementations must return a value in [0,1] and be safe for concurrent
// use. The metric is pluggable so it can be tuned per institution without
// touching assignment logic.
type SimilarityScorer interface {
	Score(a, b string) float64
}

// TokenSimilarity is the default description scorer. It combines token-set
// overlap (order-insensitive, good for reordered merchant names) with a
// whole-string Levenshtein ratio (good for small typos and truncation) and
// takes whichever is higher.
type TokenSimilarity struct{}

// Score returns the similarity between a and b in [0,1].
func (TokenSimilarity) Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	overlap := tokenOverlap(a, b)
	ratio := levenshteinRatio(a, b)
	if overlap > ratio {
		return overlap
	}
	return ratio
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenOverlap computes the Jaccard index over the token sets of a and b.
func tokenOverlap(a, b string) float64 {
	aTokens := tokenize(a)
	bTokens := tokenize(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	intersection := 0
	for tok := range aTokens {
		if bTokens[tok] {
			intersection++
		}
	}

	union := len(aTokens) + len(bTokens) - intersection
	return float64(intersection) / float64(union)
}

// tokenize splits on any non-alphanumeric rune.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[tok] = true
	}
	return tokens
}

// levenshteinRatio maps edit distance onto [0,1], where 1 means identical.
func levenshteinRatio(a, b string) float64 {
	aRunes := []rune(a)
	bRunes := []rune(b)

	longest := len(aRunes)
	if len(bRunes) > longest {
		longest = len(bRunes)
	}
	if longest == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings(aRunes, bRunes, levenshtein.DefaultOptions)
	return 1 - float64(distance)/float64(longest)
}
