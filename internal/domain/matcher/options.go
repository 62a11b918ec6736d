package matcher

import "github.com/shopspring/decimal"

// Options holds matching configuration.
//
// The defaults are deliberately conservative: without fuzzy matching enabled
// a candidate requires an exact amount match (after currency rounding), so
// the amount epsilon only comes into play when EnableFuzzy is set.
type Options struct {
	// MinConfidence is the score below which a candidate is never accepted.
	MinConfidence float64

	// DateWindowDays is the maximum calendar-day distance for the
	// amount+date criteria.
	DateWindowDays int

	// AmountEpsilon is the tolerated amount discrepancy for fuzzy matching
	// (bank fee rounding, FX drift). Ignored unless EnableFuzzy is set.
	AmountEpsilon decimal.Decimal

	// EnableFuzzy turns on the fuzzy description criteria.
	EnableFuzzy bool

	// SimilarityThreshold is the minimum description similarity for a fuzzy
	// candidate.
	SimilarityThreshold float64

	// Similarity scores description similarity. Defaults to TokenSimilarity
	// when nil.
	Similarity SimilarityScorer
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MinConfidence:       0.5,
		DateWindowDays:      3,
		AmountEpsilon:       decimal.NewFromFloat(0.01),
		EnableFuzzy:         false,
		SimilarityThreshold: 0.4,
		Similarity:          TokenSimilarity{},
	}
}
