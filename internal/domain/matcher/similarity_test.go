package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSimilarity_Identical(t *testing.T) {
	scorer := TokenSimilarity{}
	assert.Equal(t, 1.0, scorer.Score("ACME CORP INVOICE 42", "ACME CORP INVOICE 42"))
}

func TestTokenSimilarity_CaseAndWhitespaceInsensitive(t *testing.T) {
	scorer := TokenSimilarity{}
	assert.Equal(t, 1.0, scorer.Score("  Acme Corp  ", "acme corp"))
}

func TestTokenSimilarity_Empty(t *testing.T) {
	scorer := TokenSimilarity{}
	assert.Equal(t, 0.0, scorer.Score("", "ACME CORP"))
	assert.Equal(t, 0.0, scorer.Score("ACME CORP", ""))
	assert.Equal(t, 0.0, scorer.Score("", ""))
}

func TestTokenSimilarity_TokenOverlap(t *testing.T) {
	scorer := TokenSimilarity{}

	// Two of three tokens shared regardless of ordering and punctuation.
	score := scorer.Score("AMAZON*MARKETPLACE PAYMENT", "Payment - Amazon")
	assert.Greater(t, score, 0.4)
	assert.Less(t, score, 1.0)
}

func TestTokenSimilarity_Typo(t *testing.T) {
	scorer := TokenSimilarity{}

	// No token overlap, but edit distance keeps these close.
	score := scorer.Score("STARBUCKS", "STARBUCKS#1234")
	assert.Greater(t, score, 0.5)
}

func TestTokenSimilarity_Unrelated(t *testing.T) {
	scorer := TokenSimilarity{}
	score := scorer.Score("GYM MEMBERSHIP", "Office supplies invoice")
	assert.Less(t, score, 0.4)
}

func TestTokenSimilarity_Symmetric(t *testing.T) {
	scorer := TokenSimilarity{}
	a, b := "ACH TRANSFER PAYROLL", "payroll transfer"
	assert.InDelta(t, scorer.Score(a, b), scorer.Score(b, a), 0.0001)
}
