package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
)

// ReconcileRequest is the body of POST /api/reconcile. The transaction
// arrays decode element-wise into pointers so a JSON null entry survives as
// a nil payload instead of silently becoming an empty transaction; nil
// entries are a contract violation and must be rejected, not recovered.
type ReconcileRequest struct {
	SessionID             string                `json:"session_id,omitempty"`
	StatementTransactions []*TransactionPayload `json:"statement_transactions"`
	BookTransactions      []*TransactionPayload `json:"book_transactions"`
	Options               *MatchOptionsPayload  `json:"options,omitempty"`
}

// TransactionPayload is one transaction on the wire. Amount is a pointer so
// a missing amount survives into the engine, which reports it as unmatched
// with an annotation instead of rejecting the whole request.
type TransactionPayload struct {
	ID          string           `json:"id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        string           `json:"date,omitempty"` // ISO-8601
	Description string           `json:"description,omitempty"`
	Reference   string           `json:"reference,omitempty"`
}

// MatchOptionsPayload carries per-request overrides of the deployment's
// matching defaults. Absent fields keep the default.
type MatchOptionsPayload struct {
	MinConfidence       *float64         `json:"min_confidence,omitempty"`
	DateWindowDays      *int             `json:"date_window_days,omitempty"`
	AmountEpsilon       *decimal.Decimal `json:"amount_epsilon,omitempty"`
	EnableFuzzy         *bool            `json:"enable_fuzzy,omitempty"`
	SimilarityThreshold *float64         `json:"similarity_threshold,omitempty"`
}

// ToDomain converts a wire transaction to the engine's type. An absent date
// maps to the zero time, which the engine treats as malformed and annotates
// rather than dropping. A date that is present but unparseable is rejected,
// matching how unparseable amounts fail JSON decoding.
func (p TransactionPayload) ToDomain() (*matcher.Transaction, error) {
	var date time.Time
	if p.Date != "" {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			d, err = time.Parse(time.RFC3339, p.Date)
		}
		if err != nil {
			return nil, fmt.Errorf("transaction %q has invalid date %q, expected YYYY-MM-DD", p.ID, p.Date)
		}
		date = d
	}

	return &matcher.Transaction{
		ID:          p.ID,
		Amount:      p.Amount,
		Date:        date,
		Description: p.Description,
		Reference:   p.Reference,
	}, nil
}

// Apply overlays the payload's set fields onto base and returns the result.
func (p *MatchOptionsPayload) Apply(base matcher.Options) matcher.Options {
	if p == nil {
		return base
	}
	if p.MinConfidence != nil {
		base.MinConfidence = *p.MinConfidence
	}
	if p.DateWindowDays != nil {
		base.DateWindowDays = *p.DateWindowDays
	}
	if p.AmountEpsilon != nil {
		base.AmountEpsilon = *p.AmountEpsilon
	}
	if p.EnableFuzzy != nil {
		base.EnableFuzzy = *p.EnableFuzzy
	}
	if p.SimilarityThreshold != nil {
		base.SimilarityThreshold = *p.SimilarityThreshold
	}
	return base
}
