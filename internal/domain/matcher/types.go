package matcher

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single bank-statement or book (ledger) transaction.
// Both sides share the same shape; the collection a transaction is passed in
// determines its side. Transactions are immutable inputs: the engine never
// modifies a caller-supplied transaction.
type Transaction struct {
	ID          string
	Amount      *decimal.Decimal // nil when the source record had no amount
	Date        time.Time        // calendar date; zero when the source record had no date
	Description string
	Reference   string // optional external reference / check number
}

// wellFormed reports whether the transaction carries enough data to be
// considered for matching. Malformed transactions are excluded and reported
// as unmatched with a note, never silently dropped.
func (t *Transaction) wellFormed() (ok bool, note string) {
	if t.Amount == nil {
		return false, "excluded from matching: missing amount"
	}
	if t.Date.IsZero() {
		return false, "excluded from matching: missing date"
	}
	return true, ""
}

// Criteria names the rule family that produced a match.
type Criteria string

const (
	CriteriaExact            Criteria = "exact_match"
	CriteriaAmountDate       Criteria = "amount_date_match"
	CriteriaFuzzyDescription Criteria = "fuzzy_description_match"
)

// Match is an accepted pairing of one statement transaction with one book
// transaction.
type Match struct {
	Statement  *Transaction
	Book       *Transaction
	Score      float64
	Confidence float64
	Criteria   Criteria
	Reason     string
}

// Unmatched is a transaction that was not assigned to any pair. Note is set
// when the transaction was excluded from matching (e.g. missing amount).
type Unmatched struct {
	Transaction *Transaction
	Note        string
}

// MatchResult is the complete outcome of one reconciliation run. Every input
// transaction appears in exactly one of Matches, UnmatchedStatements or
// UnmatchedBooks.
type MatchResult struct {
	Matches             []Match
	UnmatchedStatements []Unmatched
	UnmatchedBooks      []Unmatched

	// Confidence is the mean confidence across accepted matches, 0 when
	// there are none.
	Confidence float64

	// Insights are advisory free-text observations about the result, such
	// as unmatched totals or possible split transactions.
	Insights []string
}

// candidate is a potential pairing generated during resolution. Candidates
// are never returned to callers; only the winning subset survives as Matches.
type candidate struct {
	stmt     int // index into the well-formed statement slice
	book     int // index into the well-formed book slice
	stmtID   string
	bookID   string
	score    float64
	criteria Criteria
	reason   string
}
