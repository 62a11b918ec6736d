// Package matcher implements the bank reconciliation matching engine: given
// bank-statement transactions and internal book transactions it produces a
// best-effort one-to-one pairing, classifies each pair with a confidence
// score and matching criteria, and surfaces the residual unmatched
// transactions on each side.
//
// Candidates are scored by three rule families, strongest first:
//   - exact_match: identical amount and identical non-empty reference
//   - amount_date_match: identical amount, dates within a tolerance window
//   - fuzzy_description_match: amounts within a small epsilon and similar
//     descriptions (only when fuzzy matching is enabled)
//
// Conflicts are resolved greedily in descending score order. This is not
// globally optimal in the assignment-problem sense, but it is deterministic,
// cheap, and always favors the highest-confidence pairs, which is what a
// reconciliation review UI needs to explain.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultOptions())
//	result, err := engine.FindOptimalMatches(statements, books)
//	for _, m := range result.Matches {
//		// m.Statement paired with m.Book, m.Reason explains why
//	}
//
// The engine is a pure computation over its inputs with no shared state, so
// a single Engine is safe for concurrent use.
package matcher

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// currencyScale is the rounding scale applied to amounts before comparison.
// Amounts are assumed to share one currency per reconciliation session.
const currencyScale = 2

// Engine matches statement transactions against book transactions.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options. A nil similarity
// scorer falls back to TokenSimilarity.
func NewEngine(opts Options) *Engine {
	if opts.Similarity == nil {
		opts.Similarity = TokenSimilarity{}
	}
	if opts.DateWindowDays < 0 {
		opts.DateWindowDays = 0
	}
	return &Engine{opts: opts}
}

// FindOptimalMatches pairs statement transactions with book transactions.
//
// Either collection may be empty; the non-empty side is then reported
// entirely unmatched. Transactions missing an amount or date are excluded
// from matching and reported unmatched with a note. The only fatal condition
// is a nil entry in either slice, which returns an *InvalidInputError.
func (e *Engine) FindOptimalMatches(statements, books []*Transaction) (*MatchResult, error) {
	if err := checkEntries("statement", statements); err != nil {
		return nil, err
	}
	if err := checkEntries("book", books); err != nil {
		return nil, err
	}

	validStmts := wellFormedOnly(statements)
	validBooks := wellFormedOnly(books)

	candidates := e.generateCandidates(validStmts, validBooks)
	sortCandidates(candidates)

	// Greedy assignment: walk candidates from strongest to weakest and
	// accept a pair only if both sides are still free.
	matchedStmt := make(map[*Transaction]bool)
	matchedBook := make(map[*Transaction]bool)
	matches := make([]Match, 0, len(validStmts))

	for _, c := range candidates {
		stmt := validStmts[c.stmt]
		book := validBooks[c.book]
		if matchedStmt[stmt] || matchedBook[book] {
			continue
		}

		matchedStmt[stmt] = true
		matchedBook[book] = true
		matches = append(matches, Match{
			Statement:  stmt,
			Book:       book,
			Score:      c.score,
			Confidence: c.score,
			Criteria:   c.criteria,
			Reason:     c.reason,
		})
	}

	result := &MatchResult{
		Matches:             matches,
		UnmatchedStatements: collectUnmatched(statements, matchedStmt),
		UnmatchedBooks:      collectUnmatched(books, matchedBook),
		Confidence:          aggregateConfidence(matches),
	}
	result.Insights = buildInsights(result)

	return result, nil
}

// checkEntries rejects nil entries. A nil slice is treated as empty.
func checkEntries(side string, txns []*Transaction) error {
	for i, t := range txns {
		if t == nil {
			return &InvalidInputError{
				Reason: fmt.Sprintf("%s transaction at index %d is nil", side, i),
			}
		}
	}
	return nil
}

func wellFormedOnly(txns []*Transaction) []*Transaction {
	valid := make([]*Transaction, 0, len(txns))
	for _, t := range txns {
		if ok, _ := t.wellFormed(); ok {
			valid = append(valid, t)
		}
	}
	return valid
}

// generateCandidates produces all plausible pairs. Every criteria family
// requires the amounts to agree within the fuzzy epsilon at minimum, so the
// books are indexed by rounded amount and each statement only probes the
// narrow amount band around its own value instead of the full cross product.
func (e *Engine) generateCandidates(stmts, books []*Transaction) []candidate {
	if len(stmts) == 0 || len(books) == 0 {
		return nil
	}

	bookAmounts := make([]decimal.Decimal, len(books))
	for i, b := range books {
		bookAmounts[i] = b.Amount.Round(currencyScale)
	}

	order := make([]int, len(books))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return bookAmounts[order[i]].Cmp(bookAmounts[order[j]]) < 0
	})

	epsilon := decimal.Zero
	if e.opts.EnableFuzzy {
		epsilon = e.opts.AmountEpsilon.Abs()
	}

	var candidates []candidate
	for si, stmt := range stmts {
		amount := stmt.Amount.Round(currencyScale)
		lo := amount.Sub(epsilon)
		hi := amount.Add(epsilon)

		start := sort.Search(len(order), func(i int) bool {
			return bookAmounts[order[i]].Cmp(lo) >= 0
		})

		for i := start; i < len(order); i++ {
			bi := order[i]
			if bookAmounts[bi].Cmp(hi) > 0 {
				break
			}
			if c, ok := e.scorePair(stmt, books[bi], amount, bookAmounts[bi]); ok {
				c.stmt = si
				c.book = bi
				c.stmtID = stmt.ID
				c.bookID = books[bi].ID
				candidates = append(candidates, c)
			}
		}
	}

	return candidates
}

// scorePair evaluates one pair against the criteria tiers, strongest first.
// Pairs failing every tier are pruned rather than scored at zero, and pairs
// scoring below the confidence threshold are dropped here so that raising
// the threshold can only ever shrink the accepted set.
func (e *Engine) scorePair(stmt, book *Transaction, stmtAmount, bookAmount decimal.Decimal) (candidate, bool) {
	amountsEqual := stmtAmount.Equal(bookAmount)

	if amountsEqual && stmt.Reference != "" && stmt.Reference == book.Reference {
		return e.threshold(candidate{
			score:    1.0,
			criteria: CriteriaExact,
			reason: fmt.Sprintf("Exact amount match ($%s) with matching reference %s",
				stmtAmount.StringFixed(currencyScale), stmt.Reference),
		})
	}

	days := dateDiffDays(stmt.Date, book.Date)
	if amountsEqual && days <= e.opts.DateWindowDays {
		// 0.85 on the same day, decaying linearly to 0.6 at the window edge.
		score := 0.85
		if e.opts.DateWindowDays > 0 {
			score -= 0.25 * float64(days) / float64(e.opts.DateWindowDays)
		}

		reason := fmt.Sprintf("Amount match ($%s) on the same date", stmtAmount.StringFixed(currencyScale))
		if days > 0 {
			reason = fmt.Sprintf("Amount match ($%s) with dates %d day(s) apart",
				stmtAmount.StringFixed(currencyScale), days)
		}

		return e.threshold(candidate{
			score:    score,
			criteria: CriteriaAmountDate,
			reason:   reason,
		})
	}

	if e.opts.EnableFuzzy {
		diff := stmtAmount.Sub(bookAmount).Abs()
		if diff.Cmp(e.opts.AmountEpsilon.Abs()) <= 0 {
			similarity := e.opts.Similarity.Score(stmt.Description, book.Description)
			if similarity >= e.opts.SimilarityThreshold {
				return e.threshold(candidate{
					score:    0.5 + 0.3*similarity,
					criteria: CriteriaFuzzyDescription,
					reason: fmt.Sprintf("Amounts within $%s and descriptions %.0f%% similar",
						diff.StringFixed(currencyScale), similarity*100),
				})
			}
		}
	}

	return candidate{}, false
}

func (e *Engine) threshold(c candidate) (candidate, bool) {
	if c.score < e.opts.MinConfidence {
		return candidate{}, false
	}
	return c, true
}

// sortCandidates orders candidates by descending score; ties break on the
// lower statement ID, then the lower book ID, so identical inputs always
// resolve to the same pairing.
func sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.stmtID != b.stmtID {
			return a.stmtID < b.stmtID
		}
		return a.bookID < b.bookID
	})
}

// dateDiffDays returns the absolute calendar-day distance, ignoring any
// time-of-day component.
func dateDiffDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	diff := ad.Sub(bd)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// collectUnmatched walks the original input slice so unmatched transactions
// come back in input order, annotating the ones excluded as malformed.
func collectUnmatched(txns []*Transaction, matched map[*Transaction]bool) []Unmatched {
	unmatched := make([]Unmatched, 0, len(txns)-len(matched))
	for _, t := range txns {
		if matched[t] {
			continue
		}
		_, note := t.wellFormed()
		unmatched = append(unmatched, Unmatched{Transaction: t, Note: note})
	}
	return unmatched
}

func aggregateConfidence(matches []Match) float64 {
	if len(matches) == 0 {
		return 0
	}

	total := 0.0
	for _, m := range matches {
		total += m.Confidence
	}
	return total / float64(len(matches))
}
