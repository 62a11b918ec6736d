package matcher

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a test transaction
func txn(id string, amount float64, date string) *Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	a := decimal.NewFromFloat(amount)
	return &Transaction{ID: id, Amount: &a, Date: d}
}

func txnRef(id string, amount float64, date, reference string) *Transaction {
	t := txn(id, amount, date)
	t.Reference = reference
	return t
}

func txnDesc(id string, amount float64, date, description string) *Transaction {
	t := txn(id, amount, date)
	t.Description = description
	return t
}

func TestEngine_ExactMatch(t *testing.T) {
	// Arrange
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{txnRef("stmt-1", 100, "2025-01-10", "REF-1")}
	books := []*Transaction{txnRef("book-1", 100, "2025-01-10", "REF-1")}

	// Act
	result, err := engine.FindOptimalMatches(statements, books)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "stmt-1", result.Matches[0].Statement.ID)
	assert.Equal(t, "book-1", result.Matches[0].Book.ID)
	assert.Equal(t, CriteriaExact, result.Matches[0].Criteria)
	assert.Equal(t, 1.0, result.Matches[0].Confidence)
	assert.Contains(t, result.Matches[0].Reason, "REF-1")
	assert.Empty(t, result.UnmatchedStatements)
	assert.Empty(t, result.UnmatchedBooks)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestEngine_AmountDateWithinWindow(t *testing.T) {
	// Statement on the 10th, book entry posted on the 12th: inside the
	// default 3-day window, so it matches with decayed confidence.
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{txn("stmt-1", 100, "2025-01-10")}
	books := []*Transaction{txn("book-1", 100, "2025-01-12")}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, CriteriaAmountDate, match.Criteria)
	assert.Greater(t, match.Confidence, 0.6)
	assert.Less(t, match.Confidence, 0.85)
	assert.InDelta(t, 0.85-0.25*2.0/3.0, match.Score, 0.0001)
	assert.Contains(t, match.Reason, "2 day(s)")
}

func TestEngine_SameDayScores085(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 42.50, "2025-03-01")},
		[]*Transaction{txn("book-1", 42.50, "2025-03-01")},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.InDelta(t, 0.85, result.Matches[0].Score, 0.0001)
}

func TestEngine_WindowEdgeScores06(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100, "2025-01-10")},
		[]*Transaction{txn("book-1", 100, "2025-01-13")}, // exactly 3 days
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.InDelta(t, 0.6, result.Matches[0].Score, 0.0001)
}

func TestEngine_BeyondDateWindow_NoMatch(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100, "2025-01-10")},
		[]*Transaction{txn("book-1", 100, "2025-01-14")}, // 4 days out
	)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	require.Len(t, result.UnmatchedStatements, 1)
	require.Len(t, result.UnmatchedBooks, 1)
}

func TestEngine_NoCandidateOnAmountMismatch(t *testing.T) {
	// Amount 100 vs 250 with nothing else in common: the pair is pruned,
	// not scored, and both sides come back unmatched.
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100, "2025-01-10")},
		[]*Transaction{txn("book-1", 250, "2025-06-01")},
	)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	require.Len(t, result.UnmatchedStatements, 1)
	assert.Equal(t, "stmt-1", result.UnmatchedStatements[0].Transaction.ID)
	require.Len(t, result.UnmatchedBooks, 1)
	assert.Equal(t, "book-1", result.UnmatchedBooks[0].Transaction.ID)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestEngine_EmptyStatements(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	books := []*Transaction{
		txn("book-1", 10, "2025-01-01"),
		txn("book-2", 20, "2025-01-02"),
	}

	result, err := engine.FindOptimalMatches(nil, books)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.UnmatchedStatements)
	require.Len(t, result.UnmatchedBooks, 2)
	assert.Equal(t, "book-1", result.UnmatchedBooks[0].Transaction.ID)
	assert.Equal(t, "book-2", result.UnmatchedBooks[1].Transaction.ID)
}

func TestEngine_BothEmpty(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(nil, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.UnmatchedStatements)
	assert.Empty(t, result.UnmatchedBooks)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestEngine_NilEntryIsFatal(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100, "2025-01-10"), nil},
		nil,
	)

	require.Error(t, err)
	assert.Nil(t, result)
	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "index 1")
}

func TestEngine_MalformedExcludedWithNote(t *testing.T) {
	// One statement has no amount, one book has no date. Both are excluded
	// from matching and annotated, and the rest still pairs normally.
	engine := NewEngine(DefaultOptions())

	noAmount := &Transaction{ID: "stmt-bad", Date: mustDate("2025-01-10")}
	amt := decimal.NewFromFloat(75)
	noDate := &Transaction{ID: "book-bad", Amount: &amt}

	statements := []*Transaction{txn("stmt-1", 100, "2025-01-10"), noAmount}
	books := []*Transaction{txn("book-1", 100, "2025-01-10"), noDate}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "stmt-1", result.Matches[0].Statement.ID)

	require.Len(t, result.UnmatchedStatements, 1)
	assert.Equal(t, "stmt-bad", result.UnmatchedStatements[0].Transaction.ID)
	assert.Contains(t, result.UnmatchedStatements[0].Note, "missing amount")

	require.Len(t, result.UnmatchedBooks, 1)
	assert.Equal(t, "book-bad", result.UnmatchedBooks[0].Transaction.ID)
	assert.Contains(t, result.UnmatchedBooks[0].Note, "missing date")
}

func TestEngine_OneToOnePartition(t *testing.T) {
	// Several statements compete for the same books; every id must land in
	// exactly one bucket and no id may be matched twice.
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{
		txn("stmt-1", 100, "2025-01-10"),
		txn("stmt-2", 100, "2025-01-11"),
		txn("stmt-3", 100, "2025-01-12"),
		txn("stmt-4", 55, "2025-01-12"),
	}
	books := []*Transaction{
		txn("book-1", 100, "2025-01-10"),
		txn("book-2", 100, "2025-01-12"),
		txn("book-3", 999, "2025-01-12"),
	}

	result, err := engine.FindOptimalMatches(statements, books)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, m := range result.Matches {
		seen[m.Statement.ID]++
		seen[m.Book.ID]++
	}
	for _, u := range result.UnmatchedStatements {
		seen[u.Transaction.ID]++
	}
	for _, u := range result.UnmatchedBooks {
		seen[u.Transaction.ID]++
	}

	assert.Len(t, seen, len(statements)+len(books))
	for id, count := range seen {
		assert.Equal(t, 1, count, "transaction %s appears %d times", id, count)
	}
}

func TestEngine_Determinism(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{
		txn("stmt-2", 100, "2025-01-11"),
		txn("stmt-1", 100, "2025-01-11"),
		txnRef("stmt-3", 40, "2025-01-05", "CHK-88"),
	}
	books := []*Transaction{
		txn("book-2", 100, "2025-01-11"),
		txn("book-1", 100, "2025-01-11"),
		txnRef("book-3", 40, "2025-01-05", "CHK-88"),
	}

	first, err := engine.FindOptimalMatches(statements, books)
	require.NoError(t, err)
	second, err := engine.FindOptimalMatches(statements, books)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_TieBreakByLowerID(t *testing.T) {
	// Two identical statements vs two identical books: all four candidates
	// score the same, so the fixed rule pairs lower ids together.
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{
		txn("stmt-b", 100, "2025-01-10"),
		txn("stmt-a", 100, "2025-01-10"),
	}
	books := []*Transaction{
		txn("book-b", 100, "2025-01-10"),
		txn("book-a", 100, "2025-01-10"),
	}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "stmt-a", result.Matches[0].Statement.ID)
	assert.Equal(t, "book-a", result.Matches[0].Book.ID)
	assert.Equal(t, "stmt-b", result.Matches[1].Statement.ID)
	assert.Equal(t, "book-b", result.Matches[1].Book.ID)
}

func TestEngine_GreedyPrefersCloserDate(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{txn("stmt-1", 100, "2025-01-10")}
	books := []*Transaction{
		txn("book-far", 100, "2025-01-13"),
		txn("book-near", 100, "2025-01-11"),
	}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "book-near", result.Matches[0].Book.ID)
}

func TestEngine_ExactMatchPrecedence(t *testing.T) {
	// book-ref is a same-day amount match for stmt-1 too, but the exact
	// reference pairing must win it.
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{
		txn("stmt-1", 100, "2025-01-10"),
		txnRef("stmt-2", 100, "2025-01-12", "REF-9"),
	}
	books := []*Transaction{
		txnRef("book-ref", 100, "2025-01-10", "REF-9"),
		txn("book-plain", 100, "2025-01-10"),
	}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "stmt-2", result.Matches[0].Statement.ID)
	assert.Equal(t, "book-ref", result.Matches[0].Book.ID)
	assert.Equal(t, CriteriaExact, result.Matches[0].Criteria)
	assert.Equal(t, "stmt-1", result.Matches[1].Statement.ID)
	assert.Equal(t, "book-plain", result.Matches[1].Book.ID)
}

func TestEngine_ReferenceMismatchFallsBackToAmountDate(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txnRef("stmt-1", 100, "2025-01-10", "REF-1")},
		[]*Transaction{txnRef("book-1", 100, "2025-01-10", "REF-2")},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, CriteriaAmountDate, result.Matches[0].Criteria)
}

func TestEngine_EmptyReferencesNeverExact(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100, "2025-01-10")},
		[]*Transaction{txn("book-1", 100, "2025-01-10")},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, CriteriaAmountDate, result.Matches[0].Criteria)
}

func TestEngine_ThresholdMonotonicity(t *testing.T) {
	statements := []*Transaction{
		txnRef("stmt-1", 100, "2025-01-10", "REF-1"),
		txn("stmt-2", 50, "2025-01-10"),
		txn("stmt-3", 75, "2025-01-10"),
	}
	books := []*Transaction{
		txnRef("book-1", 100, "2025-01-10", "REF-1"),
		txn("book-2", 50, "2025-01-13"),
		txn("book-3", 75, "2025-01-11"),
	}

	previous := len(statements) + 1
	for _, threshold := range []float64{0.0, 0.5, 0.7, 0.85, 0.95, 1.0} {
		opts := DefaultOptions()
		opts.MinConfidence = threshold
		result, err := NewEngine(opts).FindOptimalMatches(statements, books)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Matches), previous,
			"raising the threshold to %.2f increased the match count", threshold)
		previous = len(result.Matches)
	}
}

func TestEngine_HighThresholdRejectsAmountDate(t *testing.T) {
	opts := DefaultOptions()
	opts.MinConfidence = 0.9

	result, err := NewEngine(opts).FindOptimalMatches(
		[]*Transaction{
			txn("stmt-1", 100, "2025-01-10"),
			txnRef("stmt-2", 60, "2025-01-10", "REF-2"),
		},
		[]*Transaction{
			txn("book-1", 100, "2025-01-10"),
			txnRef("book-2", 60, "2025-01-10", "REF-2"),
		},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, CriteriaExact, result.Matches[0].Criteria)
	require.Len(t, result.UnmatchedStatements, 1)
	assert.Equal(t, "stmt-1", result.UnmatchedStatements[0].Transaction.ID)
}

func TestEngine_FuzzyDescriptionMatch(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableFuzzy = true
	opts.AmountEpsilon = decimal.NewFromFloat(0.05)
	engine := NewEngine(opts)

	statements := []*Transaction{
		txnDesc("stmt-1", 100.02, "2025-01-10", "AMAZON MARKETPLACE PAYMENT"),
	}
	books := []*Transaction{
		txnDesc("book-1", 100.00, "2025-02-20", "Amazon Marketplace"),
	}

	result, err := engine.FindOptimalMatches(statements, books)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, CriteriaFuzzyDescription, match.Criteria)
	assert.GreaterOrEqual(t, match.Score, 0.5)
	assert.LessOrEqual(t, match.Score, 0.8)
	assert.Contains(t, match.Reason, "similar")
}

func TestEngine_FuzzyDisabledByDefault(t *testing.T) {
	// Same pair as above, but fuzzy mode off: amounts differ so no
	// candidate is generated at all.
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txnDesc("stmt-1", 100.02, "2025-01-10", "AMAZON MARKETPLACE PAYMENT")},
		[]*Transaction{txnDesc("book-1", 100.00, "2025-01-10", "Amazon Marketplace")},
	)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestEngine_FuzzyRequiresSimilarDescriptions(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableFuzzy = true
	engine := NewEngine(opts)

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txnDesc("stmt-1", 100.01, "2025-01-10", "GYM MEMBERSHIP")},
		[]*Transaction{txnDesc("book-1", 100.00, "2025-02-20", "Office supplies invoice")},
	)

	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestEngine_CurrencyRounding(t *testing.T) {
	// 100.004 and 99.996 both round to 100.00, so they are an equal-amount
	// pair after currency-aware rounding.
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{txn("stmt-1", 100.004, "2025-01-10")},
		[]*Transaction{txn("book-1", 99.996, "2025-01-10")},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, CriteriaAmountDate, result.Matches[0].Criteria)
}

func TestEngine_DoesNotMutateInputs(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	stmt := txnRef("stmt-1", 100, "2025-01-10", "REF-1")
	book := txnRef("book-1", 100, "2025-01-10", "REF-1")
	stmtCopy := *stmt
	bookCopy := *book

	_, err := engine.FindOptimalMatches([]*Transaction{stmt}, []*Transaction{book})

	require.NoError(t, err)
	assert.Equal(t, stmtCopy, *stmt)
	assert.Equal(t, bookCopy, *book)
}

func TestEngine_AggregateConfidenceIsMean(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	result, err := engine.FindOptimalMatches(
		[]*Transaction{
			txnRef("stmt-1", 100, "2025-01-10", "REF-1"), // exact: 1.0
			txn("stmt-2", 50, "2025-01-10"),              // same day: 0.85
		},
		[]*Transaction{
			txnRef("book-1", 100, "2025-01-10", "REF-1"),
			txn("book-2", 50, "2025-01-10"),
		},
	)

	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.InDelta(t, (1.0+0.85)/2, result.Confidence, 0.0001)
}

func TestEngine_Insights(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{
		txn("stmt-1", 100, "2025-01-10"),
		txn("stmt-2", 25.50, "2025-01-11"),
		txn("stmt-3", 25.50, "2025-01-12"),
	}
	books := []*Transaction{txn("book-1", 999, "2025-01-10")}

	result, err := engine.FindOptimalMatches(statements, books)
	require.NoError(t, err)

	require.NotEmpty(t, result.Insights)
	assert.Contains(t, result.Insights[0], "3 statement transaction(s)")
	assert.Contains(t, result.Insights[0], "possible missing bookkeeping")
	assert.Contains(t, result.Insights[1], "1 book transaction(s)")

	var foundSplit bool
	for _, insight := range result.Insights {
		if insight == "statement side has 2 transactions of amount $25.50; possible split transaction" {
			foundSplit = true
		}
	}
	assert.True(t, foundSplit, "expected a split-transaction insight, got %v", result.Insights)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	// One engine, many goroutines: each invocation only touches its own
	// inputs and outputs, so results must stay independent and correct.
	engine := NewEngine(DefaultOptions())
	statements := []*Transaction{txnRef("stmt-1", 100, "2025-01-10", "REF-1")}
	books := []*Transaction{txnRef("book-1", 100, "2025-01-10", "REF-1")}

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			result, err := engine.FindOptimalMatches(statements, books)
			if err == nil && len(result.Matches) != 1 {
				err = errors.New("unexpected match count")
			}
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
