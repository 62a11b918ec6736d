package matcher

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// buildInsights produces coarse advisory observations about a finished
// result: unmatched counts and totals per side, plus repeated amounts within
// a side that may indicate split transactions. These are strings for a human
// reviewer, never further matches.
func buildInsights(result *MatchResult) []string {
	var insights []string

	if n := len(result.UnmatchedStatements); n > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d statement transaction(s) have no corresponding book entry (total $%s); possible missing bookkeeping",
			n, unmatchedTotal(result.UnmatchedStatements).StringFixed(currencyScale)))
	}

	if n := len(result.UnmatchedBooks); n > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d book transaction(s) not found on the statement (total $%s); possible uncleared or in-transit items",
			n, unmatchedTotal(result.UnmatchedBooks).StringFixed(currencyScale)))
	}

	insights = append(insights, duplicateAmountInsights("statement", statementSide(result))...)
	insights = append(insights, duplicateAmountInsights("book", bookSide(result))...)

	return insights
}

func unmatchedTotal(unmatched []Unmatched) decimal.Decimal {
	total := decimal.Zero
	for _, u := range unmatched {
		if u.Transaction.Amount != nil {
			total = total.Add(u.Transaction.Amount.Abs())
		}
	}
	return total
}

func statementSide(result *MatchResult) []*Transaction {
	txns := make([]*Transaction, 0, len(result.Matches)+len(result.UnmatchedStatements))
	for i := range result.Matches {
		txns = append(txns, result.Matches[i].Statement)
	}
	for _, u := range result.UnmatchedStatements {
		txns = append(txns, u.Transaction)
	}
	return txns
}

func bookSide(result *MatchResult) []*Transaction {
	txns := make([]*Transaction, 0, len(result.Matches)+len(result.UnmatchedBooks))
	for i := range result.Matches {
		txns = append(txns, result.Matches[i].Book)
	}
	for _, u := range result.UnmatchedBooks {
		txns = append(txns, u.Transaction)
	}
	return txns
}

// duplicateAmountInsights flags amounts appearing more than once within one
// side; repeated identical amounts often mean a split transaction.
func duplicateAmountInsights(side string, txns []*Transaction) []string {
	counts := make(map[string]int)
	for _, t := range txns {
		if t.Amount == nil {
			continue
		}
		counts[t.Amount.Round(currencyScale).StringFixed(currencyScale)]++
	}

	amounts := make([]string, 0, len(counts))
	for amount, n := range counts {
		if n > 1 {
			amounts = append(amounts, amount)
		}
	}
	sort.Strings(amounts)

	insights := make([]string, 0, len(amounts))
	for _, amount := range amounts {
		insights = append(insights, fmt.Sprintf(
			"%s side has %d transactions of amount $%s; possible split transaction",
			side, counts[amount], amount))
	}
	return insights
}
