// Command reconcile runs a one-shot reconciliation from a JSON file and
// prints a human-readable summary. The input file holds both transaction
// sets in the same shape the API accepts:
//
//	{
//	  "statement_transactions": [{"id": "stmt-1", "amount": 100, "date": "2025-01-10"}],
//	  "book_transactions": [{"id": "book-1", "amount": 100, "date": "2025-01-10"}]
//	}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clearbooks/reconcile-backend/internal/api/dto"
	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
)

type inputFile struct {
	StatementTransactions []*dto.TransactionPayload `json:"statement_transactions"`
	BookTransactions      []*dto.TransactionPayload `json:"book_transactions"`
}

func main() {
	inputPath := flag.String("input", "", "path to JSON file with statement and book transactions")
	minConfidence := flag.Float64("min-confidence", 0.5, "minimum confidence for an accepted match")
	dateWindow := flag.Int("date-window", 3, "date tolerance window in days")
	fuzzy := flag.Bool("fuzzy", false, "enable fuzzy description matching")
	epsilon := flag.String("epsilon", "0.01", "amount tolerance for fuzzy matching")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile -input transactions.json [-fuzzy] [-date-window N]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	var input inputFile
	if err := json.Unmarshal(data, &input); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing input: %v\n", err)
		os.Exit(1)
	}

	opts := matcher.DefaultOptions()
	opts.MinConfidence = *minConfidence
	opts.DateWindowDays = *dateWindow
	opts.EnableFuzzy = *fuzzy
	if eps, err := decimal.NewFromString(*epsilon); err == nil {
		opts.AmountEpsilon = eps
	}

	statements, err := toTransactions(input.StatementTransactions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	books, err := toTransactions(input.BookTransactions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	result, err := matcher.NewEngine(opts).FindOptimalMatches(statements, books)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(humanSummary(result))
}

// toTransactions converts wire payloads, passing a null entry through as a
// nil transaction so the engine reports it as invalid input.
func toTransactions(payloads []*dto.TransactionPayload) ([]*matcher.Transaction, error) {
	txns := make([]*matcher.Transaction, 0, len(payloads))
	for _, p := range payloads {
		if p == nil {
			txns = append(txns, nil)
			continue
		}
		t, err := p.ToDomain()
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func humanSummary(result *matcher.MatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Matched pairs: %d\n", len(result.Matches))
	fmt.Fprintf(&b, "Unmatched statement transactions: %d\n", len(result.UnmatchedStatements))
	fmt.Fprintf(&b, "Unmatched book transactions: %d\n", len(result.UnmatchedBooks))
	fmt.Fprintf(&b, "Overall confidence: %.2f\n", result.Confidence)

	if len(result.Matches) > 0 {
		fmt.Fprintf(&b, "\nMatches:\n")
		for _, m := range result.Matches {
			fmt.Fprintf(&b, "- %s <-> %s [%s, %.2f]: %s\n",
				m.Statement.ID, m.Book.ID, m.Criteria, m.Confidence, m.Reason)
		}
	}

	if len(result.UnmatchedStatements) > 0 {
		fmt.Fprintf(&b, "\nStatement transactions without a match:\n")
		for _, u := range result.UnmatchedStatements {
			writeUnmatched(&b, u)
		}
	}

	if len(result.UnmatchedBooks) > 0 {
		fmt.Fprintf(&b, "\nBook transactions without a match:\n")
		for _, u := range result.UnmatchedBooks {
			writeUnmatched(&b, u)
		}
	}

	if len(result.Insights) > 0 {
		fmt.Fprintf(&b, "\nObservations:\n")
		for _, insight := range result.Insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}

	return b.String()
}

func writeUnmatched(b *strings.Builder, u matcher.Unmatched) {
	amount := "?"
	if u.Transaction.Amount != nil {
		amount = u.Transaction.Amount.StringFixed(2)
	}
	if u.Note != "" {
		fmt.Fprintf(b, "- %s amount=%s (%s)\n", u.Transaction.ID, amount, u.Note)
		return
	}
	fmt.Fprintf(b, "- %s amount=%s\n", u.Transaction.ID, amount)
}
