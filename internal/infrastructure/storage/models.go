package storage

import "time"

// ReconSession is one persisted reconciliation run.
type ReconSession struct {
	ID                      string
	CreatedAt               time.Time
	StatementCount          int
	BookCount               int
	MatchCount              int
	UnmatchedStatementCount int
	UnmatchedBookCount      int
	Confidence              float64
	Matches                 []ReconMatch
}

// ReconMatch is one accepted pairing within a session.
type ReconMatch struct {
	SessionID   string
	StatementID string
	BookID      string
	Amount      string // decimal string of the matched statement amount
	Score       float64
	Confidence  float64
	Criteria    string
	Reason      string
}
