// Package service orchestrates reconciliation runs: it invokes the pure
// matching engine and persists the outcome, keeping the engine itself free
// of I/O.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks/reconcile-backend/internal/domain/matcher"
	"github.com/clearbooks/reconcile-backend/internal/infrastructure/storage"
)

// ReconcileRequest holds parameters for one reconciliation run.
type ReconcileRequest struct {
	SessionID  string // assigned when empty
	Statements []*matcher.Transaction
	Books      []*matcher.Transaction
	Options    matcher.Options
}

// ReconcileResult is the engine output plus the session identity under which
// it was persisted.
type ReconcileResult struct {
	SessionID string
	CreatedAt time.Time
	*matcher.MatchResult
}

// ReconcileService runs the matching engine and records each session.
type ReconcileService struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(repo storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		repo:   repo,
		logger: logger,
	}
}

// Reconcile matches the request's statement and book transactions, persists
// the session, and returns the full result. Engine contract violations are
// returned unwrapped so callers can map them to a 400; persistence failures
// are internal errors.
func (s *ReconcileService) Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	engine := matcher.NewEngine(req.Options)
	result, err := engine.FindOptimalMatches(req.Statements, req.Books)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	if err := s.repo.SaveSession(toSessionRecord(sessionID, createdAt, req, result)); err != nil {
		return nil, fmt.Errorf("failed to persist session %s: %w", sessionID, err)
	}

	s.logger.InfoContext(ctx, "reconciliation session completed",
		"session_id", sessionID,
		"statements", len(req.Statements),
		"books", len(req.Books),
		"matches", len(result.Matches),
		"confidence", result.Confidence,
	)

	return &ReconcileResult{
		SessionID:   sessionID,
		CreatedAt:   createdAt,
		MatchResult: result,
	}, nil
}

// Ping reports whether the backing store is reachable.
func (s *ReconcileService) Ping() error {
	return s.repo.Ping()
}

// GetSession returns a persisted session, or (nil, nil) when unknown.
func (s *ReconcileService) GetSession(id string) (*storage.ReconSession, error) {
	return s.repo.GetSession(id)
}

// ListSessions returns recent sessions, newest first.
func (s *ReconcileService) ListSessions(limit int) ([]*storage.ReconSession, error) {
	return s.repo.ListSessions(limit)
}

func toSessionRecord(sessionID string, createdAt time.Time, req ReconcileRequest, result *matcher.MatchResult) *storage.ReconSession {
	record := &storage.ReconSession{
		ID:                      sessionID,
		CreatedAt:               createdAt,
		StatementCount:          len(req.Statements),
		BookCount:               len(req.Books),
		MatchCount:              len(result.Matches),
		UnmatchedStatementCount: len(result.UnmatchedStatements),
		UnmatchedBookCount:      len(result.UnmatchedBooks),
		Confidence:              result.Confidence,
		Matches:                 make([]storage.ReconMatch, 0, len(result.Matches)),
	}

	for _, m := range result.Matches {
		amount := ""
		if m.Statement.Amount != nil {
			amount = m.Statement.Amount.StringFixed(2)
		}
		record.Matches = append(record.Matches, storage.ReconMatch{
			SessionID:   sessionID,
			StatementID: m.Statement.ID,
			BookID:      m.Book.ID,
			Amount:      amount,
			Score:       m.Score,
			Confidence:  m.Confidence,
			Criteria:    string(m.Criteria),
			Reason:      m.Reason,
		})
	}

	return record
}
