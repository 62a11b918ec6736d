package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for reconciliation sessions.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Ping verifies the database connection is alive
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveSession saves a session and its matches in a single transaction
func (s *Storage) SaveSession(session *ReconSession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO recon_sessions
		(id, created_at, statement_count, book_count, match_count,
		 unmatched_statement_count, unmatched_book_count, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.CreatedAt,
		session.StatementCount,
		session.BookCount,
		session.MatchCount,
		session.UnmatchedStatementCount,
		session.UnmatchedBookCount,
		session.Confidence,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	// Replace matches wholesale; a session is only ever written as a unit
	if _, err := tx.Exec(`DELETE FROM recon_matches WHERE session_id = ?`, session.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, match := range session.Matches {
		_, err := tx.Exec(`
			INSERT INTO recon_matches
			(session_id, statement_id, book_id, amount, score, confidence, criteria, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			session.ID,
			match.StatementID,
			match.BookID,
			match.Amount,
			match.Score,
			match.Confidence,
			match.Criteria,
			match.Reason,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save match for session %s: %w", session.ID, err)
		}
	}

	return tx.Commit()
}

// GetSession retrieves a session with its matches by ID
func (s *Storage) GetSession(id string) (*ReconSession, error) {
	session := &ReconSession{}
	err := s.db.QueryRow(`
		SELECT id, created_at, statement_count, book_count, match_count,
		       unmatched_statement_count, unmatched_book_count, confidence
		FROM recon_sessions WHERE id = ?
	`, id).Scan(
		&session.ID,
		&session.CreatedAt,
		&session.StatementCount,
		&session.BookCount,
		&session.MatchCount,
		&session.UnmatchedStatementCount,
		&session.UnmatchedBookCount,
		&session.Confidence,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT session_id, statement_id, book_id, amount, score, confidence, criteria, reason
		FROM recon_matches
		WHERE session_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var match ReconMatch
		err := rows.Scan(
			&match.SessionID,
			&match.StatementID,
			&match.BookID,
			&match.Amount,
			&match.Score,
			&match.Confidence,
			&match.Criteria,
			&match.Reason,
		)
		if err != nil {
			return nil, err
		}
		session.Matches = append(session.Matches, match)
	}

	return session, rows.Err()
}

// ListSessions returns the most recent sessions without match rows
func (s *Storage) ListSessions(limit int) ([]*ReconSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, statement_count, book_count, match_count,
		       unmatched_statement_count, unmatched_book_count, confidence
		FROM recon_sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*ReconSession
	for rows.Next() {
		session := &ReconSession{}
		err := rows.Scan(
			&session.ID,
			&session.CreatedAt,
			&session.StatementCount,
			&session.BookCount,
			&session.MatchCount,
			&session.UnmatchedStatementCount,
			&session.UnmatchedBookCount,
			&session.Confidence,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
