package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	SessionRepository

	// Ping verifies the backing store is reachable
	Ping() error

	Close() error
}

// SessionRepository persists reconciliation sessions and their accepted
// matches. Persistence always happens after the matching engine returns; the
// engine itself never touches storage.
type SessionRepository interface {
	// SaveSession saves a session together with its accepted matches
	SaveSession(session *ReconSession) error

	// GetSession retrieves a session by ID, including its matches.
	// Returns (nil, nil) when the session does not exist.
	GetSession(id string) (*ReconSession, error)

	// ListSessions returns the most recent sessions, newest first,
	// without their match rows
	ListSessions(limit int) ([]*ReconSession, error)
}
