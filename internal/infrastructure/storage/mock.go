package storage

import (
	"sort"
	"sync"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu       sync.Mutex
	sessions map[string]*ReconSession

	// SaveErr, when set, is returned by SaveSession to simulate failures
	SaveErr error
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		sessions: make(map[string]*ReconSession),
	}
}

// SaveSession stores a copy of the session
func (m *MockRepository) SaveSession(session *ReconSession) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *session
	copied.Matches = append([]ReconMatch(nil), session.Matches...)
	m.sessions[session.ID] = &copied
	return nil
}

// GetSession returns the stored session or (nil, nil)
func (m *MockRepository) GetSession(id string) (*ReconSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}

	copied := *session
	copied.Matches = append([]ReconMatch(nil), session.Matches...)
	return &copied, nil
}

// ListSessions returns sessions newest first
func (m *MockRepository) ListSessions(limit int) ([]*ReconSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	sessions := make([]*ReconSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		copied := *session
		copied.Matches = nil
		sessions = append(sessions, &copied)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})

	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Ping always succeeds for the in-memory mock
func (m *MockRepository) Ping() error {
	return nil
}

// Close is a no-op for the mock
func (m *MockRepository) Close() error {
	return nil
}
