package orchestrator

// Store is the persistence abstraction for session state.
// Implementations are not required to be goroutine-safe; the Repository
// serializes all access.
type Store interface {
	GetSession(id SessionID) (*SessionState, bool)
	SetSession(s *SessionState)
	DeleteSession(id SessionID)
	ListSessionIDs() []SessionID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	sessions map[SessionID]*SessionState
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[SessionID]*SessionState),
	}
}

// GetSession implements Store.GetSession.
func (s *InMemoryStore) GetSession(id SessionID) (*SessionState, bool) {
	st, ok := s.sessions[id]
	return st, ok
}

// SetSession implements Store.SetSession.
func (s *InMemoryStore) SetSession(st *SessionState) {
	s.sessions[st.ID] = st
}

// DeleteSession implements Store.DeleteSession.
func (s *InMemoryStore) DeleteSession(id SessionID) {
	delete(s.sessions, id)
}

// ListSessionIDs implements Store.ListSessionIDs.
func (s *InMemoryStore) ListSessionIDs() []SessionID {
	ids := make([]SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
