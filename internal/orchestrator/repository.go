package orchestrator

import (
	"sync"
	"time"
)

// Repository defines the concurrency-safe contract for accessing and mutating
// session job state.
type Repository interface {
	// CreateSession establishes a session with the given records, replacing
	// any prior state stored under the same id. It returns the generation
	// writers must present to UpdateScene.
	CreateSession(id SessionID, records []JobRecord) Generation

	// GetSession returns a copy of the session's records in submission order.
	// The ok return is false if the session does not exist; a session created
	// with zero records returns an empty slice and ok true.
	GetSession(id SessionID) (records []JobRecord, ok bool)

	// UpdateScene merges update into the record for sceneID. Unknown sessions
	// or scenes are ignored, as are updates carrying a generation other than
	// the session's current one. Updates that would move a record backwards or
	// out of a terminal state are dropped.
	UpdateScene(id SessionID, gen Generation, sceneID int, update JobUpdate)

	// DeleteSession removes a session. It reports whether the session existed.
	DeleteSession(id SessionID) bool

	// Clear removes every session and returns how many were removed.
	Clear() int

	// EvictFinished removes sessions whose records are all terminal and that
	// were last updated before cutoff. It returns the number removed.
	EvictFinished(cutoff time.Time) int

	// ActiveSessionCount returns the number of sessions with at least one
	// non-terminal record. Used for metrics.
	ActiveSessionCount() int
}

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
	now   func() time.Time
	gen   Generation
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
// Useful for testing or for plugging in a different persistence backend.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// CreateSession implements Repository.CreateSession.
func (r *InMemoryRepository) CreateSession(id SessionID, records []JobRecord) Generation {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	now := r.now()
	r.store.SetSession(&SessionState{
		ID:         id,
		Generation: r.gen,
		Records:    append(make([]JobRecord, 0, len(records)), records...),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return r.gen
}

// GetSession implements Repository.GetSession.
func (r *InMemoryRepository) GetSession(id SessionID) ([]JobRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.store.GetSession(id)
	if !exists {
		return nil, false
	}

	// Copy to avoid exposing the stored slice.
	records := make([]JobRecord, len(session.Records))
	copy(records, session.Records)
	return records, true
}

// UpdateScene implements Repository.UpdateScene.
func (r *InMemoryRepository) UpdateScene(id SessionID, gen Generation, sceneID int, update JobUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.store.GetSession(id)
	if !exists || session.Generation != gen {
		return
	}

	for i := range session.Records {
		if session.Records[i].SceneID != sceneID {
			continue
		}
		if update.apply(&session.Records[i]) {
			session.UpdatedAt = r.now()
		}
		return
	}
}

// DeleteSession implements Repository.DeleteSession.
func (r *InMemoryRepository) DeleteSession(id SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store.GetSession(id); !exists {
		return false
	}
	r.store.DeleteSession(id)
	return true
}

// Clear implements Repository.Clear.
func (r *InMemoryRepository) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.store.ListSessionIDs()
	for _, id := range ids {
		r.store.DeleteSession(id)
	}
	return len(ids)
}

// EvictFinished implements Repository.EvictFinished.
func (r *InMemoryRepository) EvictFinished(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range r.store.ListSessionIDs() {
		st, ok := r.store.GetSession(id)
		if !ok || !st.finished() || !st.UpdatedAt.Before(cutoff) {
			continue
		}
		r.store.DeleteSession(id)
		n++
	}
	return n
}

// ActiveSessionCount implements Repository.ActiveSessionCount.
func (r *InMemoryRepository) ActiveSessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, id := range r.store.ListSessionIDs() {
		if st, ok := r.store.GetSession(id); ok && !st.finished() {
			n++
		}
	}
	return n
}
