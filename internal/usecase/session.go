package usecase

import (
	"sync"

	"cafe-agent/internal/domain"
)

// Session is the per-identifier conversational state: the working cart, the
// conversation log and whether the last order was completed. A session is
// created lazily on first use and lives for the process lifetime unless
// explicitly evicted.
type Session struct {
	ID        string
	Cart      []domain.CartLine
	Log       []string
	Completed bool

	mu sync.Mutex
}

// SessionStore owns the process-wide session map. Mutations run under a
// per-session lock so concurrent utterances for the same session cannot
// interleave merges, while different sessions proceed fully in parallel.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) get(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &Session{ID: id}
	s.sessions[id] = sess
	return sess
}

// Do runs fn with exclusive access to the session for id, creating the
// session if it does not exist yet.
func (s *SessionStore) Do(id string, fn func(*Session) error) error {
	sess := s.get(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// Evict drops a session. The engine never calls this itself; it is the
// hook for an external expiry policy.
func (s *SessionStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// snapshotCart copies the cart so callers outside the session lock never
// alias the live slice.
func snapshotCart(cart []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(cart))
	copy(out, cart)
	return out
}
