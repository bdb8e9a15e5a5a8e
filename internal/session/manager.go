package session

import (
	"mpc-coordinator/internal/common"
	"sort"
	"sync"
)

// Summary is the listing view of a session.
type Summary struct {
	MessageHash string `json:"messageHash"`
	PartyCount  int    `json:"partyCount"`
}

// Store holds the signing sessions of one group, keyed by message hash.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for hash, creating it when absent. The
// boolean reports whether this call created it.
func (m *Store) GetOrCreate(hash, initiator string, raw []byte) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.sessions[hash]; exists {
		return s, false
	}
	s := newSession(hash, initiator, raw)
	m.sessions[hash] = s
	return s, true
}

// Reset replaces any session for hash with a fresh one: no parties and empty
// buckets. Round data held by the previous session is discarded.
func (m *Store) Reset(hash, initiator string, raw []byte) *Session {
	s := newSession(hash, initiator, raw)
	m.mu.Lock()
	m.sessions[hash] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by its message hash.
func (m *Store) Get(hash string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[hash]
	if !exists {
		return nil, common.NotFound("session %s", hash)
	}
	return s, nil
}

// List summarizes every session, ordered by message hash.
func (m *Store) List() []Summary {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(all))
	for _, s := range all {
		out = append(out, Summary{MessageHash: s.MessageHash, PartyCount: s.PartyCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MessageHash < out[j].MessageHash })
	return out
}

// Len reports the number of sessions held.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
