package session

import (
	"crypto/sha256"
	"encoding/hex"
	"mpc-coordinator/internal/common"
	"sync"
	"time"
)

// HashMessage returns the lowercase hex SHA-256 of a raw message, the key a
// signing session is stored under.
func HashMessage(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Session is one signing protocol run for one message inside a group.
// Sessions have no terminal state; they stop being written to once the
// parties finish.
type Session struct {
	MessageHash string
	Initiator   string
	RawMessage  []byte
	CreatedAt   time.Time

	mu      sync.RWMutex
	parties []string
	buckets map[BucketName]*Bucket
}

func newSession(hash, initiator string, raw []byte) *Session {
	s := &Session{
		MessageHash: hash,
		Initiator:   initiator,
		RawMessage:  clone(raw),
		CreatedAt:   time.Now().UTC(),
		parties:     []string{},
		buckets:     make(map[BucketName]*Bucket, len(layout)),
	}
	for name, kind := range layout {
		s.buckets[name] = newBucket(name, kind)
	}
	return s
}

// Approve admits pubkey into the session's party list. Admitting a party that
// is already present is a no-op; the return value reports whether it was added.
func (s *Session) Approve(pubkey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.parties {
		if p == pubkey {
			return false
		}
	}
	s.parties = append(s.parties, pubkey)
	return true
}

// IsParty reports whether pubkey has been approved into the session.
func (s *Session) IsParty(pubkey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.parties {
		if p == pubkey {
			return true
		}
	}
	return false
}

// Parties returns the approved parties in join order.
func (s *Session) Parties() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.parties))
	copy(out, s.parties)
	return out
}

// PartyCount returns the number of approved parties.
func (s *Session) PartyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.parties)
}

// Bucket returns the named bucket.
func (s *Session) Bucket(name BucketName) (*Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, common.InvalidRequest("unknown bucket %q", name)
	}
	return b, nil
}
