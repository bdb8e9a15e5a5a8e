package session

import "time"

// Record is the persisted form of a session.
type Record struct {
	MessageHash string                           `msgpack:"messageHash"`
	Initiator   string                           `msgpack:"initiator"`
	RawMessage  []byte                           `msgpack:"rawMessage"`
	CreatedAt   time.Time                        `msgpack:"createdAt"`
	Parties     []string                         `msgpack:"parties"`
	Keyed       map[BucketName]map[string][]byte `msgpack:"keyed"`
	Lists       map[BucketName][]Contribution    `msgpack:"lists"`
}

// Record captures the session's current state.
func (s *Session) Record() Record {
	r := Record{
		MessageHash: s.MessageHash,
		Initiator:   s.Initiator,
		RawMessage:  clone(s.RawMessage),
		CreatedAt:   s.CreatedAt,
		Parties:     s.Parties(),
		Keyed:       make(map[BucketName]map[string][]byte),
		Lists:       make(map[BucketName][]Contribution),
	}
	for name, b := range s.buckets {
		b.mu.Lock()
		switch b.Kind {
		case Keyed:
			m := make(map[string][]byte, len(b.keyed))
			for party, payload := range b.keyed {
				m[party] = clone(payload)
			}
			r.Keyed[name] = m
		case List:
			l := make([]Contribution, len(b.entries))
			for i, c := range b.entries {
				l[i] = Contribution{Sender: c.Sender, Recipient: c.Recipient, Payload: clone(c.Payload)}
			}
			r.Lists[name] = l
		}
		b.mu.Unlock()
	}
	return r
}

// fromRecord rebuilds a session. Buckets missing from the record start empty
// and bucket names no longer in the layout are dropped.
func fromRecord(r Record) *Session {
	s := newSession(r.MessageHash, r.Initiator, r.RawMessage)
	if !r.CreatedAt.IsZero() {
		s.CreatedAt = r.CreatedAt
	}
	for _, p := range r.Parties {
		s.Approve(p)
	}
	for name, entries := range r.Keyed {
		if b, ok := s.buckets[name]; ok && b.Kind == Keyed {
			for party, payload := range entries {
				b.keyed[party] = clone(payload)
			}
		}
	}
	for name, entries := range r.Lists {
		if b, ok := s.buckets[name]; ok && b.Kind == List {
			for _, c := range entries {
				b.entries = append(b.entries, Contribution{Sender: c.Sender, Recipient: c.Recipient, Payload: clone(c.Payload)})
			}
		}
	}
	return s
}

// Export captures every session of the store, keyed by message hash.
func (m *Store) Export() map[string]Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Record, len(m.sessions))
	for hash, s := range m.sessions {
		out[hash] = s.Record()
	}
	return out
}

// Import replaces the store's sessions with records.
func (m *Store) Import(records map[string]Record) {
	fresh := make(map[string]*Session, len(records))
	for hash, r := range records {
		if r.MessageHash == "" {
			r.MessageHash = hash
		}
		fresh[hash] = fromRecord(r)
	}
	m.mu.Lock()
	m.sessions = fresh
	m.mu.Unlock()
}

// Restore builds a store from records.
func Restore(records map[string]Record) *Store {
	m := NewStore()
	m.Import(records)
	return m
}
