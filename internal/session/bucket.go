package session

import (
	"mpc-coordinator/internal/common"
	"sort"
	"sync"
)

// BucketName identifies one round of data exchanged within a session.
type BucketName string

const (
	ShareData        BucketName = "shareData"
	PublicCommitment BucketName = "publicCommitment"
	KeyInfo          BucketName = "keyInfo"
	SignatureShare   BucketName = "signatureShare"
	MtaRequest       BucketName = "mtaRequest"
	MtaResponse      BucketName = "mtaResponse"
)

// BucketKind tells how a bucket stores contributions.
type BucketKind int

const (
	// Keyed buckets hold at most one payload per party; republishing overwrites.
	Keyed BucketKind = iota
	// List buckets are append-only and may hold many payloads per party.
	List
)

func (k BucketKind) String() string {
	switch k {
	case Keyed:
		return "keyed"
	case List:
		return "list"
	}
	return "unknown"
}

// layout is the fixed set of buckets every session is created with.
var layout = map[BucketName]BucketKind{
	ShareData:        Keyed,
	PublicCommitment: Keyed,
	KeyInfo:          Keyed,
	SignatureShare:   Keyed,
	MtaRequest:       List,
	MtaResponse:      List,
}

// KindOf reports the kind of a named bucket and whether the name is known.
func KindOf(name BucketName) (BucketKind, bool) {
	kind, ok := layout[name]
	return kind, ok
}

// BucketNames lists every bucket a session carries, sorted.
func BucketNames() []BucketName {
	names := make([]BucketName, 0, len(layout))
	for name := range layout {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Contribution is one entry of a list bucket. Recipient is the addressing
// field barrier reads filter on.
type Contribution struct {
	Sender    string `msgpack:"sender"`
	Recipient string `msgpack:"recipient"`
	Payload   []byte `msgpack:"payload"`
}

// Bucket holds one round of data. Exactly one of keyed or entries is used,
// according to Kind.
type Bucket struct {
	Name BucketName
	Kind BucketKind

	mu      sync.Mutex
	keyed   map[string][]byte
	entries []Contribution
}

func newBucket(name BucketName, kind BucketKind) *Bucket {
	b := &Bucket{Name: name, Kind: kind}
	if kind == Keyed {
		b.keyed = make(map[string][]byte)
	}
	return b
}

// Put stores sender's payload in a keyed bucket, replacing an earlier one.
func (b *Bucket) Put(sender string, payload []byte) error {
	if b.Kind != Keyed {
		return common.InvalidRequest("bucket %s is a %s bucket", b.Name, b.Kind)
	}
	b.mu.Lock()
	b.keyed[sender] = clone(payload)
	b.mu.Unlock()
	return nil
}

// Get returns sender's payload from a keyed bucket.
func (b *Bucket) Get(sender string) ([]byte, error) {
	if b.Kind != Keyed {
		return nil, common.InvalidRequest("bucket %s is a %s bucket", b.Name, b.Kind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	payload, ok := b.keyed[sender]
	if !ok {
		return nil, common.NotFound("no %s from %s", b.Name, sender)
	}
	return clone(payload), nil
}

// Append adds c to a list bucket. Concurrent appends are never lost.
func (b *Bucket) Append(c Contribution) error {
	if b.Kind != List {
		return common.InvalidRequest("bucket %s is a %s bucket", b.Name, b.Kind)
	}
	c.Payload = clone(c.Payload)
	b.mu.Lock()
	b.entries = append(b.entries, c)
	b.mu.Unlock()
	return nil
}

// Collect returns, in arrival order, the payloads of a list bucket addressed
// to filterKey, but only once there are at least minCount of them. An empty
// filterKey matches every entry. Counting and copying happen under a single
// lock acquisition so the result never reflects a partial append.
func (b *Bucket) Collect(filterKey string, minCount int) ([][]byte, error) {
	if b.Kind != List {
		return nil, common.InvalidRequest("bucket %s is a %s bucket", b.Name, b.Kind)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched [][]byte
	for _, c := range b.entries {
		if filterKey == "" || c.Recipient == filterKey {
			matched = append(matched, clone(c.Payload))
		}
	}
	if len(matched) < minCount {
		return nil, common.NotReady("%s has %d of %d contributions for %q", b.Name, len(matched), minCount, filterKey)
	}
	if matched == nil {
		matched = [][]byte{}
	}
	return matched, nil
}

// Len reports how many payloads the bucket holds.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Kind == Keyed {
		return len(b.keyed)
	}
	return len(b.entries)
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
