package session

import (
	"mpc-coordinator/internal/common"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashMessage(t *testing.T) {
	// sha256 of the four bytes de ad be ef
	assert.Equal(t,
		"5f78c33274e43fa9de5659265c1d917e25c03722dcb0b8d27db8d5feaa813953",
		HashMessage([]byte{0xde, 0xad, 0xbe, 0xef}))
}

func TestGetOrCreateKeepsExisting(t *testing.T) {
	m := NewStore()
	s1, created := m.GetOrCreate("h", "A", []byte("msg"))
	assert.True(t, created)
	s1.Approve("A")

	s2, created := m.GetOrCreate("h", "B", []byte("msg"))
	assert.False(t, created)
	assert.Same(t, s1, s2)
	assert.Equal(t, "A", s2.Initiator)
	assert.Equal(t, []string{"A"}, s2.Parties())
}

func TestResetDiscardsState(t *testing.T) {
	m := NewStore()
	s, _ := m.GetOrCreate("h", "A", []byte("msg"))
	s.Approve("A")
	b, _ := s.Bucket(ShareData)
	require.NoError(t, b.Put("A", []byte("x")))

	fresh := m.Reset("h", "B", []byte("msg"))
	assert.Equal(t, "B", fresh.Initiator)
	assert.Empty(t, fresh.Parties())

	got, err := m.Get("h")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	nb, _ := got.Bucket(ShareData)
	assert.Equal(t, 0, nb.Len())
}

func TestGetMissingSession(t *testing.T) {
	_, err := NewStore().Get("nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestApproveIsIdempotent(t *testing.T) {
	m := NewStore()
	s, _ := m.GetOrCreate("h", "A", nil)

	assert.True(t, s.Approve("B"))
	assert.False(t, s.Approve("B"))
	assert.True(t, s.Approve("C"))
	assert.Equal(t, []string{"B", "C"}, s.Parties())
	assert.True(t, s.IsParty("C"))
	assert.False(t, s.IsParty("D"))
}

func TestConcurrentApproveSingleInsert(t *testing.T) {
	s := newSession("h", "A", nil)
	var wg sync.WaitGroup
	added := make(chan bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added <- s.Approve("P")
		}()
	}
	wg.Wait()
	close(added)

	wins := 0
	for a := range added {
		if a {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, []string{"P"}, s.Parties())
}

func TestUnknownBucket(t *testing.T) {
	s := newSession("h", "A", nil)
	_, err := s.Bucket("round9")
	assert.True(t, errors.Is(err, common.ErrBadRequest))
}

func TestListSorted(t *testing.T) {
	m := NewStore()
	b, _ := m.GetOrCreate("bb", "A", nil)
	b.Approve("A")
	b.Approve("B")
	m.GetOrCreate("aa", "A", nil)

	assert.Equal(t, []Summary{
		{MessageHash: "aa", PartyCount: 0},
		{MessageHash: "bb", PartyCount: 2},
	}, m.List())
	assert.Equal(t, 2, m.Len())
}

func TestExportImportRoundTrip(t *testing.T) {
	m := NewStore()
	s, _ := m.GetOrCreate("h", "A", []byte("raw"))
	s.Approve("A")
	s.Approve("B")
	kb, _ := s.Bucket(PublicCommitment)
	require.NoError(t, kb.Put("B", []byte("commit")))
	lb, _ := s.Bucket(MtaResponse)
	require.NoError(t, lb.Append(Contribution{Sender: "A", Recipient: "B", Payload: []byte("r1")}))

	restored := Restore(m.Export())
	rs, err := restored.Get("h")
	require.NoError(t, err)
	assert.Equal(t, "A", rs.Initiator)
	assert.Equal(t, []byte("raw"), rs.RawMessage)
	assert.Equal(t, s.CreatedAt, rs.CreatedAt)
	assert.Equal(t, []string{"A", "B"}, rs.Parties())

	rkb, _ := rs.Bucket(PublicCommitment)
	got, err := rkb.Get("B")
	require.NoError(t, err)
	assert.Equal(t, []byte("commit"), got)

	rlb, _ := rs.Bucket(MtaResponse)
	list, err := rlb.Collect("B", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("r1")}, list)
}
