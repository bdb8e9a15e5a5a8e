package session

import (
	"fmt"
	"mpc-coordinator/internal/common"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedBucketOverwrite(t *testing.T) {
	b := newBucket(ShareData, Keyed)

	_, err := b.Get("B")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, b.Put("B", []byte("first")))
	require.NoError(t, b.Put("B", []byte("second")))

	got, err := b.Get("B")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, 1, b.Len())
}

func TestBucketKindMismatch(t *testing.T) {
	keyed := newBucket(KeyInfo, Keyed)
	list := newBucket(MtaRequest, List)

	assert.True(t, errors.Is(keyed.Append(Contribution{Sender: "A"}), common.ErrBadRequest))
	_, err := keyed.Collect("", 0)
	assert.True(t, errors.Is(err, common.ErrBadRequest))
	assert.True(t, errors.Is(list.Put("A", nil), common.ErrBadRequest))
	_, err = list.Get("A")
	assert.True(t, errors.Is(err, common.ErrBadRequest))
}

func TestCollectBarrier(t *testing.T) {
	b := newBucket(MtaRequest, List)

	add := func(recipient, payload string) {
		require.NoError(t, b.Append(Contribution{Sender: "s", Recipient: recipient, Payload: []byte(payload)}))
	}

	add("C", "m1")
	add("X", "noise-1")
	add("C", "m2")

	_, err := b.Collect("C", 3)
	assert.True(t, errors.Is(err, common.ErrNotReady))

	add("X", "noise-2")
	add("C", "m3")

	got, err := b.Collect("C", 3)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("m1"), []byte("m2"), []byte("m3")}, got)
}

func TestCollectEmptyFilterMatchesAll(t *testing.T) {
	b := newBucket(MtaResponse, List)
	require.NoError(t, b.Append(Contribution{Recipient: "A", Payload: []byte("1")}))
	require.NoError(t, b.Append(Contribution{Recipient: "B", Payload: []byte("2")}))

	got, err := b.Collect("", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = b.Collect("nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	b := newBucket(MtaRequest, List)
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = b.Append(Contribution{
					Sender:    fmt.Sprintf("p%d", w),
					Recipient: "R",
					Payload:   []byte{byte(i)},
				})
			}
		}(w)
	}
	wg.Wait()

	got, err := b.Collect("R", writers*perWriter)
	require.NoError(t, err)
	assert.Len(t, got, writers*perWriter)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(ShareData)
	assert.True(t, ok)
	assert.Equal(t, Keyed, kind)

	kind, ok = KindOf(MtaResponse)
	assert.True(t, ok)
	assert.Equal(t, List, kind)

	_, ok = KindOf("bogus")
	assert.False(t, ok)
	assert.Len(t, BucketNames(), 6)
}
