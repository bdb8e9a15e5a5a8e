package blob

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("fp")
	assert.False(t, ok)

	c.Put("fp", []byte{0x01})
	got, ok := c.Get("fp")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01}, got)

	c.Put("fp", []byte{0x02, 0x03})
	got, ok = c.Get("fp")
	require.True(t, ok)
	assert.Equal(t, []byte{0x02, 0x03}, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEmptyArtifactIsPresent(t *testing.T) {
	c := NewCache()
	c.Put("empty", nil)

	got, ok := c.Get("empty")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCacheIsolatesCallerBuffers(t *testing.T) {
	c := NewCache()
	in := []byte("abc")
	c.Put("fp", in)
	in[0] = 'z'

	got, _ := c.Get("fp")
	assert.Equal(t, []byte("abc"), got)
	got[1] = 'z'

	again, _ := c.Get("fp")
	assert.Equal(t, []byte("abc"), again)
}

func TestCacheExportImport(t *testing.T) {
	c := NewCache()
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	other := NewCache()
	other.Put("stale", []byte("x"))
	other.Import(c.Export())

	_, ok := other.Get("stale")
	assert.False(t, ok)
	got, ok := other.Get("b")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), got)
}

func TestCacheConcurrentPut(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(fmt.Sprintf("fp-%d", i), []byte{byte(i)})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 32, c.Len())
}
