package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory[[]string](Config{})

	require.NoError(t, c.Set("posts", []string{"a", "b"}))

	got, err := c.Get("posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestMemory_Miss(t *testing.T) {
	c := NewMemory[int](Config{})

	_, err := c.Get("nope")
	assert.True(t, errors.Is(err, ErrMiss))
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory[int](Config{})
	require.NoError(t, c.Set("k", 1))

	require.NoError(t, c.Delete("k"))
	require.NoError(t, c.Delete("k"), "deleting a missing key is not an error")

	_, err := c.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, int64(1), c.Stats().Deletes)
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory[int](Config{TTL: time.Minute})
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", 42))

	now = now.Add(30 * time.Second)
	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	now = now.Add(time.Minute)
	_, err = c.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemory_EvictsWhenFull(t *testing.T) {
	c := NewMemory[int](Config{MaxSize: 2})

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	require.NoError(t, c.Set("c", 3))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	// Overwriting an existing key must not evict.
	require.NoError(t, c.Set("c", 4))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory[int](Config{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Set("k", i)
			_, _ = c.Get("k")
			_ = c.Delete("k")
		}(i)
	}
	wg.Wait()
}
