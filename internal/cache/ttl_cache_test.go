package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiresEntries(t *testing.T) {
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	c := NewTTLCacheWithClock[string, int](func() time.Time { return now })

	c.Set("approved", 2, time.Minute)
	got, ok := c.Get("approved")
	require.True(t, ok)
	assert.Equal(t, 2, got)

	now = now.Add(time.Minute)
	_, ok = c.Get("approved")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheZeroTTLKeepsEntry(t *testing.T) {
	now := time.Now()
	c := NewTTLCacheWithClock[string, string](func() time.Time { return now })
	c.Set("k", "v", 0)

	now = now.Add(24 * time.Hour)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	c.Purge()
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestNilAndNoopCache(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)

	var noop Cache[string, int] = NoopCache[string, int]{}
	noop.Set("a", 1, time.Second)
	_, ok = noop.Get("a")
	assert.False(t, ok)
}
