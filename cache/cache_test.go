package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ObjectCache {
	t.Helper()
	c := New(time.Minute, 0) // no sweep; tests drive eviction explicitly
	t.Cleanup(c.Close)
	return c
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", time.Minute)

	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestGetRespectsTTL(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", 50*time.Millisecond)

	// Fresh well inside the TTL
	time.Sleep(20 * time.Millisecond)
	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	// Absent past it
	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestGetEvictsStaleEntry(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", 10*time.Millisecond)
	assert.Equal(t, 1, c.Stats().Size)

	time.Sleep(30 * time.Millisecond)

	// Stats counts without pruning, so the stale entry is still there
	// until a Get touches it.
	assert.Equal(t, 1, c.Stats().Size)

	_, ok := c.Get("key")
	require.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestSetOverwritesAndResetsExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "old", 30*time.Millisecond)
	c.Set("key", "new", time.Minute)

	time.Sleep(50 * time.Millisecond)

	// The rewrite reset the expiry; the original TTL no longer applies.
	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestZeroTTLUsesDefault(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()

	c.Set("key", "value", 0)

	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", time.Minute)
	c.Remove("key")
	c.Remove("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	require.Equal(t, 2, c.Stats().Size)

	c.Clear()

	assert.Equal(t, 0, c.Stats().Size)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestRemoveExpired(t *testing.T) {
	c := newTestCache(t)

	c.Set("stale", "x", 10*time.Millisecond)
	c.Set("fresh", "y", time.Minute)

	time.Sleep(30 * time.Millisecond)
	c.RemoveExpired()

	assert.Equal(t, 1, c.Stats().Size)
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestBackgroundSweep(t *testing.T) {
	c := New(time.Minute, 20*time.Millisecond)
	defer c.Close()

	c.Set("stale", "x", 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Stats().Size == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStatsEstimatedBytes(t *testing.T) {
	c := newTestCache(t)

	stats := c.Stats()
	assert.Equal(t, "0 B", stats.EstimatedBytes)

	c.Set("key", "value", time.Minute)
	stats = c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.NotEqual(t, "0 B", stats.EstimatedBytes)
}

func TestGetAs(t *testing.T) {
	c := newTestCache(t)

	c.Set("perms", []string{"a", "b"}, time.Minute)

	perms, ok := GetAs[[]string](c, "perms")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, perms)

	// Wrong dynamic type reads as a miss.
	_, ok = GetAs[int](c, "perms")
	assert.False(t, ok)

	_, ok = GetAs[[]string](c, "missing")
	assert.False(t, ok)
}

func TestCloseStopsSweepButKeepsCacheUsable(t *testing.T) {
	c := New(time.Minute, 10*time.Millisecond)
	c.Close()
	c.Close() // double Close is safe

	c.Set("key", "value", time.Minute)
	_, ok := c.Get("key")
	assert.True(t, ok)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(3*1024*1024/2))
}
