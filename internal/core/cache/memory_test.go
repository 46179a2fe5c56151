package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	m.Set(ctx, "key", "value", time.Minute)
	got, ok := m.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	m.Set(ctx, "key", "value", -time.Second)
	_, ok := m.Get(ctx, "key")
	assert.False(t, ok)
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	m.Set(ctx, "key", "value", time.Minute)
	m.Get(ctx, "key")
	m.Get(ctx, "missing")

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestGetJSONUnparseableTreatedAsMiss(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	m.Set(ctx, "key", "not json", time.Minute)
	var out []string
	assert.False(t, GetJSON(ctx, m, "key", &out))
}

func TestGetJSONUnparseableWithStringTargetReturnsRaw(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	m.Set(ctx, "key", "plain text response", time.Minute)
	var out string
	require.True(t, GetJSON(ctx, m, "key", &out))
	assert.Equal(t, "plain text response", out)
}

func TestSetJSONRoundTrip(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	SetJSON(ctx, m, "key", []string{"a", "b"}, time.Minute)
	var out []string
	require.True(t, GetJSON(ctx, m, "key", &out))
	assert.Equal(t, []string{"a", "b"}, out)
}
