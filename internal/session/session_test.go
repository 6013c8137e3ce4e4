package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E1 6AN", 0))
	v, err := m.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Equal(t, "E1 6AN", v)

	// absent key reads empty
	v, err = m.Get(ctx, "s1", KeyLastSKU)
	require.NoError(t, err)
	assert.Empty(t, v)

	// no cross-session visibility
	v, err = m.Get(ctx, "s2", KeyPostcode)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMemoryStorePerKeyExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E1 6AN", time.Minute))
	require.NoError(t, m.Set(ctx, "s1", KeyLastIntent, "faq", time.Hour))

	now = now.Add(2 * time.Minute)

	v, err := m.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Empty(t, v, "expired key reads as absent")

	v, err = m.Get(ctx, "s1", KeyLastIntent)
	require.NoError(t, err)
	assert.Equal(t, "faq", v, "independent expiry per key")
}

func TestMemoryStoreOverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E1 6AN", time.Minute))
	now = now.Add(30 * time.Second)
	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E6 1AA", time.Minute))
	now = now.Add(45 * time.Second)

	v, err := m.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Equal(t, "E6 1AA", v)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E1 6AN", 0))
	require.NoError(t, m.Clear(ctx, "s1"))

	v, err := m.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "s1", KeyPostcode, "E1 6AN", 0))
	require.NoError(t, m.Set(ctx, "s1", KeyNearestBranchID, "br-central", 0))
	require.NoError(t, m.Set(ctx, "s1", KeyLastIntent, "check_delivery", 0))

	snap := Snapshot(ctx, m, "s1")
	assert.Equal(t, "E1 6AN", snap.Postcode)
	assert.Equal(t, "br-central", snap.NearestBranchID)
	assert.Equal(t, "check_delivery", snap.LastIntent)
	assert.Empty(t, snap.LastSKU)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreGetSet(t *testing.T) {
	ctx := context.Background()
	r, _ := newRedisStore(t)

	require.NoError(t, r.Set(ctx, "s1", KeyPostcode, "E1 6AN", time.Hour))
	v, err := r.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Equal(t, "E1 6AN", v)

	v, err = r.Get(ctx, "s1", "missing")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedisStore(t)

	require.NoError(t, r.Set(ctx, "s1", KeyPostcode, "E1 6AN", time.Minute))
	mr.FastForward(2 * time.Minute)

	v, err := r.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestRedisStoreClear(t *testing.T) {
	ctx := context.Background()
	r, _ := newRedisStore(t)

	require.NoError(t, r.Set(ctx, "s1", KeyPostcode, "E1 6AN", 0))
	require.NoError(t, r.Set(ctx, "s1", KeyLastSKU, "WINGS_1KG", 0))
	require.NoError(t, r.Set(ctx, "s2", KeyPostcode, "E6 1AA", 0))

	require.NoError(t, r.Clear(ctx, "s1"))

	v, err := r.Get(ctx, "s1", KeyPostcode)
	require.NoError(t, err)
	assert.Empty(t, v)

	// other sessions untouched
	v, err = r.Get(ctx, "s2", KeyPostcode)
	require.NoError(t, err)
	assert.Equal(t, "E6 1AA", v)
}
