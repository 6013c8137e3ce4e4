package geo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeassist/internal/retrieval/storage"
)

const testBranches = `[
	{"id": "br-east", "name": "East Ham", "postcode": "E6 2JA", "lat": 51.532, "lon": 0.055},
	{"id": "br-central", "name": "Whitechapel", "postcode": "E1 6AN", "lat": 51.517, "lon": -0.059},
	{"id": "br-east2", "name": "Beckton", "postcode": "E6 5LH", "lat": 51.514, "lon": 0.061}
]`

const testDelivery = `{
	"areas": [
		{"postcode_prefix": "E6", "fee": 2.5},
		{"postcode_prefix": "E1", "fee": 3.5},
		{"postcode_prefix": "e6", "fee": 2.5}
	]
}`

func newTestStore(t *testing.T, branches, delivery string) *Store {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "butchers")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if branches != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, storage.FileBranches), []byte(branches), 0o644))
	}
	if delivery != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, storage.FileDelivery), []byte(delivery), 0o644))
	}
	st, err := New(storage.New(root, "butchers"))
	require.NoError(t, err)
	return st
}

func TestHaversineKm(t *testing.T) {
	// London to Paris, roughly 344 km
	d := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, d, 2)
	assert.Zero(t, HaversineKm(51.5, 0.1, 51.5, 0.1))
}

func TestNearestDeterministic(t *testing.T) {
	st := newTestStore(t, testBranches, "")

	first, ok := st.Nearest(51.516, -0.06)
	require.True(t, ok)
	assert.Equal(t, "br-central", first.ID)
	assert.Greater(t, first.DistanceKm, 0.0)
	assert.False(t, first.LowConfidence)

	for i := 0; i < 10; i++ {
		again, ok := st.Nearest(51.516, -0.06)
		require.True(t, ok)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestNearestForPostcodeWithGeocoder(t *testing.T) {
	st := newTestStore(t, testBranches, "")

	geocoder := GeocoderFunc(func(_ context.Context, pc string) (float64, float64, bool) {
		assert.Equal(t, "E16AN", pc)
		return 51.517, -0.059, true
	})

	got, ok := st.NearestForPostcode(context.Background(), "e1 6an", geocoder)
	require.True(t, ok)
	assert.Equal(t, "br-central", got.ID)
	assert.False(t, got.LowConfidence)
}

func TestNearestForPostcodePrefixFallback(t *testing.T) {
	st := newTestStore(t, testBranches, "")

	// two E6 branches: the smaller id wins
	got, ok := st.NearestForPostcode(context.Background(), "E6 9XX", nil)
	require.True(t, ok)
	assert.Equal(t, "br-east", got.ID)
	assert.False(t, got.LowConfidence)

	// failing geocoder degrades to the same prefix match
	failing := GeocoderFunc(func(context.Context, string) (float64, float64, bool) {
		return 0, 0, false
	})
	got, ok = st.NearestForPostcode(context.Background(), "E6 9XX", failing)
	require.True(t, ok)
	assert.Equal(t, "br-east", got.ID)
}

func TestNearestForPostcodeLowConfidenceFallback(t *testing.T) {
	st := newTestStore(t, testBranches, "")

	got, ok := st.NearestForPostcode(context.Background(), "N1 7AA", nil)
	require.True(t, ok)
	assert.Equal(t, "br-central", got.ID)
	assert.True(t, got.LowConfidence)
}

func TestNearestForPostcodeEmptyInputs(t *testing.T) {
	st := newTestStore(t, testBranches, "")
	_, ok := st.NearestForPostcode(context.Background(), "", nil)
	assert.False(t, ok)

	empty := newTestStore(t, "", "")
	_, ok = empty.NearestForPostcode(context.Background(), "E6 1AA", nil)
	assert.False(t, ok)
	_, ok = empty.Nearest(51.5, 0)
	assert.False(t, ok)
}

func TestCoveragePrefixes(t *testing.T) {
	st := newTestStore(t, "", testDelivery)
	assert.Equal(t, []string{"E1", "E6"}, st.CoveragePrefixes())
}
