package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeassist/internal/retrieval/storage"
)

const testCatalog = `{
	"version": 3,
	"categories": [
		{
			"id": "chicken",
			"name": "Chicken",
			"items": [
				{"sku": "WINGS_1KG", "name": "Chicken Wings 1kg", "price": 7.99, "unit": "kg", "tags": ["wings", "bbq"], "in_stock": true},
				{"sku": "WINGS_2KG", "name": "Chicken Wings 2kg", "price": 13.99, "unit": "kg", "tags": ["wings", "bbq"], "in_stock": false},
				{"sku": "BREAST_500G", "name": "Chicken Breast 500g", "price": 4.50, "tags": ["breast", "lean"]}
			]
		},
		{
			"id": "beef",
			"name": "Beef",
			"items": [
				{"sku": "MINCE_1KG", "name": "Beef Mince 1kg", "price": 6.25, "tags": ["mince", "bbq"], "in_stock": true}
			]
		}
	]
}`

func newTestStore(t *testing.T, doc string) *Store {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "butchers")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, storage.FileCatalog), []byte(doc), 0o644))
	}
	st, err := New(storage.New(root, "butchers"))
	require.NoError(t, err)
	return st
}

func TestLookups(t *testing.T) {
	st := newTestStore(t, testCatalog)

	assert.Equal(t, 3, st.Version())
	assert.Equal(t, 4, st.CountItems())

	item, ok := st.GetBySKU("WINGS_1KG")
	require.True(t, ok)
	assert.Equal(t, "Chicken Wings 1kg", item.Name)
	assert.Equal(t, "chicken", item.CategoryID)
	assert.Equal(t, "Chicken", item.CategoryName)

	price, ok := st.PriceOf("MINCE_1KG")
	require.True(t, ok)
	assert.Equal(t, 6.25, price)

	_, ok = st.PriceOf("NOPE_123")
	assert.False(t, ok)

	inStock, ok := st.InStock("WINGS_2KG")
	require.True(t, ok)
	assert.False(t, inStock)

	// in_stock omitted defaults to available
	inStock, ok = st.InStock("BREAST_500G")
	require.True(t, ok)
	assert.True(t, inStock)
}

func TestSearchByTags(t *testing.T) {
	st := newTestStore(t, testCatalog)

	got := st.Search("", []string{"bbq"}, 10)
	require.Len(t, got, 3)
	// in-stock items outrank the out-of-stock one
	assert.Equal(t, "WINGS_2KG", got[2].SKU)
}

func TestSearchTextMatchesNameThenTags(t *testing.T) {
	st := newTestStore(t, testCatalog)

	got := st.Search("chicken wings", nil, 10)
	require.Len(t, got, 2)
	// prefix match plus stock bonus wins
	assert.Equal(t, "WINGS_1KG", got[0].SKU)

	// "lean" only appears as a tag, so the fallback path finds it
	got = st.Search("lean", nil, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "BREAST_500G", got[0].SKU)
}

func TestSearchTextAndTagsEnforcesBoth(t *testing.T) {
	st := newTestStore(t, testCatalog)

	got := st.Search("mince", []string{"bbq"}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "MINCE_1KG", got[0].SKU)
}

func TestSearchLimitClamped(t *testing.T) {
	st := newTestStore(t, testCatalog)

	assert.Len(t, st.Search("", nil, 0), 1)
	assert.Len(t, st.Search("", nil, -5), 1)
	assert.Len(t, st.Search("", nil, 100), 4)
}

func TestShortlistByCategory(t *testing.T) {
	st := newTestStore(t, testCatalog)

	got := st.ShortlistByCategory("chicken", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "BREAST_500G", got[0].SKU)
	assert.Equal(t, "WINGS_1KG", got[1].SKU)

	assert.Empty(t, st.ShortlistByCategory("fish", 2))
}

func TestRelatedByTags(t *testing.T) {
	st := newTestStore(t, testCatalog)

	got := st.RelatedByTags("WINGS_1KG", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "MINCE_1KG", got[0].SKU)
	assert.Equal(t, "WINGS_2KG", got[1].SKU)

	assert.Empty(t, st.RelatedByTags("NOPE_123", 2))
}

func TestMissingCatalogYieldsEmptyStore(t *testing.T) {
	st := newTestStore(t, "")
	assert.Equal(t, 1, st.Version())
	assert.Zero(t, st.CountItems())
	assert.Empty(t, st.Search("wings", nil, 5))
}

func TestSchemaRejectsBadCatalog(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "butchers")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	bad := `{"categories": [{"id": "x", "items": [{"name": "no sku", "price": 1}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.FileCatalog), []byte(bad), 0o644))

	_, err := New(storage.New(root, "butchers"))
	assert.Error(t, err)
}

func TestReloadSwapsSnapshot(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "butchers")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, storage.FileCatalog)
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	st, err := New(storage.New(root, "butchers"))
	require.NoError(t, err)
	require.Equal(t, 4, st.CountItems())

	updated := `{"version": 4, "categories": [{"id": "beef", "items": [{"sku": "MINCE_1KG", "name": "Beef Mince 1kg", "price": 6.75}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, st.Reload())

	assert.Equal(t, 4, st.Version())
	assert.Equal(t, 1, st.CountItems())
	price, ok := st.PriceOf("MINCE_1KG")
	require.True(t, ok)
	assert.Equal(t, 6.75, price)
}
