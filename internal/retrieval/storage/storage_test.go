package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storeassist/internal/common/errors"
)

func writeTenantFile(t *testing.T, root, tenant, name, body string) {
	t.Helper()
	dir := filepath.Join(root, tenant)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestReadJSON(t *testing.T) {
	root := t.TempDir()
	writeTenantFile(t, root, "butchers", FileSynonyms, `{"wings": ["wing"]}`)
	st := New(root, "butchers")

	var out map[string][]string
	require.NoError(t, st.ReadJSON(FileSynonyms, &out))
	assert.Equal(t, []string{"wing"}, out["wings"])
}

func TestReadJSONMissingFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "butchers"), 0o755))
	st := New(root, "butchers")

	var out map[string]interface{}
	err := st.ReadJSON(FileSynonyms, &out)
	assert.True(t, os.IsNotExist(err))
}

func TestReadJSONSchemaViolation(t *testing.T) {
	root := t.TempDir()
	writeTenantFile(t, root, "butchers", FileFAQ, `[{"a": "answer without question"}]`)
	st := New(root, "butchers")

	var out []map[string]interface{}
	err := st.ReadJSON(FileFAQ, &out)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeSchemaInvalid, stdErr.Code)
}

func TestReadJSONMalformedJSON(t *testing.T) {
	root := t.TempDir()
	writeTenantFile(t, root, "butchers", FileSynonyms, `{not json`)
	st := New(root, "butchers")

	var out map[string]interface{}
	err := st.ReadJSON(FileSynonyms, &out)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeStoreLoadFailed, stdErr.Code)
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	writeTenantFile(t, root, "butchers", FileCatalog, `{"categories": []}`)
	st := New(root, "butchers")

	assert.True(t, st.Exists(FileCatalog))
	assert.False(t, st.Exists(FileFAQ))
}

func TestListTenants(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "butchers"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "grocer"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "versions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))

	tenants, err := ListTenants(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"butchers", "grocer"}, tenants)
}
