package synonyms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeassist/internal/retrieval/storage"
)

func newTestStore(t *testing.T, doc string) *Store {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "butchers")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, storage.FileSynonyms), []byte(doc), 0o644))
	}
	st, err := New(storage.New(root, "butchers"))
	require.NoError(t, err)
	return st
}

func TestCanonical(t *testing.T) {
	st := newTestStore(t, `{
		"wings": ["wing", "chicken wing", "hot wings"],
		"bbq": ["barbecue", "grill"]
	}`)

	tests := []struct {
		name string
		term string
		want string
	}{
		{name: "alias maps to canonical", term: "wing", want: "wings"},
		{name: "canonical maps to itself", term: "wings", want: "wings"},
		{name: "case and whitespace folded", term: "  Barbecue ", want: "bbq"},
		{name: "unknown term unchanged", term: "salmon", want: "salmon"},
		{name: "multi word alias", term: "chicken wing", want: "wings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.Canonical(tt.term))
		})
	}
}

func TestApply(t *testing.T) {
	st := newTestStore(t, `{"wings": ["wing"], "bbq": ["barbecue"]}`)

	got := st.Apply([]string{"Wing", "barbecue", "wings", "", "  ", "sausage"})
	assert.Equal(t, []string{"bbq", "sausage", "wings"}, got)
}

func TestMissingDocumentYieldsEmptyMapping(t *testing.T) {
	st := newTestStore(t, "")
	assert.Equal(t, "anything", st.Canonical("anything"))
	assert.Empty(t, st.Forward())
}

func TestScalarAliasAccepted(t *testing.T) {
	st := newTestStore(t, `{"mince": "ground beef"}`)
	assert.Equal(t, "mince", st.Canonical("ground beef"))
}

func TestMergeSuggestions(t *testing.T) {
	st := newTestStore(t, `{"wings": ["wing"]}`)

	merged := st.MergeSuggestions(map[string][]string{
		"wings": {"flapper", "WING"},
		"ribs":  {"rib rack"},
	})

	assert.Equal(t, []string{"flapper", "wing"}, merged["wings"])
	assert.Equal(t, "wings", st.Canonical("flapper"))
	assert.Equal(t, "ribs", st.Canonical("rib rack"))

	// merging again with the same input changes nothing
	again := st.MergeSuggestions(map[string][]string{"wings": {"flapper"}})
	assert.Equal(t, merged, again)
}

func TestForwardReturnsCopy(t *testing.T) {
	st := newTestStore(t, `{"wings": ["wing"]}`)
	fwd := st.Forward()
	fwd["wings"][0] = "mutated"
	assert.Equal(t, "wings", st.Canonical("wing"))
}
