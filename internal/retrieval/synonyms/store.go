// Package synonyms maps free-form customer vocabulary onto the canonical
// tags the catalog is indexed by.
package synonyms

import (
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"storeassist/internal/retrieval/storage"
)

type snapshot struct {
	forward map[string][]string // canonical -> sorted aliases
	reverse map[string]string   // alias and canonical -> canonical
}

// Store holds the tenant's synonym mapping. Reload swaps the whole
// snapshot atomically so readers never observe a half-built index.
type Store struct {
	storage *storage.Storage
	snap    atomic.Pointer[snapshot]
}

func New(st *storage.Storage) (*Store, error) {
	s := &Store{storage: st}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads synonyms.json. A missing file yields an empty mapping.
func (s *Store) Reload() error {
	var raw map[string]interface{}
	if err := s.storage.ReadJSON(storage.FileSynonyms, &raw); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		raw = map[string]interface{}{}
	}

	forward := make(map[string][]string, len(raw))
	for canon, val := range raw {
		c := norm(canon)
		if c == "" {
			continue
		}
		switch alts := val.(type) {
		case []interface{}:
			set := map[string]struct{}{}
			for _, a := range alts {
				str, _ := a.(string)
				if n := norm(str); n != "" {
					set[n] = struct{}{}
				}
			}
			forward[c] = sortedKeys(set)
		case string:
			if n := norm(alts); n != "" {
				forward[c] = []string{n}
			}
		}
	}

	s.snap.Store(buildSnapshot(forward))
	return nil
}

func buildSnapshot(forward map[string][]string) *snapshot {
	reverse := make(map[string]string, len(forward)*2)
	for canon, alts := range forward {
		reverse[canon] = canon
		for _, a := range alts {
			reverse[a] = canon
		}
	}
	return &snapshot{forward: forward, reverse: reverse}
}

// Canonical returns the canonical tag for a term. Unknown terms come back
// unchanged (normalized), so lookups stay total.
func (s *Store) Canonical(term string) string {
	t := norm(term)
	if c, ok := s.snap.Load().reverse[t]; ok {
		return c
	}
	return t
}

// Apply canonicalizes a tag list, dropping empties and duplicates. The
// result is sorted so equal inputs always produce equal outputs.
func (s *Store) Apply(tags []string) []string {
	set := map[string]struct{}{}
	for _, t := range tags {
		if norm(t) == "" {
			continue
		}
		set[s.Canonical(t)] = struct{}{}
	}
	return sortedKeys(set)
}

// Forward returns a copy of the canonical to aliases mapping.
func (s *Store) Forward() map[string][]string {
	snap := s.snap.Load()
	out := make(map[string][]string, len(snap.forward))
	for k, v := range snap.forward {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// MergeSuggestions folds suggested aliases into the in-memory mapping
// without touching disk. The merge is additive and idempotent.
func (s *Store) MergeSuggestions(suggestions map[string][]string) map[string][]string {
	merged := s.Forward()
	for canon, alts := range suggestions {
		c := norm(canon)
		if c == "" {
			continue
		}
		set := map[string]struct{}{}
		for _, a := range merged[c] {
			set[a] = struct{}{}
		}
		for _, a := range alts {
			if n := norm(a); n != "" {
				set[n] = struct{}{}
			}
		}
		merged[c] = sortedKeys(set)
	}
	s.snap.Store(buildSnapshot(merged))
	return s.Forward()
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
