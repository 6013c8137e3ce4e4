// Package faq matches free-text questions against curated answers and
// fills answer placeholders from turn-scoped facts.
package faq

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"storeassist/internal/models"
	"storeassist/internal/retrieval/storage"
)

// DefaultMinSimilarity is the floor below which a match is discarded.
const DefaultMinSimilarity = 0.18

// tagBoost is added when a hint tag intersects the entry's tag set.
const tagBoost = 0.05

var (
	wordRe        = regexp.MustCompile(`[A-Za-z0-9']+`)
	wsRe          = regexp.MustCompile(`\s+`)
	placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)
)

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(wsRe.ReplaceAllString(s, " ")))
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(s string) []string {
	matches := wordRe.FindAllString(s, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = strings.ToLower(m)
	}
	return out
}

// Jaccard computes set similarity between two token lists.
func Jaccard(a, b []string) float64 {
	sa := map[string]struct{}{}
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := map[string]struct{}{}
	for _, t := range b {
		sb[t] = struct{}{}
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

type snapshot struct {
	entries []models.FAQEntry
}

// Store holds the tenant FAQ with precomputed question tokens.
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

// Reload re-reads faq.json and precomputes tokens. A missing file yields
// an empty FAQ.
func (s *Store) Reload() error {
	var entries []models.FAQEntry
	if err := s.storage.ReadJSON(storage.FileFAQ, &entries); err != nil && !os.IsNotExist(err) {
		return err
	}

	for i := range entries {
		e := &entries[i]
		e.NormQuestion = norm(e.Question)
		e.QTokens = Tokenize(e.Question)
		e.NormTags = make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			e.NormTags = append(e.NormTags, norm(t))
		}
	}

	s.snap.Store(&snapshot{entries: entries})
	return nil
}

func (s *Store) All() []models.FAQEntry {
	return s.snap.Load().entries
}

// BestMatch returns up to topK entries scored by token Jaccard similarity
// against the user question, with a small boost when a hint tag
// intersects the entry's tags. Entries below minSim are dropped; pass a
// non-positive minSim to use the default.
func (s *Store) BestMatch(question string, hintTags []string, minSim float64, topK int) []models.FAQEntry {
	if minSim <= 0 {
		minSim = DefaultMinSimilarity
	}
	if topK < 1 {
		topK = 1
	}

	qTokens := Tokenize(question)
	hints := map[string]struct{}{}
	for _, t := range hintTags {
		if n := norm(t); n != "" {
			hints[n] = struct{}{}
		}
	}

	type scored struct {
		sim   float64
		entry models.FAQEntry
	}
	var results []scored
	for _, e := range s.snap.Load().entries {
		sim := Jaccard(qTokens, e.QTokens)
		if len(hints) > 0 {
			for _, t := range e.NormTags {
				if _, ok := hints[t]; ok {
					sim += tagBoost
					break
				}
			}
		}
		if sim >= minSim {
			results = append(results, scored{sim: sim, entry: e})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].sim > results[j].sim
	})
	if len(results) > topK {
		results = results[:topK]
	}
	out := make([]models.FAQEntry, len(results))
	for i, r := range results {
		out[i] = r.entry
	}
	return out
}

// RenderAnswer interpolates {placeholder} tokens in the answer template.
// Unknown placeholders stay verbatim rather than being blanked out.
func RenderAnswer(entry models.FAQEntry, placeholders map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(entry.Answer, func(m string) string {
		key := strings.TrimSpace(m[1 : len(m)-1])
		if v, ok := placeholders[key]; ok {
			return v
		}
		return m
	})
}
