// Package catalog serves read-only product lookups and ranked search over
// the tenant's catalog document.
package catalog

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"storeassist/internal/models"
	"storeassist/internal/retrieval/storage"
)

var wsRe = regexp.MustCompile(`\s+`)

func normText(s string) string {
	return strings.ToLower(strings.TrimSpace(wsRe.ReplaceAllString(s, " ")))
}

type snapshot struct {
	doc      models.CatalogDocument
	bySKU    map[string]*models.CatalogItem
	byTag    map[string][]*models.CatalogItem
	byCat    map[string]*models.Category
	skuOrder []string // insertion order, for deterministic unfiltered listings
}

// Store indexes the catalog by SKU, tag and category. Reload swaps the
// whole snapshot atomically.
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

// Reload re-reads catalog.json and rebuilds the indices. A missing file
// yields an empty catalog.
func (s *Store) Reload() error {
	var doc models.CatalogDocument
	if err := s.storage.ReadJSON(storage.FileCatalog, &doc); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		doc = models.CatalogDocument{Version: 1}
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	snap := &snapshot{
		doc:   doc,
		bySKU: map[string]*models.CatalogItem{},
		byTag: map[string][]*models.CatalogItem{},
		byCat: map[string]*models.Category{},
	}

	for ci := range doc.Categories {
		cat := &doc.Categories[ci]
		cid := strings.TrimSpace(cat.ID)
		if cid == "" {
			cid = strings.TrimSpace(cat.Name)
		}
		if cid == "" {
			continue
		}
		snap.byCat[cid] = cat
		for ii := range cat.Items {
			item := &cat.Items[ii]
			sku := strings.TrimSpace(item.SKU)
			if sku == "" {
				continue
			}
			item.SKU = sku
			item.CategoryID = cid
			item.CategoryName = cat.Name
			item.NormName = normText(item.Name)
			item.NormTags = make([]string, 0, len(item.Tags))
			for _, t := range item.Tags {
				item.NormTags = append(item.NormTags, normText(t))
			}
			if _, dup := snap.bySKU[sku]; !dup {
				snap.skuOrder = append(snap.skuOrder, sku)
			}
			snap.bySKU[sku] = item
			for _, t := range item.NormTags {
				snap.byTag[t] = append(snap.byTag[t], item)
			}
		}
	}

	s.snap.Store(snap)
	return nil
}

func (s *Store) Version() int {
	return s.snap.Load().doc.Version
}

func (s *Store) Categories() []models.Category {
	return s.snap.Load().doc.Categories
}

func (s *Store) CategoryByID(id string) (*models.Category, bool) {
	c, ok := s.snap.Load().byCat[id]
	return c, ok
}

func (s *Store) CountItems() int {
	return len(s.snap.Load().bySKU)
}

// GetBySKU returns the item for a SKU, if present.
func (s *Store) GetBySKU(sku string) (*models.CatalogItem, bool) {
	item, ok := s.snap.Load().bySKU[strings.TrimSpace(sku)]
	return item, ok
}

// PriceOf returns the item price, or false for an unknown SKU.
func (s *Store) PriceOf(sku string) (float64, bool) {
	item, ok := s.GetBySKU(sku)
	if !ok {
		return 0, false
	}
	return item.Price, true
}

// InStock reports availability, or false for an unknown SKU.
func (s *Store) InStock(sku string) (bool, bool) {
	item, ok := s.GetBySKU(sku)
	if !ok {
		return false, false
	}
	return item.InStock, true
}

type scored struct {
	score int
	item  *models.CatalogItem
	order int
}

// Search ranks items by free text and canonicalized tags. When tags are
// given they pick the candidate set and any text must also match the name;
// text alone matches names first, then falls back to tag substrings at a
// one-point penalty. Limit is clamped to [1, 50].
func (s *Store) Search(text string, tags []string, limit int) []*models.CatalogItem {
	if limit < 1 {
		limit = 1
	} else if limit > 50 {
		limit = 50
	}

	snap := s.snap.Load()
	textQ := normText(text)
	tagQs := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := normText(t); n != "" {
			tagQs = append(tagQs, n)
		}
	}

	var results []scored
	switch {
	case len(tagQs) > 0:
		seen := map[string]struct{}{}
		for _, tq := range tagQs {
			for _, item := range snap.byTag[tq] {
				if _, dup := seen[item.SKU]; dup {
					continue
				}
				if textQ != "" && !strings.Contains(item.NormName, textQ) {
					continue
				}
				seen[item.SKU] = struct{}{}
				results = append(results, scored{score: score(item, textQ, tagQs), item: item})
			}
		}
	case textQ != "":
		for _, sku := range snap.skuOrder {
			item := snap.bySKU[sku]
			if strings.Contains(item.NormName, textQ) {
				results = append(results, scored{score: score(item, textQ, nil), item: item})
				continue
			}
			for _, t := range item.NormTags {
				if strings.Contains(t, textQ) {
					results = append(results, scored{score: score(item, textQ, nil) - 1, item: item})
					break
				}
			}
		}
	default:
		for _, sku := range snap.skuOrder {
			results = append(results, scored{item: snap.bySKU[sku]})
		}
	}

	for i := range results {
		results[i].order = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]*models.CatalogItem, len(results))
	for i, r := range results {
		out[i] = r.item
	}
	return out
}

func score(item *models.CatalogItem, textQ string, tags []string) int {
	sc := 0
	if textQ != "" {
		if strings.HasPrefix(item.NormName, textQ) {
			sc += 4
		} else if strings.Contains(item.NormName, textQ) {
			sc += 3
		}
	}
	for _, t := range tags {
		for _, it := range item.NormTags {
			if t == it {
				sc += 2
				break
			}
		}
	}
	if item.InStock {
		sc++
	}
	return sc
}

// ShortlistByCategory returns up to n items from a category, in-stock
// first then alphabetical by normalized name.
func (s *Store) ShortlistByCategory(categoryID string, n int) []*models.CatalogItem {
	snap := s.snap.Load()
	cat, ok := snap.byCat[categoryID]
	if !ok {
		return nil
	}
	items := make([]*models.CatalogItem, 0, len(cat.Items))
	for i := range cat.Items {
		if item, ok := snap.bySKU[cat.Items[i].SKU]; ok {
			items = append(items, item)
		}
	}
	sortStockThenName(items)
	if n < 1 {
		n = 1
	}
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// RelatedByTags returns up to n other items sharing a tag with the SKU,
// in-stock first then alphabetical.
func (s *Store) RelatedByTags(sku string, n int) []*models.CatalogItem {
	snap := s.snap.Load()
	item, ok := snap.bySKU[strings.TrimSpace(sku)]
	if !ok || len(item.NormTags) == 0 {
		return nil
	}
	seen := map[string]*models.CatalogItem{}
	for _, t := range item.NormTags {
		for _, it := range snap.byTag[t] {
			if it.SKU == item.SKU {
				continue
			}
			seen[it.SKU] = it
		}
	}
	outs := make([]*models.CatalogItem, 0, len(seen))
	for _, it := range seen {
		outs = append(outs, it)
	}
	sortStockThenName(outs)
	if n < 1 {
		n = 1
	}
	if len(outs) > n {
		outs = outs[:n]
	}
	return outs
}

func sortStockThenName(items []*models.CatalogItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].InStock != items[j].InStock {
			return items[i].InStock
		}
		return items[i].NormName < items[j].NormName
	})
}
