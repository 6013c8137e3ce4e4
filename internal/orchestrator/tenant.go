package orchestrator

import (
	"context"

	"storeassist/internal/common/logger"
	"storeassist/internal/common/metrics"
	"storeassist/internal/facts"
	"storeassist/internal/retrieval/catalog"
	"storeassist/internal/retrieval/faq"
	"storeassist/internal/retrieval/geo"
	"storeassist/internal/retrieval/policy"
	"storeassist/internal/retrieval/storage"
	"storeassist/internal/retrieval/synonyms"
	"storeassist/internal/router"
)

// Tenant bundles one tenant's stores and pipeline stages. Stores are
// rebuilt atomically on reload; the pointers here stay valid for the
// process lifetime.
type Tenant struct {
	Name     string
	Synonyms *synonyms.Store
	Catalog  *catalog.Store
	Policy   *policy.Store
	Geo      *geo.Store
	FAQ      *faq.Store
	Router   *router.Router
	Gatherer *facts.Gatherer

	storage *storage.Storage
	log     logger.Logger
}

// NewTenant loads all documents for one tenant and wires its pipeline.
func NewTenant(st *storage.Storage, geocoder geo.Geocoder, log logger.Logger) (*Tenant, error) {
	syn, err := synonyms.New(st)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(st)
	if err != nil {
		return nil, err
	}
	pol, err := policy.New(st)
	if err != nil {
		return nil, err
	}
	g, err := geo.New(st)
	if err != nil {
		return nil, err
	}
	f, err := faq.New(st)
	if err != nil {
		return nil, err
	}

	tlog := log.With(map[string]interface{}{"tenant": st.Tenant})
	return &Tenant{
		Name:     st.Tenant,
		Synonyms: syn,
		Catalog:  cat,
		Policy:   pol,
		Geo:      g,
		FAQ:      f,
		Router:   router.New(syn),
		Gatherer: facts.NewGatherer(cat, pol, g, f, geocoder, tlog),
		storage:  st,
		log:      tlog,
	}, nil
}

// Reload rebuilds every store from disk. A store that fails to reload
// keeps serving its previous snapshot.
func (t *Tenant) Reload() {
	stores := []struct {
		doc    string
		reload func() error
	}{
		{storage.FileSynonyms, t.Synonyms.Reload},
		{storage.FileCatalog, t.Catalog.Reload},
		{storage.FileDelivery, t.Policy.Reload},
		{storage.FileBranches, t.Geo.Reload},
		{storage.FileFAQ, t.FAQ.Reload},
	}
	for _, s := range stores {
		if err := s.reload(); err != nil {
			metrics.StoreReloads.WithLabelValues(t.Name, s.doc, "error").Inc()
			t.log.Error("store reload failed, keeping previous snapshot", map[string]interface{}{
				"doc":   s.doc,
				"error": err.Error(),
			})
			continue
		}
		metrics.StoreReloads.WithLabelValues(t.Name, s.doc, "ok").Inc()
	}
}

// Watch starts the document watcher for this tenant. Blocks until ctx is
// cancelled.
func (t *Tenant) Watch(ctx context.Context) error {
	w := storage.NewWatcher(t.storage, t.log, t.Reload)
	return w.Run(ctx)
}
