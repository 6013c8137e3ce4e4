// Package facts assembles the grounded fact bundle a strategy renders
// from. It dispatches on the routed intent and only calls the stores
// whose preconditions hold; an empty bundle is a valid outcome.
package facts

import (
	"context"

	"storeassist/internal/common/logger"
	"storeassist/internal/models"
	"storeassist/internal/retrieval/catalog"
	"storeassist/internal/retrieval/faq"
	"storeassist/internal/retrieval/geo"
	"storeassist/internal/retrieval/policy"
)

// searchLimit caps product-search results per turn.
const searchLimit = 6

// Gatherer holds the read-only stores for one tenant.
type Gatherer struct {
	catalog  *catalog.Store
	policy   *policy.Store
	geo      *geo.Store
	faq      *faq.Store
	geocoder geo.Geocoder
	log      logger.Logger
}

func NewGatherer(cat *catalog.Store, pol *policy.Store, g *geo.Store, f *faq.Store, geocoder geo.Geocoder, log logger.Logger) *Gatherer {
	return &Gatherer{catalog: cat, policy: pol, geo: g, faq: f, geocoder: geocoder, log: log}
}

// Gather builds the fact bundle for a routed turn. Pure retrieval: no
// session writes, no rendering.
func (g *Gatherer) Gather(ctx context.Context, route models.Route, sess models.SessionSnapshot) models.FactBundle {
	var bundle models.FactBundle

	if route.Intent == models.IntentCheckDelivery || route.Entities.Postcode != "" {
		g.gatherDelivery(ctx, route, sess, &bundle)
	}

	if route.Intent == models.IntentSearchProduct || route.Intent == models.IntentBrowseCategory {
		g.gatherItems(route, &bundle)
	}

	if route.Intent == models.IntentPriceCheck && route.Entities.SKU != "" {
		g.gatherPrice(route.Entities.SKU, &bundle)
	}

	if route.Intent == models.IntentFAQ || route.Intent == models.IntentUnknown {
		g.gatherFAQ(route, sess, &bundle)
	}

	return bundle
}

func (g *Gatherer) gatherDelivery(ctx context.Context, route models.Route, sess models.SessionSnapshot, bundle *models.FactBundle) {
	pc := route.Entities.Postcode
	if pc == "" {
		pc = sess.Postcode
	}
	if pc == "" {
		return
	}

	fact := &models.DeliveryFact{Postcode: pc}
	if rule, ok := g.policy.RuleFor(pc); ok {
		fact.Rule = &rule
		fact.Summary, _ = g.policy.Summary(pc)
	}
	bundle.Delivery = fact

	if nb, ok := g.geo.NearestForPostcode(ctx, pc, g.geocoder); ok {
		bundle.Branch = &models.BranchFact{Nearest: nb}
	}
}

func (g *Gatherer) gatherItems(route models.Route, bundle *models.FactBundle) {
	query := route.Entities.Query
	if query == "" {
		query = route.Entities.Category
	}
	tags := route.Entities.Tags
	if query == "" && len(tags) == 0 {
		return
	}

	for _, item := range g.catalog.Search(query, tags, searchLimit) {
		bundle.Items = append(bundle.Items, *item)
	}
}

func (g *Gatherer) gatherPrice(sku string, bundle *models.FactBundle) {
	fact := &models.PriceFact{SKU: sku}
	if price, ok := g.catalog.PriceOf(sku); ok {
		fact.Price = &price
		inStock, _ := g.catalog.InStock(sku)
		fact.InStock = &inStock
	}
	bundle.Price = fact
}

func (g *Gatherer) gatherFAQ(route models.Route, sess models.SessionSnapshot, bundle *models.FactBundle) {
	matches := g.faq.BestMatch(route.Utterance, route.Entities.Tags, 0, 1)
	if len(matches) == 0 {
		return
	}

	placeholders := map[string]string{}
	if sess.Postcode != "" {
		placeholders["postcode"] = sess.Postcode
		if summary, ok := g.policy.Summary(sess.Postcode); ok {
			placeholders["delivery_summary"] = summary
		}
	}
	if sess.NearestBranchID != "" {
		if br, ok := g.geo.BranchByID(sess.NearestBranchID); ok {
			placeholders["branch_name"] = br.Name
		}
	}

	bundle.FAQ = &models.FAQFact{
		Entry:  matches[0],
		Answer: faq.RenderAnswer(matches[0], placeholders),
	}
}
