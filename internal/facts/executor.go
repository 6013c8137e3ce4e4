package facts

import (
	"context"
	"fmt"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/models"
)

// Tool names the executor understands. Strategies emit these; adding a
// tool means adding a case in Execute.
const (
	ToolPolicyRuleFor         = "policy.rule_for"
	ToolGeoNearestForPostcode = "geo.nearest_for_postcode"
	ToolCatalogSearch         = "catalog.search"
	ToolCatalogPriceOf        = "catalog.price_of"
	ToolCatalogInStock        = "catalog.in_stock"
	ToolFAQBestMatch          = "faq.best_match"
)

// Execute runs a plan's tool calls in order against the domain stores and
// returns the populated bundle. A required call that cannot run (missing
// argument, unknown tool) aborts with an error; optional calls fail
// silently and leave their fact absent. A tool that runs but finds
// nothing (uncovered postcode, unknown SKU) is not a failure: the absence
// itself is the fact.
func (g *Gatherer) Execute(ctx context.Context, plan models.Plan, route models.Route, sess models.SessionSnapshot) (models.FactBundle, error) {
	var bundle models.FactBundle

	for _, call := range plan.Tools {
		if err := g.execute(ctx, call, route, sess, &bundle); err != nil {
			if call.Required {
				return models.FactBundle{}, apperrors.NewRequiredToolFailedError(call.Name, err)
			}
			g.log.Warn("optional tool call failed", map[string]interface{}{
				"tool":  call.Name,
				"error": err.Error(),
			})
		}
	}

	return bundle, nil
}

func (g *Gatherer) execute(ctx context.Context, call models.ToolCall, route models.Route, sess models.SessionSnapshot, bundle *models.FactBundle) error {
	switch call.Name {
	case ToolPolicyRuleFor:
		pc := stringArg(call.Args, "postcode")
		if pc == "" {
			return fmt.Errorf("postcode argument missing")
		}
		fact := &models.DeliveryFact{Postcode: pc}
		if rule, ok := g.policy.RuleFor(pc); ok {
			fact.Rule = &rule
			fact.Summary, _ = g.policy.Summary(pc)
		}
		bundle.Delivery = fact

	case ToolGeoNearestForPostcode:
		pc := stringArg(call.Args, "postcode")
		if pc == "" {
			return fmt.Errorf("postcode argument missing")
		}
		if nb, ok := g.geo.NearestForPostcode(ctx, pc, g.geocoder); ok {
			bundle.Branch = &models.BranchFact{Nearest: nb}
		}

	case ToolCatalogSearch:
		query := stringArg(call.Args, "query")
		tags := stringSliceArg(call.Args, "tags")
		if query == "" && len(tags) == 0 {
			return fmt.Errorf("neither query nor tags given")
		}
		limit := intArg(call.Args, "limit", searchLimit)
		for _, item := range g.catalog.Search(query, tags, limit) {
			bundle.Items = append(bundle.Items, *item)
		}

	case ToolCatalogPriceOf:
		sku := stringArg(call.Args, "sku")
		if sku == "" {
			return fmt.Errorf("sku argument missing")
		}
		fact := &models.PriceFact{SKU: sku}
		if price, ok := g.catalog.PriceOf(sku); ok {
			fact.Price = &price
		}
		bundle.Price = fact

	case ToolCatalogInStock:
		sku := stringArg(call.Args, "sku")
		if sku == "" {
			return fmt.Errorf("sku argument missing")
		}
		if inStock, ok := g.catalog.InStock(sku); ok {
			if bundle.Price == nil {
				bundle.Price = &models.PriceFact{SKU: sku}
			}
			bundle.Price.InStock = &inStock
		}

	case ToolFAQBestMatch:
		question := stringArg(call.Args, "question")
		if question == "" {
			question = route.Utterance
		}
		g.gatherFAQ(models.Route{Utterance: question, Entities: route.Entities}, sess, bundle)

	default:
		return fmt.Errorf("unknown tool %q", call.Name)
	}
	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}
