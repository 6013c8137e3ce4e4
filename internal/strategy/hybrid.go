package strategy

import (
	"fmt"

	"storeassist/internal/models"
)

// Hybrid formats the fact bundle directly into short grounded sentences.
// Execution order and side effects are identical to Deterministic; the
// plan it emits is for diagnostics only.
type Hybrid struct {
	opts Options
}

func NewHybrid(opts Options) *Hybrid {
	return &Hybrid{opts: opts}
}

func (h *Hybrid) Name() string { return ModeHybrid }

// Plan mirrors the retrieval calls the fact gatherer is about to make.
func (h *Hybrid) Plan(userText string, ctx Context) models.Plan {
	var tools []models.ToolCall

	switch ctx.Intent {
	case models.IntentCheckDelivery:
		pc := ctx.Entities.Postcode
		if pc == "" {
			pc = ctx.Session.Postcode
		}
		if pc != "" {
			tools = append(tools,
				models.ToolCall{Name: "policy.rule_for", Args: map[string]interface{}{"postcode": pc}},
				models.ToolCall{Name: "geo.nearest_for_postcode", Args: map[string]interface{}{"postcode": pc}},
			)
		}
	case models.IntentSearchProduct, models.IntentBrowseCategory:
		tools = append(tools, models.ToolCall{
			Name: "catalog.search",
			Args: map[string]interface{}{"query": ctx.Entities.Query, "tags": ctx.Entities.Tags, "limit": 6},
		})
	case models.IntentPriceCheck:
		if ctx.Entities.SKU != "" {
			tools = append(tools, models.ToolCall{
				Name: "catalog.price_of",
				Args: map[string]interface{}{"sku": ctx.Entities.SKU},
			})
		}
	}

	return models.Plan{
		Goal:        fmt.Sprintf("Rewrite grounded draft for intent=%s", ctx.Intent),
		Tools:       tools,
		Constraints: map[string]interface{}{"no_fabrication": true, "concise": true},
	}
}

// Rewrite formats facts into one or two tight sentences. Strictly no new
// factual claims: every value rendered comes from the bundle.
func (h *Hybrid) Rewrite(draft string, ctx Context) string {
	facts := ctx.Facts

	if facts.Delivery != nil {
		d := facts.Delivery
		if d.Rule != nil {
			out := fmt.Sprintf("Yes, we deliver to %s.", d.Postcode)
			if d.Summary != "" {
				out = fmt.Sprintf("%s %s.", out, d.Summary)
			}
			if facts.Branch != nil && facts.Branch.Nearest.Name != "" && !facts.Branch.Nearest.LowConfidence {
				out = fmt.Sprintf("%s Nearest branch: %s.", out, facts.Branch.Nearest.Name)
			}
			return h.opts.appendCTA(out)
		}
		return fmt.Sprintf("We currently do not deliver to %s.", d.Postcode)
	}

	if len(facts.Items) > 0 {
		if names := itemNames(facts.Items, 3); names != "" {
			return h.opts.appendCTA(fmt.Sprintf("Top picks: %s.", names))
		}
	}

	if facts.Price != nil && facts.Price.Price != nil {
		return fmt.Sprintf("%s is £%.2f and %s.", facts.Price.SKU, *facts.Price.Price, stockWord(facts.Price.InStock))
	}

	if facts.FAQ != nil && facts.FAQ.Answer != "" {
		return h.opts.appendCTA(facts.FAQ.Answer)
	}

	return h.opts.appendCTA(SafeMinimalRewrite(draft))
}
