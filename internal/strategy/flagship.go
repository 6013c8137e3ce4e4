package strategy

import (
	"fmt"

	"storeassist/internal/models"
)

// Flagship plans real tool calls before fact gathering and renders with
// strict grounding: missing critical data becomes a clarifier or a
// guardrail string, never a guess.
type Flagship struct {
	opts Options
}

func NewFlagship(opts Options) *Flagship {
	return &Flagship{opts: opts}
}

func (f *Flagship) Name() string { return ModeFlagship }

// Plan proposes the tool calls the executor should run. A required call
// that cannot even be formed (no postcode, no SKU) short-circuits into a
// clarification plan with no tools.
func (f *Flagship) Plan(userText string, ctx Context) models.Plan {
	clarify := models.Plan{
		Constraints: map[string]interface{}{"needs_clarification": true},
	}

	switch ctx.Intent {
	case models.IntentCheckDelivery:
		pc := ctx.Entities.Postcode
		if pc == "" {
			pc = ctx.Session.Postcode
		}
		if pc == "" {
			clarify.Goal = "Clarify postcode"
			return clarify
		}
		return f.plan(ctx, []models.ToolCall{
			{Name: "policy.rule_for", Args: map[string]interface{}{"postcode": pc}, Required: true},
			{Name: "geo.nearest_for_postcode", Args: map[string]interface{}{"postcode": pc}},
		})

	case models.IntentSearchProduct, models.IntentBrowseCategory:
		return f.plan(ctx, []models.ToolCall{
			{
				Name:     "catalog.search",
				Args:     map[string]interface{}{"query": ctx.Entities.Query, "tags": ctx.Entities.Tags, "limit": 6},
				Required: true,
			},
		})

	case models.IntentPriceCheck:
		if ctx.Entities.SKU == "" {
			clarify.Goal = "Clarify SKU"
			return clarify
		}
		return f.plan(ctx, []models.ToolCall{
			{Name: "catalog.price_of", Args: map[string]interface{}{"sku": ctx.Entities.SKU}, Required: true},
			{Name: "catalog.in_stock", Args: map[string]interface{}{"sku": ctx.Entities.SKU}},
		})
	}

	return f.plan(ctx, []models.ToolCall{
		{Name: "faq.best_match", Args: map[string]interface{}{"question": userText, "top_k": 1}},
	})
}

func (f *Flagship) plan(ctx Context, tools []models.ToolCall) models.Plan {
	return models.Plan{
		Goal:        fmt.Sprintf("Answer intent=%s with grounded facts.", ctx.Intent),
		Tools:       tools,
		Constraints: map[string]interface{}{"no_fabrication": true, "concise": true},
	}
}

// Rewrite composes the final reply from verified facts only.
func (f *Flagship) Rewrite(draft string, ctx Context) string {
	facts := ctx.Facts

	switch ctx.Intent {
	case models.IntentCheckDelivery:
		d := facts.Delivery
		if d == nil || d.Postcode == "" {
			return f.opts.clarifier(models.IntentCheckDelivery)
		}
		if d.Rule == nil {
			return f.opts.guardrail(GuardrailDenyUnknownDelivery)
		}
		out := fmt.Sprintf("Yes, we deliver to %s.", d.Postcode)
		if d.Summary != "" {
			out = fmt.Sprintf("%s %s.", out, d.Summary)
		}
		if facts.Branch != nil && facts.Branch.Nearest.Name != "" && !facts.Branch.Nearest.LowConfidence {
			out = fmt.Sprintf("%s Nearest branch: %s.", out, facts.Branch.Nearest.Name)
		}
		return f.opts.appendCTA(out)

	case models.IntentSearchProduct, models.IntentBrowseCategory:
		if len(facts.Items) == 0 {
			q := ctx.Entities.Query
			if q == "" {
				q = ctx.Entities.Category
			}
			if q != "" {
				return fmt.Sprintf("I couldn't find matches for \"%s\". Any alternative product or category?", q)
			}
			return f.opts.clarifier(models.IntentSearchProduct)
		}
		if names := itemNames(facts.Items, 3); names != "" {
			return f.opts.appendCTA(fmt.Sprintf("Top picks: %s.", names))
		}
		return "I couldn't find matching items."

	case models.IntentPriceCheck:
		sku := ctx.Entities.SKU
		if sku == "" && facts.Price != nil {
			sku = facts.Price.SKU
		}
		if sku == "" {
			return f.opts.guardrail(GuardrailNoPriceWithoutSKU)
		}
		if facts.Price != nil && facts.Price.Price != nil {
			return fmt.Sprintf("%s is £%.2f and %s.", sku, *facts.Price.Price, stockWord(facts.Price.InStock))
		}
		return fmt.Sprintf("I couldn't find a price for %s.", sku)
	}

	if facts.FAQ != nil && facts.FAQ.Answer != "" {
		return f.opts.appendCTA(facts.FAQ.Answer)
	}

	if draft != "" && !isClarifierDraft(draft) {
		return f.opts.appendCTA(SafeMinimalRewrite(draft))
	}
	return f.opts.clarifier(ctx.Intent)
}

func isClarifierDraft(draft string) bool {
	lower := SafeMinimalRewrite(draft)
	return len(lower) >= 9 && lower[:9] == "Could you"
}
