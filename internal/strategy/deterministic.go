package strategy

import (
	"fmt"
	"strings"

	"storeassist/internal/models"
)

// ComposeDraft builds the deterministic reply text straight from the fact
// bundle. All three modes start from this draft; Deterministic ships it
// nearly as-is, the others reshape it.
func ComposeDraft(ctx Context, clarifier string) string {
	facts := ctx.Facts

	if (ctx.Intent == models.IntentCheckDelivery) && facts.Delivery != nil {
		d := facts.Delivery
		if d.Rule != nil {
			return fmt.Sprintf("Yes, we deliver to %s. %s.", d.Postcode, d.Summary)
		}
		return fmt.Sprintf("We currently don't deliver to %s.", d.Postcode)
	}

	if (ctx.Intent == models.IntentSearchProduct || ctx.Intent == models.IntentBrowseCategory) && len(facts.Items) > 0 {
		names := itemNames(facts.Items, 3)
		if names != "" {
			return fmt.Sprintf("Top picks: %s. Want prices or more options?", names)
		}
		return "I couldn't find matching items."
	}

	if ctx.Intent == models.IntentPriceCheck && facts.Price != nil {
		p := facts.Price
		if p.Price != nil {
			return fmt.Sprintf("%s is £%.2f and %s.", p.SKU, *p.Price, stockWord(p.InStock))
		}
		return fmt.Sprintf("I couldn't find a price for %s.", p.SKU)
	}

	if facts.FAQ != nil {
		return facts.FAQ.Answer
	}

	switch ctx.Intent {
	case models.IntentGreeting:
		return "Hi! How can I help you today?"
	case models.IntentSmalltalk:
		return "Happy to help! What can I get for you?"
	case models.IntentHumanHandoff:
		return "Sure, I'll get someone from the store to contact you."
	}

	if clarifier != "" {
		return clarifier
	}
	return "Could you clarify what you need?"
}

func itemNames(items []models.CatalogItem, n int) string {
	var names []string
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		names = append(names, it.Name)
		if len(names) == n {
			break
		}
	}
	return strings.Join(names, ", ")
}

func stockWord(inStock *bool) string {
	if inStock != nil && *inStock {
		return "in stock"
	}
	return "out of stock"
}

// Deterministic is the zero-surprise mode: the composed draft goes out
// with only whitespace and capitalization normalization. No branching on
// facts happens here.
type Deterministic struct {
	opts Options
}

func NewDeterministic(opts Options) *Deterministic {
	return &Deterministic{opts: opts}
}

func (d *Deterministic) Name() string { return ModeDeterministic }

// Plan is diagnostic-only: this mode never executes tools.
func (d *Deterministic) Plan(userText string, ctx Context) models.Plan {
	return models.Plan{
		Goal: fmt.Sprintf("Ship deterministic draft for intent=%s", ctx.Intent),
	}
}

func (d *Deterministic) Rewrite(draft string, ctx Context) string {
	return SafeMinimalRewrite(draft)
}
