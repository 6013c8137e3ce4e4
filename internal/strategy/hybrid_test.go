package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeassist/internal/models"
)

func TestHybridRewriteDeliveryGrounded(t *testing.T) {
	h := NewHybrid(Options{})

	ctx := Context{
		Intent: models.IntentCheckDelivery,
		Facts: models.FactBundle{
			Delivery: &models.DeliveryFact{
				Postcode: "E1 6AN",
				Rule:     &models.DeliveryRule{Fee: 3.5, MinOrder: 25, Source: models.RuleSourcePrefix},
				Summary:  "Min £25, £3.50 fee",
			},
		},
	}
	got := h.Rewrite("", ctx)

	assert.Contains(t, got, "E1 6AN")
	assert.Contains(t, got, "Min £25, £3.50 fee")
	// no currency figure appears that is absent from the rule
	for _, amount := range []string{"£1", "£4", "£9"} {
		assert.NotContains(t, got, amount)
	}
}

func TestHybridRewriteDeliveryNotCovered(t *testing.T) {
	h := NewHybrid(Options{})

	ctx := Context{
		Intent: models.IntentCheckDelivery,
		Facts:  models.FactBundle{Delivery: &models.DeliveryFact{Postcode: "N1 7AA"}},
	}
	got := h.Rewrite("", ctx)
	assert.Equal(t, "We currently do not deliver to N1 7AA.", got)
}

func TestHybridRewriteItemsCappedAtThree(t *testing.T) {
	h := NewHybrid(Options{})

	ctx := Context{
		Intent: models.IntentSearchProduct,
		Facts: models.FactBundle{Items: []models.CatalogItem{
			{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"},
		}},
	}
	got := h.Rewrite("", ctx)
	assert.Contains(t, got, "Top picks: A, B, C.")
	assert.NotContains(t, got, "D")
}

func TestHybridRewritePrice(t *testing.T) {
	h := NewHybrid(Options{})

	ctx := Context{
		Facts: models.FactBundle{
			Price: &models.PriceFact{SKU: "WINGS_1KG", Price: ptrFloat(7.99), InStock: ptrBool(false)},
		},
	}
	assert.Equal(t, "WINGS_1KG is £7.99 and out of stock.", h.Rewrite("", ctx))
}

func TestHybridRewriteFAQAppendsCTA(t *testing.T) {
	h := NewHybrid(Options{})

	ctx := Context{
		Facts: models.FactBundle{FAQ: &models.FAQFact{Answer: "Yes, all our meat is certified halal."}},
	}
	got := h.Rewrite("", ctx)
	assert.True(t, strings.HasSuffix(got, "Anything else you'd like to check?"), got)
}

func TestHybridRewriteEmptyBundleFallsBackToDraft(t *testing.T) {
	h := NewHybrid(Options{})

	got := h.Rewrite("hi! how can I help you today?", Context{Intent: models.IntentGreeting})
	assert.Equal(t, "Hi! how can I help you today?", got)
}

func TestHybridPlanMirrorsGathererCalls(t *testing.T) {
	h := NewHybrid(Options{})

	plan := h.Plan("do you deliver to E1 6AN", Context{
		Intent:   models.IntentCheckDelivery,
		Entities: models.Entities{Postcode: "E1 6AN"},
	})
	require.Len(t, plan.Tools, 2)
	assert.Equal(t, true, plan.Constraints["no_fabrication"])

	plan = h.Plan("any wings", Context{
		Intent:   models.IntentSearchProduct,
		Entities: models.Entities{Tags: []string{"wings"}},
	})
	require.Len(t, plan.Tools, 1)
	assert.Equal(t, "catalog.search", plan.Tools[0].Name)
}

func TestDeterministicRewriteOnlyNormalizes(t *testing.T) {
	d := NewDeterministic(Options{})

	ctx := Context{
		Intent: models.IntentCheckDelivery,
		Facts: models.FactBundle{
			Delivery: &models.DeliveryFact{Postcode: "E1 6AN"},
		},
	}
	// facts are ignored: the draft passes through untouched apart from
	// whitespace and capitalization
	got := d.Rewrite("we  currently don't deliver to N1 7AA.", ctx)
	assert.Equal(t, "We currently don't deliver to N1 7AA.", got)

	plan := d.Plan("anything", ctx)
	assert.Empty(t, plan.Tools)
}

func TestComposeDraft(t *testing.T) {
	tests := []struct {
		name      string
		ctx       Context
		clarifier string
		want      string
	}{
		{
			name: "delivery covered",
			ctx: Context{
				Intent: models.IntentCheckDelivery,
				Facts: models.FactBundle{Delivery: &models.DeliveryFact{
					Postcode: "E1 6AN",
					Rule:     &models.DeliveryRule{Fee: 3.5},
					Summary:  "£3.50 fee",
				}},
			},
			want: "Yes, we deliver to E1 6AN. £3.50 fee.",
		},
		{
			name: "delivery uncovered",
			ctx: Context{
				Intent: models.IntentCheckDelivery,
				Facts:  models.FactBundle{Delivery: &models.DeliveryFact{Postcode: "N1 7AA"}},
			},
			want: "We currently don't deliver to N1 7AA.",
		},
		{
			name: "price found",
			ctx: Context{
				Intent: models.IntentPriceCheck,
				Facts: models.FactBundle{Price: &models.PriceFact{
					SKU: "WINGS_1KG", Price: ptrFloat(7.99), InStock: ptrBool(true),
				}},
			},
			want: "WINGS_1KG is £7.99 and in stock.",
		},
		{
			name:      "empty bundle uses clarifier",
			ctx:       Context{Intent: models.IntentUnknown},
			clarifier: "Could you clarify what you need?",
			want:      "Could you clarify what you need?",
		},
		{
			name: "greeting",
			ctx:  Context{Intent: models.IntentGreeting},
			want: "Hi! How can I help you today?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeDraft(tt.ctx, tt.clarifier))
		})
	}
}
