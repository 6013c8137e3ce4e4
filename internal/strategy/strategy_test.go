package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeMinimalRewrite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims and collapses", in: "  hello   there  ", want: "Hello there"},
		{name: "capitalizes first letter", in: "yes, we deliver.", want: "Yes, we deliver."},
		{name: "already capitalized", in: "Top picks: Wings.", want: "Top picks: Wings."},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeMinimalRewrite(tt.in))
		})
	}
}

func TestAppendCTA(t *testing.T) {
	opts := Options{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "appends to statement",
			in:   "Yes, we deliver to E1 6AN.",
			want: "Yes, we deliver to E1 6AN. Anything else you'd like to check?",
		},
		{name: "never after a question", in: "What's your postcode?", want: "What's your postcode?"},
		{name: "never after closing phrase", in: "Happy to help with anything else.", want: "Happy to help with anything else."},
		{name: "empty stays empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, opts.appendCTA(tt.in))
		})
	}
}

func TestCustomCTA(t *testing.T) {
	opts := Options{CTA: "Need anything more?"}
	assert.Equal(t, "Done. Need anything more?", opts.appendCTA("Done."))
}

func TestGuardrailOverride(t *testing.T) {
	opts := Options{Guardrails: map[string]string{
		GuardrailNoPriceWithoutSKU: "Give me a SKU first.",
	}}
	assert.Equal(t, "Give me a SKU first.", opts.guardrail(GuardrailNoPriceWithoutSKU))
	assert.Equal(t, "I don't have delivery info for that area.", opts.guardrail(GuardrailDenyUnknownDelivery))
}
