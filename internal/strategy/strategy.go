// Package strategy renders the final reply for a turn. Three modes share
// one contract: a diagnostic-or-real planning step and a rewrite step
// that may only cite values from the fact bundle. No strategy performs
// retrieval of its own.
package strategy

import (
	"regexp"
	"strings"
	"unicode"

	"storeassist/internal/models"
)

// Strategy is the per-mode contract. Plan describes what should be
// fetched; Rewrite turns the gathered facts into the reply text.
type Strategy interface {
	Name() string
	Plan(userText string, ctx Context) models.Plan
	Rewrite(draft string, ctx Context) string
}

// Context is the read-only turn state handed to a strategy.
type Context struct {
	Intent   models.Intent
	Entities models.Entities
	Session  models.SessionSnapshot
	Facts    models.FactBundle
}

// Mode names, also used in tenant configuration and metrics labels.
const (
	ModeDeterministic = "deterministic"
	ModeHybrid        = "hybrid"
	ModeFlagship      = "flagship"
)

// DefaultCTA is appended to grounded replies that do not already close
// the conversation themselves.
const DefaultCTA = "Anything else you'd like to check?"

// Guardrail keys.
const (
	GuardrailDenyUnknownDelivery = "deny_unknown_delivery"
	GuardrailNoPriceWithoutSKU   = "no_price_without_sku"
)

var defaultGuardrails = map[string]string{
	GuardrailDenyUnknownDelivery: "I don't have delivery info for that area.",
	GuardrailNoPriceWithoutSKU:   "Tell me the SKU and I'll confirm the price.",
}

var defaultClarifiers = map[string]string{
	"check_delivery": "What's your postcode (e.g., E1 6AN)?",
	"search_product": "Which product or category are you after?",
	"price_check":    "Which SKU should I check the price for?",
	"faq":            "Could you clarify your question?",
	"unknown":        "Could you clarify what you need?",
}

// Options carries tenant-configurable strategy text. Zero values fall
// back to the defaults above.
type Options struct {
	CTA        string
	Guardrails map[string]string
	Clarifiers map[string]string
}

func (o Options) cta() string {
	if o.CTA != "" {
		return o.CTA
	}
	return DefaultCTA
}

func (o Options) guardrail(key string) string {
	if v, ok := o.Guardrails[key]; ok && v != "" {
		return v
	}
	return defaultGuardrails[key]
}

func (o Options) clarifier(intent models.Intent) string {
	if v, ok := o.Clarifiers[intent.String()]; ok && v != "" {
		return v
	}
	if v, ok := defaultClarifiers[intent.String()]; ok {
		return v
	}
	return defaultClarifiers["unknown"]
}

// ClarifierFor returns the clarifier question for an intent, honoring
// any configured override. Used by the orchestrator when a plan or its
// execution forces a clarification after routing.
func (o Options) ClarifierFor(intent models.Intent) string {
	return o.clarifier(intent)
}

var wsRe = regexp.MustCompile(`\s+`)

// SafeMinimalRewrite trims, collapses whitespace and capitalizes the
// first letter. It never adds or removes content, which is what makes it
// a safe render fallback.
func SafeMinimalRewrite(text string) string {
	t := strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
	if t == "" {
		return ""
	}
	r := []rune(t)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// appendCTA adds the call-to-action unless the text already ends in a
// question or a closing phrase.
func (o Options) appendCTA(text string) string {
	t := strings.TrimSpace(text)
	if t == "" || strings.HasSuffix(t, "?") {
		return t
	}
	lower := strings.ToLower(t)
	if strings.HasSuffix(lower, "anything else.") || strings.HasSuffix(lower, "anything else") {
		return t
	}
	return t + " " + o.cta()
}
