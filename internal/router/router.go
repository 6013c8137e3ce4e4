// Package router classifies customer utterances into intents, extracts
// entities and decides whether a clarifying question is needed before any
// retrieval happens.
package router

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"storeassist/internal/models"
)

var (
	postcodeRe = regexp.MustCompile(`\b([A-Z]{1,2}\d{1,2}[A-Z]?)\s?(\d[A-Z]{2})\b`)
	outwardRe  = regexp.MustCompile(`\b([A-Z]{1,2}\d{1,2}[A-Z]?)\b`)
	skuRe      = regexp.MustCompile(`\b([A-Z0-9_]{3,})\b`)
	phoneRe    = regexp.MustCompile(`\+?\d{7,15}`)
	tokenRe    = regexp.MustCompile(`[a-z0-9'_]+`)
	wsRe       = regexp.MustCompile(`\s+`)
)

var stopwords = buildSet("a an the i we you to for and or of with on at in near around show find tell need want")

var (
	deliveryKeywords = []string{"deliver", "delivery", "ship", "postcode", "post code"}
	hoursKeywords    = buildSet("open hours time when")
	modalOpeners     = buildSet("do can is are")
	greetingWords    = buildSet("hi hello hey salam salaam howdy")
	handoffKeywords  = []string{"speak to someone", "talk to a human", "real person", "call me", "speak to a person", "talk to someone"}
	smalltalkPhrases = []string{"how are you", "thank you", "thanks", "cheers"}
)

func buildSet(words string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(words) {
		out[w] = struct{}{}
	}
	return out
}

// Canonicalizer resolves a token to its canonical tag.
type Canonicalizer interface {
	Canonical(term string) string
}

// Context carries the per-turn inputs the router needs beyond the text.
type Context struct {
	Tenant           string
	Channel          models.Channel
	Session          models.SessionSnapshot
	CoveragePrefixes []string
}

// Router is a pure classifier: no I/O, no retrieval, deterministic for a
// fixed synonym mapping.
type Router struct {
	synonyms Canonicalizer
}

func New(synonyms Canonicalizer) *Router {
	return &Router{synonyms: synonyms}
}

// Route classifies one utterance. Never fails: an unparseable utterance
// degrades to intent unknown with no entities.
func (r *Router) Route(text string, ctx Context) models.Route {
	norm := normText(text)
	toks := tokens(norm)

	entities := models.Entities{
		Postcode: extractPostcode(norm),
		Phone:    phoneRe.FindString(norm),
		SKU:      extractSKU(text),
		Tags:     r.guessTags(toks),
	}
	if len(entities.Tags) > 0 {
		entities.Category = entities.Tags[0]
	}

	intent := inferIntent(norm, toks, entities)
	needs, clarifier := clarify(intent, entities, ctx)

	return models.Route{
		Intent:             intent,
		Entities:           entities,
		NeedsClarification: needs,
		Clarifier:          clarifier,
		Utterance:          text,
	}
}

func normText(s string) string {
	return strings.ToLower(strings.TrimSpace(wsRe.ReplaceAllString(s, " ")))
}

func tokens(norm string) []string {
	var out []string
	for _, t := range tokenRe.FindAllString(norm, -1) {
		if _, stop := stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

func extractPostcode(norm string) string {
	up := strings.ToUpper(norm)
	if m := postcodeRe.FindStringSubmatch(up); m != nil {
		return m[1] + " " + m[2]
	}
	// bare outward code (E1, SW11); full validity is the policy layer's call
	return outwardRe.FindString(up)
}

func extractSKU(text string) string {
	for _, m := range skuRe.FindAllStringSubmatch(strings.ToUpper(text), -1) {
		c := m[1]
		if len(c) < 4 {
			continue
		}
		if strings.ContainsFunc(c, unicode.IsDigit) {
			return c
		}
	}
	return ""
}

func (r *Router) guessTags(toks []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range toks {
		c := r.synonyms.Canonical(t)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// inferIntent is a fixed precedence chain, not a scored classifier: ties
// always resolve to the earlier rule.
func inferIntent(norm string, toks []string, ent models.Entities) models.Intent {
	for _, k := range deliveryKeywords {
		if strings.Contains(norm, k) {
			return models.IntentCheckDelivery
		}
	}
	if hasToken(toks, "price") || hasToken(toks, "cost") || strings.Contains(norm, "how much") {
		if ent.SKU != "" {
			return models.IntentPriceCheck
		}
		return models.IntentSearchProduct
	}
	for t := range hoursKeywords {
		if hasToken(toks, t) {
			return models.IntentFAQ
		}
	}
	if ent.SKU != "" {
		return models.IntentPriceCheck
	}
	// narrow phrase matchers sit above the broad tag rule so "hi" or
	// "thanks" do not turn into product searches
	if isHandoff(norm) {
		return models.IntentHumanHandoff
	}
	if isGreeting(toks) {
		return models.IntentGreeting
	}
	if isSmalltalk(norm) {
		return models.IntentSmalltalk
	}
	if len(ent.Tags) > 0 {
		return models.IntentSearchProduct
	}
	if strings.HasSuffix(norm, "?") || hasModalOpener(toks) {
		return models.IntentFAQ
	}
	return models.IntentUnknown
}

func hasToken(toks []string, want string) bool {
	for _, t := range toks {
		if t == want {
			return true
		}
	}
	return false
}

func hasModalOpener(toks []string) bool {
	for _, t := range toks {
		if _, ok := modalOpeners[t]; ok {
			return true
		}
	}
	return false
}

func isGreeting(toks []string) bool {
	if len(toks) == 0 || len(toks) > 3 {
		return false
	}
	_, ok := greetingWords[toks[0]]
	return ok
}

func isHandoff(norm string) bool {
	for _, p := range handoffKeywords {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func isSmalltalk(norm string) bool {
	for _, p := range smalltalkPhrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func clarify(intent models.Intent, ent models.Entities, ctx Context) (bool, string) {
	switch intent {
	case models.IntentCheckDelivery:
		if ent.Postcode == "" && ctx.Session.Postcode == "" {
			hint := ""
			if len(ctx.CoveragePrefixes) > 0 {
				n := len(ctx.CoveragePrefixes)
				if n > 3 {
					n = 3
				}
				hint = fmt.Sprintf(" (e.g., %s)", strings.Join(ctx.CoveragePrefixes[:n], "/"))
			}
			return true, fmt.Sprintf("What's your postcode%s?", hint)
		}
	case models.IntentSearchProduct:
		if len(ent.Tags) == 0 && ent.Category == "" {
			return true, "Which product or category are you after?"
		}
	case models.IntentPriceCheck:
		if ent.SKU == "" {
			return true, "Which SKU should I price-check?"
		}
	}
	return false, ""
}
