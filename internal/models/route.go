package models

// Entities holds the values extracted from one utterance. Each kind appears
// at most once per turn; zero values mean "not present".
type Entities struct {
	Postcode string   `json:"postcode,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	SKU      string   `json:"sku,omitempty"`
	Category string   `json:"category,omitempty"`
	Query    string   `json:"query,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ToMap flattens the entities for the outbound turn payload.
func (e Entities) ToMap() map[string]interface{} {
	out := map[string]interface{}{}
	if e.Postcode != "" {
		out["postcode"] = e.Postcode
	}
	if e.Phone != "" {
		out["phone"] = e.Phone
	}
	if e.SKU != "" {
		out["sku"] = e.SKU
	}
	if e.Category != "" {
		out["category"] = e.Category
	}
	if e.Query != "" {
		out["query"] = e.Query
	}
	if len(e.Tags) > 0 {
		out["tags"] = e.Tags
	}
	return out
}

// Route is the router's output for one utterance. It is created once per
// turn and never mutated afterwards; the fact gatherer and every strategy
// consume it read-only. The one exception is the orchestrator's anti-loop
// downgrade, which builds a fresh Route rather than editing this one.
type Route struct {
	Intent             Intent
	Entities           Entities
	NeedsClarification bool
	Clarifier          string
	Utterance          string
}
