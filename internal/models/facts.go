package models

// DeliveryFact is the delivery portion of a fact bundle. Rule is nil when
// the postcode is not covered; the summary is then empty too.
type DeliveryFact struct {
	Postcode string        `json:"postcode"`
	Rule     *DeliveryRule `json:"rule,omitempty"`
	Summary  string        `json:"summary,omitempty"`
}

// BranchFact carries the nearest branch resolved for the turn.
type BranchFact struct {
	Nearest NearestBranch `json:"nearest"`
}

// PriceFact is the price/stock lookup result for one SKU. Price is nil when
// the SKU is unknown; strategies must say so instead of guessing.
type PriceFact struct {
	SKU     string   `json:"sku"`
	Price   *float64 `json:"price,omitempty"`
	InStock *bool    `json:"in_stock,omitempty"`
}

// FAQFact is the best FAQ match with its rendered answer.
type FAQFact struct {
	Entry  FAQEntry `json:"entry"`
	Answer string   `json:"answer"`
}

// FactBundle is everything a strategy is allowed to cite for one turn.
// Every present fact is traceable to a retrieval-store call made during
// this turn; strategies never synthesize fields into it.
type FactBundle struct {
	Delivery *DeliveryFact `json:"delivery,omitempty"`
	Branch   *BranchFact   `json:"branch,omitempty"`
	Items    []CatalogItem `json:"items,omitempty"`
	Price    *PriceFact    `json:"price,omitempty"`
	FAQ      *FAQFact      `json:"faq,omitempty"`
}

// Empty reports whether there is nothing to ground on this turn.
func (f FactBundle) Empty() bool {
	return f.Delivery == nil && f.Branch == nil && len(f.Items) == 0 &&
		f.Price == nil && f.FAQ == nil
}

// ToMap flattens the bundle for the outbound turn payload.
func (f FactBundle) ToMap() map[string]interface{} {
	out := map[string]interface{}{}
	if f.Delivery != nil {
		out["delivery"] = f.Delivery
	}
	if f.Branch != nil {
		out["branch"] = f.Branch
	}
	if len(f.Items) > 0 {
		out["items"] = f.Items
	}
	if f.Price != nil {
		out["price"] = f.Price
	}
	if f.FAQ != nil {
		out["faq"] = f.FAQ
	}
	return out
}
