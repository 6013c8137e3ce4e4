package models

import "encoding/json"

// ItemOption is a free-form option on a catalog item (size, pack, cut).
type ItemOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogItem is one sellable product. SKU is unique and stable within a
// tenant's catalog; price is a non-negative amount in the tenant currency.
type CatalogItem struct {
	SKU          string       `json:"sku"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Unit         string       `json:"unit,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	InStock      bool         `json:"in_stock"`
	Options      []ItemOption `json:"options,omitempty"`
	CategoryID   string       `json:"-"`
	CategoryName string       `json:"-"`

	// Normalized fields annotated at index build time.
	NormName string   `json:"-"`
	NormTags []string `json:"-"`
}

// UnmarshalJSON defaults in_stock to true when the field is absent, so
// tenants that do not track stock still get sellable items.
func (i *CatalogItem) UnmarshalJSON(b []byte) error {
	type alias CatalogItem
	tmp := alias{InStock: true}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*i = CatalogItem(tmp)
	return nil
}

// Category groups catalog items under a stable id.
type Category struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}

// CatalogDocument is the tenant catalog source document.
type CatalogDocument struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}
