package models

// RuleSource records which precedence level produced a delivery rule.
type RuleSource string

const (
	RuleSourceException RuleSource = "exception"
	RuleSourcePrefix    RuleSource = "prefix"
)

// DeliveryRule is the effective delivery terms for one postcode.
type DeliveryRule struct {
	Fee      float64    `json:"fee"`
	MinOrder float64    `json:"min_order"`
	EtaMin   int        `json:"eta_min"`
	Source   RuleSource `json:"source"`
}

// DeliveryArea is an outward-prefix level rule in the tenant document.
type DeliveryArea struct {
	PostcodePrefix string  `json:"postcode_prefix"`
	Fee            float64 `json:"fee"`
	MinOrder       float64 `json:"min_order"`
	EtaMin         int     `json:"eta_min"`
}

// DeliveryException is an exact-postcode rule that overrides any prefix rule.
type DeliveryException struct {
	Postcode string  `json:"postcode"`
	Fee      float64 `json:"fee"`
	MinOrder float64 `json:"min_order"`
	EtaMin   int     `json:"eta_min"`
}

// DeliveryDocument is the tenant delivery policy source document.
type DeliveryDocument struct {
	Areas           []DeliveryArea      `json:"areas"`
	Exceptions      []DeliveryException `json:"exceptions"`
	ClickAndCollect *bool               `json:"click_and_collect,omitempty"`
	Notes           string              `json:"notes,omitempty"`
}
