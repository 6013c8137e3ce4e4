package models

// Intent is the closed set of conversation intents the router can emit.
// Classification is a fixed precedence chain, not a scored model; adding a
// value here requires a matching case in the fact gatherer dispatch table.
type Intent string

const (
	IntentCheckDelivery  Intent = "check_delivery"
	IntentSearchProduct  Intent = "search_product"
	IntentBrowseCategory Intent = "browse_category"
	IntentPriceCheck     Intent = "price_check"
	IntentFAQ            Intent = "faq"
	IntentGreeting       Intent = "greeting"
	IntentSmalltalk      Intent = "smalltalk"
	IntentHumanHandoff   Intent = "human_handoff"
	IntentUnknown        Intent = "unknown"
)

// Valid reports whether the intent is a member of the closed set.
func (i Intent) Valid() bool {
	switch i {
	case IntentCheckDelivery, IntentSearchProduct, IntentBrowseCategory,
		IntentPriceCheck, IntentFAQ, IntentGreeting, IntentSmalltalk,
		IntentHumanHandoff, IntentUnknown:
		return true
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}
