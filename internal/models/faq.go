package models

// FAQEntry is one curated question/answer pair. The answer may contain
// {placeholder} tokens resolved at render time from turn-scoped facts; a
// placeholder with no supplied value is left verbatim.
type FAQEntry struct {
	Question string   `json:"q"`
	Answer   string   `json:"a"`
	Tags     []string `json:"tags,omitempty"`

	// Normalized fields annotated at index build time.
	NormQuestion string   `json:"-"`
	QTokens      []string `json:"-"`
	NormTags     []string `json:"-"`
}
