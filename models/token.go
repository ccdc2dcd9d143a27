package models

// PriceToken is one candidate currency amount found in a scanned string.
// Offsets are byte offsets into the original input.
type PriceToken struct {
	MatchedText   string `json:"matched_text"`
	SymbolChar    string `json:"symbol"`
	RawNumber     string `json:"raw_number"`
	MagnitudeWord string `json:"magnitude,omitempty"`
	StartOffset   int    `json:"start"`
	Length        int    `json:"length"`
}

// End returns the byte offset one past the token's last byte.
func (t PriceToken) End() int {
	return t.StartOffset + t.Length
}

// ParsedAmount is the numeric reading of a PriceToken after grouping
// separators are stripped and the magnitude multiplier is applied.
// IsValid is false when the cleaned numeral fails to parse; such tokens
// are dropped before conversion.
type ParsedAmount struct {
	NumericValue float64
	IsValid      bool
}
