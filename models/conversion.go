package models

// DisplayUnit selects how a converted value is rendered.
type DisplayUnit string

const (
	UnitSats DisplayUnit = "sats"
	UnitBTC  DisplayUnit = "btc"
)

// ConversionResult is the bitcoin-denominated rendering of one price token.
type ConversionResult struct {
	Satoshis int64 `json:"satoshis"`

	// DisplayText is what replaces the original price in the document,
	// e.g. "200,000 sats" or "1.2500 ₿".
	DisplayText string `json:"display_text"`

	Unit DisplayUnit `json:"unit"`

	// OriginalLabel carries the untouched matched text plus the inferred
	// currency code, e.g. "$100 (USD)". It becomes the hover tooltip so
	// the heuristic stays auditable.
	OriginalLabel string `json:"original_label"`
}
