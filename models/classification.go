package models

// CurrencyClassification is the inferred real-world currency identity for
// ambiguous dollar-sign amounts on one page. Computed once per run from weak
// signals (hostname, locale, visible text) and immutable afterwards.
type CurrencyClassification struct {
	// Code is an ISO 4217-style code: USD, CAD, AUD, NZD, SGD, ...
	Code string `json:"code"`
	// USDFactor is units of USD per one unit of the classified currency.
	// Static approximation, not a live rate.
	USDFactor float64 `json:"usd_factor"`
	// Signal names the evidence that decided the classification:
	// "keyword", "tld", "locale" or "default".
	Signal string `json:"signal,omitempty"`
	// Confidence is a 0-10 score based on signal strength. Informational
	// only; it never changes which code is chosen.
	Confidence float64 `json:"confidence,omitempty"`
	// PageLanguage is the detected language of the visible text, when
	// detection succeeded. Another weak signal feeding Confidence.
	PageLanguage string `json:"page_language,omitempty"`
}
