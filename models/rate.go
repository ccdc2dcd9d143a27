package models

// RateSource says where an ExchangeRate came from.
type RateSource string

const (
	RateSourceLive     RateSource = "live"
	RateSourceFallback RateSource = "fallback"
)

// ExchangeRate is the USD reference price of one bitcoin, obtained once at
// run start and held only for the duration of that run.
type ExchangeRate struct {
	BTCUSD float64    `json:"btc_usd"`
	Source RateSource `json:"source"`
}
