// Package convert turns a parsed fiat amount into its bitcoin-denominated
// display form. Pure computation, no side effects.
package convert

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/satsify/satsify/models"
)

const satsPerBTC = 100_000_000

// Converter renders fiat values as sats or whole bitcoin.
type Converter struct {
	euroFactor    float64
	poundFactor   float64
	thresholdSats int64
}

// New builds a Converter from config.
func New(cfg *models.Config) *Converter {
	return &Converter{
		euroFactor:    cfg.EuroFactor,
		poundFactor:   cfg.PoundFactor,
		thresholdSats: cfg.Rewrite.BTCThresholdSats,
	}
}

// Convert computes the satoshi value and display string for one token.
// original is the untouched matched text; it ends up in the tooltip label
// together with the resolved currency code, never the converted value.
// Returns an error instead of panicking when the rate is unusable or the
// symbol is outside the recognized set.
func (c *Converter) Convert(original string, value float64, symbol string, cl models.CurrencyClassification, rate models.ExchangeRate) (models.ConversionResult, error) {
	if rate.BTCUSD <= 0 {
		return models.ConversionResult{}, fmt.Errorf("unconvertible: non-positive rate %v", rate.BTCUSD)
	}

	var code string
	var factor float64
	switch symbol {
	case "$":
		code, factor = cl.Code, cl.USDFactor
	case "€":
		code, factor = "EUR", c.euroFactor
	case "£":
		code, factor = "GBP", c.poundFactor
	default:
		return models.ConversionResult{}, fmt.Errorf("unrecognized currency symbol %q", symbol)
	}

	usdValue := value * factor
	sats := int64(math.Round(usdValue / rate.BTCUSD * satsPerBTC))

	result := models.ConversionResult{
		Satoshis:      sats,
		OriginalLabel: fmt.Sprintf("%s (%s)", original, code),
	}
	// Hard boundary, not a rounding heuristic: at the threshold and above,
	// render whole bitcoin.
	if sats >= c.thresholdSats {
		result.Unit = models.UnitBTC
		result.DisplayText = fmt.Sprintf("%.4f ₿", float64(sats)/satsPerBTC)
	} else {
		result.Unit = models.UnitSats
		result.DisplayText = humanize.Comma(sats) + " sats"
	}
	return result, nil
}
