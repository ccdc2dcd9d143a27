package convert

import (
	"strings"
	"testing"

	"github.com/satsify/satsify/models"
)

var (
	usdClassification = models.CurrencyClassification{Code: "USD", USDFactor: 1.0}
	liveRate          = models.ExchangeRate{BTCUSD: 50000, Source: models.RateSourceLive}
)

func newTestConverter() *Converter {
	return New(models.DefaultConfig())
}

func TestConvert_DollarToSats(t *testing.T) {
	c := newTestConverter()
	got, err := c.Convert("$100", 100, "$", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if got.Satoshis != 200_000 {
		t.Errorf("Satoshis = %d, want 200000", got.Satoshis)
	}
	if got.DisplayText != "200,000 sats" {
		t.Errorf("DisplayText = %q, want %q", got.DisplayText, "200,000 sats")
	}
	if got.Unit != models.UnitSats {
		t.Errorf("Unit = %q, want sats", got.Unit)
	}
	if got.OriginalLabel != "$100 (USD)" {
		t.Errorf("OriginalLabel = %q, want %q", got.OriginalLabel, "$100 (USD)")
	}
}

func TestConvert_PoundUsesFixedFactor(t *testing.T) {
	c := newTestConverter()
	got, err := c.Convert("£50", 50, "£", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// 50 * 1.25 = 62.5 USD -> 125,000 sats at 50k.
	if got.Satoshis != 125_000 {
		t.Errorf("Satoshis = %d, want 125000", got.Satoshis)
	}
	if got.OriginalLabel != "£50 (GBP)" {
		t.Errorf("OriginalLabel = %q, want %q", got.OriginalLabel, "£50 (GBP)")
	}
}

func TestConvert_EuroUsesFixedFactor(t *testing.T) {
	c := newTestConverter()
	got, err := c.Convert("€100", 100, "€", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	// 100 * 1.08 = 108 USD -> 216,000 sats at 50k.
	if got.Satoshis != 216_000 {
		t.Errorf("Satoshis = %d, want 216000", got.Satoshis)
	}
}

func TestConvert_ClassifiedDollarFactor(t *testing.T) {
	c := newTestConverter()
	aud := models.CurrencyClassification{Code: "AUD", USDFactor: 0.65}

	got, err := c.Convert("$200", 200, "$", aud, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	// 200 * 0.65 = 130 USD -> 260,000 sats.
	if got.Satoshis != 260_000 {
		t.Errorf("Satoshis = %d, want 260000", got.Satoshis)
	}
	if got.OriginalLabel != "$200 (AUD)" {
		t.Errorf("OriginalLabel = %q, want %q", got.OriginalLabel, "$200 (AUD)")
	}
}

func TestConvert_ThresholdBoundary(t *testing.T) {
	c := newTestConverter()

	// 25,000 USD at 50k/BTC is exactly 50,000,000 sats: BTC form.
	atThreshold, err := c.Convert("$25,000", 25000, "$", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if atThreshold.Unit != models.UnitBTC {
		t.Errorf("Unit at threshold = %q, want btc", atThreshold.Unit)
	}
	if atThreshold.DisplayText != "0.5000 ₿" {
		t.Errorf("DisplayText = %q, want %q", atThreshold.DisplayText, "0.5000 ₿")
	}

	// One sat below the threshold stays in sats form.
	below, err := c.Convert("$24,999.9995", 24999.9995, "$", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if below.Satoshis != 49_999_999 {
		t.Fatalf("Satoshis = %d, want 49999999", below.Satoshis)
	}
	if below.Unit != models.UnitSats {
		t.Errorf("Unit below threshold = %q, want sats", below.Unit)
	}
	if !strings.HasSuffix(below.DisplayText, " sats") {
		t.Errorf("DisplayText = %q, want sats suffix", below.DisplayText)
	}
}

func TestConvert_BTCFourDecimals(t *testing.T) {
	c := newTestConverter()
	got, err := c.Convert("$62,500", 62500, "$", usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if got.DisplayText != "1.2500 ₿" {
		t.Errorf("DisplayText = %q, want %q", got.DisplayText, "1.2500 ₿")
	}
}

func TestConvert_BadRate(t *testing.T) {
	c := newTestConverter()
	for _, btcUSD := range []float64{0, -1} {
		rate := models.ExchangeRate{BTCUSD: btcUSD}
		if _, err := c.Convert("$1", 1, "$", usdClassification, rate); err == nil {
			t.Errorf("Convert() with rate %v succeeded, want error", btcUSD)
		}
	}
}

func TestConvert_UnknownSymbol(t *testing.T) {
	c := newTestConverter()
	if _, err := c.Convert("¥1", 1, "¥", usdClassification, liveRate); err == nil {
		t.Error("Convert() with unknown symbol succeeded, want error")
	}
}
