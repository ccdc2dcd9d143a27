// Package rates fetches the USD reference price of bitcoin from a ticker
// endpoint, with bounded retries and a hard fallback so the rest of the
// pipeline always has a usable rate.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/satsify/satsify/models"
)

// ErrRateUnavailable is returned only under the abort exhaustion policy,
// after every attempt has failed.
var ErrRateUnavailable = errors.New("exchange rate unavailable after all attempts")

// tickerEntry is one instrument from the ticker response. Price comes as a
// string, the way exchanges serve it.
type tickerEntry struct {
	Symbol string `json:"symbol"`
	Quote  string `json:"quote"`
	Price  string `json:"price"`
}

// Provider fetches the BTC/USD rate once per run.
type Provider struct {
	client *http.Client
	cfg    models.RatesConfig
	logger *slog.Logger

	// cached holds the settled rate for the rest of the session.
	cached *models.ExchangeRate
}

// NewProvider builds a Provider with a sane default client timeout.
func NewProvider(cfg models.RatesConfig, logger *slog.Logger) *Provider {
	return &Provider{
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
		logger: logger,
	}
}

// FetchRate returns the BTC/USD rate. Up to MaxAttempts tries with
// exponential backoff between failed attempts only; network errors, bad
// statuses and malformed bodies all count the same. On exhaustion the
// configured policy decides: fallback rate (default) or error.
//
// The first settled rate is cached; later calls in the same session return
// it without touching the network.
func (p *Provider) FetchRate(ctx context.Context) (models.ExchangeRate, error) {
	if p.cached != nil {
		return *p.cached, nil
	}

	delay := time.Duration(p.cfg.BackoffBase)
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		rate, err := p.fetchOnce(ctx)
		if err == nil {
			result := models.ExchangeRate{BTCUSD: rate, Source: models.RateSourceLive}
			p.cached = &result
			p.logger.Info("fetched live rate", "btc_usd", rate, "attempt", attempt)
			return result, nil
		}

		p.logger.Warn("rate fetch attempt failed", "attempt", attempt, "error", err)

		if attempt == p.cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return p.exhausted(ctx.Err())
		}
		delay *= 2
	}

	return p.exhausted(nil)
}

// exhausted applies the exhaustion policy after the final failure.
func (p *Provider) exhausted(cause error) (models.ExchangeRate, error) {
	if p.cfg.ExhaustionPolicy == models.PolicyAbort {
		if cause != nil {
			return models.ExchangeRate{}, fmt.Errorf("%w: %w", ErrRateUnavailable, cause)
		}
		return models.ExchangeRate{}, ErrRateUnavailable
	}

	result := models.ExchangeRate{
		BTCUSD: p.cfg.FallbackBTCUSD,
		Source: models.RateSourceFallback,
	}
	p.cached = &result
	p.logger.Warn("using fallback rate", "btc_usd", result.BTCUSD)
	return result, nil
}

// fetchOnce does one GET and picks the first acceptable instrument.
func (p *Provider) fetchOnce(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to fetch ticker, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var entries []tickerEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse ticker body: %w", err)
	}

	return p.selectRate(entries)
}

// selectRate picks the first entry whose quote currency is accepted and
// whose price is a valid positive number.
func (p *Provider) selectRate(entries []tickerEntry) (float64, error) {
	for _, e := range entries {
		quote := e.Quote
		if quote == "" {
			// Some tickers (Binance among them) only carry a combined
			// symbol like BTCUSDT.
			quote = p.quoteFromSymbol(e.Symbol)
		}
		if !p.quoteAccepted(quote) {
			continue
		}
		price, err := strconv.ParseFloat(e.Price, 64)
		if err != nil || price <= 0 {
			continue
		}
		return price, nil
	}
	return 0, fmt.Errorf("no usable instrument among %d ticker entries", len(entries))
}

// quoteFromSymbol reads the quote currency off a combined symbol by the
// longest accepted suffix, so BTCFDUSD resolves to FDUSD rather than USD.
func (p *Provider) quoteFromSymbol(symbol string) string {
	best := ""
	for _, q := range p.cfg.AcceptedQuotes {
		if strings.HasSuffix(symbol, q) && len(q) > len(best) {
			best = q
		}
	}
	return best
}

func (p *Provider) quoteAccepted(quote string) bool {
	for _, q := range p.cfg.AcceptedQuotes {
		if q == quote {
			return true
		}
	}
	return false
}
