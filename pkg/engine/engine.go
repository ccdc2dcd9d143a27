// Package engine orchestrates one rewrite pass: settle the exchange rate,
// classify the page's dollar currency, rewrite the tree, and record the
// run. Expected failures are absorbed here; the caller only ever sees a
// contract violation.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	"github.com/satsify/satsify/models"
	"github.com/satsify/satsify/pkg/classify"
	"github.com/satsify/satsify/pkg/convert"
	"github.com/satsify/satsify/pkg/db"
	"github.com/satsify/satsify/pkg/rates"
	"github.com/satsify/satsify/pkg/rewrite"
	"github.com/satsify/satsify/pkg/scanner"
)

// Stats summarizes one engine run.
type Stats struct {
	TokensFound     int
	TokensConverted int
	Classification  models.CurrencyClassification
	Rate            models.ExchangeRate
	Conversions     []models.ConversionResult
	// Skipped is true when the tree was already processed or the engine
	// is disabled.
	Skipped bool
	// Aborted is true when the abort exhaustion policy fired: no rate, no
	// conversions, clean exit.
	Aborted  bool
	Duration time.Duration
}

// Engine wires the pipeline together. One Engine serves one process; each
// Run call is one pass over one root.
type Engine struct {
	cfg        *models.Config
	classifier *classify.Classifier
	provider   *rates.Provider
	rewriter   *rewrite.Rewriter
	store      *db.DB
	logger     *slog.Logger
}

// New builds an Engine. store may be nil to skip run recording.
func New(cfg *models.Config, store *db.DB, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		classifier: classify.New(cfg),
		provider:   rates.NewProvider(cfg.Rates, logger),
		rewriter:   rewrite.New(scanner.New(), convert.New(cfg), cfg.Rewrite.ExcludedTags, logger),
		store:      store,
		logger:     logger,
	}
}

// Run performs the full pass over root. pageURL is recorded with the run
// and may be empty for file/stdin input. The rewrite does not start until
// the rate fetch has settled, with all its retries, to a live or fallback
// value. The only error path is a caller contract violation (bad root).
func (e *Engine) Run(ctx context.Context, root *html.Node, ev classify.Evidence, pageURL string) (Stats, error) {
	if !e.cfg.Enabled {
		e.logger.Info("engine disabled, not running")
		return Stats{Skipped: true}, nil
	}

	start := time.Now()

	rate, err := e.provider.FetchRate(ctx)
	if err != nil {
		// Abort exhaustion policy, or cancellation during backoff.
		// Either way: clean no-op, nothing propagates to the caller.
		e.logger.Warn("aborting run, no usable rate", "error", err)
		return Stats{Aborted: true, Duration: time.Since(start)}, nil
	}

	cl := e.classifier.Classify(ev)
	e.logger.Info("classified page currency",
		"code", cl.Code, "factor", cl.USDFactor, "signal", cl.Signal,
		"confidence", cl.Confidence, "language", cl.PageLanguage)

	res, err := e.rewriter.Rewrite(root, cl, rate)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TokensFound:     res.TokensFound,
		TokensConverted: res.Converted(),
		Classification:  cl,
		Rate:            rate,
		Conversions:     res.Conversions,
		Skipped:         res.Skipped,
		Duration:        time.Since(start),
	}
	e.logger.Info("rewrite pass finished",
		"tokens_found", stats.TokensFound,
		"tokens_converted", stats.TokensConverted,
		"rate_source", rate.Source,
		"duration", stats.Duration)

	if !stats.Skipped {
		e.record(stats, ev, pageURL)
	}
	return stats, nil
}

// record persists the run. Storage trouble is logged, never fatal.
func (e *Engine) record(stats Stats, ev classify.Evidence, pageURL string) {
	if e.store == nil {
		return
	}

	runID, err := e.store.InsertRun(db.Run{
		URL:                      pageURL,
		Hostname:                 ev.Hostname,
		CurrencyCode:             stats.Classification.Code,
		USDFactor:                stats.Classification.USDFactor,
		ClassificationSignal:     stats.Classification.Signal,
		ClassificationConfidence: stats.Classification.Confidence,
		PageLanguage:             stats.Classification.PageLanguage,
		RateBTCUSD:               stats.Rate.BTCUSD,
		RateSource:               string(stats.Rate.Source),
		TokensFound:              stats.TokensFound,
		TokensConverted:          stats.TokensConverted,
		DurationMS:               stats.Duration.Milliseconds(),
	})
	if err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return
	}
	if err := e.store.InsertConversions(runID, stats.Conversions); err != nil {
		e.logger.Warn("failed to record conversions", "run_id", runID, "error", err)
	}
}
