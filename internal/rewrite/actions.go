// Package rewrite holds the CLI actions for the satsify binary.
package rewrite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/net/html"

	"github.com/satsify/satsify/internal/common"
	"github.com/satsify/satsify/models"
	"github.com/satsify/satsify/pkg/db"
	"github.com/satsify/satsify/pkg/engine"
	"github.com/satsify/satsify/pkg/evidence"
	"github.com/satsify/satsify/pkg/fetcher"
	"github.com/satsify/satsify/pkg/rates"
	"github.com/satsify/satsify/pkg/scanner"
)

func newLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func loadConfig(c *cli.Context, logger *slog.Logger) *models.Config {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	return cfg
}

// RewriteAction runs one rewrite pass over a page and emits the rewritten
// HTML.
func RewriteAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))
	cfg := loadConfig(c, logger)

	if c.Bool("abort-on-rate-failure") {
		cfg.Rates.ExhaustionPolicy = models.PolicyAbort
	}

	if !cfg.Enabled {
		logger.Info("satsify is disabled in config, nothing to do")
		return nil
	}

	if c.IsSet("url") && c.IsSet("file") {
		fmt.Fprintln(os.Stderr, "Error: Cannot use both --url and --file")
		os.Exit(1)
	}

	var pageURL *url.URL
	var src []byte
	switch {
	case c.IsSet("url"):
		parsed, err := common.ParsePageURL(c.String("url"))
		if err != nil {
			// Restricted or malformed pages are "nothing to convert
			// here", not a failure.
			logger.Info("skipping ineligible page", "url", c.String("url"), "reason", err)
			return nil
		}
		pageURL = parsed

		body, err := fetcher.NewFetcher().GetHTML(c.Context, pageURL.String())
		if err != nil {
			logger.Error("failed to fetch page", "url", pageURL.String(), "error", err)
			os.Exit(1)
		}
		src = body
	case c.IsSet("file") && c.String("file") != "-":
		body, err := os.ReadFile(c.String("file"))
		if err != nil {
			logger.Error("failed to read input file", "error", err)
			os.Exit(1)
		}
		src = body
	default:
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("failed to read stdin", "error", err)
			os.Exit(1)
		}
		src = body
	}

	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		logger.Error("failed to parse HTML", "error", err)
		os.Exit(1)
	}

	locale := c.String("locale")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	ev := evidence.Build(pageURL, string(src), locale)

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	var rawURL string
	if pageURL != nil {
		rawURL = pageURL.String()
	}

	eng := engine.New(cfg, store, logger)
	stats, err := eng.Run(c.Context, root, ev, rawURL)
	if err != nil {
		logger.Error("rewrite pass failed", "error", err)
		os.Exit(2)
	}

	if c.Bool("dry-run") {
		return printJSON(os.Stdout, stats)
	}
	if stats.Aborted {
		logger.Warn("run aborted, emitting input unchanged")
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logger.Error("failed to create output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := html.Render(out, root); err != nil {
		logger.Error("failed to render output", "error", err)
		os.Exit(1)
	}
	return nil
}

// openStore opens the run-history database. Storage trouble degrades to
// "no recording", never blocks the rewrite.
func openStore(cfg *models.Config, logger *slog.Logger) *db.DB {
	store, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return nil
	}
	return store
}

// scannedToken is the scan command's output row.
type scannedToken struct {
	models.PriceToken
	Amount models.ParsedAmount `json:"amount"`
}

// ScanAction prints the price tokens found in a string. Debug surface.
func ScanAction(c *cli.Context) error {
	text := c.String("text")
	if text == "" {
		fmt.Fprintln(os.Stderr, "Error: --text is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, `Usage: satsify scan --text "coffee for $4.50"`)
		os.Exit(1)
	}

	tokens := scanner.New().Scan(text)
	rows := make([]scannedToken, 0, len(tokens))
	for _, tok := range tokens {
		rows = append(rows, scannedToken{PriceToken: tok, Amount: scanner.ParseAmount(tok)})
	}
	return printJSON(os.Stdout, rows)
}

// RateAction fetches and prints the current rate and its source.
func RateAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))
	cfg := loadConfig(c, logger)

	provider := rates.NewProvider(cfg.Rates, logger)
	rate, err := provider.FetchRate(c.Context)
	if err != nil {
		logger.Error("no usable rate", "error", err)
		os.Exit(1)
	}
	return printJSON(os.Stdout, rate)
}

// RunsAction lists recorded rewrite runs, newest first.
func RunsAction(c *cli.Context) error {
	logger := newLogger(c.Bool("quiet"))
	cfg := loadConfig(c, logger)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(2)
	}
	defer store.Close()

	runs, err := store.ListRuns(c.Int("limit"))
	if err != nil {
		logger.Error("failed to list runs", "error", err)
		os.Exit(2)
	}
	return printJSON(os.Stdout, runs)
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
