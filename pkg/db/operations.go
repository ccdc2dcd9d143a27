package db

import (
	"fmt"
	"time"

	"github.com/satsify/satsify/models"
)

// Run is one recorded rewrite pass.
type Run struct {
	RunID                    int64
	URL                      string
	Hostname                 string
	CurrencyCode             string
	USDFactor                float64
	ClassificationSignal     string
	ClassificationConfidence float64
	PageLanguage             string
	RateBTCUSD               float64
	RateSource               string
	TokensFound              int
	TokensConverted          int
	DurationMS               int64
	CreatedAt                time.Time
}

// Conversion is one converted token within a run.
type Conversion struct {
	ConversionID int64
	RunID        int64
	Original     string
	Display      string
	Satoshis     int64
	Unit         string
}

// InsertRun records a completed pass and returns its run ID.
func (db *DB) InsertRun(run Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (
			url, hostname, currency_code, usd_factor,
			classification_signal, classification_confidence, page_language,
			rate_btc_usd, rate_source, tokens_found, tokens_converted, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.URL, run.Hostname, run.CurrencyCode, run.USDFactor,
		run.ClassificationSignal, run.ClassificationConfidence, run.PageLanguage,
		run.RateBTCUSD, run.RateSource, run.TokensFound, run.TokensConverted, run.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// InsertConversions records the converted tokens of a run in one
// transaction.
func (db *DB) InsertConversions(runID int64, results []models.ConversionResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO conversions (run_id, original, display, satoshis, unit)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(runID, r.OriginalLabel, r.DisplayText, r.Satoshis, string(r.Unit)); err != nil {
			return fmt.Errorf("failed to insert conversion: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, COALESCE(url, ''), COALESCE(hostname, ''),
		       currency_code, usd_factor,
		       COALESCE(classification_signal, ''), COALESCE(classification_confidence, 0),
		       COALESCE(page_language, ''),
		       rate_btc_usd, rate_source, tokens_found, tokens_converted,
		       duration_ms, created_at
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.RunID, &r.URL, &r.Hostname,
			&r.CurrencyCode, &r.USDFactor,
			&r.ClassificationSignal, &r.ClassificationConfidence,
			&r.PageLanguage,
			&r.RateBTCUSD, &r.RateSource, &r.TokensFound, &r.TokensConverted,
			&r.DurationMS, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunConversions returns the conversions recorded for one run.
func (db *DB) GetRunConversions(runID int64) ([]Conversion, error) {
	rows, err := db.Query(`
		SELECT conversion_id, run_id, original, display, satoshis, unit
		FROM conversions WHERE run_id = ? ORDER BY conversion_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var conversions []Conversion
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(&c.ConversionID, &c.RunID, &c.Original, &c.Display, &c.Satoshis, &c.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}
