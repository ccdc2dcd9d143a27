// Package classify infers which real-world currency an ambiguous "$"
// refers to, from weak page-level signals: visible text keywords, the
// hostname's country TLD, and the user locale. Best-effort by design; it
// never fails and defaults to USD.
package classify

import (
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"
	"github.com/satsify/satsify/models"
)

// Evidence is the read-only signal bundle for one page, gathered once per
// run and never re-evaluated per token.
type Evidence struct {
	Hostname    string
	Locale      string
	VisibleText string
}

// keywordRule maps an explicit currency mention in page text to a code.
// Full names are matched by substring; bare codes need word boundaries so
// "CAD" doesn't fire inside "CASCADE".
type keywordRule struct {
	name string
	code *regexp.Regexp
	to   string
}

var keywordRules = []keywordRule{
	{name: "AUSTRALIAN DOLLAR", code: regexp.MustCompile(`\bAUD\b`), to: "AUD"},
	{name: "CANADIAN DOLLAR", code: regexp.MustCompile(`\bCAD\b`), to: "CAD"},
	{name: "NEW ZEALAND DOLLAR", code: regexp.MustCompile(`\bNZD\b`), to: "NZD"},
	{name: "SINGAPORE DOLLAR", code: regexp.MustCompile(`\bSGD\b`), to: "SGD"},
	{name: "US DOLLAR", code: regexp.MustCompile(`\bUSD\b`), to: "USD"},
}

// countrySignals maps TLD suffixes and locale tokens to dollar codes.
var countrySignals = map[string]string{
	"au": "AUD",
	"ca": "CAD",
	"nz": "NZD",
	"sg": "SGD",
	"us": "USD",
}

// Classifier resolves the dollar-sign currency for a page.
type Classifier struct {
	dollarFactors map[string]float64
	langDetector  lingua.LanguageDetector
}

// New builds a Classifier from the configured factor table. The language
// detector covers the languages spoken where the supported currencies
// circulate; detection feeds the confidence score only.
func New(cfg *models.Config) *Classifier {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.French,
			lingua.German,
			lingua.Spanish,
			lingua.Italian,
			lingua.Portuguese,
			lingua.Dutch,
			lingua.Chinese,
		).
		Build()

	return &Classifier{
		dollarFactors: cfg.DollarFactors,
		langDetector:  detector,
	}
}

// Classify returns exactly one classification for ambiguous dollar-sign
// amounts. Precedence, first match wins: explicit currency keyword in
// visible text, then country TLD or locale token, then USD.
func (c *Classifier) Classify(ev Evidence) models.CurrencyClassification {
	cl := models.CurrencyClassification{Code: "USD", Signal: "default"}

	if code := c.keywordSignal(ev.VisibleText); code != "" {
		cl.Code = code
		cl.Signal = "keyword"
	} else if code := tldSignal(ev.Hostname); code != "" {
		cl.Code = code
		cl.Signal = "tld"
	} else if code := localeSignal(ev.Locale); code != "" {
		cl.Code = code
		cl.Signal = "locale"
	}

	cl.USDFactor = c.factorFor(cl.Code)
	cl.PageLanguage = c.detectLanguage(ev.VisibleText)
	cl.Confidence = confidence(cl)
	return cl
}

// factorFor looks up the static USD factor for a dollar code, defaulting
// to 1.0 when the table has no entry.
func (c *Classifier) factorFor(code string) float64 {
	if f, ok := c.dollarFactors[code]; ok && f > 0 {
		return f
	}
	return 1.0
}

func (c *Classifier) keywordSignal(visibleText string) string {
	if visibleText == "" {
		return ""
	}
	upper := strings.ToUpper(visibleText)
	for _, rule := range keywordRules {
		if strings.Contains(upper, rule.name) || rule.code.MatchString(upper) {
			return rule.to
		}
	}
	return ""
}

// tldSignal extracts a country guess from the hostname's last label,
// e.g. "shop.example.au" -> AUD.
func tldSignal(hostname string) string {
	host := strings.ToLower(hostname)
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	tld := parts[len(parts)-1]
	return countrySignals[tld]
}

// localeSignal reads the region out of a BCP 47-ish locale tag,
// e.g. "en-AU" or "en_au.UTF-8" -> AUD.
func localeSignal(locale string) string {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if tag == "" {
		return ""
	}
	// Strip encoding suffix: "en_AU.UTF-8" -> "en_au"
	if i := strings.IndexByte(tag, '.'); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	parts := strings.Split(tag, "-")
	if len(parts) < 2 {
		return ""
	}
	return countrySignals[parts[1]]
}

func (c *Classifier) detectLanguage(visibleText string) string {
	if strings.TrimSpace(visibleText) == "" {
		return ""
	}
	lang, ok := c.langDetector.DetectLanguageOf(visibleText)
	if !ok {
		return ""
	}
	return lang.String()
}

// confidence scores signal strength on a 0-10 scale. Informational only;
// it never changes which code was chosen.
func confidence(cl models.CurrencyClassification) float64 {
	score := 5.0
	switch cl.Signal {
	case "keyword":
		score += 3.0
	case "tld":
		score += 2.0
	case "locale":
		score += 1.5
	}
	if cl.PageLanguage != "" {
		score += 0.5
	}
	if score > 10.0 {
		score = 10.0
	}
	return score
}
