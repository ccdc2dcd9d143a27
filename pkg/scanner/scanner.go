// Package scanner finds fiat-currency price mentions in plain text and
// turns them into typed tokens with byte offsets.
package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/satsify/satsify/models"
)

// pricePattern matches: currency symbol, optional single whitespace, a
// numeral (1-3 digits, then comma/space-separated groups of 3, then an
// optional decimal part), and an optional magnitude word. The trailing \b
// keeps magnitude suffixes from latching onto alphanumeric IDs ("$5k9"
// yields just "$5").
var pricePattern = regexp.MustCompile(
	`([$€£])\s?(\d{1,3}(?:[, ]\d{3})*(?:\.\d+)?)(?:\s?((?i:hundred|thousand|million|billion|trillion|[kmbt]))\b)?`,
)

// Scanner produces price tokens from text. It is stateless and safe for
// reuse across inputs; each Scan call walks its input independently, left
// to right.
type Scanner struct {
	re *regexp.Regexp
}

// New returns a Scanner using the standard price grammar.
func New() *Scanner {
	return &Scanner{re: pricePattern}
}

// Scan returns all price tokens in input, ordered left to right. Tokens
// never overlap and offsets are byte offsets into input. The result is
// deterministic for a fixed input.
func (s *Scanner) Scan(input string) []models.PriceToken {
	matches := s.re.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]models.PriceToken, 0, len(matches))
	for _, m := range matches {
		tok := models.PriceToken{
			MatchedText: input[m[0]:m[1]],
			SymbolChar:  input[m[2]:m[3]],
			RawNumber:   input[m[4]:m[5]],
			StartOffset: m[0],
			Length:      m[1] - m[0],
		}
		if m[6] >= 0 {
			tok.MagnitudeWord = input[m[6]:m[7]]
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ParseAmount reads a token's numeral: grouping separators stripped, then
// the magnitude multiplier applied. An unparsable numeral yields
// IsValid=false; callers drop such tokens rather than failing the pass.
func ParseAmount(tok models.PriceToken) models.ParsedAmount {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(tok.RawNumber)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return models.ParsedAmount{}
	}
	return models.ParsedAmount{
		NumericValue: n * Multiplier(tok.MagnitudeWord),
		IsValid:      true,
	}
}
