package scanner

// magnitudeTable maps magnitude words and single-letter suffixes to their
// multipliers. Lookup is case-insensitive; an absent magnitude means 1.
var magnitudeTable = map[string]float64{
	"hundred":  1e2,
	"thousand": 1e3,
	"k":        1e3,
	"million":  1e6,
	"m":        1e6,
	"billion":  1e9,
	"b":        1e9,
	"trillion": 1e12,
	"t":        1e12,
}

// Multiplier returns the multiplier for a magnitude word, or 1 when the
// word is empty or unknown.
func Multiplier(word string) float64 {
	if word == "" {
		return 1
	}
	if m, ok := magnitudeTable[lower(word)]; ok {
		return m
	}
	return 1
}

// lower is an ASCII-only ToLower; magnitude words are ASCII by construction.
func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
