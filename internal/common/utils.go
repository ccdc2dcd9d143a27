// Package common holds small helpers shared by the CLI actions.
package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// markdownLinkPattern extracts the URL from "[text](url)" paste artifacts.
var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste
// issues: whitespace, trailing punctuation, markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	return cleaned
}

// ParsePageURL sanitizes and validates a page URL for rewriting. Only http
// and https pages are eligible; internal schemes (about:, chrome:, file:)
// are restricted and produce an error the caller treats as "nothing to
// convert here".
func ParsePageURL(rawURL string) (*url.URL, error) {
	cleaned := SanitizeURL(rawURL)

	u, err := url.Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("malformed URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("restricted URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL %q has no host", rawURL)
	}
	return u, nil
}
