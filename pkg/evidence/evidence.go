// Package evidence gathers the read-only signal bundle the classifier
// consumes: page hostname, user locale, and visible page text.
package evidence

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/satsify/satsify/pkg/classify"
)

// visibleTextCap bounds how much page text the classifier has to chew on.
const visibleTextCap = 20000

// Build assembles the evidence bundle for one page. pageURL may be nil
// (file or stdin input); readability failures fall back to a plain
// goquery text extraction, and every failure mode degrades to weaker
// evidence rather than an error.
func Build(pageURL *url.URL, htmlSrc, locale string) classify.Evidence {
	ev := classify.Evidence{Locale: locale}
	if pageURL != nil {
		ev.Hostname = pageURL.Hostname()
	}
	ev.VisibleText = truncate(visibleText(pageURL, htmlSrc), visibleTextCap)
	return ev
}

// visibleText prefers readability's article distillation and falls back to
// the body text with script/style subtrees dropped.
func visibleText(pageURL *url.URL, htmlSrc string) string {
	if pageURL != nil {
		parser := readability.NewParser()
		article, err := parser.Parse(strings.NewReader(htmlSrc), pageURL)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return article.TextContent
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return ""
	}
	doc.Find("script,style,noscript").Remove()
	return doc.Find("body").Text()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
