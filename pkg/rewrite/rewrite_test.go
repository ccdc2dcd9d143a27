package rewrite

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/satsify/satsify/models"
	"github.com/satsify/satsify/pkg/convert"
	"github.com/satsify/satsify/pkg/scanner"
)

var (
	usdClassification = models.CurrencyClassification{Code: "USD", USDFactor: 1.0}
	liveRate          = models.ExchangeRate{BTCUSD: 50000, Source: models.RateSourceLive}
)

func newTestRewriter() *Rewriter {
	cfg := models.DefaultConfig()
	return New(
		scanner.New(),
		convert.New(cfg),
		cfg.Rewrite.ExcludedTags,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func parseHTML(t *testing.T, s string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return root
}

func renderHTML(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("html.Render() error = %v", err)
	}
	return buf.String()
}

func TestRewrite_EndToEnd(t *testing.T) {
	r := newTestRewriter()
	root := parseHTML(t, `<html><body><p>Buy now for $100 or save with a £50 deal.</p></body></html>`)

	res, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if res.Converted() != 2 {
		t.Errorf("Converted() = %d, want 2", res.Converted())
	}
	if res.TokensFound != 2 {
		t.Errorf("TokensFound = %d, want 2", res.TokensFound)
	}

	doc := goquery.NewDocumentFromNode(root)
	spans := doc.Find("span." + SpanClass)
	if spans.Length() != 2 {
		t.Fatalf("found %d price spans, want 2", spans.Length())
	}

	wantText := []string{"200,000 sats", "125,000 sats"}
	wantTitle := []string{"$100 (USD)", "£50 (GBP)"}
	spans.Each(func(i int, s *goquery.Selection) {
		if s.Text() != wantText[i] {
			t.Errorf("span %d text = %q, want %q", i, s.Text(), wantText[i])
		}
		if title, _ := s.Attr("title"); title != wantTitle[i] {
			t.Errorf("span %d title = %q, want %q", i, title, wantTitle[i])
		}
	})

	// Conversions are reported in document order.
	if res.Conversions[0].OriginalLabel != "$100 (USD)" || res.Conversions[1].OriginalLabel != "£50 (GBP)" {
		t.Errorf("Conversions out of order: %+v", res.Conversions)
	}

	// Surrounding literal text is untouched.
	bodyText := doc.Find("p").Text()
	if !strings.HasPrefix(bodyText, "Buy now for ") {
		t.Errorf("prefix text lost: %q", bodyText)
	}
	if !strings.Contains(bodyText, " or save with a ") {
		t.Errorf("middle text lost: %q", bodyText)
	}
	if !strings.HasSuffix(bodyText, " deal.") {
		t.Errorf("suffix text lost: %q", bodyText)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	r := newTestRewriter()
	root := parseHTML(t, `<html><body><p>only $25 today</p></body></html>`)

	first, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("first Rewrite() error = %v", err)
	}
	if first.Converted() != 1 {
		t.Fatalf("first Converted() = %d, want 1", first.Converted())
	}
	rendered := renderHTML(t, root)

	second, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("second Rewrite() error = %v", err)
	}
	if second.Converted() != 0 {
		t.Errorf("second Converted() = %d, want 0", second.Converted())
	}
	if !second.Skipped {
		t.Error("second pass Skipped = false, want true")
	}
	if got := renderHTML(t, root); got != rendered {
		t.Errorf("second pass changed output:\nfirst:  %s\nsecond: %s", rendered, got)
	}
}

func TestRewrite_Exclusions(t *testing.T) {
	r := newTestRewriter()
	root := parseHTML(t, `<html><body>
		<script>var price = "$100";</script>
		<style>.x:before { content: "$5"; }</style>
		<a href="/deal">grab it for $30</a>
		<textarea>$40</textarea>
		<p>but $20 here converts</p>
	</body></html>`)

	res, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if res.Converted() != 1 {
		t.Errorf("Converted() = %d, want 1 (only the <p> text)", res.Converted())
	}

	out := renderHTML(t, root)
	for _, untouched := range []string{`var price = "$100";`, `content: "$5";`, "grab it for $30", "$40"} {
		if !strings.Contains(out, untouched) {
			t.Errorf("excluded content was modified, missing %q in:\n%s", untouched, out)
		}
	}
	if strings.Contains(out, "$20") {
		t.Errorf("prose price not converted:\n%s", out)
	}
}

func TestRewrite_TraversalSurvivesMutation(t *testing.T) {
	r := newTestRewriter()
	// Several prices in one text node followed by sibling elements; a
	// broken cursor would skip or reprocess some of them.
	root := parseHTML(t, `<html><body><p>$1 then $2 then $3 tail</p><p>$4</p><div><p>$5</p></div></body></html>`)

	res, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if res.Converted() != 5 {
		t.Errorf("Converted() = %d, want 5", res.Converted())
	}

	doc := goquery.NewDocumentFromNode(root)
	if n := doc.Find("span." + SpanClass).Length(); n != 5 {
		t.Errorf("found %d spans, want 5", n)
	}
	if text := doc.Find("body").Text(); !strings.Contains(text, "tail") {
		t.Errorf("text after the last token lost: %q", text)
	}
}

func TestRewrite_NoTokensLeavesNodeAlone(t *testing.T) {
	r := newTestRewriter()
	const input = `<html><head></head><body><p>nothing to see here</p></body></html>`
	root := parseHTML(t, input)

	res, err := r.Rewrite(root, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if res.Converted() != 0 {
		t.Errorf("Converted() = %d, want 0", res.Converted())
	}

	out := renderHTML(t, root)
	if !strings.Contains(out, "<p>nothing to see here</p>") {
		t.Errorf("untouched node changed:\n%s", out)
	}
}

func TestRewrite_BadRootIsContractViolation(t *testing.T) {
	r := newTestRewriter()

	if _, err := r.Rewrite(nil, usdClassification, liveRate); err == nil {
		t.Error("Rewrite(nil) succeeded, want error")
	}

	textRoot := &html.Node{Type: html.TextNode, Data: "$5"}
	if _, err := r.Rewrite(textRoot, usdClassification, liveRate); err == nil {
		t.Error("Rewrite(text node) succeeded, want error")
	}
}

func TestRewrite_ElementRoot(t *testing.T) {
	r := newTestRewriter()
	root := parseHTML(t, `<html><body><div id="x">pay $10 now</div></body></html>`)

	doc := goquery.NewDocumentFromNode(root)
	div := doc.Find("#x").Get(0)

	res, err := r.Rewrite(div, usdClassification, liveRate)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if res.Converted() != 1 {
		t.Errorf("Converted() = %d, want 1", res.Converted())
	}

	// Guard lands on the element root itself.
	found := false
	for _, attr := range div.Attr {
		if attr.Key == MarkerAttr {
			found = true
		}
	}
	if !found {
		t.Errorf("guard attribute %q not set on element root", MarkerAttr)
	}
}

func TestRewrite_BTCFormInTree(t *testing.T) {
	r := newTestRewriter()
	root := parseHTML(t, `<html><body><p>a house for $500,000</p></body></html>`)

	if _, err := r.Rewrite(root, usdClassification, liveRate); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	// 500,000 USD at 50k = 10 BTC.
	if got := doc.Find("span." + SpanClass).Text(); got != "10.0000 ₿" {
		t.Errorf("span text = %q, want %q", got, "10.0000 ₿")
	}
}
