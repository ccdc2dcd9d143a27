// Package rewrite walks an HTML node tree and replaces fiat price mentions
// in text nodes with annotated bitcoin-denominated spans, in a single pass
// that stays consistent while the tree is being mutated.
package rewrite

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/satsify/satsify/models"
	"github.com/satsify/satsify/pkg/convert"
	"github.com/satsify/satsify/pkg/scanner"
)

const (
	// MarkerAttr is the whole-document "already processed" guard, set on
	// the root element after a successful pass.
	MarkerAttr = "data-satsified"
	// SpanClass marks replacement elements so a later pass never
	// reprocesses its own output.
	SpanClass = "sat-price"
)

// Result summarizes one rewrite pass.
type Result struct {
	// TokensFound counts every token the scanner produced, valid or not.
	TokensFound int
	// Conversions holds one entry per token actually converted, in
	// document order.
	Conversions []models.ConversionResult
	// Skipped is true when the pass found the guard already set and did
	// nothing.
	Skipped bool
}

// Converted returns the number of tokens converted.
func (r Result) Converted() int {
	return len(r.Conversions)
}

// Rewriter performs the rewrite pass.
type Rewriter struct {
	scanner   *scanner.Scanner
	converter *convert.Converter
	excluded  map[string]struct{}
	logger    *slog.Logger
}

// New builds a Rewriter. excludedTags are element names whose subtrees are
// left alone (script/style content, links, form controls).
func New(sc *scanner.Scanner, conv *convert.Converter, excludedTags []string, logger *slog.Logger) *Rewriter {
	excluded := make(map[string]struct{}, len(excludedTags))
	for _, tag := range excludedTags {
		excluded[tag] = struct{}{}
	}
	return &Rewriter{
		scanner:   sc,
		converter: conv,
		excluded:  excluded,
		logger:    logger,
	}
}

// Rewrite runs one depth-first pass over root, converting every valid
// price token it finds.
//
// Running it twice over the same root is a no-op the second time: the pass
// checks the guard attribute before starting and sets it after finishing.
// A nil or non-element root is a caller contract violation and the only
// error path.
func (r *Rewriter) Rewrite(root *html.Node, cl models.CurrencyClassification, rate models.ExchangeRate) (Result, error) {
	if root == nil {
		return Result{}, fmt.Errorf("rewrite root is nil")
	}
	if root.Type != html.DocumentNode && root.Type != html.ElementNode {
		return Result{}, fmt.Errorf("rewrite root must be a document or element node, got type %d", root.Type)
	}

	guard := guardElement(root)
	if guard == nil {
		return Result{}, nil
	}
	if hasAttr(guard, MarkerAttr) {
		r.logger.Info("tree already processed, skipping")
		return Result{Skipped: true}, nil
	}

	var result Result
	r.walk(root, cl, rate, &result)

	guard.Attr = append(guard.Attr, html.Attribute{Key: MarkerAttr, Val: "1"})
	return result, nil
}

// walk visits n's children depth-first. The loop precomputes the next
// sibling, and after a text node is spliced the cursor is re-homed to the
// sibling of the last inserted node, so mutation never detaches the
// traversal or skips siblings.
func (r *Rewriter) walk(n *html.Node, cl models.CurrencyClassification, rate models.ExchangeRate, result *Result) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling

		switch child.Type {
		case html.ElementNode:
			if !r.skipElement(child) {
				r.walk(child, cl, rate, result)
			}
		case html.TextNode:
			if last := r.rewriteTextNode(child, cl, rate, result); last != nil {
				next = last.NextSibling
			}
		}

		child = next
	}
}

// skipElement reports whether an element's subtree is off limits: excluded
// tags, and spans produced by a prior conversion.
func (r *Rewriter) skipElement(el *html.Node) bool {
	if _, ok := r.excluded[el.Data]; ok {
		return true
	}
	for _, attr := range el.Attr {
		if attr.Key == "class" && attr.Val == SpanClass {
			return true
		}
	}
	return false
}

// rewriteTextNode converts the price tokens of one text node. Read phase
// first: all replacement spans are built before the tree is touched. Write
// phase second: one splice replaces the node with the interleaved
// (text, span, ..., text) sequence. Returns the last inserted node, or nil
// when the node had no valid tokens and was left untouched.
func (r *Rewriter) rewriteTextNode(n *html.Node, cl models.CurrencyClassification, rate models.ExchangeRate, result *Result) *html.Node {
	text := n.Data
	tokens := r.scanner.Scan(text)
	if len(tokens) == 0 {
		return nil
	}
	result.TokensFound += len(tokens)

	var pieces []*html.Node
	var converted []models.ConversionResult
	cursor := 0
	for _, tok := range tokens {
		amount := scanner.ParseAmount(tok)
		if !amount.IsValid {
			continue
		}
		conv, err := r.converter.Convert(tok.MatchedText, amount.NumericValue, tok.SymbolChar, cl, rate)
		if err != nil {
			r.logger.Warn("token dropped", "token", tok.MatchedText, "error", err)
			continue
		}

		if tok.StartOffset > cursor {
			pieces = append(pieces, textNode(text[cursor:tok.StartOffset]))
		}
		pieces = append(pieces, priceSpan(conv))
		cursor = tok.End()
		converted = append(converted, conv)
	}
	if len(converted) == 0 {
		return nil
	}
	if cursor < len(text) {
		pieces = append(pieces, textNode(text[cursor:]))
	}

	parent := n.Parent
	for _, piece := range pieces {
		parent.InsertBefore(piece, n)
	}
	parent.RemoveChild(n)

	result.Conversions = append(result.Conversions, converted...)
	return pieces[len(pieces)-1]
}

// priceSpan builds the replacement element: converted text inside, the
// original price and inferred currency on the title attribute.
func priceSpan(result models.ConversionResult) *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: SpanClass},
			{Key: "title", Val: result.OriginalLabel},
		},
	}
	span.AppendChild(textNode(result.DisplayText))
	return span
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// guardElement finds the element carrying the document guard attribute:
// the root itself when it is an element, otherwise the document's first
// element child (normally <html>).
func guardElement(root *html.Node) *html.Node {
	if root.Type == html.ElementNode {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
