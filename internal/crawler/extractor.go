package crawler

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/chris00234/web-crawler/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extractor turns fetched pages into absolute candidate URLs.
// As a side effect it records each page's words and link count in the
// crawl state. It performs no validity filtering.
type Extractor struct {
	state  *model.CrawlState
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorLogger sets the logger used for parse diagnostics.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor that records statistics into state.
func NewExtractor(state *model.CrawlState, opts ...ExtractorOption) *Extractor {
	e := &Extractor{state: state}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract returns every anchor href on the page resolved to an absolute URL,
// in document order and without deduplication.
//
// A result without content, with zero size, or with status 400 yields no
// links and leaves the state untouched. Relative links resolve against the
// final URL when the fetch was redirected; that URL is also the page
// identity recorded for the best-word and best-link statistics.
func (e *Extractor) Extract(result *model.FetchResult) []string {
	links := make([]string, 0)
	if result.Empty() || result.HTTPStatus == http.StatusBadRequest {
		return links
	}

	pageURL := result.EffectiveURL()
	base, err := url.Parse(pageURL)
	if err != nil {
		e.logger.Debug("skipping page with unparsable URL", "url", pageURL, "error", err)
		return links
	}

	doc, err := html.ParseWithOptions(bytes.NewReader(result.Content), html.ParseOptionEnableScripting(false))
	if err != nil {
		e.logger.Debug("failed to parse page", "url", pageURL, "error", err)
		return links
	}

	var text strings.Builder
	walk(doc, base, &text, &links, true)

	lowered := cases.Lower(language.Und).String(text.String())
	tokens := Tokenize(lowered)

	e.state.RecordWords(pageURL, tokens)
	e.state.RecordLinks(pageURL, len(links))

	e.logger.Debug("extracted page",
		"url", pageURL,
		"links", len(links),
		"words", len(tokens),
	)

	return links
}

// skippedTextElements hold text that is not rendered page content.
var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// walk collects the page text and the resolved anchor links in document
// order. Anchors are collected everywhere; text only while withText holds.
func walk(n *html.Node, base *url.URL, text *strings.Builder, links *[]string, withText bool) {
	switch n.Type {
	case html.TextNode:
		if withText {
			text.WriteString(n.Data)
		}
	case html.ElementNode:
		if n.Data == "a" {
			if link, ok := resolveHref(base, getAttr(n, "href")); ok {
				*links = append(*links, link)
			}
		}
		if skippedTextElements[n.Data] {
			withText = false
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, base, text, links, withText)
	}
}

// resolveHref resolves href against base. It reports false for an empty
// href or one that is not a valid URL reference.
func resolveHref(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
