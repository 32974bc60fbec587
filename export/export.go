// Package export turns captured snapshots into shareable text:
// serialized markup, a sanitized variant safe to embed elsewhere, and
// a Markdown rendition for agent and report contexts.
package export

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/domscope/dom"
)

// Exporter renders snapshot trees and raw markup into export formats.
type Exporter struct {
	md     *converter.Converter
	policy *bluemonday.Policy
}

// New creates an Exporter.
func New() *Exporter {
	return &Exporter{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Markup renders a snapshot tree as flat markup.
func (e *Exporter) Markup(root *dom.Node) string {
	return dom.Serialize(root)
}

// Sanitized strips scripts, event handlers, and other active content
// from captured markup so it can be embedded in reports without
// executing anything from the inspected page.
func (e *Exporter) Sanitized(markup string) string {
	return e.policy.Sanitize(markup)
}

// Markdown converts captured markup to Markdown.
func (e *Exporter) Markdown(markup string) (string, error) {
	out, err := e.md.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("export: markdown convert: %w", err)
	}
	return out, nil
}

// MarkdownFrom converts captured markup to Markdown, resolving
// relative links against the page URL.
func (e *Exporter) MarkdownFrom(markup, pageURL string) (string, error) {
	out, err := e.md.ConvertString(markup, converter.WithDomain(pageURL))
	if err != nil {
		return "", fmt.Errorf("export: markdown convert: %w", err)
	}
	return out, nil
}

// TreeMarkdown serializes a snapshot tree and converts it to Markdown
// in one step.
func (e *Exporter) TreeMarkdown(root *dom.Node) (string, error) {
	return e.Markdown(dom.Serialize(root))
}
