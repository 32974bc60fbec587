// Package inspector is the live side of domscope: it asks the document
// environment for snapshot payloads through script evaluation and
// turns them into the dom and style models.
//
// Every fetch is an independent evaluate call. Fetches issued
// back-to-back are combined by the caller without cross-call locking:
// the document may mutate between them, so a combined result is a
// best-effort snapshot, not a transaction. Each call resolves its own
// failures at the boundary; callers get a usable (possibly partial)
// result or an error value, never a panic.
package inspector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/domscope/dom"
	"github.com/hazyhaar/domscope/search"
	"github.com/hazyhaar/domscope/style"
)

// Config bounds what the in-page scripts collect.
type Config struct {
	// MaxDepth bounds the tree walk. Default: 50.
	MaxDepth int
	// MaxTextLen truncates text-node content. Default: 200.
	MaxTextLen int
	// MaxRules caps non-sentinel matched rules per resolution.
	// Default: style.MaxRules.
	MaxRules int
	// RootIndex is the fixed index of the root in every path. Default: 0.
	RootIndex int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 50
	}
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = 200
	}
	if c.MaxRules <= 0 {
		c.MaxRules = style.MaxRules
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Inspector fetches structural snapshots from one inspected page.
type Inspector struct {
	eval   Evaluator
	cfg    Config
	logger *slog.Logger
}

// New creates an Inspector over an Evaluator.
func New(eval Evaluator, cfg Config) *Inspector {
	cfg.defaults()
	return &Inspector{eval: eval, cfg: cfg, logger: cfg.Logger}
}

// FetchTree takes a fresh structural snapshot of the document.
func (in *Inspector) FetchTree(ctx context.Context) (*dom.Node, error) {
	raw, err := in.eval.Eval(ctx, treeJS, in.cfg.MaxDepth, in.cfg.MaxTextLen)
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch tree: %w", err)
	}
	root, err := dom.ParseTree([]byte(raw), []int{in.cfg.RootIndex})
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch tree: %w", err)
	}
	return root, nil
}

// FetchRawMarkup returns the serialized document source with its
// doctype reconstructed, plus the result pre-split into lines for
// raw-mode search.
func (in *Inspector) FetchRawMarkup(ctx context.Context) (string, []string, error) {
	raw, err := in.eval.Eval(ctx, markupJS)
	if err != nil {
		return "", nil, fmt.Errorf("inspector: fetch markup: %w", err)
	}
	return raw, search.SplitLines(raw), nil
}

// FetchStylesheets returns stylesheet metadata in document order.
func (in *Inspector) FetchStylesheets(ctx context.Context) ([]style.StylesheetInfo, error) {
	raw, err := in.eval.Eval(ctx, stylesheetsJS)
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch stylesheets: %w", err)
	}
	infos, err := style.ParseStylesheetInfos([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch stylesheets: %w", err)
	}
	return infos, nil
}

// FetchScripts returns script element metadata.
func (in *Inspector) FetchScripts(ctx context.Context) ([]style.ScriptInfo, error) {
	raw, err := in.eval.Eval(ctx, scriptsJS)
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch scripts: %w", err)
	}
	infos, err := style.ParseScriptInfos([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch scripts: %w", err)
	}
	return infos, nil
}

// FetchComputedStyle returns the computed properties and box model for
// the node at the given path. A stale path or non-element node yields
// (nil, nil): the feature is absent for that node, not an error.
func (in *Inspector) FetchComputedStyle(ctx context.Context, path []int) (*style.ComputedStyle, error) {
	raw, err := in.eval.Eval(ctx, computedJS, path)
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch computed style: %w", err)
	}
	if raw == "" || raw == "null" {
		return nil, nil
	}
	cs, err := style.ParseComputedStyle([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("inspector: fetch computed style: %w", err)
	}
	return cs, nil
}

// FetchMatchedRules resolves the style rules matching the node at the
// given path. Specificity is scored here rather than trusted from the
// page, so the ordering contract stays in one place. A stale path
// yields an empty resolution.
func (in *Inspector) FetchMatchedRules(ctx context.Context, path []int) (style.Resolution, error) {
	raw, err := in.eval.Eval(ctx, matchedJS, path, in.cfg.MaxRules)
	if err != nil {
		return style.Resolution{}, fmt.Errorf("inspector: fetch matched rules: %w", err)
	}
	if raw == "" || raw == "null" {
		return style.Resolution{}, nil
	}

	rules, err := style.ParseMatchedRules([]byte(raw))
	if err != nil {
		return style.Resolution{}, fmt.Errorf("inspector: fetch matched rules: %w", err)
	}
	for i := range rules {
		switch {
		case rules[i].CORSBlocked:
			rules[i].Specificity = 0
		case rules[i].Source.Kind == style.SourceInline:
			rules[i].Specificity = style.InlineSpecificity
		default:
			rules[i].Specificity = style.Specificity(rules[i].Selector)
		}
	}
	return style.FromRules(rules, in.cfg.MaxRules), nil
}

// Highlight draws the overlay over the node at the given path.
func (in *Inspector) Highlight(ctx context.Context, path []int) error {
	status, err := in.eval.Eval(ctx, highlightJS, path)
	if err != nil {
		return fmt.Errorf("inspector: highlight: %w", err)
	}
	if status == "stale" {
		in.logger.Debug("inspector: highlight path stale", "path", dom.PathID(path))
	}
	return nil
}

// ClearHighlight removes the overlay if present.
func (in *Inspector) ClearHighlight(ctx context.Context) error {
	if _, err := in.eval.Eval(ctx, highlightJS, nil); err != nil {
		return fmt.Errorf("inspector: clear highlight: %w", err)
	}
	return nil
}
