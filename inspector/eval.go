package inspector

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Evaluator runs a script in the document's execution context and
// returns its string result. The document environment is reached only
// through this asynchronous call: the caller suspends per evaluation
// and there is no other channel into the page.
type Evaluator interface {
	Eval(ctx context.Context, js string, args ...any) (string, error)
}

// PickListener delivers one-shot binding payloads posted by injected
// overlay scripts back out of the page.
type PickListener interface {
	ListenPicked(ctx context.Context, binding string, fn func(payload string)) error
}

// PageEvaluator adapts a Rod page to Evaluator and PickListener.
type PageEvaluator struct {
	page *rod.Page
}

// NewPageEvaluator wraps a Rod page.
func NewPageEvaluator(page *rod.Page) *PageEvaluator {
	return &PageEvaluator{page: page}
}

// Eval evaluates a function expression with JSON-encoded args.
func (p *PageEvaluator) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", fmt.Errorf("inspector: eval: %w", err)
	}
	return res.Value.Str(), nil
}

// ListenPicked installs a Runtime binding and forwards every call to
// fn until the context ends.
func (p *PageEvaluator) ListenPicked(ctx context.Context, binding string, fn func(payload string)) error {
	if err := (proto.RuntimeAddBinding{Name: binding}.Call(p.page)); err != nil {
		// The binding may survive a previous session on the same page.
		if _, evalErr := p.page.Context(ctx).Eval(`() => true`); evalErr != nil {
			return fmt.Errorf("inspector: add binding: %w", err)
		}
	}

	go p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != binding {
			return
		}
		fn(e.Payload)
	})()

	return nil
}
