package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// pickerBinding is the Runtime binding name the overlay posts through.
const pickerBinding = "__domscope_picked"

// Picker is the explicit enable/disable state machine for the
// element-picking overlay. The core owns the state; the in-page
// presence flag is only a guard for the injected script, never the
// source of truth here. Enable tears down any prior overlay before
// installing (idempotent), Disable is a no-op when nothing is active.
type Picker struct {
	eval     Evaluator
	listener PickListener
	logger   *slog.Logger

	// lifetime bounds the binding listener. Picks arrive after the
	// enabling call has returned, so the listener cannot borrow the
	// caller's context.
	lifetime context.Context

	mu        sync.Mutex
	active    bool
	listening bool

	picks chan []int
}

// NewPicker creates a Picker over the page's evaluator and binding
// listener (usually the same PageEvaluator). The binding listener runs
// until lifetime ends.
func NewPicker(lifetime context.Context, eval Evaluator, listener PickListener, logger *slog.Logger) *Picker {
	if lifetime == nil {
		lifetime = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{
		eval:     eval,
		listener: listener,
		logger:   logger,
		lifetime: lifetime,
		picks:    make(chan []int, 1),
	}
}

// Picks delivers picked-element paths, one per completed pick.
func (p *Picker) Picks() <-chan []int {
	return p.picks
}

// Active reports whether a pick is in progress.
func (p *Picker) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Enable installs the overlay. Any prior instance is disposed first,
// so calling Enable twice leaves exactly one overlay.
func (p *Picker) Enable(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.listening {
		if err := p.listener.ListenPicked(p.lifetime, pickerBinding, p.onPicked); err != nil {
			return fmt.Errorf("inspector: picker listen: %w", err)
		}
		p.listening = true
	}

	if _, err := p.eval.Eval(ctx, pickerJS, pickerBinding); err != nil {
		return fmt.Errorf("inspector: picker enable: %w", err)
	}
	p.active = true
	return nil
}

// Disable removes the overlay. Safe to call when none is active.
func (p *Picker) Disable(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return nil
	}
	if _, err := p.eval.Eval(ctx, pickerDisableJS); err != nil {
		return fmt.Errorf("inspector: picker disable: %w", err)
	}
	p.active = false
	return nil
}

// onPicked handles the one-shot payload: the overlay disposed itself
// in the page, so the state machine follows.
func (p *Picker) onPicked(payload string) {
	var path []int
	if err := json.Unmarshal([]byte(payload), &path); err != nil {
		p.logger.Warn("inspector: picker payload", "error", err)
		return
	}

	p.mu.Lock()
	p.active = false
	p.mu.Unlock()

	// A newer pick supersedes an unconsumed one.
	select {
	case <-p.picks:
	default:
	}
	select {
	case p.picks <- path:
	default:
	}
}
