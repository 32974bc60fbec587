package search

import (
	"sync"
	"time"
)

// DebounceConfig controls query staging.
type DebounceConfig struct {
	// Window is how long input must stay quiet before the search
	// recomputes. Default: 400ms.
	Window time.Duration
}

func (dc *DebounceConfig) defaults() {
	if dc.Window <= 0 {
		dc.Window = 400 * time.Millisecond
	}
}

// Debouncer stages raw keystroke input and applies the latest query
// once the window has been quiet. An empty query clears immediately
// without waiting. There is no in-flight cancellation: the apply
// callback always receives the most recent query, so a superseded
// recomputation is simply re-run with newer input (last write wins).
type Debouncer struct {
	cfg   DebounceConfig
	apply func(query string)

	mu    sync.Mutex
	query string
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a Debouncer that invokes apply with the settled
// query after each quiet window.
func NewDebouncer(cfg DebounceConfig, apply func(query string)) *Debouncer {
	cfg.defaults()
	return &Debouncer{cfg: cfg, apply: apply}
}

// Update stages a new query, restarting the quiet window. An empty
// query cancels the pending window and applies the clear at once.
func (d *Debouncer) Update(query string) {
	d.mu.Lock()
	d.query = query
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++

	if query == "" {
		d.mu.Unlock()
		d.apply("")
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.cfg.Window, func() { d.fire(gen) })
	d.mu.Unlock()
}

// Flush applies the staged query immediately, cancelling any pending
// window. Useful when the caller forces a recompute (mode switch).
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	query := d.query
	d.mu.Unlock()
	d.apply(query)
}

// Stop cancels any pending window without applying and discards the
// staged query, so a later Flush cannot resurrect input from before
// the stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.query = ""
	d.gen++
	d.mu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// A newer Update or Stop superseded this window.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	query := d.query
	d.mu.Unlock()
	d.apply(query)
}
