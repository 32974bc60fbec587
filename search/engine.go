package search

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/domscope/dom"
)

// Mode selects which representation the engine searches.
type Mode int

const (
	ModeTree Mode = iota
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "tree"
}

// Engine ties debounced input to the two search modes over the current
// snapshots. Snapshots are immutable once set; a recompute only ever
// reads them and swaps whole state values, so no synchronization beyond
// the engine mutex is needed.
type Engine struct {
	mu     sync.Mutex
	root   *dom.Node
	lines  []string
	mode   Mode
	tree   *TreeState
	raw    *LineState
	deb    *Debouncer
	logger *slog.Logger
}

// EngineConfig configures a search Engine.
type EngineConfig struct {
	// Window is the debounce quiet window. Default: 400ms.
	Window time.Duration
	Logger *slog.Logger
}

// NewEngine creates an Engine with empty state in tree mode.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	e := &Engine{logger: cfg.Logger}
	e.deb = NewDebouncer(DebounceConfig{Window: cfg.Window}, e.recompute)
	return e
}

// SetTree replaces the tree snapshot. The document changed, so both
// search states reset to empty.
func (e *Engine) SetTree(root *dom.Node) {
	e.mu.Lock()
	e.root = root
	e.mu.Unlock()
	e.Reset()
}

// SetLines replaces the raw markup lines. Resets both search states.
func (e *Engine) SetLines(lines []string) {
	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
	e.Reset()
}

// SetMode switches between tree and raw search. Both states reset;
// only the newly visible mode is recomputed, and only when new input
// arrives.
func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
	e.Reset()
}

// Reset clears both search states and any pending debounce window.
func (e *Engine) Reset() {
	e.deb.Stop()
	e.mu.Lock()
	e.tree = nil
	e.raw = nil
	e.mu.Unlock()
}

// Input stages a keystroke's worth of query text. Recomputation runs
// after the debounce window; an empty query clears immediately.
func (e *Engine) Input(query string) {
	e.deb.Update(query)
}

// Flush applies any staged query immediately, skipping the remainder
// of the debounce window. Used by callers that submit whole queries
// rather than keystrokes.
func (e *Engine) Flush() {
	e.deb.Flush()
}

// Tree returns the current tree-mode state, or nil when inactive.
func (e *Engine) Tree() *TreeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Raw returns the current raw-mode state, or nil when inactive.
func (e *Engine) Raw() *LineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.raw
}

// NextMatch advances the visible mode's cursor and re-applies tree
// expansion when in tree mode.
func (e *Engine) NextMatch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.mode {
	case ModeTree:
		if e.tree != nil {
			e.tree.Next()
			e.tree.ApplyExpansion(e.root)
		}
	case ModeRaw:
		if e.raw != nil {
			e.raw.Next()
		}
	}
}

// PreviousMatch steps the visible mode's cursor back.
func (e *Engine) PreviousMatch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.mode {
	case ModeTree:
		if e.tree != nil {
			e.tree.Previous()
			e.tree.ApplyExpansion(e.root)
		}
	case ModeRaw:
		if e.raw != nil {
			e.raw.Previous()
		}
	}
}

// recompute rebuilds the state for the visible mode from the latest
// query. Pure over the current snapshot, so a superseded run being
// replaced by a newer one is always safe.
func (e *Engine) recompute(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if query == "" {
		e.tree = nil
		e.raw = nil
		return
	}

	switch e.mode {
	case ModeTree:
		e.tree = NewTreeState(e.root, query)
		e.tree.ApplyExpansion(e.root)
		e.logger.Debug("search: tree recomputed",
			"query", query, "matches", len(e.tree.Matches))
	case ModeRaw:
		e.raw = NewLineState(e.lines, query)
		e.logger.Debug("search: raw recomputed",
			"query", query, "matches", len(e.raw.Matches))
	}
}
