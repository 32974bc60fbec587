package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/domscope/dom"
	"github.com/hazyhaar/domscope/history"
	"github.com/hazyhaar/domscope/idgen"
	"github.com/hazyhaar/domscope/inspector/internal/browser"
	"github.com/hazyhaar/domscope/search"
)

// SessionConfig configures an inspection session.
type SessionConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome. Empty
	// launches a local headless one.
	RemoteURL string

	// NavigateTimeout bounds navigation plus load wait. Default: 30s.
	NavigateTimeout time.Duration

	// Inspector bounds what the in-page scripts collect.
	Inspector Config

	// DebounceWindow is the search debounce quiet window. Default: 400ms.
	DebounceWindow time.Duration

	// History is an optional snapshot store; nil disables recording.
	History *history.Store

	Logger *slog.Logger
}

func (c *SessionConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session ties one inspected page to its snapshot state: the browser
// tab, the inspector, the search engine, and the element picker. A
// Session is safe for concurrent fetches; snapshot replacement is
// serialized.
type Session struct {
	ID      string
	PageURL string

	cfg     SessionConfig
	logger  *slog.Logger
	manager *browser.Manager
	tab     *browser.Tab
	cancel  context.CancelFunc

	insp   *Inspector
	picker *Picker
	engine *search.Engine

	mu     sync.RWMutex
	root   *dom.Node
	markup string
	closed bool
}

// OpenSession launches or connects to Chrome, navigates to pageURL,
// and takes the initial tree snapshot.
func OpenSession(ctx context.Context, pageURL string, cfg SessionConfig) (*Session, error) {
	cfg.defaults()

	mgr := browser.NewManager(browser.Config{
		RemoteURL:       cfg.RemoteURL,
		NavigateTimeout: cfg.NavigateTimeout,
		Logger:          cfg.Logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("inspector: open session: %w", err)
	}

	tab, err := browser.OpenTab(ctx, mgr, pageURL)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("inspector: open session: %w", err)
	}

	eval := NewPageEvaluator(tab.Page)
	s := AttachSession(eval, eval, pageURL, cfg)
	s.manager = mgr
	s.tab = tab

	if err := s.Refresh(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info("inspector: session opened", "session", s.ID, "url", pageURL)
	return s, nil
}

// AttachSession builds a Session over an already-reachable page,
// without owning a browser. Callers that attach this way take no
// initial snapshot; call Refresh first.
func AttachSession(eval Evaluator, listener PickListener, pageURL string, cfg SessionConfig) *Session {
	cfg.defaults()

	// The picker's binding listener outlives any single call into the
	// session, so it is bound to the session's lifetime and torn down
	// in Close.
	lifetime, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:      idgen.Prefixed("sess_", idgen.NanoID(12))(),
		PageURL: pageURL,
		cfg:     cfg,
		logger:  cfg.Logger,
		cancel:  cancel,
		insp:    New(eval, cfg.Inspector),
		picker:  NewPicker(lifetime, eval, listener, cfg.Logger),
		engine: search.NewEngine(search.EngineConfig{
			Window: cfg.DebounceWindow,
			Logger: cfg.Logger,
		}),
	}
}

// Inspector returns the session's fetch surface.
func (s *Session) Inspector() *Inspector { return s.insp }

// Picker returns the session's element picker.
func (s *Session) Picker() *Picker { return s.picker }

// Search returns the session's search engine.
func (s *Session) Search() *search.Engine { return s.engine }

// Tree returns the last captured tree snapshot.
func (s *Session) Tree() *dom.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Markup returns the last captured raw markup, fetching it on first
// use.
func (s *Session) Markup(ctx context.Context) (string, error) {
	s.mu.RLock()
	cached := s.markup
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	markup, lines, err := s.insp.FetchRawMarkup(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.markup = markup
	s.mu.Unlock()
	s.engine.SetLines(lines)
	s.record(history.KindMarkup, []byte(markup))
	return markup, nil
}

// Refresh retakes the tree snapshot. Node identity is positional, so
// an unchanged document keeps its IDs; search state resets because the
// match set may no longer hold.
func (s *Session) Refresh(ctx context.Context) error {
	root, err := s.insp.FetchTree(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.root = root
	s.markup = ""
	s.mu.Unlock()

	s.engine.SetTree(root)
	if payload, err := json.Marshal(root); err == nil {
		s.record(history.KindTree, payload)
	}
	return nil
}

// Find resolves a path against the current snapshot. Nil when stale.
func (s *Session) Find(path []int) *dom.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.root == nil {
		return nil
	}
	return s.root.Find(path)
}

// Close tears down the tab and browser. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.engine.Reset()
	if s.tab != nil {
		if err := s.tab.Close(); err != nil {
			s.logger.Warn("inspector: tab close failed", "session", s.ID, "error", err)
		}
	}
	if s.manager == nil {
		return nil
	}
	return s.manager.Close()
}

func (s *Session) record(kind history.Kind, payload []byte) {
	if s.cfg.History == nil {
		return
	}
	s.cfg.History.RecordAsync(&history.Snapshot{
		SnapshotID: idgen.UUIDv7()(),
		SessionID:  s.ID,
		PageURL:    s.PageURL,
		Kind:       kind,
		Payload:    payload,
	})
}
