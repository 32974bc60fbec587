package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/domscope/dom"
	"github.com/hazyhaar/domscope/export"
	"github.com/hazyhaar/domscope/history"
	"github.com/hazyhaar/domscope/inspector"
	"github.com/hazyhaar/domscope/search"
)

// newRouter builds the HTTP surface over one inspection session.
// hist may be nil when history is disabled.
func newRouter(sess *inspector.Session, exp *export.Exporter, hist *history.Store) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok", "session": sess.ID, "url": sess.PageURL})
	})

	r.Get("/api/tree", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "1" || sess.Tree() == nil {
			if err := sess.Refresh(r.Context()); err != nil {
				writeError(w, 502, err)
				return
			}
		}
		writeJSON(w, 200, map[string]any{"url": sess.PageURL, "root": sess.Tree()})
	})

	r.Get("/api/markup", func(w http.ResponseWriter, r *http.Request) {
		markup, err := sess.Markup(r.Context())
		if err != nil {
			writeError(w, 502, err)
			return
		}
		switch r.URL.Query().Get("format") {
		case "", "raw":
			writeJSON(w, 200, map[string]string{"markup": markup})
		case "sanitized":
			writeJSON(w, 200, map[string]string{"markup": exp.Sanitized(markup)})
		case "markdown":
			md, err := exp.MarkdownFrom(markup, sess.PageURL)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, map[string]string{"markdown": md})
		default:
			writeJSON(w, 400, map[string]string{"error": "unknown format"})
		}
	})

	r.Get("/api/stylesheets", func(w http.ResponseWriter, r *http.Request) {
		infos, err := sess.Inspector().FetchStylesheets(r.Context())
		if err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]any{"stylesheets": infos})
	})

	r.Get("/api/scripts", func(w http.ResponseWriter, r *http.Request) {
		infos, err := sess.Inspector().FetchScripts(r.Context())
		if err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]any{"scripts": infos})
	})

	r.Get("/api/element/{id}", func(w http.ResponseWriter, r *http.Request) {
		path, err := dom.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, 400, err)
			return
		}
		detail, err := sess.Inspector().ResolveElementDetail(r.Context(), path)
		if err != nil {
			writeError(w, 502, err)
			return
		}

		out := map[string]any{"id": dom.PathID(path), "detail": detail}
		if node := sess.Find(path); node != nil {
			crumbs := dom.Ancestry(node, sess.Tree())
			labels := make([]string, 0, len(crumbs))
			for _, c := range crumbs {
				labels = append(labels, c.Selector())
			}
			out["breadcrumb"] = labels
		}
		writeJSON(w, 200, out)
	})

	r.Get("/api/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "tree"
		}

		eng := sess.Search()
		switch mode {
		case "tree":
			eng.SetMode(search.ModeTree)
		case "raw":
			if _, err := sess.Markup(r.Context()); err != nil {
				writeError(w, 502, err)
				return
			}
			eng.SetMode(search.ModeRaw)
		default:
			writeJSON(w, 400, map[string]string{"error": "unknown mode"})
			return
		}

		// HTTP queries arrive whole, not keystroke by keystroke.
		eng.Input(q)
		eng.Flush()

		out := map[string]any{"query": q, "mode": mode}
		switch mode {
		case "tree":
			ids := []string{}
			current := -1
			if st := eng.Tree(); st != nil {
				for _, p := range st.Matches {
					ids = append(ids, dom.PathID(p))
				}
				current = st.CurrentIndex()
			}
			out["matches"] = ids
			out["current"] = current
		case "raw":
			lines := []int{}
			current := -1
			if st := eng.Raw(); st != nil {
				lines = append(lines, st.Matches...)
				current = st.CurrentIndex()
			}
			out["matches"] = lines
			out["current"] = current
		}
		writeJSON(w, 200, out)
	})

	r.Post("/api/highlight/{id}", func(w http.ResponseWriter, r *http.Request) {
		path, err := dom.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, 400, err)
			return
		}
		if err := sess.Inspector().Highlight(r.Context(), path); err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "highlighted"})
	})

	r.Delete("/api/highlight", func(w http.ResponseWriter, r *http.Request) {
		if err := sess.Inspector().ClearHighlight(r.Context()); err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "cleared"})
	})

	r.Post("/api/picker", func(w http.ResponseWriter, r *http.Request) {
		if err := sess.Picker().Enable(r.Context()); err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"active": true})
	})

	r.Delete("/api/picker", func(w http.ResponseWriter, r *http.Request) {
		if err := sess.Picker().Disable(r.Context()); err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]bool{"active": false})
	})

	r.Get("/api/picker", func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"active": sess.Picker().Active()}
		select {
		case path := <-sess.Picker().Picks():
			out["picked"] = dom.PathID(path)
		default:
		}
		writeJSON(w, 200, out)
	})

	if hist != nil {
		r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
			snaps, err := hist.BySession(r.Context(), sess.ID)
			if err != nil {
				writeError(w, 500, err)
				return
			}
			limit := queryInt(r, "limit", 50)
			if len(snaps) > limit {
				snaps = snaps[len(snaps)-limit:]
			}
			type entry struct {
				SnapshotID string       `json:"snapshot_id"`
				Kind       history.Kind `json:"kind"`
				TakenAt    int64        `json:"taken_at"`
				Bytes      int          `json:"bytes"`
			}
			entries := make([]entry, 0, len(snaps))
			for _, s := range snaps {
				entries = append(entries, entry{
					SnapshotID: s.SnapshotID,
					Kind:       s.Kind,
					TakenAt:    s.TakenAt,
					Bytes:      len(s.Payload),
				})
			}
			writeJSON(w, 200, map[string]any{"session": sess.ID, "snapshots": entries})
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
