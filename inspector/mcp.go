package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domscope/dom"
	"github.com/hazyhaar/domscope/search"
)

// RegisterMCP registers the session's inspection tools on an MCP server.
func (s *Session) RegisterMCP(srv *mcp.Server) {
	s.registerTreeTool(srv)
	s.registerMarkupTool(srv)
	s.registerStylesheetsTool(srv)
	s.registerScriptsTool(srv)
	s.registerElementTool(srv)
	s.registerSearchTool(srv)
	s.registerHighlightTool(srv)
	s.registerRefreshTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

// registerJSONTool wires a tool handler that decodes arguments into
// req, runs the endpoint, and returns the response as JSON text.
// Tool failures are reported through SetError, not protocol errors.
func registerJSONTool(srv *mcp.Server, tool *mcp.Tool, decode func(*mcp.CallToolRequest) (any, error), endpoint func(context.Context, any) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		resp, err := endpoint(ctx, decoded)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func decodeNone(_ *mcp.CallToolRequest) (any, error) { return nil, nil }

// --- tree ---

type treeReq struct {
	Refresh bool `json:"refresh"`
}

func (s *Session) registerTreeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_tree",
		Description: "Return the document tree snapshot. Node IDs are dot-joined child-index paths.",
		InputSchema: inputSchema(map[string]any{
			"refresh": map[string]any{"type": "boolean", "description": "Retake the snapshot before returning"},
		}, nil),
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r treeReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &r, nil
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*treeReq)
		if r.Refresh || s.Tree() == nil {
			if err := s.Refresh(ctx); err != nil {
				return nil, err
			}
		}
		return map[string]any{
			"url":  s.PageURL,
			"root": s.Tree(),
		}, nil
	}

	registerJSONTool(srv, tool, decode, endpoint)
}

// --- markup ---

func (s *Session) registerMarkupTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_markup",
		Description: "Return the serialized document source with its doctype reconstructed.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		markup, err := s.Markup(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"url": s.PageURL, "markup": markup}, nil
	}

	registerJSONTool(srv, tool, decodeNone, endpoint)
}

// --- stylesheets ---

func (s *Session) registerStylesheetsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_stylesheets",
		Description: "List the document's stylesheets in document order, flagging CORS-blocked ones.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		infos, err := s.insp.FetchStylesheets(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"stylesheets": infos}, nil
	}

	registerJSONTool(srv, tool, decodeNone, endpoint)
}

// --- scripts ---

func (s *Session) registerScriptsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_scripts",
		Description: "List the document's script elements.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		infos, err := s.insp.FetchScripts(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"scripts": infos}, nil
	}

	registerJSONTool(srv, tool, decodeNone, endpoint)
}

// --- element ---

type elementReq struct {
	ID string `json:"id"`
}

func (s *Session) registerElementTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_element",
		Description: "Resolve one element: ancestry breadcrumb, computed style, box model, and matched rules grouped by origin.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Node ID (dot-joined path, e.g. 0.1.0)"},
		}, []string{"id"}),
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r elementReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.ID == "" {
			return nil, errors.New("id is required")
		}
		return &r, nil
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*elementReq)
		path, err := dom.ParsePathID(r.ID)
		if err != nil {
			return nil, err
		}

		detail, err := s.insp.ResolveElementDetail(ctx, path)
		if err != nil {
			return nil, err
		}

		out := map[string]any{"id": r.ID, "detail": detail}
		if node := s.Find(path); node != nil {
			crumbs := dom.Ancestry(node, s.Tree())
			labels := make([]string, 0, len(crumbs))
			for _, c := range crumbs {
				labels = append(labels, c.Selector())
			}
			out["breadcrumb"] = labels
		}
		return out, nil
	}

	registerJSONTool(srv, tool, decode, endpoint)
}

// --- search ---

type searchReq struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

func (s *Session) registerSearchTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_search",
		Description: "Case-insensitive substring search over the tree (names, ids, classes, text) or the raw markup lines.",
		InputSchema: inputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Substring to match"},
			"mode":  map[string]any{"type": "string", "enum": []string{"tree", "raw"}, "description": "Search surface, default tree"},
		}, []string{"query"}),
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r searchReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.Mode == "" {
			r.Mode = "tree"
		}
		if r.Mode != "tree" && r.Mode != "raw" {
			return nil, fmt.Errorf("unknown mode %q", r.Mode)
		}
		return &r, nil
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*searchReq)
		if r.Mode == "raw" {
			if _, err := s.Markup(ctx); err != nil {
				return nil, err
			}
			s.engine.SetMode(search.ModeRaw)
		} else {
			s.engine.SetMode(search.ModeTree)
		}

		// Tool calls are whole queries, not keystrokes. Skip the
		// debounce window and recompute immediately.
		s.engine.Input(r.Query)
		s.engine.Flush()

		out := map[string]any{"query": r.Query, "mode": r.Mode}
		switch r.Mode {
		case "tree":
			if st := s.engine.Tree(); st != nil {
				ids := make([]string, 0, len(st.Matches))
				for _, p := range st.Matches {
					ids = append(ids, dom.PathID(p))
				}
				out["matches"] = ids
				out["current"] = st.CurrentIndex()
			} else {
				out["matches"] = []string{}
			}
		case "raw":
			if st := s.engine.Raw(); st != nil {
				out["matches"] = st.Matches
				out["current"] = st.CurrentIndex()
			} else {
				out["matches"] = []int{}
			}
		}
		return out, nil
	}

	registerJSONTool(srv, tool, decode, endpoint)
}

// --- highlight ---

type highlightReq struct {
	ID    string `json:"id"`
	Clear bool   `json:"clear"`
}

func (s *Session) registerHighlightTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_highlight",
		Description: "Draw the overlay over one element, or clear it.",
		InputSchema: inputSchema(map[string]any{
			"id":    map[string]any{"type": "string", "description": "Node ID to highlight"},
			"clear": map[string]any{"type": "boolean", "description": "Remove the overlay instead"},
		}, nil),
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r highlightReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		if !r.Clear && r.ID == "" {
			return nil, errors.New("id is required unless clear is set")
		}
		return &r, nil
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*highlightReq)
		if r.Clear {
			if err := s.insp.ClearHighlight(ctx); err != nil {
				return nil, err
			}
			return map[string]any{"cleared": true}, nil
		}

		path, err := dom.ParsePathID(r.ID)
		if err != nil {
			return nil, err
		}
		if err := s.insp.Highlight(ctx, path); err != nil {
			return nil, err
		}
		return map[string]any{"id": r.ID, "highlighted": true}, nil
	}

	registerJSONTool(srv, tool, decode, endpoint)
}

// --- refresh ---

func (s *Session) registerRefreshTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "inspect_refresh",
		Description: "Retake the tree snapshot. Node IDs are positional, so an unchanged document keeps its IDs.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		return map[string]any{"url": s.PageURL, "root": s.Tree()}, nil
	}

	registerJSONTool(srv, tool, decodeNone, endpoint)
}
