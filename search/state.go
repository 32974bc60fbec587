package search

import "github.com/hazyhaar/domscope/dom"

// cursor steps an index over a match set with wraparound. Next on the
// last match lands on the first, Previous on the first lands on the
// last. With zero matches the cursor stays at -1.
type cursor struct {
	length  int
	current int
}

func newCursor(length int) cursor {
	c := cursor{length: length, current: -1}
	if length > 0 {
		c.current = 0
	}
	return c
}

func (c *cursor) next() int {
	if c.length == 0 {
		return -1
	}
	c.current = (c.current + 1) % c.length
	return c.current
}

func (c *cursor) previous() int {
	if c.length == 0 {
		return -1
	}
	c.current = (c.current - 1 + c.length) % c.length
	return c.current
}

// TreeState is the result of one tree-mode search: the ordered match
// paths plus the current navigation position.
type TreeState struct {
	Query   string
	Matches [][]int
	cur     cursor
}

// NewTreeState runs a tree search and positions the cursor on the
// first match (or nowhere, for an empty result).
func NewTreeState(root *dom.Node, query string) *TreeState {
	matches := CollectPaths(root, query)
	return &TreeState{Query: query, Matches: matches, cur: newCursor(len(matches))}
}

// Current returns the path of the current match, or nil when there are
// no matches.
func (s *TreeState) Current() []int {
	if s.cur.current < 0 {
		return nil
	}
	return s.Matches[s.cur.current]
}

// CurrentIndex returns the current match position, -1 when empty.
func (s *TreeState) CurrentIndex() int { return s.cur.current }

// Next advances to the next match with wraparound and returns its path.
func (s *TreeState) Next() []int {
	s.cur.next()
	return s.Current()
}

// Previous steps back with wraparound and returns the new current path.
func (s *TreeState) Previous() []int {
	s.cur.previous()
	return s.Current()
}

// ApplyExpansion marks every node that must be open for the current
// search position to be visible: ancestors of the current match, and
// any node with a matching strict descendant. It only ever sets
// Expanded, never clears it, so nodes the user opened by hand stay
// open.
func (s *TreeState) ApplyExpansion(root *dom.Node) {
	if root == nil || s.Query == "" {
		return
	}

	current := s.Current()
	var mark func(n *dom.Node) bool
	mark = func(n *dom.Node) bool {
		descendantMatch := false
		for _, c := range n.Children {
			if mark(c) {
				descendantMatch = true
			}
		}
		if descendantMatch || isStrictAncestor(n.Path, current) {
			n.Expanded = true
		}
		return descendantMatch || Matches(n, s.Query)
	}
	mark(root)
}

// isStrictAncestor reports whether a is a proper prefix of b.
func isStrictAncestor(a, b []int) bool {
	if b == nil || len(a) >= len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LineState is the raw-text counterpart of TreeState: matching line
// indices plus a navigation cursor. It is a completely separate
// index/state pair from tree mode.
type LineState struct {
	Query   string
	Matches []int
	cur     cursor
}

// NewLineState runs a raw-text search over pre-split lines.
func NewLineState(lines []string, query string) *LineState {
	matches := LineIndices(lines, query)
	return &LineState{Query: query, Matches: matches, cur: newCursor(len(matches))}
}

// Current returns the current matching line index, -1 when empty.
func (s *LineState) Current() int {
	if s.cur.current < 0 {
		return -1
	}
	return s.Matches[s.cur.current]
}

// CurrentIndex returns the position within the match set, -1 when empty.
func (s *LineState) CurrentIndex() int { return s.cur.current }

// Next advances with wraparound and returns the new current line index.
func (s *LineState) Next() int {
	s.cur.next()
	return s.Current()
}

// Previous steps back with wraparound and returns the new current line index.
func (s *LineState) Previous() int {
	s.cur.previous()
	return s.Current()
}
