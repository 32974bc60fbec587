package search

import (
	"reflect"
	"testing"

	"github.com/hazyhaar/domscope/dom"
)

// fixture:
//
//	html[0]
//	  head[0,0]
//	  body[0,1] class="main"
//	    div[0,1,0] id="content"
//	      #text[0,1,0,0] "hello world"
//	    span[0,1,1] class="divider"
func fixture() *dom.Node {
	text := &dom.Node{Path: []int{0, 1, 0, 0}, Kind: dom.KindText, Name: "#text", Text: "hello world"}
	div := &dom.Node{Path: []int{0, 1, 0}, Kind: dom.KindElement, Name: "DIV",
		Attrs: map[string]string{"id": "content"}, Children: []*dom.Node{text}}
	span := &dom.Node{Path: []int{0, 1, 1}, Kind: dom.KindElement, Name: "SPAN",
		Attrs: map[string]string{"class": "divider"}}
	body := &dom.Node{Path: []int{0, 1}, Kind: dom.KindElement, Name: "BODY",
		Attrs: map[string]string{"class": "main"}, Children: []*dom.Node{div, span}}
	head := &dom.Node{Path: []int{0, 0}, Kind: dom.KindElement, Name: "HEAD"}
	return &dom.Node{Path: []int{0}, Kind: dom.KindElement, Name: "HTML",
		Children: []*dom.Node{head, body}}
}

func TestMatches_Fields(t *testing.T) {
	root := fixture()
	body := root.Children[1]
	div := body.Children[0]
	text := div.Children[0]

	cases := []struct {
		name  string
		node  *dom.Node
		query string
		want  bool
	}{
		{"tag name case-insensitive", div, "div", true},
		{"id attribute", div, "CONTENT", true},
		{"class attribute", body, "main", true},
		{"text content", text, "WORLD", true},
		{"no match", body, "nav", false},
		{"empty query inactive", div, "", false},
	}
	for _, tc := range cases {
		if got := Matches(tc.node, tc.query); got != tc.want {
			t.Errorf("%s: Matches(%q) got %v, want %v", tc.name, tc.query, got, tc.want)
		}
	}
}

func TestCollectPaths_PreOrder(t *testing.T) {
	root := fixture()

	// "div" matches: DIV (tag), SPAN (class "divider").
	got := CollectPaths(root, "div")
	want := [][]int{{0, 1, 0}, {0, 1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectPaths(div): got %v, want %v", got, want)
	}

	// Count equals the number of individually matching nodes.
	count := 0
	root.Walk(func(n *dom.Node) bool {
		if Matches(n, "div") {
			count++
		}
		return true
	})
	if len(got) != count {
		t.Errorf("match count: got %d paths, %d matching nodes", len(got), count)
	}

	if CollectPaths(root, "") != nil {
		t.Error("empty query: got matches, want none")
	}
	if CollectPaths(nil, "div") != nil {
		t.Error("nil root: got matches, want none")
	}
}

func TestTreeState_Wraparound(t *testing.T) {
	root := fixture()
	s := NewTreeState(root, "div") // 2 matches

	if s.CurrentIndex() != 0 {
		t.Fatalf("initial index: got %d, want 0", s.CurrentIndex())
	}
	s.Next()
	if s.CurrentIndex() != 1 {
		t.Errorf("after Next: got %d, want 1", s.CurrentIndex())
	}
	s.Next()
	if s.CurrentIndex() != 0 {
		t.Errorf("Next on last: got %d, want wrap to 0", s.CurrentIndex())
	}
	s.Previous()
	if s.CurrentIndex() != 1 {
		t.Errorf("Previous on first: got %d, want wrap to 1", s.CurrentIndex())
	}
}

func TestTreeState_SingleAndEmpty(t *testing.T) {
	root := fixture()

	one := NewTreeState(root, "hello") // only the text node
	if len(one.Matches) != 1 {
		t.Fatalf("matches: got %d, want 1", len(one.Matches))
	}
	one.Next()
	if one.CurrentIndex() != 0 {
		t.Errorf("Next on single match: got %d, want 0", one.CurrentIndex())
	}

	none := NewTreeState(root, "zzz")
	if none.Current() != nil {
		t.Error("empty result: Current got path, want nil")
	}
	none.Next()
	none.Previous()
	if none.CurrentIndex() != -1 {
		t.Errorf("empty result after stepping: got %d, want -1", none.CurrentIndex())
	}
}

func TestApplyExpansion(t *testing.T) {
	root := fixture()
	body := root.Children[1]
	div := body.Children[0]
	head := root.Children[0]

	s := NewTreeState(root, "hello") // matches the text under div
	s.ApplyExpansion(root)

	// Ancestors of the match must be open; so must nodes with a
	// matching strict descendant.
	if !root.Expanded || !body.Expanded || !div.Expanded {
		t.Errorf("ancestor expansion: root=%v body=%v div=%v, want all true",
			root.Expanded, body.Expanded, div.Expanded)
	}
	if head.Expanded {
		t.Error("head expanded with no match underneath")
	}
}

func TestApplyExpansion_KeepsUserExpansion(t *testing.T) {
	root := fixture()
	head := root.Children[0]
	head.Expanded = true // user opened it by hand

	s := NewTreeState(root, "hello")
	s.ApplyExpansion(root)

	if !head.Expanded {
		t.Error("user-expanded node was collapsed by search")
	}
}

func TestLineIndices(t *testing.T) {
	lines := SplitLines("<html>\n<body class=\"Main\">\n<div>\n</html>")
	if len(lines) != 4 {
		t.Fatalf("SplitLines: got %d lines, want 4", len(lines))
	}

	got := LineIndices(lines, "main")
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("LineIndices(main): got %v, want [1]", got)
	}
	if LineIndices(lines, "") != nil {
		t.Error("empty query: got indices, want none")
	}
}

func TestLineState_Wraparound(t *testing.T) {
	lines := []string{"div one", "nothing", "div two"}
	s := NewLineState(lines, "div")

	if got := s.Current(); got != 0 {
		t.Fatalf("initial line: got %d, want 0", got)
	}
	if got := s.Next(); got != 2 {
		t.Errorf("Next: got line %d, want 2", got)
	}
	if got := s.Next(); got != 0 {
		t.Errorf("Next wraps: got line %d, want 0", got)
	}
	if got := s.Previous(); got != 2 {
		t.Errorf("Previous wraps: got line %d, want 2", got)
	}
}
