// Package dom holds the snapshot tree model used by the inspector.
//
// Nodes are immutable value snapshots addressed by their path from the
// root: a node's identity is its position, not an object reference. A
// re-fetch of an unchanged document produces a fresh graph that reuses
// the same IDs for the same positions, which is how selection and
// expand state survive a refresh.
package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a snapshot node from the document's integer node-type
// code (1 = element, 3 = text, anything else = other).
type Kind int

const (
	KindOther Kind = iota
	KindElement
	KindText
)

// KindOf maps a raw DOM nodeType code to a Kind.
func KindOf(nodeType int) Kind {
	switch nodeType {
	case 1:
		return KindElement
	case 3:
		return KindText
	default:
		return KindOther
	}
}

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	default:
		return "other"
	}
}

// Node is a snapshot of one document node.
//
// Path is the root-relative child-index chain; Path[0] is the root's own
// fixed index. Two snapshots taken at different times describe "the same
// node" iff their paths are equal, regardless of content. Known
// limitation of positional identity: inserting or removing a sibling
// shifts every following sibling's identity.
type Node struct {
	Path     []int             `json:"path"`
	Kind     Kind              `json:"kind"`
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`

	// Expanded is transient UI state, not part of identity.
	Expanded bool `json:"-"`
}

// ID returns the node's synthetic identity: the dot-joined path.
func (n *Node) ID() string {
	return PathID(n.Path)
}

// PathID renders a path as a dot-joined identity string.
func PathID(path []int) string {
	var sb strings.Builder
	for i, p := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// ParsePathID parses a dot-joined identity string back into a path.
func ParsePathID(id string) ([]int, error) {
	if id == "" {
		return nil, fmt.Errorf("dom: empty path id")
	}
	parts := strings.Split(id, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("dom: bad path id %q", id)
		}
		path[i] = n
	}
	return path, nil
}

// Attr returns the named attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Selector builds the node's effective query selector for rule
// resolution: "#id" when an id attribute is present, otherwise the
// lower-cased tag name followed by ".class" for each class token.
func (n *Node) Selector() string {
	if id := n.Attr("id"); id != "" {
		return "#" + id
	}
	sel := strings.ToLower(n.Name)
	for _, cls := range strings.Fields(n.Attr("class")) {
		sel += "." + cls
	}
	return sel
}

// Walk visits n and every descendant in pre-order (node first, then
// children left to right). The visit function returns false to stop the
// walk early.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// Find resolves a path against this tree, treating n as the root. The
// first path element identifies the root itself and must match; the
// rest descend through child indices. Returns nil when the path does
// not resolve.
func (n *Node) Find(path []int) *Node {
	if len(path) == 0 {
		return nil
	}
	if len(n.Path) > 0 && path[0] != n.Path[0] {
		return nil
	}
	cur := n
	for _, idx := range path[1:] {
		if idx < 0 || idx >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[idx]
	}
	return cur
}
