package dom

import (
	"encoding/json"
	"fmt"
)

// RawNode is the wire shape produced by the tree-walk script: one node
// of the recursive {type,name,attrs,text,children} payload.
type RawNode struct {
	Type     int               `json:"type"`
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attrs"`
	Text     *string           `json:"text"`
	Children []*RawNode        `json:"children"`
}

// ParseTree decodes a JSON tree payload and builds the snapshot tree
// rooted at the given path. A malformed payload is a fetch-level
// failure, not a panic.
func ParseTree(data []byte, rootPath []int) (*Node, error) {
	var raw *RawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dom: parse tree payload: %w", err)
	}
	root := FromRaw(raw, rootPath)
	if root == nil {
		return nil, fmt.Errorf("dom: tree payload is empty")
	}
	return root, nil
}

// FromRaw converts one raw node (and its subtree) into a Node at the
// given path. Absent input yields nil; children that convert to nil
// are dropped and the rest numbered by kept position, so a node's last
// path element always equals its index in the parent's Children.
func FromRaw(raw *RawNode, path []int) *Node {
	if raw == nil {
		return nil
	}

	n := &Node{
		Path: append([]int(nil), path...),
		Kind: KindOf(raw.Type),
		Name: raw.Name,
	}
	if len(raw.Attrs) > 0 {
		n.Attrs = make(map[string]string, len(raw.Attrs))
		for k, v := range raw.Attrs {
			n.Attrs[k] = v
		}
	}
	if raw.Text != nil {
		n.Text = *raw.Text
	}

	for _, rc := range raw.Children {
		child := FromRaw(rc, append(append([]int(nil), path...), len(n.Children)))
		if child == nil {
			continue
		}
		n.Children = append(n.Children, child)
	}
	return n
}
