// Package search implements incremental substring search over snapshot
// trees and raw markup lines, with debounced recomputation and
// wraparound match navigation.
package search

import (
	"strings"

	"github.com/hazyhaar/domscope/dom"
)

// Matches reports whether a node matches the query: a case-insensitive
// substring match against the node name, its id attribute, its class
// attribute, or its text content. The empty query matches nothing
// (search inactive).
func Matches(n *dom.Node, query string) bool {
	if n == nil || query == "" {
		return false
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Attr("id")), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Attr("class")), q) {
		return true
	}
	return strings.Contains(strings.ToLower(n.Text), q)
}

// CollectPaths returns the paths of every node matching the query, in
// pre-order document order. Pre-order fixes the navigation order: a
// parent match comes before any of its descendants' matches.
func CollectPaths(root *dom.Node, query string) [][]int {
	if root == nil || query == "" {
		return nil
	}
	var paths [][]int
	root.Walk(func(n *dom.Node) bool {
		if Matches(n, query) {
			paths = append(paths, append([]int(nil), n.Path...))
		}
		return true
	})
	return paths
}

// SplitLines splits raw markup on line feeds. Deliberately byte-exact
// (no locale-aware breaking) so indices stay aligned with a
// fixed-width renderer of the same text.
func SplitLines(markup string) []string {
	return strings.Split(markup, "\n")
}

// LineIndices returns the indices of every line containing the query,
// case-insensitively. The empty query matches nothing.
func LineIndices(lines []string, query string) []int {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var idx []int
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), q) {
			idx = append(idx, i)
		}
	}
	return idx
}
