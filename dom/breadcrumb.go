package dom

// Ancestry reconstructs the ancestor chain from root down to target
// using only the target's path. The first path element identifies the
// root itself and is skipped. Each in-range step appends the current
// node and descends; an out-of-range index stops the walk, so a stale
// path against a since-changed tree degrades to a truncated chain
// instead of an out-of-bounds access. The target itself is always the
// final element.
func Ancestry(target, root *Node) []*Node {
	if target == nil || root == nil {
		return nil
	}

	chain := make([]*Node, 0, len(target.Path)+1)
	cur := root
	for _, idx := range target.Path[1:] {
		if idx < 0 || idx >= len(cur.Children) {
			break
		}
		chain = append(chain, cur)
		cur = cur.Children[idx]
	}
	return append(chain, target)
}
