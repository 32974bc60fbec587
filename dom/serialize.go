package dom

import (
	"sort"
	"strings"
)

// Serialize renders a snapshot tree back into flat markup for export.
// It is a formatting pass only: no validation, no entity escaping
// beyond what the snapshot already carries.
func Serialize(root *Node) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, root, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n.Kind {
	case KindText:
		if t := strings.TrimSpace(n.Text); t != "" {
			sb.WriteString(indent)
			sb.WriteString(t)
			sb.WriteByte('\n')
		}
		return

	case KindElement:
		name := strings.ToLower(n.Name)
		sb.WriteString(indent)
		sb.WriteByte('<')
		sb.WriteString(name)
		for _, k := range sortedKeys(n.Attrs) {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(n.Attrs[k])
			sb.WriteByte('"')
		}
		if len(n.Children) == 0 {
			sb.WriteString("/>\n")
			return
		}
		sb.WriteString(">\n")
		for _, c := range n.Children {
			writeNode(sb, c, depth+1)
		}
		sb.WriteString(indent)
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteString(">\n")

	default:
		for _, c := range n.Children {
			writeNode(sb, c, depth)
		}
	}
}

// sortedKeys keeps attribute output deterministic across runs; the
// snapshot map has no inherent order.
func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
