// Package style resolves which CSS rules apply to a snapshot node:
// specificity scoring, rule collection across stylesheet sources,
// cross-origin sentinel handling, display grouping, and box-model
// extraction.
package style

// InlineSpecificity is the score assigned to declarations from a
// node's own style attribute. It sits above anything a selector can
// reach with the approximate formula below.
const InlineSpecificity = 10_000

// Specificity computes an approximate CSS specificity score:
//
//	100*(#id) + 10*(#class + #attribute + #pseudo-class) + 1*(#tag)
//
// This is developer-tool-grade scoring, not a cascade resolver. Known
// simplifications: pseudo-elements are counted like pseudo-classes,
// :not() internals are skipped rather than scored, and source order is
// not used to break ties.
func Specificity(selector string) int {
	ids, classes, tags := 0, 0, 0

	i, n := 0, len(selector)
	for i < n {
		c := selector[i]
		switch {
		case c == '#':
			i = skipIdent(selector, i+1)
			ids++

		case c == '.':
			i = skipIdent(selector, i+1)
			classes++

		case c == '[':
			for i < n && selector[i] != ']' {
				i++
			}
			if i < n {
				i++
			}
			classes++

		case c == ':':
			i++
			if i < n && selector[i] == ':' {
				i++
			}
			i = skipIdent(selector, i)
			// Skip a functional argument like :not(...) wholesale.
			if i < n && selector[i] == '(' {
				depth := 0
				for i < n {
					if selector[i] == '(' {
						depth++
					} else if selector[i] == ')' {
						depth--
						if depth == 0 {
							i++
							break
						}
					}
					i++
				}
			}
			classes++

		case isIdentByte(c):
			i = skipIdent(selector, i)
			tags++

		default:
			// Combinators, whitespace, commas, '*'.
			i++
		}
	}

	return ids*100 + classes*10 + tags
}

func skipIdent(s string, i int) int {
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_' || c >= 0x80
}
