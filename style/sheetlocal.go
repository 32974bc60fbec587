package style

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/hazyhaar/domscope/dom"
)

// sheetMatcher matches parsed stylesheet text against a synthetic
// element built from a snapshot node and its ancestry. douceur parses
// the sheet, cascadia evaluates each selector.
type sheetMatcher struct {
	target *html.Node
	// styleTagSeq numbers <style> tags sequentially, counting only
	// inline sheets, so external sheets do not shift the numbering.
	styleTagSeq int
}

func newSheetMatcher(target *dom.Node, ancestry []*dom.Node) *sheetMatcher {
	return &sheetMatcher{target: syntheticElement(target, ancestry)}
}

// match parses one accessible sheet and returns every rule whose
// selector matches the target, with specificity computed and
// "!important" baked into affected values. Unparseable sheet text
// yields no rules rather than an error: partial display beats none.
func (m *sheetMatcher) match(sheet StylesheetInfo) []MatchedRule {
	source := Source{Kind: SourceStylesheet, Href: sheet.Href}
	if !sheet.IsExternal {
		source = Source{Kind: SourceStyleTag, Index: m.styleTagSeq}
		m.styleTagSeq++
	}

	if sheet.CSSContent == nil || m.target == nil {
		return nil
	}
	parsed, err := parser.Parse(*sheet.CSSContent)
	if err != nil {
		return nil
	}

	var out []MatchedRule
	m.collectRules(parsed.Rules, source, &out)
	return out
}

// collectRules walks qualified rules, descending into at-rules that
// embed rule lists (media queries are not evaluated, matching the
// approximate-resolver contract).
func (m *sheetMatcher) collectRules(rules []*css.Rule, source Source, out *[]MatchedRule) {
	for _, rule := range rules {
		if len(rule.Rules) > 0 {
			m.collectRules(rule.Rules, source, out)
			continue
		}
		for _, sel := range rule.Selectors {
			sel = strings.TrimSpace(sel)
			if sel == "" || !m.selectorMatches(sel) {
				continue
			}
			*out = append(*out, MatchedRule{
				Selector:    sel,
				Source:      source,
				Properties:  declarations(rule.Declarations),
				Specificity: Specificity(sel),
			})
			// One entry per rule even when several of its selectors match.
			break
		}
	}
}

func (m *sheetMatcher) selectorMatches(sel string) bool {
	compiled, err := cascadia.Compile(sel)
	if err != nil {
		return false
	}
	return compiled.Match(m.target)
}

func declarations(decls []*css.Declaration) []Property {
	props := make([]Property, 0, len(decls))
	for _, d := range decls {
		value := d.Value
		if d.Important {
			value += " !important"
		}
		props = append(props, Property{Name: d.Property, Value: value})
	}
	return props
}

// syntheticElement builds a minimal x/net/html element chain for
// selector evaluation: each ancestry node becomes a parent of the
// next, ending at the target. Only element nodes contribute; text
// nodes cannot be selector subjects.
func syntheticElement(target *dom.Node, ancestry []*dom.Node) *html.Node {
	if target == nil || target.Kind != dom.KindElement {
		return nil
	}

	var parent *html.Node
	for _, a := range ancestry {
		if a == target || a.Kind != dom.KindElement {
			continue
		}
		n := elementNode(a)
		if parent != nil {
			parent.AppendChild(n)
		}
		parent = n
	}

	el := elementNode(target)
	if parent != nil {
		parent.AppendChild(el)
	}
	return el
}

func elementNode(n *dom.Node) *html.Node {
	el := &html.Node{
		Type: html.ElementNode,
		Data: strings.ToLower(n.Name),
	}
	for k, v := range n.Attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: v})
	}
	return el
}
