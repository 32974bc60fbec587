package style

import (
	"sort"
	"strings"

	"github.com/hazyhaar/domscope/dom"
)

// MaxRules is the default cap on non-sentinel, non-inline rules one
// resolution returns, bounding payload size. Inline declarations and
// CORS sentinels are not counted against the cap.
const MaxRules = 50

// Resolution is the outcome of matching all known rule sources against
// one node: display-ordered rules plus the count of stylesheets whose
// rules could not be enumerated.
type Resolution struct {
	Rules        []MatchedRule `json:"rules"`
	BlockedCount int           `json:"blockedCount"`
}

// RuleGroup is one display group of accessible rules sharing a source.
type RuleGroup struct {
	Key   string        `json:"key"`
	Kind  SourceKind    `json:"kind"`
	Rules []MatchedRule `json:"rules"`
}

// Resolve matches every known stylesheet against the target node and
// assembles the display-ordered rule set: the node's own inline
// declarations first (at maximum specificity), then sheet rules by
// specificity descending, with one sentinel per CORS-blocked sheet.
// The ancestry chain (root first) lets descendant selectors match.
// maxRules bounds the non-sentinel sheet rules; zero or negative means
// MaxRules.
func Resolve(target *dom.Node, ancestry []*dom.Node, sheets []StylesheetInfo, maxRules int) Resolution {
	if maxRules <= 0 {
		maxRules = MaxRules
	}
	var rules []MatchedRule
	nextID := 0

	if inline := CollectInline(target); inline != nil {
		inline.ID = nextID
		nextID++
		rules = append(rules, *inline)
	}

	matcher := newSheetMatcher(target, ancestry)
	capped := 0
	for _, sheet := range sheets {
		if sheet.CORSBlocked() {
			rules = append(rules, MatchedRule{
				ID:          nextID,
				Source:      Source{Kind: SourceStylesheet, Href: sheet.Href},
				CORSBlocked: true,
			})
			nextID++
			continue
		}

		for _, r := range matcher.match(sheet) {
			if capped >= maxRules {
				break
			}
			r.ID = nextID
			nextID++
			rules = append(rules, r)
			capped++
		}
	}

	return finishResolution(rules)
}

// FromRules builds a Resolution from an already-collected rule list
// (the in-page matched-rules payload), applying the same ordering and
// cap. Zero or negative maxRules means MaxRules.
func FromRules(rules []MatchedRule, maxRules int) Resolution {
	if maxRules <= 0 {
		maxRules = MaxRules
	}
	kept := make([]MatchedRule, 0, len(rules))
	capped := 0
	for _, r := range rules {
		if !r.CORSBlocked && r.Source.Kind != SourceInline {
			if capped >= maxRules {
				continue
			}
			capped++
		}
		kept = append(kept, r)
	}
	return finishResolution(kept)
}

func finishResolution(rules []MatchedRule) Resolution {
	res := Resolution{}
	for _, r := range rules {
		if r.CORSBlocked {
			res.BlockedCount++
		}
		res.Rules = append(res.Rules, r)
	}
	SortForDisplay(res.Rules)
	return res
}

// SortForDisplay orders rules for presentation: inline first, then
// specificity descending. The sort is stable, so rules of equal
// specificity keep their collection order, which is the cascade's own
// tie-break; no further relevance ordering is applied.
func SortForDisplay(rules []MatchedRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		ai, bi := a.Source.Kind == SourceInline, b.Source.Kind == SourceInline
		if ai != bi {
			return ai
		}
		return a.Specificity > b.Specificity
	})
}

// Group buckets the accessible rules by display source key, ordered by
// source kind (inline, style tag, stylesheet, unknown) then by first
// appearance. CORS sentinels are never mixed in: they are reported only
// through Resolution.BlockedCount.
func (r Resolution) Group() []RuleGroup {
	var groups []RuleGroup
	index := make(map[string]int)

	for _, rule := range r.Rules {
		if rule.CORSBlocked {
			continue
		}
		key := rule.Source.DisplayKey()
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, RuleGroup{Key: key, Kind: rule.Source.Kind})
		}
		groups[gi].Rules = append(groups[gi].Rules, rule)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Kind < groups[j].Kind
	})
	return groups
}

// CollectInline turns a node's style attribute into a single
// MatchedRule at inline specificity. Returns nil when the node has no
// inline declarations.
func CollectInline(n *dom.Node) *MatchedRule {
	if n == nil {
		return nil
	}
	attr := n.Attr("style")
	if strings.TrimSpace(attr) == "" {
		return nil
	}

	var props []Property
	for _, decl := range strings.Split(attr, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		props = append(props, Property{Name: name, Value: value})
	}
	if len(props) == 0 {
		return nil
	}

	return &MatchedRule{
		Selector:    n.Selector(),
		Source:      Source{Kind: SourceInline},
		Properties:  props,
		Specificity: InlineSpecificity,
	}
}
