package style

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hazyhaar/domscope/dom"
)

func strp(s string) *string { return &s }

func targetDiv() *dom.Node {
	return &dom.Node{
		Path: []int{0, 1, 0},
		Kind: dom.KindElement,
		Name: "DIV",
		Attrs: map[string]string{
			"id":    "main",
			"class": "box highlight",
			"style": "color: red; margin: 4px",
		},
	}
}

func TestResolve_InlineFirstThenSpecificity(t *testing.T) {
	target := targetDiv()
	sheets := []StylesheetInfo{
		{Index: 0, CSSContent: strp("div { color: blue } #main { color: green } .box { border: none }")},
	}

	res := Resolve(target, nil, sheets, 0)
	if len(res.Rules) != 4 {
		t.Fatalf("rules: got %d, want 4 (inline + 3 matches)", len(res.Rules))
	}

	if res.Rules[0].Source.Kind != SourceInline {
		t.Errorf("first rule: got %v, want inline", res.Rules[0].Source.Kind)
	}
	if res.Rules[0].Specificity != InlineSpecificity {
		t.Errorf("inline specificity: got %d, want %d", res.Rules[0].Specificity, InlineSpecificity)
	}
	for i := 1; i < len(res.Rules)-1; i++ {
		if res.Rules[i].Specificity < res.Rules[i+1].Specificity {
			t.Errorf("rules[%d..%d] out of order: %d < %d",
				i, i+1, res.Rules[i].Specificity, res.Rules[i+1].Specificity)
		}
	}
	if res.Rules[1].Selector != "#main" {
		t.Errorf("highest sheet rule: got %q, want #main", res.Rules[1].Selector)
	}
}

func TestResolve_CORSSentinel(t *testing.T) {
	target := targetDiv()
	sheets := []StylesheetInfo{
		{Index: 0, Href: "https://cdn.example/a.css", RulesCount: 0, IsExternal: true, CSSContent: nil},
	}

	res := Resolve(target, nil, sheets, 0)
	if res.BlockedCount != 1 {
		t.Fatalf("blocked count: got %d, want 1", res.BlockedCount)
	}

	var sentinels []MatchedRule
	for _, r := range res.Rules {
		if r.CORSBlocked {
			sentinels = append(sentinels, r)
		}
	}
	if len(sentinels) != 1 {
		t.Fatalf("sentinels: got %d, want exactly 1 per blocked sheet", len(sentinels))
	}
	s := sentinels[0]
	if s.Selector != "" || len(s.Properties) != 0 || s.Specificity != 0 {
		t.Errorf("sentinel shape: selector=%q props=%d spec=%d, want empty/0/0",
			s.Selector, len(s.Properties), s.Specificity)
	}

	// Sentinels never appear in display groups.
	for _, g := range res.Group() {
		for _, r := range g.Rules {
			if r.CORSBlocked {
				t.Errorf("group %q contains a CORS sentinel", g.Key)
			}
		}
	}
}

func TestResolve_ImportantBakedIntoValue(t *testing.T) {
	target := targetDiv()
	sheets := []StylesheetInfo{
		{Index: 0, CSSContent: strp(".box { color: blue !important }")},
	}

	res := Resolve(target, nil, sheets, 0)
	var found bool
	for _, r := range res.Rules {
		for _, p := range r.Properties {
			if p.Name == "color" && strings.HasSuffix(p.Value, "!important") {
				found = true
			}
		}
	}
	if !found {
		t.Error("important flag not baked into value string")
	}
}

func TestResolve_DescendantSelectorUsesAncestry(t *testing.T) {
	target := targetDiv()
	body := &dom.Node{Path: []int{0, 1}, Kind: dom.KindElement, Name: "BODY",
		Attrs: map[string]string{"class": "page"}}
	root := &dom.Node{Path: []int{0}, Kind: dom.KindElement, Name: "HTML"}
	sheets := []StylesheetInfo{
		{Index: 0, CSSContent: strp("body.page div { padding: 0 }")},
	}

	res := Resolve(target, []*dom.Node{root, body, target}, sheets, 0)
	var matched bool
	for _, r := range res.Rules {
		if r.Selector == "body.page div" {
			matched = true
		}
	}
	if !matched {
		t.Error("descendant selector did not match with ancestry provided")
	}
}

func TestResolve_CapBoundsSheetRules(t *testing.T) {
	target := targetDiv()

	var sb strings.Builder
	for i := 0; i < MaxRules+20; i++ {
		fmt.Fprintf(&sb, ".box { margin-top: %dpx }\n", i)
	}
	content := sb.String()
	sheets := []StylesheetInfo{
		{Index: 0, CSSContent: &content},
		{Index: 1, Href: "https://cdn.example/b.css", IsExternal: true, CSSContent: nil},
	}

	res := Resolve(target, nil, sheets, 0)

	sheetRules, sentinels, inline := 0, 0, 0
	for _, r := range res.Rules {
		switch {
		case r.CORSBlocked:
			sentinels++
		case r.Source.Kind == SourceInline:
			inline++
		default:
			sheetRules++
		}
	}
	if sheetRules != MaxRules {
		t.Errorf("sheet rules: got %d, want capped at %d", sheetRules, MaxRules)
	}
	// Inline and sentinels are not counted against the cap.
	if inline != 1 || sentinels != 1 {
		t.Errorf("inline=%d sentinels=%d, want 1 and 1", inline, sentinels)
	}
}

func TestResolve_ConfiguredCap(t *testing.T) {
	target := targetDiv()

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, ".box { margin-top: %dpx }\n", i)
	}
	content := sb.String()
	sheets := []StylesheetInfo{{Index: 0, CSSContent: &content}}

	res := Resolve(target, nil, sheets, 3)
	sheetRules := 0
	for _, r := range res.Rules {
		if r.Source.Kind != SourceInline && !r.CORSBlocked {
			sheetRules++
		}
	}
	if sheetRules != 3 {
		t.Errorf("sheet rules: got %d, want capped at 3", sheetRules)
	}
}

func TestFromRules_ConfiguredCap(t *testing.T) {
	var rules []MatchedRule
	for i := 0; i < 10; i++ {
		rules = append(rules, MatchedRule{
			ID: i, Selector: ".box",
			Source:      Source{Kind: SourceStyleTag},
			Specificity: 10,
		})
	}
	rules = append(rules, MatchedRule{Source: Source{Kind: SourceStylesheet}, CORSBlocked: true})

	res := FromRules(rules, 4)
	kept, sentinels := 0, 0
	for _, r := range res.Rules {
		if r.CORSBlocked {
			sentinels++
		} else {
			kept++
		}
	}
	if kept != 4 {
		t.Errorf("kept rules: got %d, want capped at 4", kept)
	}
	// Sentinels pass through regardless of the cap.
	if sentinels != 1 {
		t.Errorf("sentinels: got %d, want 1", sentinels)
	}
}

func TestGroup_OrderAndKeys(t *testing.T) {
	target := targetDiv()
	sheets := []StylesheetInfo{
		{Index: 0, Href: "https://cdn.example/theme.css", IsExternal: true,
			CSSContent: strp("div { color: blue }")},
		{Index: 1, CSSContent: strp(".box { margin: 0 }")},
	}

	res := Resolve(target, nil, sheets, 0)
	groups := res.Group()
	if len(groups) != 3 {
		t.Fatalf("groups: got %d, want 3", len(groups))
	}

	if groups[0].Key != "element.style" || groups[0].Kind != SourceInline {
		t.Errorf("group 0: got %q/%v, want element.style", groups[0].Key, groups[0].Kind)
	}
	if groups[1].Kind != SourceStyleTag || !strings.HasPrefix(groups[1].Key, "<style> #") {
		t.Errorf("group 1: got %q/%v, want a style tag group", groups[1].Key, groups[1].Kind)
	}
	if groups[2].Kind != SourceStylesheet || groups[2].Key != "cdn.example/theme.css" {
		t.Errorf("group 2: got %q/%v, want cdn.example/theme.css", groups[2].Key, groups[2].Kind)
	}
}

func TestCollectInline(t *testing.T) {
	rule := CollectInline(targetDiv())
	if rule == nil {
		t.Fatal("CollectInline: got nil for node with style attribute")
	}
	if len(rule.Properties) != 2 {
		t.Fatalf("properties: got %d, want 2", len(rule.Properties))
	}
	if rule.Properties[0].Name != "color" || rule.Properties[0].Value != "red" {
		t.Errorf("first property: got %s=%s, want color=red",
			rule.Properties[0].Name, rule.Properties[0].Value)
	}

	if CollectInline(&dom.Node{Name: "P", Kind: dom.KindElement}) != nil {
		t.Error("CollectInline without style attribute: got rule, want nil")
	}
}

func TestParseMatchedRules(t *testing.T) {
	payload := `[
		{"id":0,"selector":"","source":{"type":"stylesheet","href":"https://x.example/a.css"},
		 "properties":[],"specificity":0,"corsBlocked":true},
		{"id":1,"selector":".box","source":{"type":"styleTag","index":0},
		 "properties":[{"p":"color","v":"blue"}],"specificity":10}
	]`

	rules, err := ParseMatchedRules([]byte(payload))
	if err != nil {
		t.Fatalf("ParseMatchedRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules: got %d, want 2", len(rules))
	}
	if !rules[0].CORSBlocked || rules[0].Source.Kind != SourceStylesheet {
		t.Errorf("rule 0: got %+v, want CORS-blocked stylesheet", rules[0])
	}
	if rules[1].Source.Kind != SourceStyleTag || rules[1].Properties[0].Value != "blue" {
		t.Errorf("rule 1: got %+v", rules[1])
	}

	if _, err := ParseMatchedRules([]byte("{bad")); err == nil {
		t.Error("malformed payload: got nil error")
	}
}

func TestParseStylesheetInfos_BlockedDetection(t *testing.T) {
	payload := `[{"href":"https://cdn.example/a.css","rulesCount":0,"isExternal":true,"media":null,"cssContent":null}]`
	infos, err := ParseStylesheetInfos([]byte(payload))
	if err != nil {
		t.Fatalf("ParseStylesheetInfos: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("infos: got %d, want 1", len(infos))
	}
	if !infos[0].CORSBlocked() {
		t.Error("external sheet with null cssContent not detected as CORS-blocked")
	}

	local := StylesheetInfo{CSSContent: strp("p{}")}
	if local.CORSBlocked() {
		t.Error("readable sheet reported as blocked")
	}
}
