package export

import (
	"strings"
	"testing"

	"github.com/hazyhaar/domscope/dom"
)

func sampleTree() *dom.Node {
	return &dom.Node{
		Path: []int{0},
		Kind: dom.KindElement,
		Name: "div",
		Children: []*dom.Node{
			{
				Path: []int{0, 0},
				Kind: dom.KindElement,
				Name: "h1",
				Children: []*dom.Node{
					{Path: []int{0, 0, 0}, Kind: dom.KindText, Text: "Title"},
				},
			},
			{
				Path: []int{0, 1},
				Kind: dom.KindElement,
				Name: "p",
				Children: []*dom.Node{
					{Path: []int{0, 1, 0}, Kind: dom.KindText, Text: "Some body text."},
				},
			},
		},
	}
}

func TestMarkdownFromMarkup(t *testing.T) {
	e := New()

	out, err := e.Markdown("<h1>Title</h1><p>Some body text.</p>")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(out, "# Title") {
		t.Errorf("markdown missing heading: %q", out)
	}
	if !strings.Contains(out, "Some body text.") {
		t.Errorf("markdown missing paragraph: %q", out)
	}
}

func TestTreeMarkdown(t *testing.T) {
	e := New()

	out, err := e.TreeMarkdown(sampleTree())
	if err != nil {
		t.Fatalf("TreeMarkdown: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "Some body text.") {
		t.Errorf("unexpected markdown: %q", out)
	}
}

func TestSanitizedStripsScripts(t *testing.T) {
	e := New()

	in := `<p onclick="evil()">ok</p><script>alert(1)</script>`
	got := e.Sanitized(in)

	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Errorf("active content survived sanitization: %q", got)
	}
	if !strings.Contains(got, "ok") {
		t.Errorf("text content lost: %q", got)
	}
}

func TestMarkdownFromResolvesLinks(t *testing.T) {
	e := New()

	out, err := e.MarkdownFrom(`<a href="/docs">docs</a>`, "https://example.com")
	if err != nil {
		t.Fatalf("MarkdownFrom: %v", err)
	}
	if !strings.Contains(out, "example.com/docs") {
		t.Errorf("relative link not resolved: %q", out)
	}
}
