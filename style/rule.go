package style

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
)

// SourceKind classifies where a matched rule came from. The order of
// the constants is the display order of source groups.
type SourceKind int

const (
	SourceInline SourceKind = iota
	SourceStyleTag
	SourceStylesheet
	SourceUnknown
)

func (k SourceKind) String() string {
	switch k {
	case SourceInline:
		return "inline"
	case SourceStyleTag:
		return "styleTag"
	case SourceStylesheet:
		return "stylesheet"
	default:
		return "unknown"
	}
}

// Source identifies one rule origin: the element's style attribute, a
// <style> tag (by sequential index among style tags only), or an
// external stylesheet (by href).
type Source struct {
	Kind  SourceKind `json:"kind"`
	Index int        `json:"index,omitempty"`
	Href  string     `json:"href,omitempty"`
}

// DisplayKey renders the human-readable group label for this source:
// "element.style", "<style> #N", or "host/file.css".
func (s Source) DisplayKey() string {
	switch s.Kind {
	case SourceInline:
		return "element.style"
	case SourceStyleTag:
		return fmt.Sprintf("<style> #%d", s.Index+1)
	case SourceStylesheet:
		if u, err := url.Parse(s.Href); err == nil && u.Host != "" {
			base := path.Base(u.Path)
			if base == "." || base == "/" {
				return u.Host
			}
			return u.Host + "/" + base
		}
		return s.Href
	default:
		return "unknown"
	}
}

// Property is one declared property in declaration order. A value may
// carry a trailing " !important" marker baked into the string.
type Property struct {
	Name  string `json:"p"`
	Value string `json:"v"`
}

// MatchedRule is one CSS rule found to match a target node. When
// CORSBlocked is set the entry stands for an entire inaccessible
// stylesheet: selector and properties are empty and specificity is 0.
type MatchedRule struct {
	ID          int        `json:"id"`
	Selector    string     `json:"selector"`
	Source      Source     `json:"source"`
	Properties  []Property `json:"properties"`
	Specificity int        `json:"specificity"`
	CORSBlocked bool       `json:"corsBlocked,omitempty"`
}

// rawMatchedRule is the wire shape emitted by the in-page
// matched-rules script.
type rawMatchedRule struct {
	ID       int    `json:"id"`
	Selector string `json:"selector"`
	Source   struct {
		Type  string `json:"type"`
		Index int    `json:"index"`
		Href  string `json:"href"`
	} `json:"source"`
	Properties  []Property `json:"properties"`
	Specificity int        `json:"specificity"`
	CORSBlocked bool       `json:"corsBlocked"`
}

// ParseMatchedRules decodes the matched-rules payload from the page.
func ParseMatchedRules(data []byte) ([]MatchedRule, error) {
	var raw []rawMatchedRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style: parse matched rules: %w", err)
	}

	rules := make([]MatchedRule, 0, len(raw))
	for _, r := range raw {
		kind := SourceUnknown
		switch r.Source.Type {
		case "inline":
			kind = SourceInline
		case "styleTag":
			kind = SourceStyleTag
		case "stylesheet":
			kind = SourceStylesheet
		}
		rules = append(rules, MatchedRule{
			ID:       r.ID,
			Selector: r.Selector,
			Source: Source{
				Kind:  kind,
				Index: r.Source.Index,
				Href:  r.Source.Href,
			},
			Properties:  r.Properties,
			Specificity: r.Specificity,
			CORSBlocked: r.CORSBlocked,
		})
	}
	return rules, nil
}
