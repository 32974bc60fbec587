package style

import (
	"encoding/json"
	"fmt"
)

// StylesheetInfo is flat metadata for one stylesheet known to the
// document, in document order. CSSContent is nil when the sheet's
// rules cannot be enumerated by script (cross-origin).
type StylesheetInfo struct {
	Index      int     `json:"index"`
	Href       string  `json:"href"`
	RulesCount int     `json:"rulesCount"`
	IsExternal bool    `json:"isExternal"`
	Media      string  `json:"media,omitempty"`
	CSSContent *string `json:"cssContent"`
}

// CORSBlocked reports whether this sheet's rules are inaccessible: an
// external sheet whose content could not be read.
func (s StylesheetInfo) CORSBlocked() bool {
	return s.Href != "" && s.CSSContent == nil
}

// ScriptInfo is flat metadata for one script element. Content is nil
// for external scripts.
type ScriptInfo struct {
	Index      int     `json:"index"`
	Src        string  `json:"src"`
	IsExternal bool    `json:"isExternal"`
	IsModule   bool    `json:"isModule"`
	IsAsync    bool    `json:"isAsync"`
	IsDefer    bool    `json:"isDefer"`
	Content    *string `json:"content"`
}

type rawStylesheet struct {
	Href       *string `json:"href"`
	RulesCount int     `json:"rulesCount"`
	IsExternal bool    `json:"isExternal"`
	Media      *string `json:"media"`
	CSSContent *string `json:"cssContent"`
}

// ParseStylesheetInfos decodes the stylesheet metadata payload,
// assigning document-order indices.
func ParseStylesheetInfos(data []byte) ([]StylesheetInfo, error) {
	var raw []rawStylesheet
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style: parse stylesheet metadata: %w", err)
	}

	infos := make([]StylesheetInfo, 0, len(raw))
	for i, r := range raw {
		info := StylesheetInfo{
			Index:      i,
			RulesCount: r.RulesCount,
			IsExternal: r.IsExternal,
			CSSContent: r.CSSContent,
		}
		if r.Href != nil {
			info.Href = *r.Href
		}
		if r.Media != nil {
			info.Media = *r.Media
		}
		infos = append(infos, info)
	}
	return infos, nil
}

type rawScript struct {
	Src        *string `json:"src"`
	IsExternal bool    `json:"isExternal"`
	IsModule   bool    `json:"isModule"`
	IsAsync    bool    `json:"isAsync"`
	IsDefer    bool    `json:"isDefer"`
	Content    *string `json:"content"`
}

// ParseScriptInfos decodes the script metadata payload.
func ParseScriptInfos(data []byte) ([]ScriptInfo, error) {
	var raw []rawScript
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style: parse script metadata: %w", err)
	}

	infos := make([]ScriptInfo, 0, len(raw))
	for i, r := range raw {
		info := ScriptInfo{
			Index:      i,
			IsExternal: r.IsExternal,
			IsModule:   r.IsModule,
			IsAsync:    r.IsAsync,
			IsDefer:    r.IsDefer,
			Content:    r.Content,
		}
		if r.Src != nil {
			info.Src = *r.Src
		}
		infos = append(infos, info)
	}
	return infos, nil
}
