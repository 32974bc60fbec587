package style

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Sides is a four-sided measurement in CSS order.
type Sides struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// BoxModel is the layered geometry snapshot for one node. All sides
// default to 0 when absent from the payload; width and height are
// required for the box model to exist at all.
type BoxModel struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Margin  Sides `json:"margin"`
	Padding Sides `json:"padding"`
	Border  Sides `json:"border"`
}

// ParseBoxModel extracts a BoxModel from the structural part of a
// computed-style payload. Returns (nil, false) when width or height is
// missing or non-numeric: "no box model" is distinct from a valid
// all-zero one.
func ParseBoxModel(raw map[string]json.RawMessage) (*BoxModel, bool) {
	width, ok := numField(raw, "width")
	if !ok {
		return nil, false
	}
	height, ok := numField(raw, "height")
	if !ok {
		return nil, false
	}

	bm := &BoxModel{Width: width, Height: height}
	bm.Margin = sides(raw, "margin")
	bm.Padding = sides(raw, "padding")
	bm.Border = Sides{
		Top:    numOrZero(raw, "borderTopWidth"),
		Right:  numOrZero(raw, "borderRightWidth"),
		Bottom: numOrZero(raw, "borderBottomWidth"),
		Left:   numOrZero(raw, "borderLeftWidth"),
	}
	return bm, true
}

func sides(raw map[string]json.RawMessage, prefix string) Sides {
	return Sides{
		Top:    numOrZero(raw, prefix+"Top"),
		Right:  numOrZero(raw, prefix+"Right"),
		Bottom: numOrZero(raw, prefix+"Bottom"),
		Left:   numOrZero(raw, prefix+"Left"),
	}
}

func numField(raw map[string]json.RawMessage, key string) (int, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	return int(f), true
}

func numOrZero(raw map[string]json.RawMessage, key string) int {
	n, _ := numField(raw, key)
	return n
}

// ComputedStyle is the decoded computed-style payload for a node:
// literal CSS property values plus the optional structural box model.
type ComputedStyle struct {
	Properties map[string]string `json:"properties"`
	BoxModel   *BoxModel         `json:"boxModel,omitempty"`
}

// ParseComputedStyle decodes a computed-style payload. Keys prefixed
// with "_" are structural ("_boxModel"); every other key is a literal
// CSS property name. A payload without a usable box model still yields
// the properties: the box model is simply absent for that node.
func ParseComputedStyle(data []byte) (*ComputedStyle, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style: parse computed style: %w", err)
	}

	cs := &ComputedStyle{Properties: make(map[string]string)}
	for k, v := range raw {
		if strings.HasPrefix(k, "_") {
			if k == "_boxModel" {
				var box map[string]json.RawMessage
				if err := json.Unmarshal(v, &box); err == nil {
					if bm, ok := ParseBoxModel(box); ok {
						cs.BoxModel = bm
					}
				}
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		cs.Properties[k] = s
	}
	return cs, nil
}

// SortedPropertyNames returns the computed property names in sorted
// order for stable display.
func (cs *ComputedStyle) SortedPropertyNames() []string {
	names := make([]string, 0, len(cs.Properties))
	for k := range cs.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
