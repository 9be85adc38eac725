// Package template turns customer data and ad hoc key-value parameters into
// the positional component structure WhatsApp message templates consume.
package template

import (
	"sort"
	"strconv"
	"strings"
)

// Component types as they appear on the wire.
const (
	ComponentHeader = "header"
	ComponentBody   = "body"
	ComponentButton = "button"
)

// DefaultButtonSubType is used when a button key carries no subtype.
const DefaultButtonSubType = "url"

// Component is one section of a template message. Button components carry a
// 0-based Index and a SubType; header and body carry neither.
type Component struct {
	Type       string   `json:"type"`
	SubType    string   `json:"sub_type,omitempty"`
	Index      int      `json:"index"`
	Parameters []string `json:"parameters"`
}

type slot struct {
	index int
	value string
}

type buttonSlot struct {
	index   int
	subType string
	value   string
}

// parseKey splits a parameter key into its destination. Keys look like
// header_1, body_2, button_1 or button_2_quick_reply; anything else is an
// unprefixed body parameter.
func parseKey(key string) (kind string, index int, subType string, ok bool) {
	for _, prefix := range []string{ComponentHeader, ComponentBody, ComponentButton} {
		rest, found := strings.CutPrefix(key, prefix+"_")
		if !found {
			continue
		}
		numStr, tail, _ := strings.Cut(rest, "_")
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 1 {
			return "", 0, "", false
		}
		if tail != "" && prefix != ComponentButton {
			return "", 0, "", false
		}
		return prefix, n, tail, true
	}
	return "", 0, "", false
}

// Build converts a parameter map into ordered components: at most one header,
// at most one body, then one component per button sorted by index.
// Empty and whitespace-only values are dropped. Unprefixed keys become body
// parameters appended after the explicitly indexed ones, ordered by key name
// so output does not depend on map iteration order.
func Build(params map[string]string) []Component {
	var headers, bodies []slot
	var buttons []buttonSlot
	var extraKeys []string

	for key, raw := range params {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}

		kind, index, subType, ok := parseKey(key)
		if !ok {
			extraKeys = append(extraKeys, key)
			continue
		}

		switch kind {
		case ComponentHeader:
			headers = append(headers, slot{index, value})
		case ComponentBody:
			bodies = append(bodies, slot{index, value})
		case ComponentButton:
			if subType == "" {
				subType = DefaultButtonSubType
			}
			buttons = append(buttons, buttonSlot{index, subType, value})
		}
	}

	sort.Slice(headers, func(i, j int) bool { return headers[i].index < headers[j].index })
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].index < bodies[j].index })
	sort.Slice(buttons, func(i, j int) bool { return buttons[i].index < buttons[j].index })
	sort.Strings(extraKeys)

	var components []Component

	if len(headers) > 0 {
		components = append(components, Component{
			Type:       ComponentHeader,
			Parameters: values(headers),
		})
	}

	bodyParams := values(bodies)
	for _, key := range extraKeys {
		bodyParams = append(bodyParams, strings.TrimSpace(params[key]))
	}
	if len(bodyParams) > 0 {
		components = append(components, Component{
			Type:       ComponentBody,
			Parameters: bodyParams,
		})
	}

	for _, b := range buttons {
		components = append(components, Component{
			Type:       ComponentButton,
			SubType:    b.subType,
			Index:      b.index - 1,
			Parameters: []string{b.value},
		})
	}

	return components
}

func values(slots []slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.value)
	}
	return out
}
