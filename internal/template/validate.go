package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// MaxParameterLength is the provider limit for a single parameter value.
	MaxParameterLength = 1024
	// MaxBodyParameters is the provider limit for body component parameters.
	MaxBodyParameters = 10
	// MaxButtonComponents is the provider limit for button components.
	MaxButtonComponents = 3
)

var templateNameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidationResult reports template parameter problems found before sending.
// Warnings do not block a send; errors do.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validate checks a template name and parameter map against provider
// constraints. expectedVars lists the {{var}} placeholders the template
// declares; a declared variable with no matching parameter is a warning, not
// an error.
func Validate(name string, params map[string]string, expectedVars []string) ValidationResult {
	result := ValidationResult{Valid: true}
	fail := func(format string, args ...interface{}) {
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
		result.Valid = false
	}

	if !templateNameRegex.MatchString(name) {
		fail("template name %q is invalid: only lowercase letters, digits and underscores are allowed", name)
	}

	var headerIdx, bodyIdx, buttonIdx []int
	bodyCount := 0
	for key, value := range params {
		if len(value) > MaxParameterLength {
			fail("parameter %q is %d characters (maximum %d)", key, len(value), MaxParameterLength)
		}

		kind, index, _, ok := parseKey(key)
		if !ok {
			bodyCount++
			continue
		}
		switch kind {
		case ComponentHeader:
			headerIdx = append(headerIdx, index)
		case ComponentBody:
			bodyIdx = append(bodyIdx, index)
			bodyCount++
		case ComponentButton:
			buttonIdx = append(buttonIdx, index)
		}
	}

	checkContiguous(ComponentHeader, headerIdx, fail)
	checkContiguous(ComponentBody, bodyIdx, fail)

	if len(buttonIdx) > MaxButtonComponents {
		fail("too many button components: %d (maximum %d)", len(buttonIdx), MaxButtonComponents)
	}
	if bodyCount > MaxBodyParameters {
		fail("too many body parameters: %d (maximum %d)", bodyCount, MaxBodyParameters)
	}

	for _, v := range expectedVars {
		if !varCovered(v, params) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("expected variable %q has no matching parameter", v))
		}
	}

	return result
}

// checkContiguous enforces that indexed parameters run 1..n with no gaps.
func checkContiguous(kind string, indices []int, fail func(string, ...interface{})) {
	if len(indices) == 0 {
		return
	}
	sort.Ints(indices)
	for i, idx := range indices {
		want := i + 1
		if idx == want {
			continue
		}
		if idx > want {
			fail("missing %s_%d: %s parameters must be numbered contiguously from 1", kind, want, kind)
		} else {
			fail("duplicate %s_%d parameter", kind, idx)
		}
		return
	}
}

func varCovered(v string, params map[string]string) bool {
	placeholder := "{{" + v + "}}"
	for key, value := range params {
		if key == v || strings.Contains(key, v) || strings.Contains(value, placeholder) {
			return true
		}
	}
	return false
}
