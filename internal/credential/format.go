// Package credential resolves and validates the agent's API key.
package credential

import (
	"fmt"
	"strings"
)

// Format is the syntactic shape of a key: Prefix followed by at least
// MinLength characters from [A-Za-z0-9-].
type Format struct {
	Prefix    string
	MinLength int
	// Strict rejects anything after the key body. When false only the
	// leading part has to match and trailing characters are ignored.
	Strict bool
}

// Rule names the part of the format a value violated.
type Rule string

const (
	RulePrefix    Rule = "prefix"
	RuleMinLength Rule = "min_length"
	RuleCharset   Rule = "charset"
)

// FormatError reports every rule a candidate key broke, in check order.
type FormatError struct {
	Rules  []Rule
	Format Format
}

// Has reports whether r is among the violated rules.
func (e *FormatError) Has(r Rule) bool {
	for _, v := range e.Rules {
		if v == r {
			return true
		}
	}
	return false
}

func (e *FormatError) Error() string {
	parts := make([]string, 0, len(e.Rules))
	for _, r := range e.Rules {
		switch r {
		case RulePrefix:
			parts = append(parts, fmt.Sprintf("start with %q", e.Format.Prefix))
		case RuleMinLength:
			parts = append(parts, fmt.Sprintf("have at least %d letters, digits or hyphens after %q",
				e.Format.MinLength, e.Format.Prefix))
		default:
			parts = append(parts, fmt.Sprintf("only contain letters, digits and hyphens after %q", e.Format.Prefix))
		}
	}
	return "API key must " + strings.Join(parts, " and ")
}

// Validate returns nil when s has the expected shape, otherwise a *FormatError.
// A value missing the prefix is measured as a whole against MinLength.
func (f Format) Validate(s string) error {
	var rules []Rule
	body, hasPrefix := strings.CutPrefix(s, f.Prefix)
	if !hasPrefix {
		rules = append(rules, RulePrefix)
	}
	run := bodyRun(body)
	if run < f.MinLength {
		rules = append(rules, RuleMinLength)
	}
	if len(rules) == 0 && f.Strict && run != len(body) {
		rules = append(rules, RuleCharset)
	}
	if len(rules) == 0 {
		return nil
	}
	return &FormatError{Rules: rules, Format: f}
}

// bodyRun counts the leading characters of s drawn from [A-Za-z0-9-].
func bodyRun(s string) int {
	for i, c := range s {
		ok := c == '-' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			return i
		}
	}
	return len(s)
}
