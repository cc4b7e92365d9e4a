// Package choice offers a closed set of models and accepts exactly one.
package choice

import (
	"fmt"
	"strconv"
	"strings"
)

// Model is an LLM model identifier taken from a Menu.
type Model string

// Menu is an ordered, fixed set of models.
type Menu struct {
	models []Model
	index  map[string]Model
}

// NewMenu builds a menu from non-empty, unique names.
func NewMenu(names []string) (Menu, error) {
	if len(names) == 0 {
		return Menu{}, fmt.Errorf("menu needs at least one model")
	}
	m := Menu{index: make(map[string]Model, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return Menu{}, fmt.Errorf("menu model names must not be empty")
		}
		if _, dup := m.index[n]; dup {
			return Menu{}, fmt.Errorf("duplicate model %q", n)
		}
		m.index[n] = Model(n)
		m.models = append(m.models, Model(n))
	}
	return m, nil
}

// Len returns the number of models.
func (m Menu) Len() int { return len(m.models) }

// Models returns the models in display order.
func (m Menu) Models() []Model {
	return append([]Model(nil), m.models...)
}

// Labels returns the display labels in order.
func (m Menu) Labels() []string {
	out := make([]string, len(m.models))
	for i, mod := range m.models {
		out[i] = string(mod)
	}
	return out
}

// Resolve maps an answer to a member: a 1-based position or an exact label.
// Anything else, including empty and out-of-range answers, is not a member.
func (m Menu) Resolve(answer string) (Model, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	if mod, ok := m.index[answer]; ok {
		return mod, true
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(m.models) {
		return m.models[n-1], true
	}
	return "", false
}

// Contains reports whether name is a member.
func (m Menu) Contains(name string) bool {
	_, ok := m.index[name]
	return ok
}
