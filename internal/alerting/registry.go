package alerting

import (
	"sort"
	"sync"
)

// RuleFilter narrows ListRules results. Zero-value fields are ignored.
type RuleFilter struct {
	Type    AlertType
	Enabled *bool
	Tag     string
}

// Registry holds the live rule set. Adding a rule whose name already exists
// replaces it.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*AlertRule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*AlertRule)}
}

// AddRule validates structurally and inserts or replaces the rule by name.
func (g *Registry) AddRule(rule AlertRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	stored := rule.clone()
	g.mu.Lock()
	g.rules[rule.Name] = &stored
	g.mu.Unlock()
	return nil
}

// RemoveRule deletes a rule by name. Returns false if it did not exist.
func (g *Registry) RemoveRule(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rules[name]; !ok {
		return false
	}
	delete(g.rules, name)
	return true
}

// GetRule returns a copy of the named rule.
func (g *Registry) GetRule(name string) (AlertRule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rules[name]
	if !ok {
		return AlertRule{}, false
	}
	return r.clone(), true
}

// SetEnabled toggles a rule's enabled flag. Returns false for unknown names.
func (g *Registry) SetEnabled(name string, enabled bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rules[name]
	if !ok {
		return false
	}
	r.Enabled = enabled
	return true
}

// ListRules returns copies of rules matching the filter, sorted by name.
func (g *Registry) ListRules(filter RuleFilter) []AlertRule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AlertRule, 0, len(g.rules))
	for _, r := range g.rules {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Enabled != nil && r.Enabled != *filter.Enabled {
			continue
		}
		if filter.Tag != "" && !r.hasTag(filter.Tag) {
			continue
		}
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EnabledRules returns copies of all enabled rules, sorted by name.
func (g *Registry) EnabledRules() []AlertRule {
	enabled := true
	return g.ListRules(RuleFilter{Enabled: &enabled})
}

// Counts returns total and enabled rule counts.
func (g *Registry) Counts() (total, enabled int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total = len(g.rules)
	for _, r := range g.rules {
		if r.Enabled {
			enabled++
		}
	}
	return total, enabled
}
