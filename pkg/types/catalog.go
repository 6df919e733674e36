package types

import (
	"strings"

	"github.com/pkg/errors"
)

// Rule is a single entry of a rule catalog.
//
// Built-in rules are evaluated by a predicate registered under their ID.
// Custom rules have no predicate and are matched heuristically from their
// description.
type Rule struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Custom      bool     `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// RuleCatalog is a versioned, platform-scoped set of rules grouped by category.
type RuleCatalog struct {
	ID       string              `json:"id" yaml:"id"`
	Version  int                 `json:"version" yaml:"version"`
	Platform Platform            `json:"platform" yaml:"platform"`
	Rules    map[Category][]*Rule `json:"rules" yaml:"rules"`
}

// NewRuleCatalog creates an empty catalog for the platform.
func NewRuleCatalog(id string, platform Platform) *RuleCatalog {
	return &RuleCatalog{
		ID:       id,
		Version:  1,
		Platform: platform,
		Rules:    make(map[Category][]*Rule),
	}
}

// Find returns the rule with the given id and its category.
func (c *RuleCatalog) Find(id string) (*Rule, Category, bool) {
	for _, category := range Categories {
		for _, rule := range c.Rules[category] {
			if rule.ID == id {
				return rule, category, true
			}
		}
	}
	return nil, "", false
}

// Enable turns the rule on. It returns an error if the id is unknown.
func (c *RuleCatalog) Enable(id string) error {
	return c.setEnabled(id, true)
}

// Disable turns the rule off. It returns an error if the id is unknown.
func (c *RuleCatalog) Disable(id string) error {
	return c.setEnabled(id, false)
}

func (c *RuleCatalog) setEnabled(id string, enabled bool) error {
	rule, _, ok := c.Find(id)
	if !ok {
		return errors.Errorf("rule %q not found in catalog %q", id, c.ID)
	}
	if rule.Enabled != enabled {
		rule.Enabled = enabled
		c.Version++
	}
	return nil
}

// AddCustomRule appends a user-defined rule to the category.
// The rule is marked custom; an empty id is derived from the name.
func (c *RuleCatalog) AddCustomRule(category Category, rule Rule) (*Rule, error) {
	if !category.Valid() {
		return nil, errors.Errorf("unknown category: %q", category)
	}
	if strings.TrimSpace(rule.Description) == "" {
		return nil, errors.Errorf("custom rule %q requires a description", rule.Name)
	}
	if rule.ID == "" {
		rule.ID = "custom_" + slug(rule.Name)
	}
	if _, _, dup := c.Find(rule.ID); dup {
		return nil, errors.Errorf("rule %q already exists in catalog %q", rule.ID, c.ID)
	}
	if rule.Severity == 0 {
		rule.Severity = SeverityMedium
	}
	rule.Custom = true
	if c.Rules == nil {
		c.Rules = make(map[Category][]*Rule)
	}
	added := rule
	c.Rules[category] = append(c.Rules[category], &added)
	c.Version++
	return &added, nil
}

// EnabledRules returns the enabled rules of a category in catalog order.
func (c *RuleCatalog) EnabledRules(category Category) []*Rule {
	var enabled []*Rule
	for _, rule := range c.Rules[category] {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// Len returns the total number of rules in the catalog.
func (c *RuleCatalog) Len() int {
	n := 0
	for _, rules := range c.Rules {
		n += len(rules)
	}
	return n
}

// Clone returns a deep copy so callers can mutate it without affecting the original.
func (c *RuleCatalog) Clone() *RuleCatalog {
	clone := &RuleCatalog{
		ID:       c.ID,
		Version:  c.Version,
		Platform: c.Platform,
		Rules:    make(map[Category][]*Rule, len(c.Rules)),
	}
	for category, rules := range c.Rules {
		copied := make([]*Rule, 0, len(rules))
		for _, rule := range rules {
			r := *rule
			copied = append(copied, &r)
		}
		clone.Rules[category] = copied
	}
	return clone
}

// Validate checks that every category is known and rule ids are unique.
func (c *RuleCatalog) Validate() error {
	seen := make(map[string]Category)
	for category, rules := range c.Rules {
		if !category.Valid() {
			return errors.Errorf("catalog %q: unknown category %q", c.ID, category)
		}
		for _, rule := range rules {
			if rule == nil || rule.ID == "" {
				return errors.Errorf("catalog %q: rule without id in category %q", c.ID, category)
			}
			if prev, dup := seen[rule.ID]; dup {
				return errors.Errorf("catalog %q: duplicate rule id %q in %q and %q", c.ID, rule.ID, prev, category)
			}
			seen[rule.ID] = category
		}
	}
	return nil
}

func slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
