package types

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Severity is the ordered importance of an issue.
type Severity int32

const (
	SeverityLow    Severity = 1
	SeverityMedium Severity = 2
	SeverityHigh   Severity = 3
)

// Weight returns the score penalty applied per issue of this severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityLow:
		return 5
	case SeverityMedium:
		return 10
	case SeverityHigh:
		return 15
	default:
		return 0
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "info":
		return SeverityLow, nil
	case "medium", "warning":
		return SeverityMedium, nil
	case "high", "error":
		return SeverityHigh, nil
	default:
		return 0, errors.Errorf("unknown severity: %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Severity
func (s *Severity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// MarshalYAML implements yaml.Marshaler for Severity
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// Category groups analyzer issues. The set is closed.
type Category string

const (
	CategoryBestPractices  Category = "bestPractices"
	CategoryPerformance    Category = "performance"
	CategoryModularization Category = "modularization"
	CategoryCost           Category = "cost"
)

// Categories lists the categories in reporting order.
var Categories = []Category{
	CategoryBestPractices,
	CategoryPerformance,
	CategoryModularization,
	CategoryCost,
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBestPractices, CategoryPerformance, CategoryModularization, CategoryCost:
		return true
	}
	return false
}

// ParseCategory accepts the canonical names plus snake/kebab/space variants.
func ParseCategory(s string) (Category, error) {
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "bestpractices", "bestpractice":
		return CategoryBestPractices, nil
	case "performance", "perf":
		return CategoryPerformance, nil
	case "modularization", "modularisation", "modularity":
		return CategoryModularization, nil
	case "cost", "costoptimization":
		return CategoryCost, nil
	default:
		return "", errors.Errorf("unknown category: %q", s)
	}
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Complexity is the ordinal query complexity used by the cost estimator.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// Rank orders complexities so they can be compared.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityLow:
		return 1
	case ComplexityMedium:
		return 2
	case ComplexityHigh:
		return 3
	default:
		return 0
	}
}
