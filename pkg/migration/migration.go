// Package migration converts a query from one warehouse dialect to another.
//
// Conversion is a pipeline of text passes. Each ordered platform pair has a
// fixed list of directional passes (date functions, semi-structured access,
// identifier quoting, table layout clauses, interval literals and array
// expansion), followed by a common pass shared by every pair. Every rewrite
// and every finding that needs manual review is reported as a MigrationIssue
// and lowers a compatibility score that starts at 100.
package migration

import (
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Migrator converts queries between platforms.
type Migrator struct {
	extra  []Pass
	logger logger.Interface
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the logger used for failed passes.
func WithLogger(l logger.Interface) Option {
	return func(m *Migrator) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPass appends a pass after the directional passes of every pair and
// before the common pass.
func WithPass(p Pass) Option {
	return func(m *Migrator) {
		if p != nil {
			m.extra = append(m.extra, p)
		}
	}
}

// New creates a Migrator.
func New(opts ...Option) *Migrator {
	m := &Migrator{logger: logger.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Migrate runs the default Migrator.
func Migrate(sql string, source, target types.Platform) *types.MigrationResult {
	return New().Migrate(sql, source, target)
}

// Migrate converts sql from source to target. Identical platforms return the
// query unchanged with a score of 100, even when it is blank. Unknown pairs only get the common pass.
func (m *Migrator) Migrate(sql string, source, target types.Platform) *types.MigrationResult {
	result := &types.MigrationResult{
		OriginalQuery:      sql,
		ConvertedQuery:     sql,
		SourcePlatform:     source,
		TargetPlatform:     target,
		Issues:             []types.MigrationIssue{},
		CompatibilityScore: 100,
	}
	if source == target {
		return result
	}
	if strings.TrimSpace(sql) == "" {
		result.CompatibilityScore = 0
		result.Issues = append(result.Issues, types.MigrationIssue{
			Message:    "No SQL to migrate",
			Suggestion: "Provide a query",
			Severity:   types.SeverityHigh,
		})
		return result
	}

	pipeline := append(Passes(source, target), m.extra...)
	pipeline = append(pipeline, CommonPass(source, target))
	out := pipeline.Run(strings.Split(sql, "\n"), m.logger)

	m.logger.Debug("migrated query",
		"source", source,
		"target", target,
		"issues", len(out.Issues),
		"deduction", out.Deduction)

	result.ConvertedQuery = joinLines(out.Lines)
	result.Issues = append(result.Issues, out.Issues...)
	result.CompatibilityScore = clamp(100 - out.Deduction)
	return result
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
