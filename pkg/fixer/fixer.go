// Package fixer finds structural problems in a query and corrects the ones
// that have a safe textual fix.
//
// Every check either auto-fixes (applies a substitution and records an issue
// with AutoFixed set) or only detects (records an issue and a suggestion).
// Running Fix on its own output reaches a fixed point: the auto-fixable
// patterns are gone and only detect-only issues remain.
package fixer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Fixer runs the generic and platform check batteries.
type Fixer struct {
	platform  types.Platform
	formatter Formatter
	logger    logger.Interface
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithFormatter runs f on the fixed query. A failing formatter turns the whole
// result into a single High issue and leaves the query untouched.
func WithFormatter(f Formatter) Option {
	return func(x *Fixer) {
		x.formatter = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Interface) Option {
	return func(x *Fixer) {
		if l != nil {
			x.logger = l
		}
	}
}

// New creates a Fixer for platform.
func New(platform types.Platform, opts ...Option) *Fixer {
	f := &Fixer{platform: platform, logger: logger.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fix runs a Fixer without a formatter.
func Fix(sql string, platform types.Platform) *types.FixResult {
	return New(platform).Fix(sql)
}

// state is the query as it moves through the checks.
type state struct {
	sql      string
	platform types.Platform
	issues   []types.FixIssue
}

// report records an issue at a byte offset of the current query. A negative
// offset means the issue has no line.
func (s *state) report(offset int, severity types.Severity, message, suggestion string, autoFixed bool) {
	issue := types.FixIssue{
		Message:    message,
		Suggestion: suggestion,
		Severity:   severity,
		AutoFixed:  autoFixed,
	}
	if offset >= 0 {
		line, _ := sqltext.Locate(s.sql, offset)
		issue.Line = types.IntPtr(line)
	}
	s.issues = append(s.issues, issue)
}

// check inspects and possibly rewrites s.sql.
type check func(s *state)

// Fix checks sql and returns the corrected query. Fixed reports whether the
// query text changed or any issue was found, so a query that only carries
// detect-only findings is still reported as needing attention.
func (f *Fixer) Fix(sql string) *types.FixResult {
	result := &types.FixResult{
		OriginalQuery: sql,
		FixedQuery:    sql,
		Issues:        []types.FixIssue{},
	}
	if strings.TrimSpace(sql) == "" {
		result.Issues = append(result.Issues, types.FixIssue{
			Message:    "No SQL to fix",
			Suggestion: "Provide a query",
			Severity:   types.SeverityHigh,
		})
		return settle(result)
	}

	s := &state{sql: sql, platform: f.platform}
	for _, c := range append(genericChecks(), platformChecks(f.platform)...) {
		c(s)
	}

	if f.formatter != nil {
		formatted, err := f.format(s.sql)
		if err != nil {
			f.logger.Debug("formatter failed", "platform", f.platform, logger.Error(err))
			result.Issues = append(result.Issues, types.FixIssue{
				Message:    fmt.Sprintf("Formatting failed: %v", err),
				Suggestion: "Fix the reported syntax problems and format again",
				Severity:   types.SeverityHigh,
			})
			return settle(result)
		}
		s.sql = formatted
	}

	result.FixedQuery = s.sql
	result.Issues = append(result.Issues, s.issues...)
	f.logger.Debug("fixed query",
		"platform", f.platform,
		"changed", s.sql != sql,
		"issues", len(result.Issues))
	return settle(result)
}

func settle(result *types.FixResult) *types.FixResult {
	result.Fixed = result.FixedQuery != result.OriginalQuery || len(result.Issues) > 0
	return result
}

func (f *Fixer) format(sql string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("formatter panicked: %v", r)
		}
	}()
	return f.formatter.Format(sql, f.platform)
}
