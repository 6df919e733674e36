package migration

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Compatibility score deductions.
const (
	lowDeduction         = 2
	mediumDeduction      = 5
	highDeduction        = 10
	unsupportedDeduction = 8
)

func deductionFor(s types.Severity) int {
	switch s {
	case types.SeverityLow:
		return lowDeduction
	case types.SeverityMedium:
		return mediumDeduction
	case types.SeverityHigh:
		return highDeduction
	}
	return 0
}

// PassResult is the output of one pass.
type PassResult struct {
	Lines     []string
	Issues    []types.MigrationIssue
	Deduction int
}

// Pass is one text rewriting step. Apply must not modify lines in place.
type Pass interface {
	Name() string
	Apply(lines []string) PassResult
}

// PassFunc adapts a function to Pass.
type PassFunc struct {
	PassName string
	Fn       func(lines []string) PassResult
}

// Name implements Pass.
func (p PassFunc) Name() string { return p.PassName }

// Apply implements Pass.
func (p PassFunc) Apply(lines []string) PassResult { return p.Fn(lines) }

// Pipeline runs passes in order, each on the output of the previous one.
type Pipeline []Pass

// Run applies every pass. A pass that panics keeps the lines it was given and
// contributes a single High issue; the passes before it are not rolled back.
func (p Pipeline) Run(lines []string, log logger.Interface) PassResult {
	out := PassResult{Lines: lines}
	for _, pass := range p {
		res, err := runPass(pass, out.Lines)
		if err != nil {
			log.Warn("migration pass failed",
				"pass", pass.Name(),
				logger.Error(err),
				"statement", advisor.NormalizeStatement(joinLines(out.Lines)))
			out.Issues = append(out.Issues, types.MigrationIssue{
				Message:    fmt.Sprintf("Pass %s failed: %v", pass.Name(), err),
				Suggestion: "Review this part of the conversion manually",
				Severity:   types.SeverityHigh,
			})
			out.Deduction += highDeduction
			continue
		}
		out.Lines = res.Lines
		out.Issues = append(out.Issues, res.Issues...)
		out.Deduction += res.Deduction
	}
	return out
}

func runPass(pass Pass, lines []string) (res PassResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.Errorf("%v", r)
			}
		}
	}()
	in := append([]string(nil), lines...)
	res = pass.Apply(in)
	if res.Lines == nil {
		res.Lines = in
	}
	return res, nil
}

// rewrite replaces pattern on a line. Either template (regexp expansion
// syntax) or build is used.
type rewrite struct {
	pattern    *regexp.Regexp
	template   string
	build      func(groups []string) string
	severity   types.Severity
	message    string
	suggestion string
}

func (r rewrite) apply(line string) (string, bool) {
	matches := codeMatches(r.pattern, line)
	if len(matches) == 0 {
		return line, false
	}
	var b []byte
	last := 0
	for _, m := range matches {
		b = append(b, line[last:m[0]]...)
		if r.build == nil {
			b = r.pattern.ExpandString(b, r.template, line, m)
		} else {
			b = append(b, r.build(submatches(line, m))...)
		}
		last = m[1]
	}
	b = append(b, line[last:]...)
	return string(b), true
}

// codeMatches returns the submatch offsets of pattern in line, dropping
// matches that start inside a string literal or touch a comment.
func codeMatches(pattern *regexp.Regexp, line string) [][]int {
	all := pattern.FindAllStringSubmatchIndex(line, -1)
	if len(all) == 0 {
		return nil
	}
	code := sqltext.Code(line)
	uncommented := sqltext.StripComments(line)
	matches := all[:0]
	for _, m := range all {
		if start := firstToken(line, m[0], m[1]); start < m[1] && code[start] != line[start] {
			continue
		}
		if uncommented[m[0]:m[1]] != line[m[0]:m[1]] {
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

// firstToken returns the offset of the first non-blank byte in line[from:to].
func firstToken(line string, from, to int) int {
	for from < to && (line[from] == ' ' || line[from] == '\t') {
		from++
	}
	return from
}

func submatches(line string, m []int) []string {
	groups := make([]string, len(m)/2)
	for i := range groups {
		if m[2*i] >= 0 {
			groups[i] = line[m[2*i]:m[2*i+1]]
		}
	}
	return groups
}

// finding reports pattern without changing the line.
type finding struct {
	pattern    *regexp.Regexp
	severity   types.Severity
	message    string
	suggestion string
}

// linePass applies rewrites, then findings, to every line that is not a
// comment. Matches inside string literals and trailing comments are left
// alone. Each rule reports at most one issue per line.
type linePass struct {
	name     string
	rewrites []rewrite
	findings []finding
}

func (p linePass) Name() string { return p.name }

func (p linePass) Apply(lines []string) PassResult {
	res := PassResult{Lines: lines}
	for i, line := range lines {
		if sqltext.IsComment(line) {
			continue
		}
		for _, r := range p.rewrites {
			var changed bool
			if line, changed = r.apply(line); !changed {
				continue
			}
			severity := r.severity
			if severity == 0 {
				severity = types.SeverityLow
			}
			res.Issues = append(res.Issues, types.MigrationIssue{
				Line:       types.IntPtr(i + 1),
				Message:    r.message,
				Suggestion: r.suggestion,
				Severity:   severity,
			})
			res.Deduction += deductionFor(severity)
		}
		for _, f := range p.findings {
			if len(codeMatches(f.pattern, line)) == 0 {
				continue
			}
			res.Issues = append(res.Issues, types.MigrationIssue{
				Line:       types.IntPtr(i + 1),
				Message:    f.message,
				Suggestion: f.suggestion,
				Severity:   f.severity,
			})
			res.Deduction += deductionFor(f.severity)
		}
		lines[i] = line
	}
	return res
}
