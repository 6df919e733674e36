package migration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var selectStar = regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?\*`)

// commonPass runs after the directional passes of every pair: neutral
// function renames, type mapping, SELECT * and leftover source-only functions.
type commonPass struct {
	source, target types.Platform
}

// CommonPass returns the pass that always runs last.
func CommonPass(source, target types.Platform) Pass {
	return commonPass{source: source, target: target}
}

func (p commonPass) Name() string { return Common }

func (p commonPass) Apply(lines []string) PassResult {
	var neutral []rewrite
	for _, fn := range dialect.NeutralFunctions() {
		neutral = append(neutral, rename(fn.From, fn.To, fmt.Sprintf("%s is portable across warehouses", fn.To)))
	}
	res := linePass{name: Common, rewrites: neutral}.Apply(lines)
	p.mapTypes(res.Lines, &res)

	text := joinLines(res.Lines)
	code := sqltext.Code(text)
	if loc := selectStar.FindStringIndex(code); loc != nil {
		line, _ := sqltext.Locate(text, loc[0])
		res.Issues = append(res.Issues, types.MigrationIssue{
			Line:       types.IntPtr(line),
			Message:    "SELECT * depends on the column order of the migrated tables",
			Suggestion: "List the columns explicitly",
			Severity:   types.SeverityMedium,
		})
		res.Deduction += mediumDeduction
	}
	p.nonStandard(text, code, &res)
	return res
}

func (p commonPass) mapTypes(lines []string, res *PassResult) {
	mappings := dialect.TypeMappings(p.source, p.target)
	if len(mappings) == 0 {
		return
	}
	byName := make(map[string]dialect.TypeMapping, len(mappings))
	names := make([]string, 0, len(mappings))
	for _, m := range mappings {
		byName[strings.ToUpper(m.From)] = m
		names = append(names, m.From)
	}
	pattern := dialect.TypePattern(names...)

	for i, line := range lines {
		if sqltext.IsComment(line) {
			continue
		}
		code := sqltext.Code(line)
		var b strings.Builder
		last := 0
		changed := false
		for _, m := range pattern.FindAllStringSubmatchIndex(code, -1) {
			nameStart, nameEnd := m[4], m[5]
			mapping := byName[strings.ToUpper(line[nameStart:nameEnd])]
			if !mapping.Supported() {
				res.Issues = append(res.Issues, types.MigrationIssue{
					Line:       types.IntPtr(i + 1),
					Message:    fmt.Sprintf("Type %s has no %s equivalent", mapping.From, p.target.DisplayName()),
					Suggestion: "Store the value in a compatible type or keep the table on the source platform",
					Severity:   types.SeverityHigh,
				})
				res.Deduction += unsupportedDeduction
				continue
			}
			b.WriteString(line[last:nameStart])
			b.WriteString(mapping.To)
			last = nameEnd
			changed = true
			res.Issues = append(res.Issues, types.MigrationIssue{
				Line:       types.IntPtr(i + 1),
				Message:    fmt.Sprintf("Mapped type %s to %s", mapping.From, mapping.To),
				Suggestion: "Check precision and range of the mapped type",
				Severity:   types.SeverityLow,
			})
			res.Deduction += lowDeduction
		}
		if changed {
			b.WriteString(line[last:])
			lines[i] = b.String()
		}
	}
}

func (p commonPass) nonStandard(text, code string, res *PassResult) {
	src, tgt := dialect.Get(p.source), dialect.Get(p.target)
	if src == nil {
		return
	}
	suggestions := src.NonStandardFunctions()
	for _, name := range src.NonStandardFunctionNames() {
		if tgt != nil && tgt.HasFunction(name) {
			continue
		}
		loc := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*\(`).FindStringIndex(code)
		if loc == nil {
			continue
		}
		line, _ := sqltext.Locate(text, loc[0])
		res.Issues = append(res.Issues, types.MigrationIssue{
			Line:       types.IntPtr(line),
			Message:    fmt.Sprintf("%s is specific to %s", name, p.source.DisplayName()),
			Suggestion: suggestions[name],
			Severity:   types.SeverityMedium,
		})
		res.Deduction += mediumDeduction
	}
}
