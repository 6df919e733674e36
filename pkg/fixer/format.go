package fixer

import (
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Formatter rewrites a query cosmetically. It must not change its meaning.
type Formatter interface {
	Format(sql string, platform types.Platform) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(sql string, platform types.Platform) (string, error)

// Format implements Formatter.
func (f FormatterFunc) Format(sql string, platform types.Platform) (string, error) {
	return f(sql, platform)
}

var clauseStart = regexp.MustCompile(`(?i)\b(?:(?:LEFT|RIGHT|FULL|INNER|CROSS)(?:\s+OUTER)?\s+JOIN|JOIN|FROM|WHERE|GROUP\s+BY|ORDER\s+BY|HAVING|QUALIFY|LIMIT|UNION(?:\s+ALL|\s+DISTINCT)?)\b`)

// Lines starting with one of these stay at the base level; everything else
// is indented.
var mainClauses = []string{"WITH", "SELECT", "FROM", "WHERE", "JOIN", "LEFT", "RIGHT", "FULL", "INNER", "CROSS",
	"GROUP BY", "ORDER BY", "HAVING", "QUALIFY", "LIMIT", "UNION", "INSERT", "UPDATE", "DELETE", "MERGE",
	"CREATE", "VALUES", "SET", "ON", "AND", "OR", ")", "(", "--", ";"}

// ClauseFormatter puts each top-level clause on its own line and indents
// continuation lines. It is idempotent.
type ClauseFormatter struct{}

// Format implements Formatter.
func (ClauseFormatter) Format(sql string, _ types.Platform) (string, error) {
	code := sqltext.Code(sql)
	blocks := sqltext.NewBlocks(code)

	var b strings.Builder
	last := 0
	for _, m := range clauseStart.FindAllStringIndex(code, -1) {
		if blocks.Depth(m[0]) != 0 || strings.EqualFold(blocks.PreviousWord(m[0]), "distinct") {
			continue
		}
		lineStart := strings.LastIndexByte(sql[:m[0]], '\n') + 1
		if strings.TrimSpace(sql[lineStart:m[0]]) == "" {
			continue
		}
		b.WriteString(strings.TrimRight(sql[last:m[0]], " \t"))
		b.WriteString("\n")
		last = m[0]
	}
	b.WriteString(sql[last:])

	var formatted []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		main := false
		for _, clause := range mainClauses {
			if strings.HasPrefix(upper, clause) {
				main = true
				break
			}
		}
		if main {
			formatted = append(formatted, line)
		} else {
			formatted = append(formatted, "  "+line)
		}
	}
	return strings.Join(formatted, "\n"), nil
}
