package builtin

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var (
	starItem      = regexp.MustCompile(`^(?:[a-z_][\w$]*\.)?\*(?:\s+(?:except|exclude|replace)\b.*)?$`)
	columnItem    = regexp.MustCompile(`^[a-z_][\w$]*(?:\.[a-z_][\w$]*)*$`)
	trailingAlias = regexp.MustCompile(`\s+(?:as\s+)?[a-z_][\w$]*$`)
	legacyTable   = regexp.MustCompile(`\[[\w\-]+:[\w\-]+\.[\w\-$]+\]`)
)

// constantWords look like bare identifiers but need no FROM clause.
var constantWords = map[string]bool{
	"null": true, "true": true, "false": true, "current_date": true,
	"current_timestamp": true, "current_time": true, "current_user": true,
	"sysdate": true, "localtimestamp": true,
}

// SelectStarAdvisor flags SELECT * and alias.* projections.
type SelectStarAdvisor struct{}

// Check implements advisor.Advisor.
func (SelectStarAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	var issues []*types.Issue
	for _, at := range sqltext.KeywordSpans(checkCtx.Code, "select") {
		list, _, ok := sqltext.SelectList(checkCtx.Code, at[0])
		if !ok {
			continue
		}
		for _, item := range sqltext.SplitTopLevel(list, ',') {
			if !starItem.MatchString(item) {
				continue
			}
			issues = append(issues, checkCtx.Issue(at[0],
				fmt.Sprintf("Query selects all columns with %q", strings.Fields(item)[0]),
				"List the required columns explicitly to reduce scanned data and keep the query stable when the schema changes"))
			break
		}
	}
	return issues, nil
}

// MissingFromAdvisor flags a SELECT that projects column references without a FROM clause.
type MissingFromAdvisor struct{}

// Check implements advisor.Advisor.
func (MissingFromAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	var issues []*types.Issue
	for _, at := range sqltext.KeywordSpans(checkCtx.Code, "select") {
		list, fromAt, ok := sqltext.SelectList(checkCtx.Code, at[0])
		if !ok || fromAt >= 0 || list == "" {
			continue
		}
		if !projectsColumns(list) {
			continue
		}
		issues = append(issues, checkCtx.Issue(at[0],
			"SELECT projects columns but has no FROM clause",
			"Add the FROM clause naming the table the columns come from"))
	}
	return issues, nil
}

func projectsColumns(list string) bool {
	for _, item := range sqltext.SplitTopLevel(list, ',') {
		if starItem.MatchString(item) {
			return true
		}
		expr := item
		if stripped := trailingAlias.ReplaceAllString(item, ""); stripped != "" && stripped != item {
			expr = stripped
		}
		expr = strings.TrimSpace(expr)
		if columnItem.MatchString(expr) && !constantWords[expr] {
			return true
		}
	}
	return false
}

// FilterAfterGroupByAdvisor flags a WHERE clause written after GROUP BY in the same query block.
type FilterAfterGroupByAdvisor struct{}

// Check implements advisor.Advisor.
func (FilterAfterGroupByAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	q := newQuery(checkCtx.Code)
	var issues []*types.Issue
	for _, at := range sqltext.KeywordSpans(checkCtx.Code, "group by") {
		end := q.End(at[0])
		// A following UNION starts a new block.
		end = q.Next(at[0], end, "union", "intersect", "except")
		for _, where := range q.Find("where", at[0], end) {
			issues = append(issues, checkCtx.Issue(where,
				"WHERE clause appears after GROUP BY",
				"Move row filters before GROUP BY or use HAVING to filter aggregated groups"))
		}
	}
	return issues, nil
}

// SuspiciousLiteralAdvisor flags string literals that libinjection fingerprints as SQL injection.
type SuspiciousLiteralAdvisor struct{}

// Check implements advisor.Advisor.
func (SuspiciousLiteralAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	var issues []*types.Issue
	for _, literal := range sqltext.Literals(checkCtx.Statement) {
		if strings.TrimSpace(literal.Value) == "" {
			continue
		}
		isSQLi, fingerprint := libinjection.IsSQLi(literal.Value)
		if !isSQLi {
			continue
		}
		issues = append(issues, checkCtx.Issue(literal.Offset,
			fmt.Sprintf("String literal matches SQL injection fingerprint %q", string(fingerprint)),
			"Use query parameters instead of concatenating user input into SQL text"))
	}
	return issues, nil
}

// LegacySQLAdvisor flags BigQuery legacy table references.
type LegacySQLAdvisor struct{}

// Check implements advisor.Advisor.
func (LegacySQLAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	var issues []*types.Issue
	if strings.Contains(strings.ToLower(checkCtx.Statement), "#legacysql") {
		issues = append(issues, checkCtx.Issue(-1,
			"Query is marked #legacySQL",
			"Remove the #legacySQL prefix and port the query to standard SQL"))
	}
	for _, loc := range legacyTable.FindAllStringIndex(checkCtx.Code, -1) {
		issues = append(issues, checkCtx.Issue(loc[0],
			fmt.Sprintf("Legacy table reference %s", checkCtx.Statement[loc[0]:loc[1]]),
			"Use `project.dataset.table` with backticks"))
	}
	return issues, nil
}
