package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const (
	longQueryChars = 1000
	longQueryLines = 40
	maxSubqueries  = 2
)

var (
	cteDefinition = regexp.MustCompile(`\bwith\s+(?:recursive\s+)?[a-z_][\w$]*\s*(?:\([^)]*\)\s*)?as\s*\(`)
	subqueryOpen  = regexp.MustCompile(`\(\s*select\b`)
)

// LongQueryAdvisor flags long queries that do not define any CTE.
type LongQueryAdvisor struct{}

// Check implements advisor.Advisor.
func (LongQueryAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	chars := len(checkCtx.Statement)
	lines := strings.Count(strings.TrimSpace(checkCtx.Statement), "\n") + 1
	if chars <= longQueryChars && lines <= longQueryLines {
		return nil, nil
	}
	if cteDefinition.MatchString(checkCtx.Code) {
		return nil, nil
	}
	return []*types.Issue{checkCtx.Issue(-1,
		fmt.Sprintf("Query is %d characters over %d lines and defines no CTE", chars, lines),
		"Split the query into named WITH blocks so each step can be read and tested on its own")}, nil
}

// NestingAdvisor flags queries with two or more subqueries. CTE bodies are not counted.
type NestingAdvisor struct{}

// Check implements advisor.Advisor.
func (NestingAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	q := newQuery(checkCtx.Code)
	var subqueries []int
	for _, loc := range subqueryOpen.FindAllStringIndex(checkCtx.Code, -1) {
		if q.PreviousWord(loc[0]) == "as" {
			continue
		}
		subqueries = append(subqueries, loc[0])
	}
	if len(subqueries) < maxSubqueries {
		return nil, nil
	}
	return []*types.Issue{checkCtx.Issue(subqueries[maxSubqueries-1],
		fmt.Sprintf("Query contains %d subqueries", len(subqueries)),
		"Move subqueries into common table expressions")}, nil
}
