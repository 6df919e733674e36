package builtin

import (
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Joins that need no ON or USING clause.
var conditionlessJoins = map[string]bool{"cross": true, "natural": true}

// Join targets that are correlated table functions rather than tables.
var lateralTargets = map[string]bool{"unnest": true, "lateral": true, "table": true}

// JoinWithoutConditionAdvisor flags JOINs that are neither CROSS nor NATURAL and lack ON or USING.
type JoinWithoutConditionAdvisor struct{}

// Check implements advisor.Advisor.
func (JoinWithoutConditionAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	q := newQuery(checkCtx.Code)
	var issues []*types.Issue
	for _, span := range sqltext.KeywordSpans(checkCtx.Code, "join") {
		at := span[0]
		if conditionlessJoins[q.PreviousWord(at)] || lateralTargets[q.NextWord(span[1])] {
			continue
		}
		end := q.Next(span[1], q.End(at), clauseTerminators...)
		if q.Has(span[1], end, "on", "using") {
			continue
		}
		issue := checkCtx.Issue(at,
			"JOIN has no ON or USING condition",
			"Add a join condition, or write CROSS JOIN if a cartesian product is intended")
		issue.EstimatedImpact = "High: every row is matched against every row of the joined table"
		issues = append(issues, issue)
	}
	return issues, nil
}

// FullScanAdvisor flags a query that reads tables with neither WHERE nor LIMIT.
type FullScanAdvisor struct{}

// Check implements advisor.Advisor.
func (FullScanAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	from := sqltext.IndexKeyword(checkCtx.Code, "from")
	if from < 0 || sqltext.ContainsAny(checkCtx.Code, "where", "limit") {
		return nil, nil
	}
	issue := checkCtx.Issue(from,
		"Query reads tables without a WHERE clause or LIMIT",
		"Filter rows with WHERE or bound the result with LIMIT")
	issue.EstimatedImpact = "Medium: the whole table is scanned"
	return []*types.Issue{issue}, nil
}

// OrderByWithoutLimitAdvisor flags a query-level ORDER BY that is not followed by LIMIT, TOP or FETCH.
type OrderByWithoutLimitAdvisor struct{}

// Check implements advisor.Advisor.
func (OrderByWithoutLimitAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	q := newQuery(checkCtx.Code)
	var issues []*types.Issue
	for _, span := range sqltext.KeywordSpans(checkCtx.Code, "order by") {
		start, end := q.Start(span[0]), q.End(span[0])
		// ORDER BY inside OVER (...) or an aggregate call belongs to no query block.
		if len(q.Find("select", start, span[0])) == 0 {
			continue
		}
		if q.Has(start, end, "limit", "top", "fetch") {
			continue
		}
		issue := checkCtx.Issue(span[0],
			"ORDER BY without LIMIT sorts the entire result",
			"Add LIMIT when only the first rows are needed, or drop the ORDER BY")
		issue.EstimatedImpact = "Low: a full sort is required before the first row is returned"
		issues = append(issues, issue)
	}
	return issues, nil
}

// CartesianCrossJoinAdvisor flags a CROSS JOIN in a query that has no WHERE.
type CartesianCrossJoinAdvisor struct{}

// Check implements advisor.Advisor.
func (CartesianCrossJoinAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	at := sqltext.IndexKeyword(checkCtx.Code, "cross join")
	if at < 0 || sqltext.ContainsKeyword(checkCtx.Code, "where") {
		return nil, nil
	}
	issue := checkCtx.Issue(at,
		"CROSS JOIN without a WHERE filter",
		"Filter the joined rows or replace the CROSS JOIN with an equi-join; Spark broadcasts or shuffles the full product")
	issue.EstimatedImpact = "High: the output grows with the product of both inputs"
	return []*types.Issue{issue}, nil
}
