package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var identifier = regexp.MustCompile(`[a-z_][\w$]*`)

// PartitionFilterAdvisor flags table reads whose WHERE clauses never touch a
// partition, cluster or date column.
type PartitionFilterAdvisor struct{}

// Check implements advisor.Advisor.
func (PartitionFilterAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	from := sqltext.IndexKeyword(checkCtx.Code, "from")
	if from < 0 || checkCtx.Dialect == nil {
		return nil, nil
	}
	if sqltext.ContainsAny(checkCtx.Code, checkCtx.Dialect.PartitionKeywords()...) {
		return nil, nil
	}
	q := newQuery(checkCtx.Code)
	for _, where := range sqltext.KeywordSpans(checkCtx.Code, "where") {
		end := q.Next(where[1], q.End(where[0]), clauseTerminators...)
		for _, word := range identifier.FindAllString(checkCtx.Code[where[1]:end], -1) {
			if checkCtx.Dialect.PartitionHint(word) {
				return nil, nil
			}
		}
	}
	issue := checkCtx.Issue(from,
		"No filter on a partition, cluster or date column",
		fmt.Sprintf("Filter on the partition key (for example %s) so %s can prune data",
			strings.Join(checkCtx.Dialect.PartitionColumns()[:2], " or "), checkCtx.Platform.DisplayName()))
	issue.EstimatedSavings = "Up to 90% of scanned data on date-partitioned tables"
	return []*types.Issue{issue}, nil
}

// SamplingAdvisor flags unbounded reads that use no sampling clause.
type SamplingAdvisor struct{}

// Check implements advisor.Advisor.
func (SamplingAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	from := sqltext.IndexKeyword(checkCtx.Code, "from")
	if from < 0 || checkCtx.Dialect == nil || sqltext.ContainsAny(checkCtx.Code, "where", "limit") {
		return nil, nil
	}
	sampling := checkCtx.Dialect.SamplingKeywords()
	if sqltext.ContainsAny(checkCtx.Code, sampling...) {
		return nil, nil
	}
	issue := checkCtx.Issue(from,
		"Unbounded read without sampling",
		fmt.Sprintf("Use %s or LIMIT while exploring the data", sampling[0]))
	issue.EstimatedSavings = "Sampling 10% of a table cuts scanned data roughly tenfold"
	return []*types.Issue{issue}, nil
}

// CacheBustingAdvisor flags non-deterministic functions that stop Snowflake
// from serving the query from its result cache.
type CacheBustingAdvisor struct{}

// Check implements advisor.Advisor.
func (CacheBustingAdvisor) Check(checkCtx advisor.Context) ([]*types.Issue, error) {
	if checkCtx.Dialect == nil {
		return nil, nil
	}
	first := -1
	var found []string
	for _, fn := range checkCtx.Dialect.NonDeterministicFunctions() {
		at := sqltext.IndexKeyword(checkCtx.Code, fn)
		if at < 0 {
			continue
		}
		found = append(found, fn)
		if first < 0 || at < first {
			first = at
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	issue := checkCtx.Issue(first,
		fmt.Sprintf("Non-deterministic functions disable the result cache: %s", strings.Join(found, ", ")),
		"Pass the timestamp or seed as a literal parameter so repeated runs can reuse cached results")
	issue.EstimatedSavings = "Repeated runs are free when served from the 24 hour result cache"
	return []*types.Issue{issue}, nil
}
