// Package rules defines the built-in rule catalog for each platform.
//
// A rule id is also the advisor type its predicate is registered under; the
// predicates themselves live in the builtin subpackage.
package rules

import (
	"fmt"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const (
	// AvoidSelectStar flags SELECT * and alias.* projections.
	AvoidSelectStar advisor.Type = "bp_avoid_select_star"
	// MissingFrom flags a SELECT that projects columns without a FROM clause.
	MissingFrom advisor.Type = "bp_missing_from"
	// FilterAfterGroupBy flags a WHERE written after GROUP BY in the same query block.
	FilterAfterGroupBy advisor.Type = "bp_filter_after_group_by"
	// SuspiciousLiteral flags string literals that look like injected SQL.
	SuspiciousLiteral advisor.Type = "bp_suspicious_literal"
	// LegacySQLSyntax flags BigQuery legacy [project:dataset.table] references.
	LegacySQLSyntax advisor.Type = "bp_legacy_sql_syntax"

	// JoinWithoutCondition flags a JOIN lacking ON or USING.
	JoinWithoutCondition advisor.Type = "perf_join_without_condition"
	// FullScanWithoutWhere flags reading a table with neither WHERE nor LIMIT.
	FullScanWithoutWhere advisor.Type = "perf_full_scan_without_where"
	// OrderByWithoutLimit flags sorting a full result set.
	OrderByWithoutLimit advisor.Type = "perf_order_by_without_limit"
	// CartesianCrossJoin flags a CROSS JOIN without any WHERE filter.
	CartesianCrossJoin advisor.Type = "perf_cartesian_cross_join"

	// LongQueryWithoutCTE flags long queries that do not use WITH.
	LongQueryWithoutCTE advisor.Type = "mod_long_query_without_cte"
	// ExcessiveNesting flags two or more nested subqueries.
	ExcessiveNesting advisor.Type = "mod_excessive_nesting"

	// MissingPartitionFilter flags scans that cannot prune partitions.
	MissingPartitionFilter advisor.Type = "cost_missing_partition_filter"
	// NoSampling flags unbounded reads without a sampling clause.
	NoSampling advisor.Type = "cost_no_sampling"
	// ResultCacheBusting flags non-deterministic functions that bypass the Snowflake result cache.
	ResultCacheBusting advisor.Type = "cost_result_cache_busting"
)

// Definition is the static description of a built-in rule.
type Definition struct {
	ID          advisor.Type
	Name        string
	Category    types.Category
	Severity    types.Severity
	Description string
	// Platforms limits the rule to some platforms. Empty means all.
	Platforms []types.Platform
}

// AppliesTo reports whether the rule is part of the platform's catalog.
func (d Definition) AppliesTo(p types.Platform) bool {
	if len(d.Platforms) == 0 {
		return true
	}
	for _, candidate := range d.Platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

var definitions = []Definition{
	{
		ID:          AvoidSelectStar,
		Name:        "Avoid SELECT *",
		Category:    types.CategoryBestPractices,
		Severity:    types.SeverityMedium,
		Description: "Select only the columns you need instead of SELECT *",
	},
	{
		ID:          MissingFrom,
		Name:        "Missing FROM clause",
		Category:    types.CategoryBestPractices,
		Severity:    types.SeverityHigh,
		Description: "A SELECT that projects columns must read them from a FROM clause",
	},
	{
		ID:          FilterAfterGroupBy,
		Name:        "Filter after GROUP BY",
		Category:    types.CategoryBestPractices,
		Severity:    types.SeverityMedium,
		Description: "Conditions on aggregated groups belong in HAVING, row filters must precede GROUP BY",
	},
	{
		ID:          SuspiciousLiteral,
		Name:        "Suspicious string literal",
		Category:    types.CategoryBestPractices,
		Severity:    types.SeverityHigh,
		Description: "String literals should not contain SQL fragments that look like injection payloads",
	},
	{
		ID:          LegacySQLSyntax,
		Name:        "Legacy SQL syntax",
		Category:    types.CategoryBestPractices,
		Severity:    types.SeverityMedium,
		Description: "Use standard SQL backtick references instead of legacy [project:dataset.table] syntax",
		Platforms:   []types.Platform{types.PlatformBigQuery},
	},
	{
		ID:          JoinWithoutCondition,
		Name:        "JOIN without condition",
		Category:    types.CategoryPerformance,
		Severity:    types.SeverityHigh,
		Description: "Every JOIN should have an ON or USING condition to avoid a cartesian product",
	},
	{
		ID:          FullScanWithoutWhere,
		Name:        "Full table scan",
		Category:    types.CategoryPerformance,
		Severity:    types.SeverityMedium,
		Description: "Reading a table without WHERE or LIMIT scans every row",
	},
	{
		ID:          OrderByWithoutLimit,
		Name:        "ORDER BY without LIMIT",
		Category:    types.CategoryPerformance,
		Severity:    types.SeverityLow,
		Description: "Sorting a complete result set is expensive; add LIMIT when only the top rows matter",
	},
	{
		ID:          CartesianCrossJoin,
		Name:        "Unfiltered CROSS JOIN",
		Category:    types.CategoryPerformance,
		Severity:    types.SeverityHigh,
		Description: "A CROSS JOIN without a WHERE filter produces a full cartesian product across the cluster",
		Platforms:   []types.Platform{types.PlatformDatabricks},
	},
	{
		ID:          LongQueryWithoutCTE,
		Name:        "Long query without CTEs",
		Category:    types.CategoryModularization,
		Severity:    types.SeverityMedium,
		Description: "Break long queries into named common table expressions",
	},
	{
		ID:          ExcessiveNesting,
		Name:        "Excessive subquery nesting",
		Category:    types.CategoryModularization,
		Severity:    types.SeverityMedium,
		Description: "Replace nested subqueries with common table expressions",
	},
	{
		ID:          MissingPartitionFilter,
		Name:        "Missing partition filter",
		Category:    types.CategoryCost,
		Severity:    types.SeverityHigh,
		Description: "Filter on a partition, cluster or date column so the warehouse can prune data",
	},
	{
		ID:          NoSampling,
		Name:        "No sampling",
		Category:    types.CategoryCost,
		Severity:    types.SeverityLow,
		Description: "Use a sampling clause or LIMIT while exploring large tables",
	},
	{
		ID:          ResultCacheBusting,
		Name:        "Result cache bypassed",
		Category:    types.CategoryCost,
		Severity:    types.SeverityLow,
		Description: "Non-deterministic functions prevent Snowflake from reusing cached results",
		Platforms:   []types.Platform{types.PlatformSnowflake},
	},
}

// Definitions returns the built-in rule definitions for a platform in catalog order.
func Definitions(p types.Platform) []Definition {
	var out []Definition
	for _, d := range definitions {
		if d.AppliesTo(p) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the definition for a rule id.
func Lookup(id advisor.Type) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// CatalogID is the id of the built-in catalog for a platform.
func CatalogID(p types.Platform) string {
	return "builtin-" + strings.ToLower(p.String())
}

// DefaultCatalog returns a fresh built-in catalog for the platform with every
// rule enabled. Each call returns a new value.
func DefaultCatalog(p types.Platform) *types.RuleCatalog {
	catalog := types.NewRuleCatalog(CatalogID(p), p)
	for _, d := range Definitions(p) {
		catalog.Rules[d.Category] = append(catalog.Rules[d.Category], &types.Rule{
			ID:          string(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Severity:    d.Severity,
			Enabled:     true,
		})
	}
	return catalog
}

// The definitions are static; a broken table is a programming error.
func init() {
	seen := make(map[advisor.Type]bool, len(definitions))
	for _, d := range definitions {
		if seen[d.ID] {
			panic(fmt.Sprintf("rules: duplicate built-in rule %q", d.ID))
		}
		if !d.Category.Valid() {
			panic(fmt.Sprintf("rules: rule %q has unknown category %q", d.ID, d.Category))
		}
		seen[d.ID] = true
	}
}
