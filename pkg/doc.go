// Package pkg provides SQL analysis and migration for cloud data warehouses.
//
// The engines work on raw query text for BigQuery, Snowflake and Databricks.
// None of them needs a database connection or a full SQL parser.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - reviewer: High-level API binding a platform and a rule catalog to every engine (recommended starting point)
//   - analyzer: Scores a query against a rule catalog
//   - lineage: Extracts the table and column graph of a query
//   - migration: Rewrites a query from one platform to another
//   - fixer: Fixes common syntax problems
//   - cost: Estimates processing units, cost and execution time
//   - rules: Built-in rule catalogs; rules/builtin registers their checks
//   - advisor: Rule registration and execution
//   - dialect: Per-platform keyword, function and type tables
//   - sqltext: Comment and string aware scanning helpers
//   - types: Core type definitions and data structures
//   - config: Rule catalog files and CLI settings
//   - logger: Logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the reviewer package:
//
//	import (
//	    "github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
//	    "github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
//	)
//
//	func main() {
//	    r := reviewer.New(types.PlatformBigQuery)
//	    report, err := r.Review(context.Background(), sql,
//	        reviewer.WithMigrationTargets(types.PlatformSnowflake))
//	    // Process results...
//	}
//
// Each engine can also be called on its own:
//
//	result := analyzer.Analyze(sql, types.PlatformSnowflake, nil)
//	graph := lineage.Extract(sql, types.PlatformSnowflake)
//	migrated := migration.Migrate(sql, types.PlatformBigQuery, types.PlatformDatabricks)
//	fixed := fixer.Fix(sql, types.PlatformDatabricks)
//	estimate := cost.Estimate(sql, types.PlatformBigQuery)
//
// # Rule Categories
//
// Analysis issues fall into four categories, each scored from 0 to 100:
//
// Best Practices: SELECT *, SELECT without FROM, WHERE after GROUP BY,
// literals that look like injected SQL, BigQuery legacy table references.
//
// Performance: joins without a condition, full scans, ORDER BY without
// LIMIT, cross joins without a filter.
//
// Modularization: long queries without CTEs, deeply nested subqueries.
//
// Cost: scans that cannot prune partitions, reads without sampling,
// functions that bypass the Snowflake result cache.
//
// The overall score weighs them 25/30/20/25.
//
// # Configuration
//
// Rule catalogs can be loaded from YAML or JSON files, or edited in code:
//
//	r := reviewer.New(types.PlatformSnowflake)
//	if err := r.WithCatalogFile("team-rules.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Custom Rules
//
// Custom catalog rules without a registered check match on the longest words
// of their description. To give a rule a real check, register an advisor
// under its id:
//
//	func init() {
//	    advisor.Register(types.PlatformBigQuery, "custom_no_staging",
//	        advisor.Func(func(checkCtx advisor.Context) ([]*types.Issue, error) {
//	            if i := strings.Index(checkCtx.Code, "staging."); i >= 0 {
//	                return []*types.Issue{checkCtx.Issue(i, "Reads a staging table", "")}, nil
//	            }
//	            return nil, nil
//	        }))
//	}
//
// # Thread Safety
//
// All public APIs are safe for concurrent use by multiple goroutines.
// Reviewer instances can be reused across calls.
//
// # Error Handling
//
// The engines never return errors: empty input yields an explicit empty
// result and unrecognized constructs are left alone. Errors are returned only
// for I/O such as reading catalog files, and for context cancellation in
// Review and AnalyzeBatch.
//
// # Documentation
//
// Examples: examples/library-usage/
package pkg
