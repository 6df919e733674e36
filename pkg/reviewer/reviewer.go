// Package reviewer provides a high-level API over the five warehouse SQL
// engines: analysis, lineage, migration, syntax fixing and cost estimation.
//
// # Quick Start
//
//	// Create a reviewer for BigQuery with the built-in rule catalog
//	r := reviewer.New(types.PlatformBigQuery)
//
//	// Score a query
//	result := r.Analyze("SELECT * FROM orders")
//	fmt.Println(result)
//	for _, issue := range result.AllIssues() {
//	    fmt.Printf("[%s] %s\n", issue.Severity, issue.Message)
//	}
//
// # Using a Custom Rule Catalog
//
//	r := reviewer.New(types.PlatformSnowflake)
//	if err := r.WithCatalogFile("team-rules.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Everything at Once
//
//	report, err := r.Review(ctx, sql, reviewer.WithMigrationTargets(types.PlatformDatabricks))
//
// # Many Queries
//
//	batch, err := r.AnalyzeBatch(ctx, queries)
//	fmt.Println(batch.Summary.AverageScore)
package reviewer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/analyzer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/config"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/fixer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/lineage"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/migration"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Reviewer binds a platform and a rule catalog to the five engines.
//
// Reviewer is safe for concurrent use by multiple goroutines.
type Reviewer struct {
	platform types.Platform

	mu      sync.RWMutex
	catalog *types.RuleCatalog

	analyzer    *analyzer.Analyzer
	extractor   *lineage.Extractor
	migrator    *migration.Migrator
	fixer       *fixer.Fixer
	estimator   *cost.Estimator
	concurrency int
	logger      logger.Interface
}

// New creates a Reviewer for platform using the built-in rule catalog.
//
// Example:
//
//	r := reviewer.New(types.PlatformDatabricks, reviewer.WithVariance(cost.FixedVariance(1)))
//	estimate := r.Estimate("SELECT * FROM events")
func New(platform types.Platform, opts ...Option) *Reviewer {
	s := &settings{
		logger:      logger.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}

	analyzerOpts := []analyzer.Option{analyzer.WithLogger(s.logger), analyzer.WithMatcher(s.matcher)}
	if s.weights != nil {
		analyzerOpts = append(analyzerOpts, analyzer.WithWeights(*s.weights))
	}
	costOpts := []cost.Option{cost.WithLogger(s.logger), cost.WithVariance(s.variance)}
	if s.pricing != nil {
		costOpts = append(costOpts, cost.WithPricing(*s.pricing))
	}
	fixerOpts := []fixer.Option{fixer.WithLogger(s.logger)}
	if s.formatter != nil {
		fixerOpts = append(fixerOpts, fixer.WithFormatter(s.formatter))
	}

	return &Reviewer{
		platform:    platform,
		catalog:     rules.DefaultCatalog(platform),
		analyzer:    analyzer.New(analyzerOpts...),
		extractor:   lineage.New(lineage.WithLogger(s.logger)),
		migrator:    migration.New(migration.WithLogger(s.logger)),
		fixer:       fixer.New(platform, fixerOpts...),
		estimator:   cost.New(costOpts...),
		concurrency: s.concurrency,
		logger:      s.logger,
	}
}

// WithCatalogFile loads a rule catalog from a YAML or JSON file.
// This replaces the current catalog.
//
// Returns an error if the file cannot be read or parsed, or if it belongs to
// another platform.
func (r *Reviewer) WithCatalogFile(filename string) error {
	catalog, err := config.CatalogFor(filename, r.platform)
	if err != nil {
		return errors.Wrapf(err, "failed to load catalog from %s", filename)
	}
	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()
	return nil
}

// WithCatalog sets the rule catalog directly. The reviewer keeps its own copy,
// so later changes to catalog are not seen. A nil catalog restores the
// built-in one.
//
// Returns the Reviewer for method chaining.
func (r *Reviewer) WithCatalog(catalog *types.RuleCatalog) *Reviewer {
	if catalog == nil {
		catalog = rules.DefaultCatalog(r.platform)
	} else {
		catalog = catalog.Clone()
	}
	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()
	return r
}

// Platform returns the platform the reviewer was created for.
func (r *Reviewer) Platform() types.Platform { return r.platform }

// Catalog returns a copy of the current rule catalog.
func (r *Reviewer) Catalog() *types.RuleCatalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog.Clone()
}

// Analyze scores sql against the current catalog.
func (r *Reviewer) Analyze(sql string) *types.AnalysisResult {
	r.mu.RLock()
	catalog := r.catalog
	r.mu.RUnlock()
	return r.analyzer.Analyze(sql, r.platform, catalog)
}

// Lineage extracts the table and column graph of sql.
func (r *Reviewer) Lineage(sql string) *types.SchemaGraph {
	return r.extractor.Extract(sql, r.platform)
}

// Migrate rewrites sql for target.
func (r *Reviewer) Migrate(sql string, target types.Platform) *types.MigrationResult {
	return r.migrator.Migrate(sql, r.platform, target)
}

// Fix corrects the structural problems of sql.
func (r *Reviewer) Fix(sql string) *types.FixResult {
	return r.fixer.Fix(sql)
}

// Estimate prices sql.
func (r *Reviewer) Estimate(sql string) *types.CostEstimate {
	return r.estimator.Estimate(sql, r.platform)
}

// Review runs every engine over sql and collects the results in a Report.
//
// The context is checked between engines. When it is cancelled, Review
// returns the partial report together with the context error.
func (r *Reviewer) Review(ctx context.Context, sql string, opts ...ReviewOption) (*Report, error) {
	reviewOpts := &reviewOptions{}
	for _, opt := range opts {
		opt(reviewOpts)
	}

	report := &Report{
		ID:         uuid.NewString(),
		Platform:   r.platform,
		Query:      sql,
		Migrations: []*types.MigrationResult{},
	}
	steps := []func(){
		func() { report.Analysis = r.Analyze(sql) },
		func() {
			if !reviewOpts.noLineage {
				report.Lineage = r.Lineage(sql)
			}
		},
		func() { report.Fix = r.Fix(sql) },
		func() { report.Cost = r.Estimate(sql) },
	}
	for _, target := range reviewOpts.targets {
		steps = append(steps, func() {
			report.Migrations = append(report.Migrations, r.Migrate(sql, target))
		})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		step()
	}
	r.logger.Debug("reviewed query", "id", report.ID, "platform", r.platform, "migrations", len(report.Migrations))
	return report, nil
}

// AnalyzeBatch analyzes every query concurrently, bounded by the reviewer's
// concurrency. Items keep the order of queries.
//
// Cancelling ctx stops scheduling new queries; the partial batch is returned
// with the context error and unanalyzed items have a nil Result.
func (r *Reviewer) AnalyzeBatch(ctx context.Context, queries []string) (*BatchResult, error) {
	batch := &BatchResult{
		ID:    uuid.NewString(),
		Items: make([]BatchItem, len(queries)),
	}
	for i, q := range queries {
		batch.Items[i] = BatchItem{ID: uuid.NewString(), Index: i, Query: q}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range batch.Items {
		item := &batch.Items[i]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item.Result = r.Analyze(item.Query)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	batch.Summary = summarize(batch.Items)
	r.logger.Debug("analyzed batch",
		"id", batch.ID,
		"queries", len(queries),
		"analyzed", batch.Summary.Analyzed,
		"concurrency", r.concurrency)
	return batch, err
}
