package reviewer

import (
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/analyzer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/fixer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// DefaultConcurrency bounds AnalyzeBatch when WithConcurrency is not given.
const DefaultConcurrency = 8

// Option configures a Reviewer.
type Option func(*settings)

type settings struct {
	logger      logger.Interface
	weights     *analyzer.Weights
	matcher     analyzer.HeuristicMatcher
	variance    cost.Variance
	pricing     *cost.Pricing
	formatter   fixer.Formatter
	concurrency int
}

// WithLogger sets the logger passed to every engine.
func WithLogger(l logger.Interface) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithWeights overrides the category weights of the overall score.
func WithWeights(w analyzer.Weights) Option {
	return func(s *settings) {
		s.weights = &w
	}
}

// WithMatcher replaces the heuristic matcher used for custom rules.
func WithMatcher(m analyzer.HeuristicMatcher) Option {
	return func(s *settings) {
		s.matcher = m
	}
}

// WithVariance sets the jitter source of cost estimates. Use
// cost.FixedVariance(1) or cost.NewSeededVariance for reproducible output.
func WithVariance(v cost.Variance) Option {
	return func(s *settings) {
		s.variance = v
	}
}

// WithPricing overrides the list prices of cost estimates.
func WithPricing(p cost.Pricing) Option {
	return func(s *settings) {
		s.pricing = &p
	}
}

// WithFormatter runs f after the syntax fixer.
func WithFormatter(f fixer.Formatter) Option {
	return func(s *settings) {
		s.formatter = f
	}
}

// WithConcurrency bounds the number of queries AnalyzeBatch analyzes at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// ReviewOption is a functional option for customizing a single Review call.
type ReviewOption func(*reviewOptions)

// reviewOptions holds optional configuration for a review operation.
type reviewOptions struct {
	targets   []types.Platform
	noLineage bool
}

// WithMigrationTargets also migrates the query to each target platform.
//
// Example:
//
//	report, err := r.Review(ctx, sql,
//	    reviewer.WithMigrationTargets(types.PlatformSnowflake, types.PlatformDatabricks),
//	)
func WithMigrationTargets(targets ...types.Platform) ReviewOption {
	return func(opts *reviewOptions) {
		opts.targets = append(opts.targets, targets...)
	}
}

// WithoutLineage skips lineage extraction.
func WithoutLineage() ReviewOption {
	return func(opts *reviewOptions) {
		opts.noLineage = true
	}
}
