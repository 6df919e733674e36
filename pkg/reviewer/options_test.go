package reviewer

import (
	"testing"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/analyzer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/cost"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/fixer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func TestWithMigrationTargets(t *testing.T) {
	opts := &reviewOptions{}
	WithMigrationTargets(types.PlatformSnowflake)(opts)
	WithMigrationTargets(types.PlatformDatabricks, types.PlatformBigQuery)(opts)

	expected := []types.Platform{types.PlatformSnowflake, types.PlatformDatabricks, types.PlatformBigQuery}
	if len(opts.targets) != len(expected) {
		t.Fatalf("Expected %d targets, got %d", len(expected), len(opts.targets))
	}
	for i, p := range expected {
		if opts.targets[i] != p {
			t.Errorf("targets[%d] = %v, want %v", i, opts.targets[i], p)
		}
	}
}

func TestReviewOptions_DefaultValues(t *testing.T) {
	opts := &reviewOptions{}
	if opts.targets != nil {
		t.Error("Expected no migration targets by default")
	}
	if opts.noLineage {
		t.Error("Expected lineage to be enabled by default")
	}
}

func TestWithConcurrency(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		expected int
	}{
		{"positive", 3, 3},
		{"zero keeps default", 0, DefaultConcurrency},
		{"negative keeps default", -2, DefaultConcurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(types.PlatformBigQuery, WithLogger(logger.Discard()), WithConcurrency(tt.n))
			if r.concurrency != tt.expected {
				t.Errorf("concurrency = %d, want %d", r.concurrency, tt.expected)
			}
		})
	}
}

func TestEngineOptions(t *testing.T) {
	weights := analyzer.Weights{BestPractices: 1}
	r := New(types.PlatformBigQuery,
		WithLogger(logger.Discard()),
		WithWeights(weights),
		WithVariance(cost.FixedVariance(1)),
		WithPricing(cost.Pricing{BigQueryPerTiB: 12.5}),
		WithFormatter(fixer.ClauseFormatter{}),
	)

	result := r.Analyze("SELECT * FROM t")
	if result.Summary.OverallScore != result.Summary.CategoryScores.BestPractices {
		t.Errorf("OverallScore = %d, want the best practices score %d",
			result.Summary.OverallScore, result.Summary.CategoryScores.BestPractices)
	}

	if got := r.Estimate("SELECT * FROM huge_table").EstimatedCost; got != 0.0586 {
		t.Errorf("EstimatedCost = %v, want 0.0586", got)
	}

	if got := r.Fix("select a from t where b = 1").FixedQuery; got != "select a\nfrom t\nwhere b = 1;" {
		t.Errorf("FixedQuery = %q", got)
	}
}

func TestWithLogger_Nil(t *testing.T) {
	r := New(types.PlatformSnowflake, WithLogger(nil))
	if r.logger == nil {
		t.Error("Expected a default logger when nil is given")
	}
}
