package cost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func fixed() *Estimator {
	return New(WithVariance(FixedVariance(1)), WithLogger(logger.Discard()))
}

func TestEstimateSelectStarFromHugeTable(t *testing.T) {
	for _, p := range types.Platforms {
		t.Run(p.String(), func(t *testing.T) {
			est := Estimate("SELECT * FROM huge_table", p)
			assert.GreaterOrEqual(t, est.Complexity.Rank(), types.ComplexityLow.Rank())
			assert.Contains(t, est.Recommendations, RecommendAvoidSelectStar)
			assert.Contains(t, est.Recommendations, RecommendAddWhere)
			assert.Greater(t, est.EstimatedCost, 0.0)
		})
	}
}

func TestEstimateModels(t *testing.T) {
	tests := []struct {
		platform      types.Platform
		units         float64
		unitName      string
		cost          float64
		executionTime string
	}{
		{types.PlatformBigQuery, 48, "slot-seconds", 0.0293, "10s"},
		{types.PlatformSnowflake, 0.02, "credits", 0.06, "1m12s"},
		{types.PlatformDatabricks, 0.48, "DBUs", 0.264, "10s"},
	}
	for _, tc := range tests {
		t.Run(tc.platform.String(), func(t *testing.T) {
			est := fixed().Estimate("SELECT * FROM huge_table", tc.platform)

			assert.Equal(t, tc.platform, est.Platform)
			assert.Equal(t, types.ComplexityLow, est.Complexity)
			assert.Equal(t, tc.unitName, est.UnitName)
			assert.InDelta(t, tc.units, est.ProcessingUnits, 1e-9)
			assert.InDelta(t, tc.cost, est.EstimatedCost, 1e-9)
			assert.Equal(t, "USD", est.Currency)
			assert.Equal(t, "4.8 GiB", est.DataScanned)
			assert.Equal(t, tc.executionTime, est.ExecutionTime)
		})
	}
}

func TestEstimateRecommendations(t *testing.T) {
	est := fixed().Estimate("SELECT * FROM huge_table", types.PlatformBigQuery)
	assert.Equal(t, []string{
		RecommendAvoidSelectStar,
		RecommendAddWhere,
		partitionAdvice[types.PlatformBigQuery],
		RecommendLimit,
		cacheAdvice[types.PlatformBigQuery],
	}, est.Recommendations)

	est = fixed().Estimate("SELECT id FROM t CLUSTER BY id WHERE ds = '2024-01-01' LIMIT 10 -- RESULT_SCAN", types.PlatformSnowflake)
	assert.Equal(t, []string{cacheAdvice[types.PlatformSnowflake]}, est.Recommendations)
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want types.Complexity
	}{
		{"plain select", "SELECT a FROM t WHERE b = 1", types.ComplexityLow},
		{"aggregate", "SELECT COUNT(*) FROM t", types.ComplexityMedium},
		{"two joins", "SELECT a FROM t JOIN u ON t.id = u.id JOIN v ON v.id = u.id", types.ComplexityMedium},
		{"three joins", "SELECT a FROM t JOIN u ON t.id = u.id JOIN v ON v.id = u.id LEFT JOIN w ON w.id = v.id", types.ComplexityHigh},
		{"ranking window", "SELECT a, ROW_NUMBER() OVER (PARTITION BY b ORDER BY c) FROM t", types.ComplexityHigh},
		{"aggregate window", "SELECT SUM(a) OVER (PARTITION BY b) FROM t", types.ComplexityMedium},
		{"subquery", "SELECT a FROM t WHERE id IN (SELECT id FROM u)", types.ComplexityMedium},
		{"nested subqueries", "SELECT * FROM (SELECT * FROM (SELECT a FROM t) x) y", types.ComplexityHigh},
		{"sibling subqueries", "SELECT * FROM (SELECT a FROM t) x JOIN (SELECT a FROM u) y ON x.a = y.a", types.ComplexityMedium},
		{"four aggregates", "SELECT COUNT(a), SUM(b), AVG(c), MAX(d) FROM t", types.ComplexityHigh},
		{"two case expressions", "SELECT CASE WHEN a THEN 1 END, CASE WHEN b THEN 2 END FROM t", types.ComplexityMedium},
		{"union", "SELECT a FROM t UNION ALL SELECT a FROM u", types.ComplexityMedium},
		{"long", "SELECT " + strings.Repeat("col, ", 120) + "x FROM t", types.ComplexityMedium},
		{"very long", "SELECT " + strings.Repeat("col, ", 420) + "x FROM t", types.ComplexityHigh},
		{"keywords in strings", "SELECT 'COUNT(a) JOIN b JOIN c JOIN d' FROM t", types.ComplexityLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fixed().Estimate(tc.sql, types.PlatformDatabricks).Complexity)
		})
	}
}

func TestMultiplier(t *testing.T) {
	d := dialect.Get(types.PlatformBigQuery)
	tests := []struct {
		sql  string
		want float64
	}{
		{"SELECT a FROM t WHERE b = 1", 1.0},
		{"SELECT * FROM t WHERE b = 1", 1.5},
		{"SELECT a FROM t", 2.0},
		{"SELECT * FROM t", 3.0},
		{"SELECT a FROM t WHERE _PARTITIONTIME > '2024-01-01'", 0.6},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, newProfile(tc.sql, d).multiplier(), 1e-9, tc.sql)
	}
}

func TestProfileCounts(t *testing.T) {
	p := newProfile("SELECT a, b, EXTRACT(YEAR FROM d) FROM t JOIN u ON t.id = u.id WHERE a = 1 AND b = 2", nil)
	assert.Equal(t, 2, p.tables)
	assert.Equal(t, 1, p.joins)
	assert.Equal(t, 3, p.columns)
	assert.Equal(t, 3, p.conditions)
	assert.False(t, p.partition)
}

func TestEstimateEmpty(t *testing.T) {
	est := fixed().Estimate("  \n", types.PlatformSnowflake)
	assert.Equal(t, types.ComplexityLow, est.Complexity)
	assert.Zero(t, est.EstimatedCost)
	assert.Zero(t, est.ProcessingUnits)
	assert.Equal(t, "0 B", est.DataScanned)
	assert.Equal(t, "0s", est.ExecutionTime)
	assert.NotNil(t, est.Recommendations)
	assert.Empty(t, est.Recommendations)
}

func TestEstimateUnknownPlatform(t *testing.T) {
	est := fixed().Estimate("SELECT * FROM t", types.PlatformUnspecified)
	assert.Equal(t, "units", est.UnitName)
	assert.Zero(t, est.EstimatedCost)
	assert.Zero(t, est.ProcessingUnits)
	assert.Equal(t, "0 B", est.DataScanned)
	assert.Equal(t, types.ComplexityLow, est.Complexity)
	assert.Empty(t, est.Recommendations)

	empty := fixed().Estimate("", types.PlatformUnspecified)
	assert.Equal(t, empty, est)
}

func TestPricingOverride(t *testing.T) {
	e := New(WithVariance(FixedVariance(1)), WithPricing(Pricing{BigQueryPerTiB: 12.5}), WithLogger(logger.Discard()))
	est := e.Estimate("SELECT * FROM huge_table", types.PlatformBigQuery)
	assert.InDelta(t, 0.0586, est.EstimatedCost, 1e-9)

	sf := e.Estimate("SELECT * FROM huge_table", types.PlatformSnowflake)
	assert.InDelta(t, 0.06, sf.EstimatedCost, 1e-9, "zero fields keep their defaults")
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 1.0, FixedVariance(1).Factor())
	assert.Equal(t, 1+MaxJitter, FixedVariance(5).Factor())
	assert.Equal(t, 1-MaxJitter, FixedVariance(-1).Factor())

	v := NewSeededVariance(7)
	for i := 0; i < 1000; i++ {
		f := v.Factor()
		require.GreaterOrEqual(t, f, 1-MaxJitter)
		require.LessOrEqual(t, f, 1+MaxJitter)
	}

	a := New(WithVariance(NewSeededVariance(42)), WithLogger(logger.Discard()))
	b := New(WithVariance(NewSeededVariance(42)), WithLogger(logger.Discard()))
	for _, sql := range []string{"SELECT * FROM t", "SELECT a FROM t JOIN u ON t.id = u.id WHERE a > 1"} {
		assert.Equal(t, a.Estimate(sql, types.PlatformBigQuery), b.Estimate(sql, types.PlatformBigQuery))
	}
}

func TestJitterIsBounded(t *testing.T) {
	low := New(WithVariance(FixedVariance(1-MaxJitter)), WithLogger(logger.Discard()))
	high := New(WithVariance(FixedVariance(1+MaxJitter)), WithLogger(logger.Discard()))
	for i := 0; i < 50; i++ {
		est := Estimate("SELECT a, b FROM t JOIN u ON t.id = u.id", types.PlatformDatabricks)
		assert.GreaterOrEqual(t, est.EstimatedCost, low.Estimate("SELECT a, b FROM t JOIN u ON t.id = u.id", types.PlatformDatabricks).EstimatedCost)
		assert.LessOrEqual(t, est.EstimatedCost, high.Estimate("SELECT a, b FROM t JOIN u ON t.id = u.id", types.PlatformDatabricks).EstimatedCost)
	}
}
