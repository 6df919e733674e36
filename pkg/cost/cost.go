// Package cost estimates what a query will cost to run on a warehouse.
//
// The estimate is heuristic. A complexity class and a size factor are derived
// from the query text, the size is jittered by a Variance and scaled by
// pattern multipliers, and the result feeds a linear per-platform model:
// bytes scanned for BigQuery, credits for Snowflake and DBUs for Databricks.
package cost

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Per unit of adjusted size.
const (
	bigQueryBytesPerUnit    = 1 << 30 // 1 GiB scanned
	bigQuerySlotSeconds     = 10.0
	snowflakeSecondsPerUnit = 15.0
	databricksDBUPerUnit    = 0.1
	secondsPerUnit          = 2.0

	bytesPerTiB = 1 << 40
)

// Estimator produces CostEstimates.
type Estimator struct {
	variance Variance
	pricing  Pricing
	logger   logger.Interface
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithVariance sets the jitter source. Tests use FixedVariance(1).
func WithVariance(v Variance) Option {
	return func(e *Estimator) {
		if v != nil {
			e.variance = v
		}
	}
}

// WithPricing overrides list prices. Zero fields keep their defaults.
func WithPricing(p Pricing) Option {
	return func(e *Estimator) {
		e.pricing = p.withDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Interface) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Estimator with default pricing and process-seeded variance.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		variance: defaultVariance(),
		pricing:  DefaultPricing(),
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate runs a default Estimator.
func Estimate(sql string, platform types.Platform) *types.CostEstimate {
	return New().Estimate(sql, platform)
}

// Estimate classifies sql and prices it for platform. Empty input and an
// unknown platform yield a zero estimate of Low complexity.
func (e *Estimator) Estimate(sql string, platform types.Platform) *types.CostEstimate {
	est := &types.CostEstimate{
		Platform:        platform,
		UnitName:        unitName(platform),
		Currency:        e.pricing.Currency,
		DataScanned:     humanize.IBytes(0),
		Complexity:      types.ComplexityLow,
		ExecutionTime:   formatDuration(0),
		Recommendations: []string{},
	}
	if strings.TrimSpace(sql) == "" {
		return est
	}
	d := dialect.Get(platform)
	if d == nil {
		e.logger.Debug("estimate: unknown platform", "platform", platform)
		return est
	}

	p := newProfile(sql, d)
	est.Complexity = p.complexity()

	jitter := e.variance.Factor()
	units := p.size() * jitter * p.multiplier() * complexityFactor(est.Complexity)
	bytes := units * bigQueryBytesPerUnit
	seconds := units * secondsPerUnit

	switch platform {
	case types.PlatformBigQuery:
		est.ProcessingUnits = units * bigQuerySlotSeconds
		est.EstimatedCost = bytes / bytesPerTiB * e.pricing.BigQueryPerTiB
	case types.PlatformSnowflake:
		seconds = units * snowflakeSecondsPerUnit
		est.ProcessingUnits = seconds / 3600 * e.pricing.SnowflakeCreditsPerHour
		est.EstimatedCost = est.ProcessingUnits * e.pricing.SnowflakePerCredit
	case types.PlatformDatabricks:
		est.ProcessingUnits = units * databricksDBUPerUnit
		est.EstimatedCost = est.ProcessingUnits * e.pricing.DatabricksPerDBU
	}
	est.ProcessingUnits = round(est.ProcessingUnits, 4)
	est.EstimatedCost = round(est.EstimatedCost, 4)
	est.DataScanned = humanize.IBytes(uint64(bytes))
	est.ExecutionTime = formatDuration(seconds)
	est.Recommendations = recommendations(p, platform, est.Complexity)

	e.logger.Debug("estimated cost",
		"platform", platform,
		"complexity", est.Complexity,
		"jitter", jitter,
		"units", units)
	return est
}

func unitName(p types.Platform) string {
	switch p {
	case types.PlatformBigQuery:
		return "slot-seconds"
	case types.PlatformSnowflake:
		return "credits"
	case types.PlatformDatabricks:
		return "DBUs"
	}
	return "units"
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 1 {
		return "< 1s"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
