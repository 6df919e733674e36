package reviewer

import (
	"fmt"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Report holds the output of every engine for one query.
type Report struct {
	// ID identifies the report, e.g. for storing it next to the query.
	ID       string         `json:"id" yaml:"id"`
	Platform types.Platform `json:"platform" yaml:"platform"`
	Query    string         `json:"query" yaml:"query"`

	Analysis *types.AnalysisResult `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	// Lineage is nil when the review ran WithoutLineage.
	Lineage    *types.SchemaGraph       `json:"lineage,omitempty" yaml:"lineage,omitempty"`
	Fix        *types.FixResult         `json:"fix,omitempty" yaml:"fix,omitempty"`
	Cost       *types.CostEstimate      `json:"cost,omitempty" yaml:"cost,omitempty"`
	Migrations []*types.MigrationResult `json:"migrations" yaml:"migrations"`
}

// HasErrors returns true if the analysis found any High severity issue.
//
// This is useful for CI/CD pipelines that should fail on errors:
//
//	if report.HasErrors() {
//	    os.Exit(1)
//	}
func (r *Report) HasErrors() bool {
	return r.Analysis != nil && r.Analysis.CountBySeverity(types.SeverityHigh) > 0
}

// IsClean returns true if the query is valid and raised no analysis issue.
func (r *Report) IsClean() bool {
	return r.Analysis != nil && r.Analysis.Valid && len(r.Analysis.AllIssues()) == 0
}

// String returns a one-line summary of the report.
//
// Example output:
//
//	Report 6f1c…: score 82, 4 issue(s), fixer changed query: true, estimated cost 0.0293 USD
func (r *Report) String() string {
	score, issues := 0, 0
	if r.Analysis != nil {
		score, issues = r.Analysis.Summary.OverallScore, len(r.Analysis.AllIssues())
	}
	fixed := r.Fix != nil && r.Fix.FixedQuery != r.Fix.OriginalQuery
	s := fmt.Sprintf("Report %s: score %d, %d issue(s), fixer changed query: %t", r.ID, score, issues, fixed)
	if r.Cost != nil {
		s += fmt.Sprintf(", estimated cost %.4f %s", r.Cost.EstimatedCost, r.Cost.Currency)
	}
	return s
}

// BatchItem is one query of a batch.
type BatchItem struct {
	ID    string `json:"id" yaml:"id"`
	Index int    `json:"index" yaml:"index"`
	Query string `json:"query" yaml:"query"`
	// Result is nil when the batch was cancelled before the query ran.
	Result *types.AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// BatchSummary provides aggregate statistics over a batch.
type BatchSummary struct {
	// Total number of queries submitted.
	Total int `json:"total" yaml:"total"`
	// Analyzed counts items with a result.
	Analyzed int `json:"analyzed" yaml:"analyzed"`
	// Invalid counts analyzed items whose input was empty.
	Invalid int `json:"invalid" yaml:"invalid"`
	// AverageScore is the mean overall score of the valid items.
	AverageScore float64 `json:"averageScore" yaml:"averageScore"`
	// High, Medium and Low count the issues of all valid items by severity.
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// BatchResult is the output of AnalyzeBatch.
type BatchResult struct {
	ID      string       `json:"id" yaml:"id"`
	Items   []BatchItem  `json:"items" yaml:"items"`
	Summary BatchSummary `json:"summary" yaml:"summary"`
}

// HasErrors returns true if any item raised a High severity issue.
func (b *BatchResult) HasErrors() bool {
	return b.Summary.High > 0
}

// String returns a one-line summary of the batch.
//
// Example output:
//
//	Batch: 10 queries, 10 analyzed (1 invalid), average score 87.5, issues 2 high / 5 medium / 3 low
func (b *BatchResult) String() string {
	s := b.Summary
	return fmt.Sprintf("Batch: %d queries, %d analyzed (%d invalid), average score %.1f, issues %d high / %d medium / %d low",
		s.Total, s.Analyzed, s.Invalid, s.AverageScore, s.High, s.Medium, s.Low)
}

// FilterByScore returns the analyzed items whose overall score is below
// threshold, in batch order.
func (b *BatchResult) FilterByScore(threshold int) []BatchItem {
	filtered := make([]BatchItem, 0)
	for _, item := range b.Items {
		if item.Result != nil && item.Result.Valid && item.Result.Summary.OverallScore < threshold {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// FilterByIssue returns the analyzed items that raised the given rule id.
func (b *BatchResult) FilterByIssue(id string) []BatchItem {
	filtered := make([]BatchItem, 0)
	for _, item := range b.Items {
		if item.Result != nil && item.Result.HasIssue(id) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// summarize computes aggregate statistics from batch items.
func summarize(items []BatchItem) BatchSummary {
	summary := BatchSummary{Total: len(items)}
	total, valid := 0, 0
	for _, item := range items {
		if item.Result == nil {
			continue
		}
		summary.Analyzed++
		if !item.Result.Valid {
			summary.Invalid++
			continue
		}
		valid++
		total += item.Result.Summary.OverallScore
		summary.High += item.Result.CountBySeverity(types.SeverityHigh)
		summary.Medium += item.Result.CountBySeverity(types.SeverityMedium)
		summary.Low += item.Result.CountBySeverity(types.SeverityLow)
	}
	if valid > 0 {
		summary.AverageScore = float64(total) / float64(valid)
	}
	return summary
}
