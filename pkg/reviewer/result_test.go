package reviewer

import (
	"strings"
	"testing"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func analysis(score int, severities ...types.Severity) *types.AnalysisResult {
	r := types.NewAnalysisResult(types.PlatformBigQuery)
	r.Valid = true
	r.Summary.OverallScore = score
	for i, s := range severities {
		r.Issues[types.CategoryPerformance] = append(r.Issues[types.CategoryPerformance], types.Issue{
			ID:       strings.Repeat("x", i+1),
			Category: types.CategoryPerformance,
			Severity: s,
		})
	}
	return r
}

func TestReport_HasErrors(t *testing.T) {
	tests := []struct {
		name     string
		report   *Report
		expected bool
	}{
		{
			name:     "no analysis",
			report:   &Report{},
			expected: false,
		},
		{
			name:     "only warnings",
			report:   &Report{Analysis: analysis(80, types.SeverityMedium, types.SeverityLow)},
			expected: false,
		},
		{
			name:     "has high issue",
			report:   &Report{Analysis: analysis(70, types.SeverityHigh)},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.report.HasErrors()
			if got != tt.expected {
				t.Errorf("HasErrors() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReport_IsClean(t *testing.T) {
	tests := []struct {
		name     string
		report   *Report
		expected bool
	}{
		{"clean", &Report{Analysis: analysis(100)}, true},
		{"low issue", &Report{Analysis: analysis(95, types.SeverityLow)}, false},
		{"invalid input", &Report{Analysis: types.NewAnalysisResult(types.PlatformBigQuery)}, false},
		{"no analysis", &Report{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.IsClean(); got != tt.expected {
				t.Errorf("IsClean() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		ID:       "r1",
		Analysis: analysis(82, types.SeverityLow, types.SeverityMedium),
		Fix:      &types.FixResult{OriginalQuery: "selct 1", FixedQuery: "SELECT 1;", Fixed: true},
		Cost:     &types.CostEstimate{EstimatedCost: 0.0293, Currency: "USD"},
	}
	expected := "Report r1: score 82, 2 issue(s), fixer changed query: true, estimated cost 0.0293 USD"
	if got := report.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}

	bare := &Report{ID: "r2"}
	expected = "Report r2: score 0, 0 issue(s), fixer changed query: false"
	if got := bare.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}

func TestSummarize(t *testing.T) {
	items := []BatchItem{
		{Result: analysis(90, types.SeverityHigh, types.SeverityLow)},
		{Result: analysis(70, types.SeverityMedium, types.SeverityMedium)},
		{Result: types.NewAnalysisResult(types.PlatformBigQuery)},
		{},
	}

	summary := summarize(items)
	expected := BatchSummary{Total: 4, Analyzed: 3, Invalid: 1, AverageScore: 80, High: 1, Medium: 2, Low: 1}
	if summary != expected {
		t.Errorf("summarize() = %+v, want %+v", summary, expected)
	}
}

func TestBatchResult_String(t *testing.T) {
	batch := &BatchResult{Summary: BatchSummary{Total: 10, Analyzed: 10, Invalid: 1, AverageScore: 87.5, High: 2, Medium: 5, Low: 3}}
	expected := "Batch: 10 queries, 10 analyzed (1 invalid), average score 87.5, issues 2 high / 5 medium / 3 low"
	if got := batch.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
	if !batch.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestBatchResult_Filters(t *testing.T) {
	batch := &BatchResult{Items: []BatchItem{
		{Index: 0, Result: analysis(90, types.SeverityMedium)},
		{Index: 1, Result: analysis(60, types.SeverityHigh, types.SeverityHigh)},
		{Index: 2, Result: types.NewAnalysisResult(types.PlatformBigQuery)},
		{Index: 3},
	}}

	low := batch.FilterByScore(80)
	if len(low) != 1 || low[0].Index != 1 {
		t.Errorf("FilterByScore(80) = %+v, want only item 1", low)
	}

	withX := batch.FilterByIssue("xx")
	if len(withX) != 1 || withX[0].Index != 1 {
		t.Errorf("FilterByIssue(xx) = %+v, want only item 1", withX)
	}

	if got := (&BatchResult{}).FilterByScore(100); got == nil || len(got) != 0 {
		t.Errorf("FilterByScore on empty batch = %v, want empty slice", got)
	}
}
