package types

import "fmt"

// Issue is a single analyzer finding. It is never mutated after creation.
type Issue struct {
	ID             string   `json:"id" yaml:"id"`
	Category       Category `json:"category" yaml:"category"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Message        string   `json:"message" yaml:"message"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Line           *int     `json:"line,omitempty" yaml:"line,omitempty"`
	Column         *int     `json:"column,omitempty" yaml:"column,omitempty"`

	// EstimatedImpact is only set for performance issues.
	EstimatedImpact string `json:"estimatedImpact,omitempty" yaml:"estimatedImpact,omitempty"`
	// EstimatedSavings is only set for cost issues.
	EstimatedSavings string `json:"estimatedSavings,omitempty" yaml:"estimatedSavings,omitempty"`
}

// CategoryScores holds one 0-100 score per category.
type CategoryScores struct {
	BestPractices  int `json:"bestPractices" yaml:"bestPractices"`
	Performance    int `json:"performance" yaml:"performance"`
	Modularization int `json:"modularization" yaml:"modularization"`
	Cost           int `json:"cost" yaml:"cost"`
}

// Get returns the score of the given category.
func (s CategoryScores) Get(c Category) int {
	switch c {
	case CategoryBestPractices:
		return s.BestPractices
	case CategoryPerformance:
		return s.Performance
	case CategoryModularization:
		return s.Modularization
	case CategoryCost:
		return s.Cost
	}
	return 0
}

// Set stores the score of the given category.
func (s *CategoryScores) Set(c Category, score int) {
	switch c {
	case CategoryBestPractices:
		s.BestPractices = score
	case CategoryPerformance:
		s.Performance = score
	case CategoryModularization:
		s.Modularization = score
	case CategoryCost:
		s.Cost = score
	}
}

// AnalysisSummary carries the weighted overall score and the per-category scores.
type AnalysisSummary struct {
	OverallScore   int            `json:"overallScore" yaml:"overallScore"`
	CategoryScores CategoryScores `json:"categoryScores" yaml:"categoryScores"`
}

// AnalysisResult is the output of the analyzer.
type AnalysisResult struct {
	Valid    bool                 `json:"valid" yaml:"valid"`
	Platform Platform             `json:"platform" yaml:"platform"`
	Issues   map[Category][]Issue `json:"issues" yaml:"issues"`
	Summary  AnalysisSummary      `json:"summary" yaml:"summary"`
}

// NewAnalysisResult returns a result with an empty issue list for every category.
func NewAnalysisResult(platform Platform) *AnalysisResult {
	issues := make(map[Category][]Issue, len(Categories))
	for _, c := range Categories {
		issues[c] = []Issue{}
	}
	return &AnalysisResult{Platform: platform, Issues: issues}
}

// AllIssues flattens the grouped issues in category order.
func (r *AnalysisResult) AllIssues() []Issue {
	var all []Issue
	for _, c := range Categories {
		all = append(all, r.Issues[c]...)
	}
	return all
}

// FilterByCategory returns the issues of a single category.
func (r *AnalysisResult) FilterByCategory(c Category) []Issue {
	return append([]Issue(nil), r.Issues[c]...)
}

// CountBySeverity returns the number of issues with the given severity.
func (r *AnalysisResult) CountBySeverity(s Severity) int {
	count := 0
	for _, issue := range r.AllIssues() {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// HasIssue reports whether an issue with the given rule id was raised.
func (r *AnalysisResult) HasIssue(id string) bool {
	for _, issue := range r.AllIssues() {
		if issue.ID == id {
			return true
		}
	}
	return false
}

// String returns a one-line summary of the analysis.
//
// Example output:
//
//	Analysis: score 82 (bestPractices 90, performance 75, modularization 100, cost 70), 4 issue(s)
func (r *AnalysisResult) String() string {
	if !r.Valid {
		return "Analysis: invalid input"
	}
	s := r.Summary.CategoryScores
	return fmt.Sprintf(
		"Analysis: score %d (bestPractices %d, performance %d, modularization %d, cost %d), %d issue(s)",
		r.Summary.OverallScore, s.BestPractices, s.Performance, s.Modularization, s.Cost, len(r.AllIssues()),
	)
}

// MigrationIssue is a finding produced while rewriting a query for another platform.
type MigrationIssue struct {
	Line       *int     `json:"line,omitempty" yaml:"line,omitempty"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Severity   Severity `json:"severity" yaml:"severity"`
}

// MigrationResult is the output of the migration engine.
type MigrationResult struct {
	OriginalQuery      string           `json:"originalQuery" yaml:"originalQuery"`
	ConvertedQuery     string           `json:"convertedQuery" yaml:"convertedQuery"`
	SourcePlatform     Platform         `json:"sourcePlatform" yaml:"sourcePlatform"`
	TargetPlatform     Platform         `json:"targetPlatform" yaml:"targetPlatform"`
	Issues             []MigrationIssue `json:"issues" yaml:"issues"`
	CompatibilityScore int              `json:"compatibilityScore" yaml:"compatibilityScore"`
}

// FixIssue is a structural problem found by the syntax fixer.
type FixIssue struct {
	Line       *int     `json:"line,omitempty" yaml:"line,omitempty"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Severity   Severity `json:"severity" yaml:"severity"`
	AutoFixed  bool     `json:"autoFixed" yaml:"autoFixed"`
}

// FixResult is the output of the syntax fixer.
type FixResult struct {
	OriginalQuery string     `json:"originalQuery" yaml:"originalQuery"`
	FixedQuery    string     `json:"fixedQuery" yaml:"fixedQuery"`
	Issues        []FixIssue `json:"issues" yaml:"issues"`
	Fixed         bool       `json:"fixed" yaml:"fixed"`
}

// CostEstimate is the output of the cost estimator.
type CostEstimate struct {
	Platform        Platform   `json:"platform" yaml:"platform"`
	ProcessingUnits float64    `json:"processingUnits" yaml:"processingUnits"`
	UnitName        string     `json:"unitName" yaml:"unitName"`
	EstimatedCost   float64    `json:"estimatedCost" yaml:"estimatedCost"`
	Currency        string     `json:"currency" yaml:"currency"`
	DataScanned     string     `json:"dataScanned" yaml:"dataScanned"`
	Complexity      Complexity `json:"complexity" yaml:"complexity"`
	ExecutionTime   string     `json:"executionTime" yaml:"executionTime"`
	Recommendations []string   `json:"recommendations" yaml:"recommendations"`
}

// IntPtr returns a pointer to v. Used for optional line and column numbers.
func IntPtr(v int) *int {
	return &v
}
