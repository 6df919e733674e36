package analyzer

import (
	"math"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Weights are the per-category factors of the overall score.
type Weights struct {
	BestPractices  float64 `json:"bestPractices" yaml:"bestPractices"`
	Performance    float64 `json:"performance" yaml:"performance"`
	Modularization float64 `json:"modularization" yaml:"modularization"`
	Cost           float64 `json:"cost" yaml:"cost"`
}

// DefaultWeights favour performance slightly over the other categories.
var DefaultWeights = Weights{
	BestPractices:  0.25,
	Performance:    0.30,
	Modularization: 0.20,
	Cost:           0.25,
}

// Get returns the weight of a category.
func (w Weights) Get(c types.Category) float64 {
	switch c {
	case types.CategoryBestPractices:
		return w.BestPractices
	case types.CategoryPerformance:
		return w.Performance
	case types.CategoryModularization:
		return w.Modularization
	case types.CategoryCost:
		return w.Cost
	}
	return 0
}

// CategoryScore is 100 minus the severity weights of the issues, floored at 0.
func CategoryScore(issues []types.Issue) int {
	score := 100
	for _, issue := range issues {
		score -= issue.Severity.Weight()
	}
	return clamp(score)
}

// Summarize computes the category scores and the weighted overall score.
func Summarize(issues map[types.Category][]types.Issue, w Weights) types.AnalysisSummary {
	var summary types.AnalysisSummary
	overall := 0.0
	for _, c := range types.Categories {
		score := CategoryScore(issues[c])
		summary.CategoryScores.Set(c, score)
		overall += w.Get(c) * float64(score)
	}
	summary.OverallScore = clamp(int(math.Round(overall)))
	return summary
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
