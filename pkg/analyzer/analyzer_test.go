package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func TestAnalyzeEmptyInput(t *testing.T) {
	for _, sql := range []string{"", "   ", "\n\t"} {
		result := Analyze(sql, types.PlatformBigQuery, nil)
		assert.False(t, result.Valid)
		assert.Equal(t, 0, result.Summary.OverallScore)
		assert.Equal(t, types.CategoryScores{}, result.Summary.CategoryScores)
		assert.Len(t, result.Issues, 4)
		assert.Empty(t, result.AllIssues())
	}
}

func TestAnalyzeUnknownPlatform(t *testing.T) {
	result := Analyze("SELECT 1", types.PlatformUnspecified, nil)
	assert.False(t, result.Valid)
}

func TestAnalyzeSelectStar(t *testing.T) {
	result := Analyze("SELECT * FROM t", types.PlatformBigQuery, nil)
	require.True(t, result.Valid)

	assert.True(t, result.HasIssue(string(rules.AvoidSelectStar)))
	assert.LessOrEqual(t, result.Summary.CategoryScores.BestPractices, 95)

	assert.Equal(t, 90, result.Summary.CategoryScores.BestPractices)
	assert.Equal(t, 90, result.Summary.CategoryScores.Performance)
	assert.Equal(t, 100, result.Summary.CategoryScores.Modularization)
	assert.Equal(t, 80, result.Summary.CategoryScores.Cost)

	for _, issue := range result.Issues[types.CategoryBestPractices] {
		assert.Equal(t, types.CategoryBestPractices, issue.Category)
	}
}

func TestAnalyzeJoinWithCondition(t *testing.T) {
	result := Analyze("SELECT a FROM t JOIN u ON t.id = u.id WHERE a = 1", types.PlatformBigQuery, nil)
	require.True(t, result.Valid)
	for _, issue := range result.Issues[types.CategoryPerformance] {
		assert.NotEqual(t, string(rules.JoinWithoutCondition), issue.ID)
	}
}

func TestAnalyzeCleanQuery(t *testing.T) {
	sql := "SELECT order_id, amount FROM orders WHERE order_date >= '2024-01-01' LIMIT 100"
	result := Analyze(sql, types.PlatformBigQuery, nil)
	require.True(t, result.Valid)
	assert.Empty(t, result.AllIssues())
	assert.Equal(t, 100, result.Summary.OverallScore)
}

func TestAnalyzeScoreFloor(t *testing.T) {
	sql := "SELECT a FROM t JOIN u JOIN v JOIN w JOIN x JOIN y JOIN z JOIN q"
	result := Analyze(sql, types.PlatformSnowflake, nil)
	require.True(t, result.Valid)
	assert.Equal(t, 0, result.Summary.CategoryScores.Performance)
	assert.GreaterOrEqual(t, result.Summary.OverallScore, 0)
	assert.LessOrEqual(t, result.Summary.OverallScore, 100)
}

func TestAnalyzeCustomCatalog(t *testing.T) {
	catalog := types.NewRuleCatalog("team", types.PlatformBigQuery)
	_, err := catalog.AddCustomRule(types.CategoryPerformance, types.Rule{
		Name:        "No distinct",
		Description: "Avoid DISTINCT on large tables",
		Severity:    types.SeverityHigh,
		Enabled:     true,
	})
	require.NoError(t, err)
	version := catalog.Version

	result := Analyze("SELECT DISTINCT * FROM t", types.PlatformBigQuery, catalog)
	require.True(t, result.Valid)

	// Built-in rules are bypassed entirely.
	assert.False(t, result.HasIssue(string(rules.AvoidSelectStar)))
	require.Len(t, result.Issues[types.CategoryPerformance], 1)
	issue := result.Issues[types.CategoryPerformance][0]
	assert.Equal(t, "custom_no_distinct", issue.ID)
	assert.Equal(t, types.SeverityHigh, issue.Severity)
	assert.NotEmpty(t, issue.EstimatedImpact)
	require.NotNil(t, issue.Line)
	assert.Equal(t, 1, *issue.Line)
	assert.Equal(t, 8, *issue.Column)
	assert.Equal(t, 85, result.Summary.CategoryScores.Performance)
	assert.Equal(t, 100, result.Summary.CategoryScores.BestPractices)

	assert.Equal(t, version, catalog.Version)
}

func TestAnalyzeBuiltinRuleWithoutCheck(t *testing.T) {
	catalog := types.NewRuleCatalog("team", types.PlatformSnowflake)
	catalog.Rules[types.CategoryBestPractices] = []*types.Rule{
		{
			ID:          string(rules.LegacySQLSyntax),
			Name:        "Legacy SQL syntax",
			Description: "Legacy bracketed references",
			Severity:    types.SeverityMedium,
			Enabled:     true,
		},
		{
			ID:          "team_no_staging",
			Name:        "No staging reads",
			Description: "Avoid reading staging tables",
			Severity:    types.SeverityLow,
			Enabled:     true,
		},
	}

	result := Analyze("SELECT legacy, bracketed, references FROM staging.orders", types.PlatformSnowflake, catalog)
	require.True(t, result.Valid)

	// bp_legacy_sql_syntax only has a BigQuery check and must not fall back
	// to description matching; the unknown id does.
	assert.False(t, result.HasIssue(string(rules.LegacySQLSyntax)))
	assert.True(t, result.HasIssue("team_no_staging"))
	assert.Len(t, result.AllIssues(), 1)
}

func TestAnalyzeDisabledRule(t *testing.T) {
	catalog := rules.DefaultCatalog(types.PlatformBigQuery)
	require.NoError(t, catalog.Disable(string(rules.AvoidSelectStar)))

	result := Analyze("SELECT * FROM t", types.PlatformBigQuery, catalog)
	assert.False(t, result.HasIssue(string(rules.AvoidSelectStar)))
	assert.Equal(t, 100, result.Summary.CategoryScores.BestPractices)
}

func TestAnalyzeDoesNotMutateCatalog(t *testing.T) {
	catalog := rules.DefaultCatalog(types.PlatformSnowflake)
	before := catalog.Clone()

	Analyze("SELECT * FROM t ORDER BY a", types.PlatformSnowflake, catalog)
	Analyze("SELECT * FROM t ORDER BY a", types.PlatformSnowflake, nil)

	assert.Equal(t, before, catalog)
	assert.Equal(t, rules.DefaultCatalog(types.PlatformSnowflake), before)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	sql := "SELECT *, RANDOM() FROM t JOIN u GROUP BY a WHERE b = 1 ORDER BY a"
	first := Analyze(sql, types.PlatformSnowflake, nil)
	second := Analyze(sql, types.PlatformSnowflake, nil)
	assert.Equal(t, first, second)
}

func TestWithWeights(t *testing.T) {
	a := New(WithWeights(Weights{BestPractices: 1}))
	result := a.Analyze("SELECT * FROM t", types.PlatformBigQuery, nil)
	assert.Equal(t, result.Summary.CategoryScores.BestPractices, result.Summary.OverallScore)
}

type alwaysMatcher struct{}

func (alwaysMatcher) Match(*types.Rule, string) (int, bool) { return -1, true }

func TestWithMatcher(t *testing.T) {
	catalog := types.NewRuleCatalog("team", types.PlatformDatabricks)
	_, err := catalog.AddCustomRule(types.CategoryCost, types.Rule{Name: "Anything", Description: "zzz", Enabled: true})
	require.NoError(t, err)

	result := New(WithMatcher(alwaysMatcher{})).Analyze("SELECT 1", types.PlatformDatabricks, catalog)
	require.Len(t, result.Issues[types.CategoryCost], 1)
	issue := result.Issues[types.CategoryCost][0]
	assert.Nil(t, issue.Line)
	assert.NotEmpty(t, issue.EstimatedSavings)
	assert.Equal(t, types.SeverityMedium, issue.Severity)
}

func TestKeywordMatcher(t *testing.T) {
	m := KeywordMatcher{}
	assert.Equal(t, []string{"distinct", "tables", "avoid"}, m.Keywords("Avoid DISTINCT on large tables"))
	assert.Empty(t, m.Keywords("a an the"))

	offset, ok := m.Match(&types.Rule{Description: "Never use CROSS APPLY"}, "select a from t cross apply u")
	require.True(t, ok)
	assert.Equal(t, 16, offset)

	_, ok = m.Match(&types.Rule{Description: "Avoid DISTINCT"}, "select a from t")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	issues := map[types.Category][]types.Issue{
		types.CategoryBestPractices: {{Severity: types.SeverityHigh}, {Severity: types.SeverityLow}},
		types.CategoryPerformance:   {{Severity: types.SeverityMedium}},
		types.CategoryCost:          {},
	}
	summary := Summarize(issues, DefaultWeights)
	assert.Equal(t, types.CategoryScores{BestPractices: 80, Performance: 90, Modularization: 100, Cost: 100}, summary.CategoryScores)
	// 0.25*80 + 0.30*90 + 0.20*100 + 0.25*100 = 92
	assert.Equal(t, 92, summary.OverallScore)
}
