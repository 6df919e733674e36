// Package analyzer scores a query against a rule catalog.
//
// Rules with a registered predicate run it through the advisor registry.
// Built-in rules with no predicate on the platform are skipped. Custom rules
// and ids the built-in table does not know go through a HeuristicMatcher.
// Issues are grouped by category and each category is scored as 100 minus the
// severity weights of its issues.
package analyzer

import (
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	_ "github.com/nsxbet/warehouse-sql-analyzer/pkg/rules/builtin"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const (
	customImpact  = "Depends on data volume; review the custom rule description"
	customSavings = "Depends on data volume; review the custom rule description"
)

// Analyzer evaluates rule catalogs. The zero value is not usable; call New.
type Analyzer struct {
	weights Weights
	matcher HeuristicMatcher
	logger  logger.Interface
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWeights overrides the category weights of the overall score.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithMatcher replaces the matcher used for rules without a predicate.
func WithMatcher(m HeuristicMatcher) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.matcher = m
		}
	}
}

// WithLogger sets the logger used for rule failures.
func WithLogger(l logger.Interface) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer with the default weights and KeywordMatcher.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		weights: DefaultWeights,
		matcher: KeywordMatcher{},
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the default Analyzer.
func Analyze(sql string, platform types.Platform, catalog *types.RuleCatalog) *types.AnalysisResult {
	return New().Analyze(sql, platform, catalog)
}

// Analyze evaluates the enabled rules of catalog against sql. A nil catalog
// means the platform's built-in catalog. Empty input or an unknown platform
// yields an invalid result with zero scores.
func (a *Analyzer) Analyze(sql string, platform types.Platform, catalog *types.RuleCatalog) *types.AnalysisResult {
	result := types.NewAnalysisResult(platform)
	if strings.TrimSpace(sql) == "" {
		return result
	}
	if !platform.Valid() {
		a.logger.Debug("analyze: unknown platform", "platform", platform)
		return result
	}
	if catalog == nil {
		catalog = rules.DefaultCatalog(platform)
	}

	checkCtx := advisor.NewContext(platform, sql)
	heuristicText := strings.ToLower(sqltext.StripComments(sql))

	for _, category := range types.Categories {
		for _, rule := range catalog.EnabledRules(category) {
			checkCtx.Rule = rule
			checkCtx.Category = category
			for _, issue := range a.evaluate(checkCtx, heuristicText) {
				result.Issues[category] = append(result.Issues[category], *issue)
			}
		}
	}

	result.Valid = true
	result.Summary = Summarize(result.Issues, a.weights)
	return result
}

func (a *Analyzer) evaluate(checkCtx advisor.Context, heuristicText string) []*types.Issue {
	rule := checkCtx.Rule
	id := advisor.Type(rule.ID)
	if advisor.Has(checkCtx.Platform, id) {
		issues, err := advisor.Check(checkCtx.Platform, id, checkCtx)
		if err != nil {
			a.logger.Debug("rule check failed", "rule", rule.ID, logger.Error(err))
			return nil
		}
		return issues
	}
	if _, builtin := rules.Lookup(id); builtin && !rule.Custom {
		a.logger.Debug("rule has no check on this platform", "rule", rule.ID, "platform", checkCtx.Platform)
		return nil
	}

	offset, ok := a.matcher.Match(rule, heuristicText)
	if !ok {
		return nil
	}
	name := rule.Name
	if name == "" {
		name = rule.ID
	}
	issue := checkCtx.Issue(offset, "Custom rule matched: "+name, rule.Description)
	switch checkCtx.Category {
	case types.CategoryPerformance:
		issue.EstimatedImpact = customImpact
	case types.CategoryCost:
		issue.EstimatedSavings = customSavings
	}
	return []*types.Issue{issue}
}
