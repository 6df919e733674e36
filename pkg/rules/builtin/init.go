// Package builtin registers the predicates of the built-in rules with the
// advisor registry. Import it for side effects:
//
//	import _ "github.com/nsxbet/warehouse-sql-analyzer/pkg/rules/builtin"
package builtin

import (
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func init() {
	registerBuiltinRules()
}

func registerBuiltinRules() {
	// Best practices
	registerRule(rules.AvoidSelectStar, SelectStarAdvisor{})
	registerRule(rules.MissingFrom, MissingFromAdvisor{})
	registerRule(rules.FilterAfterGroupBy, FilterAfterGroupByAdvisor{})
	registerRule(rules.SuspiciousLiteral, SuspiciousLiteralAdvisor{})
	registerRule(rules.LegacySQLSyntax, LegacySQLAdvisor{})

	// Performance
	registerRule(rules.JoinWithoutCondition, JoinWithoutConditionAdvisor{})
	registerRule(rules.FullScanWithoutWhere, FullScanAdvisor{})
	registerRule(rules.OrderByWithoutLimit, OrderByWithoutLimitAdvisor{})
	registerRule(rules.CartesianCrossJoin, CartesianCrossJoinAdvisor{})

	// Modularization
	registerRule(rules.LongQueryWithoutCTE, LongQueryAdvisor{})
	registerRule(rules.ExcessiveNesting, NestingAdvisor{})

	// Cost
	registerRule(rules.MissingPartitionFilter, PartitionFilterAdvisor{})
	registerRule(rules.NoSampling, SamplingAdvisor{})
	registerRule(rules.ResultCacheBusting, CacheBustingAdvisor{})
}

// registerRule registers the advisor on every platform whose catalog carries the rule.
func registerRule(id advisor.Type, a advisor.Advisor) {
	def, ok := rules.Lookup(id)
	if !ok {
		panic("builtin: no definition for rule " + string(id))
	}
	for _, p := range types.Platforms {
		if def.AppliesTo(p) {
			advisor.Register(p, id, a)
		}
	}
}
