package cost

import (
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const (
	highLength   = 2000
	mediumLength = 500
)

var (
	subqueryOpen = regexp.MustCompile(`(?i)\(\s*(?:SELECT|WITH)\b`)
	windowCall   = regexp.MustCompile(`(?i)\bOVER\s*(?:\(|[a-z_]\w*)`)
	rankingCall  = regexp.MustCompile(`(?i)\b(?:ROW_NUMBER|RANK|DENSE_RANK|NTILE|PERCENT_RANK|CUME_DIST)\s*\(`)
	aggregate    = regexp.MustCompile(`(?i)\b(?:COUNT|COUNT_IF|COUNTIF|SUM|AVG|MIN|MAX|ARRAY_AGG|STRING_AGG|LISTAGG|` +
		`COLLECT_LIST|COLLECT_SET|APPROX_COUNT_DISTINCT|ANY_VALUE|MEDIAN|STDDEV|VARIANCE)\s*\(`)
	selectStar = regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?(?:[\w.]+\.)?\*`)
)

// profile is what the estimator knows about a query.
type profile struct {
	length     int
	tables     int
	joins      int
	columns    int
	conditions int
	subqueries int
	nesting    int
	windows    int
	ranking    bool
	aggregates int
	cases      int
	union      bool

	selectStar bool
	where      bool
	limit      bool
	partition  bool
	cache      bool
}

func newProfile(sql string, d *dialect.Dialect) profile {
	code := sqltext.Code(sql)
	blocks := sqltext.NewBlocks(code)
	p := profile{
		length:     len(strings.TrimSpace(sql)),
		joins:      sqltext.CountKeyword(code, "join"),
		windows:    len(windowCall.FindAllStringIndex(code, -1)),
		ranking:    rankingCall.MatchString(code),
		aggregates: len(aggregate.FindAllStringIndex(code, -1)),
		cases:      sqltext.CountKeyword(code, "case"),
		union:      sqltext.ContainsKeyword(code, "union"),
		selectStar: selectStar.MatchString(code),
		where:      sqltext.ContainsKeyword(code, "where"),
		limit:      sqltext.ContainsAny(code, "limit", "top", "fetch first", "sample", "tablesample"),
	}

	for _, span := range sqltext.KeywordSpans(code, "from") {
		if !blocks.InQuery(span[0]) || strings.EqualFold(blocks.PreviousWord(span[0]), "distinct") {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(code[span[1]:], " \t\r\n"), "(") {
			continue
		}
		p.tables++
	}
	p.tables += p.joins

	for _, span := range sqltext.KeywordSpans(code, "select") {
		if list, _, ok := sqltext.SelectList(sql, span[0]); ok && list != "" {
			p.columns += len(sqltext.SplitTopLevel(list, ','))
		}
	}
	for _, kw := range []string{"where", "on", "having", "and", "or"} {
		p.conditions += sqltext.CountKeyword(code, kw)
	}

	p.subqueries, p.nesting = subqueryNesting(code, blocks)

	if d != nil {
		p.partition = sqltext.ContainsAny(code, d.PartitionKeywords()...)
		p.cache = sqltext.ContainsAny(code, d.CacheKeywords()...)
	}
	return p
}

// subqueryNesting counts parenthesised subqueries and the deepest chain of
// subqueries nested inside each other.
func subqueryNesting(code string, blocks *sqltext.Blocks) (count, deepest int) {
	opens := subqueryOpen.FindAllStringIndex(code, -1)
	for i, m := range opens {
		level := 1
		for _, outer := range opens[:i] {
			if outer[0] < m[0] && blocks.End(outer[0]+1) > m[0] {
				level++
			}
		}
		if level > deepest {
			deepest = level
		}
	}
	return len(opens), deepest
}

func (p profile) complexity() types.Complexity {
	switch {
	case p.nesting >= 2, p.joins >= 3, p.ranking, p.aggregates >= 4, p.length > highLength:
		return types.ComplexityHigh
	case p.subqueries > 0, p.joins >= 2, p.windows > 0, p.aggregates > 0, p.cases >= 2, p.union, p.length > mediumLength:
		return types.ComplexityMedium
	}
	return types.ComplexityLow
}

// size grows with the amount of data and work a query touches.
func (p profile) size() float64 {
	return 1 +
		0.5*float64(p.tables) +
		1.0*float64(p.joins) +
		0.1*float64(p.columns) +
		0.2*float64(p.conditions)
}

// multiplier adjusts the size for patterns that scan more or less data.
func (p profile) multiplier() float64 {
	m := 1.0
	if p.selectStar {
		m *= 1.5
	}
	if !p.where {
		m *= 2.0
	}
	if p.partition {
		m *= 0.6
	}
	if p.cache {
		m *= 0.8
	}
	return m
}

func complexityFactor(c types.Complexity) float64 {
	switch c {
	case types.ComplexityHigh:
		return 4
	case types.ComplexityMedium:
		return 2
	}
	return 1
}
