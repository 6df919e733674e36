package cost

import "github.com/nsxbet/warehouse-sql-analyzer/pkg/types"

// Recommendation texts, in the order they are emitted.
const (
	RecommendAvoidSelectStar = "Avoid SELECT *; list only the columns you need to reduce the data scanned"
	RecommendAddWhere        = "Add a WHERE filter to limit the rows scanned"
	RecommendLimit           = "Add LIMIT while exploring data"
	RecommendSimplify        = "Split the query into CTEs or intermediate tables to reduce its complexity"
)

var partitionAdvice = map[types.Platform]string{
	types.PlatformBigQuery:   "Partition or cluster the table and filter on the partition column",
	types.PlatformSnowflake:  "Define a clustering key on the columns you filter by",
	types.PlatformDatabricks: "Partition the Delta table or ZORDER BY the columns you filter by",
}

var cacheAdvice = map[types.Platform]string{
	types.PlatformBigQuery:   "Keep the query deterministic so BigQuery can serve cached results",
	types.PlatformSnowflake:  "Reuse results with RESULT_SCAN or a materialized view",
	types.PlatformDatabricks: "Cache hot tables with CACHE TABLE or the disk cache",
}

func recommendations(p profile, platform types.Platform, c types.Complexity) []string {
	recs := []string{}
	if p.selectStar {
		recs = append(recs, RecommendAvoidSelectStar)
	}
	if !p.where {
		recs = append(recs, RecommendAddWhere)
	}
	if advice, ok := partitionAdvice[platform]; ok && !p.partition {
		recs = append(recs, advice)
	}
	if !p.limit {
		recs = append(recs, RecommendLimit)
	}
	if advice, ok := cacheAdvice[platform]; ok && !p.cache {
		recs = append(recs, advice)
	}
	if c == types.ComplexityHigh {
		recs = append(recs, RecommendSimplify)
	}
	return recs
}
