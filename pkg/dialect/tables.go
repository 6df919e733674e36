package dialect

import "github.com/nsxbet/warehouse-sql-analyzer/pkg/types"

var partitionSuffixes = []string{"_date", "_dt", "_day", "_at", "_ts", "_time", "_month", "_hour"}

var standardFunctions = set(
	"ABS", "AVG", "CAST", "CEIL", "COALESCE", "CONCAT", "COUNT", "CURRENT_DATE",
	"CURRENT_TIMESTAMP", "DENSE_RANK", "EXTRACT", "FIRST_VALUE", "FLOOR", "GREATEST",
	"LAG", "LAST_VALUE", "LEAD", "LEAST", "LENGTH", "LOWER", "LTRIM", "MAX", "MIN",
	"NULLIF", "RANK", "REPLACE", "ROUND", "ROW_NUMBER", "RTRIM", "SUBSTR", "SUM",
	"TRIM", "UPPER", "NTILE", "PERCENT_RANK", "CUME_DIST", "STDDEV", "VARIANCE",
)

var dialects = map[types.Platform]*Dialect{
	types.PlatformBigQuery: {
		Platform:        types.PlatformBigQuery,
		IdentifierQuote: '`',
		functions: union(standardFunctions, set(
			"ARRAY_AGG", "ARRAY_LENGTH", "COUNTIF", "DATE_ADD", "DATE_DIFF", "DATE_SUB",
			"DATE_TRUNC", "DATETIME_ADD", "FARM_FINGERPRINT", "FORMAT_DATE", "GENERATE_ARRAY",
			"GENERATE_DATE_ARRAY", "IFNULL", "JSON_EXTRACT", "JSON_EXTRACT_SCALAR", "JSON_VALUE",
			"PARSE_DATE", "PARSE_TIMESTAMP", "REGEXP_CONTAINS", "SAFE_CAST", "SAFE_DIVIDE",
			"STRUCT", "TIMESTAMP_ADD", "TIMESTAMP_DIFF", "TIMESTAMP_SUB", "TIMESTAMP_TRUNC",
			"UNNEST", "APPROX_COUNT_DISTINCT", "GENERATE_UUID", "RAND",
		)),
		nonStandard: map[string]string{
			"SAFE_DIVIDE":         "Replace SAFE_DIVIDE with a CASE guard on the denominator or the target's safe division function",
			"SAFE_CAST":           "Replace SAFE_CAST with TRY_CAST",
			"FORMAT_DATE":         "Use the target's date formatting function (TO_CHAR or DATE_FORMAT)",
			"PARSE_DATE":          "Use TO_DATE with the target's format syntax",
			"GENERATE_ARRAY":      "Use the target's sequence generator (ARRAY_GENERATE_RANGE or SEQUENCE)",
			"GENERATE_DATE_ARRAY": "Use a date spine table or the target's sequence generator",
			"REGEXP_CONTAINS":     "Use REGEXP_LIKE or RLIKE",
			"FARM_FINGERPRINT":    "Use HASH or XXHASH64; values will differ",
			"COUNTIF":             "Use COUNT_IF or SUM(CASE WHEN ... THEN 1 END)",
			"JSON_EXTRACT_SCALAR": "Use the target's semi-structured path syntax",
		},
		typeNames: []string{
			"INT64", "FLOAT64", "NUMERIC", "BIGNUMERIC", "BOOL", "STRING", "BYTES", "DATE",
			"DATETIME", "TIME", "TIMESTAMP", "INTERVAL", "GEOGRAPHY", "JSON", "ARRAY", "STRUCT",
		},
		typeConventions: []Rewrite{
			{From: "INTEGER", To: "INT64"},
			{From: "INT", To: "INT64"},
			{From: "FLOAT", To: "FLOAT64"},
			{From: "VARCHAR", To: "STRING"},
		},
		samplingKeywords:    []string{"TABLESAMPLE SYSTEM", "TABLESAMPLE"},
		partitionKeywords:   []string{"PARTITION BY", "CLUSTER BY", "_PARTITIONTIME", "_PARTITIONDATE", "_TABLE_SUFFIX"},
		partitionColumns:    []string{"_partitiontime", "_partitiondate", "_table_suffix", "date", "day", "dt", "timestamp"},
		cacheKeywords:       []string{"MATERIALIZED VIEW", "CACHE", "BI ENGINE"},
		nonDeterministic:    []string{"CURRENT_TIMESTAMP", "CURRENT_DATETIME", "RAND", "GENERATE_UUID", "SESSION_USER"},
		currentTimeFunction: "CURRENT_TIMESTAMP()",
	},
	types.PlatformSnowflake: {
		Platform:        types.PlatformSnowflake,
		IdentifierQuote: '"',
		functions: union(standardFunctions, set(
			"ARRAY_AGG", "ARRAY_CONSTRUCT", "ARRAY_SIZE", "DATEADD", "DATEDIFF", "DATE_TRUNC",
			"DIV0", "FLATTEN", "GETDATE", "IFF", "IFNULL", "LISTAGG", "NULLIFZERO", "NVL", "NVL2",
			"OBJECT_CONSTRUCT", "PARSE_JSON", "RANDOM", "SYSDATE", "TO_CHAR", "TO_DATE",
			"TO_TIMESTAMP", "TRY_CAST", "TRY_TO_NUMBER", "UUID_STRING", "ZEROIFNULL", "COUNT_IF",
			"REGEXP_LIKE", "LEN", "HASH",
		)),
		nonStandard: map[string]string{
			"IFF":              "Replace IFF with a CASE expression",
			"ZEROIFNULL":       "Replace ZEROIFNULL(x) with COALESCE(x, 0)",
			"NULLIFZERO":       "Replace NULLIFZERO(x) with NULLIF(x, 0)",
			"DIV0":             "Replace DIV0 with a CASE guard on the denominator",
			"TRY_TO_NUMBER":    "Replace TRY_TO_NUMBER with TRY_CAST or SAFE_CAST",
			"FLATTEN":          "Replace LATERAL FLATTEN with UNNEST or EXPLODE",
			"OBJECT_CONSTRUCT": "Build the object with STRUCT or NAMED_STRUCT",
			"ARRAY_CONSTRUCT":  "Use an array literal or ARRAY()",
			"UUID_STRING":      "Use GENERATE_UUID or UUID",
			"LISTAGG":          "Use STRING_AGG or CONCAT_WS(COLLECT_LIST(...))",
		},
		typeNames: []string{
			"NUMBER", "DECIMAL", "INTEGER", "INT", "BIGINT", "FLOAT", "DOUBLE", "VARCHAR", "TEXT",
			"STRING", "BINARY", "BOOLEAN", "DATE", "TIME", "TIMESTAMP_NTZ", "TIMESTAMP_LTZ",
			"TIMESTAMP_TZ", "VARIANT", "OBJECT", "ARRAY", "GEOGRAPHY", "GEOMETRY",
		},
		typeConventions: []Rewrite{
			{From: "INT64", To: "INTEGER"},
			{From: "FLOAT64", To: "FLOAT"},
		},
		samplingKeywords:    []string{"SAMPLE", "TABLESAMPLE"},
		partitionKeywords:   []string{"CLUSTER BY", "CLUSTERING KEY", "SEARCH OPTIMIZATION"},
		partitionColumns:    []string{"date", "day", "dt", "ds", "load_date"},
		cacheKeywords:       []string{"RESULT_SCAN", "MATERIALIZED VIEW", "USE_CACHED_RESULT"},
		nonDeterministic:    []string{"CURRENT_TIMESTAMP", "CURRENT_TIME", "GETDATE", "SYSDATE", "RANDOM", "UUID_STRING", "SEQ4", "SEQ8"},
		currentTimeFunction: "CURRENT_TIMESTAMP()",
	},
	types.PlatformDatabricks: {
		Platform:        types.PlatformDatabricks,
		IdentifierQuote: '`',
		functions: union(standardFunctions, set(
			"COLLECT_LIST", "COLLECT_SET", "DATE_ADD", "DATE_FORMAT", "DATE_SUB", "DATEDIFF",
			"DATE_TRUNC", "EXPLODE", "EXPLODE_OUTER", "FROM_JSON", "GET_JSON_OBJECT", "IF",
			"IFNULL", "NAMED_STRUCT", "NVL", "NVL2", "POSEXPLODE", "RAND", "SEQUENCE", "SIZE",
			"TO_DATE", "TO_TIMESTAMP", "TRY_CAST", "TRY_DIVIDE", "UUID", "XXHASH64", "RLIKE",
			"CURRENT_TIMESTAMP", "UNIX_TIMESTAMP", "FROM_UNIXTIME",
		)),
		nonStandard: map[string]string{
			"EXPLODE":         "Replace EXPLODE with UNNEST or LATERAL FLATTEN",
			"POSEXPLODE":      "Replace POSEXPLODE with UNNEST ... WITH OFFSET or FLATTEN's INDEX column",
			"COLLECT_LIST":    "Replace COLLECT_LIST with ARRAY_AGG",
			"COLLECT_SET":     "Replace COLLECT_SET with ARRAY_AGG(DISTINCT ...)",
			"GET_JSON_OBJECT": "Use the target's JSON path extraction",
			"NAMED_STRUCT":    "Use STRUCT or OBJECT_CONSTRUCT",
			"DATE_FORMAT":     "Use FORMAT_DATE or TO_CHAR with the target's format syntax",
			"FROM_UNIXTIME":   "Use TIMESTAMP_SECONDS or TO_TIMESTAMP",
			"SIZE":            "Use ARRAY_LENGTH or ARRAY_SIZE",
		},
		typeNames: []string{
			"TINYINT", "SMALLINT", "INT", "INTEGER", "BIGINT", "FLOAT", "DOUBLE", "DECIMAL",
			"STRING", "BINARY", "BOOLEAN", "DATE", "TIMESTAMP", "TIMESTAMP_NTZ", "INTERVAL",
			"ARRAY", "MAP", "STRUCT", "VARIANT",
		},
		typeConventions: []Rewrite{
			{From: "INT64", To: "BIGINT"},
			{From: "FLOAT64", To: "DOUBLE"},
		},
		samplingKeywords:    []string{"TABLESAMPLE"},
		partitionKeywords:   []string{"PARTITIONED BY", "PARTITION BY", "CLUSTER BY", "ZORDER BY", "OPTIMIZE"},
		partitionColumns:    []string{"date", "day", "dt", "ds", "year", "month", "event_date"},
		cacheKeywords:       []string{"CACHE TABLE", "CACHE SELECT", "PERSIST", "DELTA CACHE"},
		nonDeterministic:    []string{"CURRENT_TIMESTAMP", "NOW", "RAND", "UUID"},
		currentTimeFunction: "current_timestamp()",
	},
}

// neutralFunctions rewrite to names every supported dialect understands.
var neutralFunctions = []Rewrite{
	{From: "NVL", To: "COALESCE"},
	{From: "IFNULL", To: "COALESCE"},
	{From: "LEN", To: "LENGTH"},
	{From: "CEILING", To: "CEIL"},
	{From: "POW", To: "POWER"},
}

// NeutralFunctions returns the function renames that are valid on every platform.
func NeutralFunctions() []Rewrite {
	return append([]Rewrite(nil), neutralFunctions...)
}
