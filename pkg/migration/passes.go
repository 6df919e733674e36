package migration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const (
	// arg is one function argument allowing one level of nested calls.
	arg = `((?:[^,()]|\([^()]*\))+?)`
	// list is a full argument list allowing one level of nested calls.
	list = `((?:[^()]|\([^()]*\))*)`
	unit = `(YEAR|QUARTER|MONTH|WEEK|DAY|HOUR|MINUTE|SECOND|MILLISECOND|MICROSECOND)S?`
	str  = `('(?:[^']|'')*')`
)

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// Pass names.
const (
	DateFunctions    = "dateFunctions"
	SemiStructured   = "semiStructured"
	TableQuoting     = "tableQuoting"
	PartitionClauses = "partitionClauses"
	IntervalSyntax   = "intervalSyntax"
	Unnest           = "unnest"
	Common           = "common"
)

type pair struct {
	source, target types.Platform
}

var (
	bq  = types.PlatformBigQuery
	sf  = types.PlatformSnowflake
	dbx = types.PlatformDatabricks
)

// passOrder is the fixed pass list of each ordered pair.
var passOrder = map[pair][]string{
	{bq, sf}:  {DateFunctions, SemiStructured, TableQuoting, PartitionClauses, IntervalSyntax, Unnest},
	{bq, dbx}: {DateFunctions, SemiStructured, TableQuoting, PartitionClauses, Unnest},
	{sf, bq}:  {DateFunctions, SemiStructured, TableQuoting, PartitionClauses, IntervalSyntax, Unnest},
	{sf, dbx}: {DateFunctions, SemiStructured, TableQuoting, IntervalSyntax, Unnest},
	{dbx, bq}: {DateFunctions, SemiStructured, PartitionClauses, IntervalSyntax, Unnest},
	{dbx, sf}: {DateFunctions, SemiStructured, TableQuoting, PartitionClauses, IntervalSyntax, Unnest},
}

// PassNames returns the directional pass names for a pair, in order. Unknown
// and identical pairs have none.
func PassNames(source, target types.Platform) []string {
	return append([]string{}, passOrder[pair{source, target}]...)
}

// Passes returns the directional passes for a pair, in order.
func Passes(source, target types.Platform) Pipeline {
	var out Pipeline
	for _, name := range passOrder[pair{source, target}] {
		var pass Pass
		switch name {
		case DateFunctions:
			pass = linePass{name: name, rewrites: dateRewrites[pair{source, target}]}
		case SemiStructured:
			pass = linePass{name: name, rewrites: semiRewrites[pair{source, target}], findings: semiFindings[pair{source, target}]}
		case TableQuoting:
			pass = quotingPass(source, target)
		case PartitionClauses:
			pass = partitionPass{source: source, target: target}
		case IntervalSyntax:
			pass = intervalPass(source, target)
		case Unnest:
			pass = linePass{name: name, rewrites: unnestRewrites[pair{source, target}], findings: unnestFindings[pair{source, target}]}
		}
		out = append(out, pass)
	}
	return out
}

func negate(n string) string {
	if strings.HasPrefix(n, "-") {
		return n[1:]
	}
	return "-" + n
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func trim(s string) string { return strings.TrimSpace(s) }

func timeUnit(u string) bool {
	switch upper(u) {
	case "HOUR", "MINUTE", "SECOND", "MILLISECOND", "MICROSECOND":
		return true
	}
	return false
}

// jsonPath turns '$.a.b' into a.b.
func jsonPath(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "$"), ".")
}

const formatReview = "Format elements differ between platforms; review the format string"

// Rewrites shared by every pair that converts to BigQuery's DATE_ADD family.
var toBigQueryDateAdd = rewrite{
	pattern: re(`\b(?:DATEADD|TIMESTAMPADD)\s*\(\s*'?` + unit + `'?\s*,\s*(-?\d+)\s*,\s*` + arg + `\s*\)`),
	build: func(g []string) string {
		fn := "DATE_ADD"
		if timeUnit(g[1]) {
			fn = "TIMESTAMP_ADD"
		}
		return fmt.Sprintf("%s(%s, INTERVAL %s %s)", fn, trim(g[3]), g[2], upper(g[1]))
	},
	message:    "Converted DATEADD to BigQuery interval arithmetic",
	suggestion: "Use DATETIME_ADD or TIMESTAMP_ADD when the argument is not a DATE",
}

var toBigQueryTrunc = rewrite{
	pattern:    re(`\bDATE_TRUNC\s*\(\s*'` + unit + `'\s*,\s*` + arg + `\s*\)`),
	build:      func(g []string) string { return fmt.Sprintf("DATE_TRUNC(%s, %s)", trim(g[2]), upper(g[1])) },
	message:    "Swapped DATE_TRUNC arguments for BigQuery",
	suggestion: "Use TIMESTAMP_TRUNC when the argument is a TIMESTAMP",
}

var fromBigQueryTrunc = rewrite{
	pattern:    re(`\b(?:DATE|TIMESTAMP|DATETIME)_TRUNC\s*\(\s*` + arg + `\s*,\s*` + unit + `\s*\)`),
	build:      func(g []string) string { return fmt.Sprintf("DATE_TRUNC('%s', %s)", upper(g[2]), trim(g[1])) },
	message:    "Converted BigQuery DATE_TRUNC argument order",
	suggestion: "The unit is a string literal and comes first on the target",
}

var dateRewrites = map[pair][]rewrite{
	{bq, sf}: {
		{
			pattern: re(`\b(?:DATE|TIMESTAMP|DATETIME)_(ADD|SUB)\s*\(\s*` + arg + `\s*,\s*INTERVAL\s+(-?\d+)\s+` + unit + `\s*\)`),
			build: func(g []string) string {
				n := g[3]
				if upper(g[1]) == "SUB" {
					n = negate(n)
				}
				return fmt.Sprintf("DATEADD(%s, %s, %s)", strings.ToLower(g[4]), n, trim(g[2]))
			},
			message:    "Converted interval arithmetic to DATEADD",
			suggestion: "Check the sign of subtracted intervals",
		},
		{
			pattern:    re(`\b(?:DATE|TIMESTAMP|DATETIME)_DIFF\s*\(\s*` + arg + `\s*,\s*` + arg + `\s*,\s*` + unit + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATEDIFF(%s, %s, %s)", strings.ToLower(g[3]), trim(g[2]), trim(g[1])) },
			message:    "Converted DATE_DIFF to DATEDIFF",
			suggestion: "DATEDIFF takes the unit first and the start date before the end date",
		},
		fromBigQueryTrunc,
		{
			pattern:    re(`\bFORMAT_(?:DATE|TIMESTAMP|DATETIME)\s*\(\s*` + str + `\s*,\s*` + arg + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("TO_CHAR(%s, %s)", trim(g[2]), g[1]) },
			severity:   types.SeverityMedium,
			message:    "Converted FORMAT_DATE to TO_CHAR",
			suggestion: formatReview,
		},
		{
			pattern: re(`\bPARSE_(DATE|TIMESTAMP|DATETIME)\s*\(\s*` + str + `\s*,\s*` + arg + `\s*\)`),
			build: func(g []string) string {
				fn := "TO_TIMESTAMP"
				if upper(g[1]) == "DATE" {
					fn = "TO_DATE"
				}
				return fmt.Sprintf("%s(%s, %s)", fn, trim(g[3]), g[2])
			},
			severity:   types.SeverityMedium,
			message:    "Converted PARSE_DATE to TO_DATE",
			suggestion: formatReview,
		},
		{
			pattern:    re(`\bCURRENT_DATETIME\s*\(\s*\)`),
			template:   "CURRENT_TIMESTAMP()",
			message:    "Converted CURRENT_DATETIME to CURRENT_TIMESTAMP",
			suggestion: "Snowflake returns a TIMESTAMP_LTZ",
		},
	},
	{bq, dbx}: {
		{
			pattern:    re(`\bDATE_(ADD|SUB)\s*\(\s*` + arg + `\s*,\s*INTERVAL\s+(-?\d+)\s+DAYS?\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATE_%s(%s, %s)", upper(g[1]), trim(g[2]), g[3]) },
			message:    "Converted day interval arithmetic to DATE_ADD/DATE_SUB",
			suggestion: "Databricks DATE_ADD takes a number of days",
		},
		{
			pattern: re(`\b(?:DATE|TIMESTAMP|DATETIME)_(ADD|SUB)\s*\(\s*` + arg + `\s*,\s*INTERVAL\s+(-?\d+)\s+` + unit + `\s*\)`),
			build: func(g []string) string {
				n := g[3]
				if upper(g[1]) == "SUB" {
					n = negate(n)
				}
				return fmt.Sprintf("TIMESTAMPADD(%s, %s, %s)", upper(g[4]), n, trim(g[2]))
			},
			message:    "Converted interval arithmetic to TIMESTAMPADD",
			suggestion: "Check the sign of subtracted intervals",
		},
		{
			pattern:    re(`\bDATE_DIFF\s*\(\s*` + arg + `\s*,\s*` + arg + `\s*,\s*DAY\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATEDIFF(%s, %s)", trim(g[1]), trim(g[2])) },
			message:    "Converted DATE_DIFF to DATEDIFF",
			suggestion: "Databricks DATEDIFF(end, start) counts days",
		},
		{
			pattern:    re(`\b(?:DATE|TIMESTAMP|DATETIME)_DIFF\s*\(\s*` + arg + `\s*,\s*` + arg + `\s*,\s*` + unit + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("TIMESTAMPDIFF(%s, %s, %s)", upper(g[3]), trim(g[2]), trim(g[1])) },
			message:    "Converted DATE_DIFF to TIMESTAMPDIFF",
			suggestion: "TIMESTAMPDIFF takes the unit first and the start before the end",
		},
		fromBigQueryTrunc,
		{
			pattern:    re(`\bFORMAT_(?:DATE|TIMESTAMP|DATETIME)\s*\(\s*` + str + `\s*,\s*` + arg + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATE_FORMAT(%s, %s)", trim(g[2]), g[1]) },
			severity:   types.SeverityMedium,
			message:    "Converted FORMAT_DATE to DATE_FORMAT",
			suggestion: formatReview + "; Databricks uses Java datetime patterns",
		},
		{
			pattern: re(`\bPARSE_(DATE|TIMESTAMP|DATETIME)\s*\(\s*` + str + `\s*,\s*` + arg + `\s*\)`),
			build: func(g []string) string {
				fn := "TO_TIMESTAMP"
				if upper(g[1]) == "DATE" {
					fn = "TO_DATE"
				}
				return fmt.Sprintf("%s(%s, %s)", fn, trim(g[3]), g[2])
			},
			severity:   types.SeverityMedium,
			message:    "Converted PARSE_DATE to TO_DATE",
			suggestion: formatReview + "; Databricks uses Java datetime patterns",
		},
		{
			pattern:    re(`\bCURRENT_DATETIME\s*\(\s*\)`),
			template:   "current_timestamp()",
			message:    "Converted CURRENT_DATETIME to current_timestamp",
			suggestion: "Databricks timestamps carry the session time zone",
		},
	},
	{sf, bq}: {
		toBigQueryDateAdd,
		{
			pattern: re(`\b(?:DATEDIFF|TIMESTAMPDIFF)\s*\(\s*'?` + unit + `'?\s*,\s*` + arg + `\s*,\s*` + arg + `\s*\)`),
			build: func(g []string) string {
				fn := "DATE_DIFF"
				if timeUnit(g[1]) {
					fn = "TIMESTAMP_DIFF"
				}
				return fmt.Sprintf("%s(%s, %s, %s)", fn, trim(g[3]), trim(g[2]), upper(g[1]))
			},
			message:    "Converted DATEDIFF to DATE_DIFF",
			suggestion: "DATE_DIFF takes the end date first",
		},
		toBigQueryTrunc,
		{
			pattern:    re(`\bTO_CHAR\s*\(\s*` + arg + `\s*,\s*` + str + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("FORMAT_DATE(%s, %s)", g[2], trim(g[1])) },
			severity:   types.SeverityMedium,
			message:    "Converted TO_CHAR to FORMAT_DATE",
			suggestion: formatReview + "; BigQuery uses strftime elements such as %Y-%m-%d",
		},
		{
			pattern:    re(`\bTO_DATE\s*\(\s*` + arg + `\s*,\s*` + str + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("PARSE_DATE(%s, %s)", g[2], trim(g[1])) },
			severity:   types.SeverityMedium,
			message:    "Converted TO_DATE to PARSE_DATE",
			suggestion: formatReview + "; BigQuery uses strftime elements such as %Y-%m-%d",
		},
		{
			pattern:    re(`\b(?:SYSDATE|GETDATE)\s*\(\s*\)`),
			template:   "CURRENT_TIMESTAMP()",
			message:    "Converted SYSDATE/GETDATE to CURRENT_TIMESTAMP",
			suggestion: "SYSDATE is UTC; CURRENT_TIMESTAMP is too in BigQuery",
		},
	},
	{sf, dbx}: {
		{
			pattern:    re(`\b(?:SYSDATE|GETDATE)\s*\(\s*\)`),
			template:   "current_timestamp()",
			message:    "Converted SYSDATE/GETDATE to current_timestamp",
			suggestion: "Databricks timestamps carry the session time zone",
		},
		{
			pattern:    re(`\bTO_CHAR\s*\(\s*` + arg + `\s*,\s*` + str + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATE_FORMAT(%s, %s)", trim(g[1]), g[2]) },
			severity:   types.SeverityMedium,
			message:    "Converted TO_CHAR to DATE_FORMAT",
			suggestion: formatReview + "; Databricks uses Java datetime patterns",
		},
		{
			pattern:    re(`\bTO_TIMESTAMP_(?:NTZ|LTZ|TZ)\s*\(`),
			template:   "TO_TIMESTAMP(",
			message:    "Converted TO_TIMESTAMP_* to TO_TIMESTAMP",
			suggestion: "Databricks has a single session-zoned TIMESTAMP type",
		},
	},
	{dbx, bq}: {
		{
			pattern:    re(`\bDATE_(ADD|SUB)\s*\(\s*` + arg + `\s*,\s*(-?\d+)\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATE_%s(%s, INTERVAL %s DAY)", upper(g[1]), trim(g[2]), g[3]) },
			message:    "Converted DATE_ADD day count to an INTERVAL",
			suggestion: "BigQuery DATE_ADD takes an INTERVAL",
		},
		toBigQueryDateAdd,
		{
			pattern:    re(`\bDATEDIFF\s*\(\s*` + arg + `\s*,\s*` + arg + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATE_DIFF(%s, %s, DAY)", trim(g[1]), trim(g[2])) },
			message:    "Converted DATEDIFF to DATE_DIFF",
			suggestion: "DATE_DIFF needs an explicit unit",
		},
		toBigQueryTrunc,
		{
			pattern:    re(`\bDATE_FORMAT\s*\(\s*` + arg + `\s*,\s*` + str + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("FORMAT_DATE(%s, %s)", g[2], trim(g[1])) },
			severity:   types.SeverityMedium,
			message:    "Converted DATE_FORMAT to FORMAT_DATE",
			suggestion: formatReview + "; BigQuery uses strftime elements such as %Y-%m-%d",
		},
		{
			pattern:    re(`\bNOW\s*\(\s*\)`),
			template:   "CURRENT_TIMESTAMP()",
			message:    "Converted NOW to CURRENT_TIMESTAMP",
			suggestion: "BigQuery timestamps are UTC",
		},
	},
	{dbx, sf}: {
		{
			pattern: re(`\bDATE_(ADD|SUB)\s*\(\s*` + arg + `\s*,\s*(-?\d+)\s*\)`),
			build: func(g []string) string {
				n := g[3]
				if upper(g[1]) == "SUB" {
					n = negate(n)
				}
				return fmt.Sprintf("DATEADD(day, %s, %s)", n, trim(g[2]))
			},
			message:    "Converted DATE_ADD/DATE_SUB to DATEADD",
			suggestion: "Check the sign of subtracted days",
		},
		{
			pattern:    re(`\bDATEDIFF\s*\(\s*` + arg + `\s*,\s*` + arg + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("DATEDIFF(day, %s, %s)", trim(g[2]), trim(g[1])) },
			message:    "Converted DATEDIFF(end, start) to DATEDIFF(day, start, end)",
			suggestion: "Snowflake DATEDIFF takes the unit first and the start date before the end date",
		},
		{
			pattern:    re(`\bDATE_FORMAT\s*\(\s*` + arg + `\s*,\s*` + str + `\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("TO_CHAR(%s, %s)", trim(g[1]), g[2]) },
			severity:   types.SeverityMedium,
			message:    "Converted DATE_FORMAT to TO_CHAR",
			suggestion: formatReview + "; Snowflake uses elements such as YYYY-MM-DD",
		},
		{
			pattern:    re(`\bNOW\s*\(\s*\)`),
			template:   "CURRENT_TIMESTAMP()",
			message:    "Converted NOW to CURRENT_TIMESTAMP",
			suggestion: "Snowflake returns a TIMESTAMP_LTZ",
		},
	},
}

// Semi-structured rewrites shared across pairs.
var (
	bigQueryOffset = rewrite{
		pattern:    re(`\[\s*(?:SAFE_)?OFFSET\s*\(\s*(\d+)\s*\)\s*\]`),
		template:   "[$1]",
		message:    "Converted OFFSET array subscript",
		suggestion: "Out of range subscripts return NULL on the target instead of failing",
	}
	bigQueryOrdinal = rewrite{
		pattern: re(`\[\s*(?:SAFE_)?ORDINAL\s*\(\s*(\d+)\s*\)\s*\]`),
		build: func(g []string) string {
			n, _ := strconv.Atoi(g[1])
			return fmt.Sprintf("[%d]", n-1)
		},
		message:    "Converted ORDINAL array subscript to a zero-based index",
		suggestion: "Out of range subscripts return NULL on the target instead of failing",
	}
	colonPathToBigQuery = rewrite{
		pattern: re(`\b([A-Za-z_][\w.]*):([A-Za-z_][\w.]*)(?:::\s*(\w+))?`),
		build: func(g []string) string {
			if g[3] == "" {
				return fmt.Sprintf("JSON_QUERY(%s, '$.%s')", g[1], g[2])
			}
			return fmt.Sprintf("JSON_VALUE(%s, '$.%s')", g[1], g[2])
		},
		message:    "Converted path access to JSON functions",
		suggestion: "Store semi-structured columns as JSON in BigQuery",
	}
	castToBigQuery = rewrite{
		pattern:    re(`\b([\w.]+)::\s*(\w+(?:\s*\(\s*\d+(?:\s*,\s*\d+)?\s*\))?)`),
		template:   "CAST($1 AS $2)",
		message:    "Converted :: cast to CAST",
		suggestion: "BigQuery has no :: cast operator",
	}
	arrayLiteralToBigQuery = func(fn string) rewrite {
		return rewrite{
			pattern:    re(`\b` + fn + `\s*\(` + list + `\)`),
			template:   "[$1]",
			message:    "Converted " + fn + " to an array literal",
			suggestion: "BigQuery arrays cannot contain NULL elements",
		}
	}
	rename = func(from, to, suggestion string) rewrite {
		return rewrite{
			pattern:    re(`\b` + from + `\s*\(`),
			template:   to + "(",
			message:    fmt.Sprintf("Renamed %s to %s", from, to),
			suggestion: suggestion,
		}
	}
	bigQueryArrayLiteral = func(fn string) rewrite {
		return rewrite{
			pattern:    re(`(^|[\s(,=])\[([^\[\]]*)\]`),
			template:   "${1}" + fn + "($2)",
			message:    "Converted array literal to " + fn,
			suggestion: "Array element types are inferred differently on the target",
		}
	}
)

var semiRewrites = map[pair][]rewrite{
	{bq, sf}: {
		{
			pattern:    re(`\bJSON_(?:EXTRACT_SCALAR|VALUE)\s*\(\s*` + arg + `\s*,\s*'([^']*)'\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("%s:%s::VARCHAR", trim(g[1]), jsonPath(g[2])) },
			message:    "Converted JSON_EXTRACT_SCALAR to path access",
			suggestion: "The column must be VARIANT in Snowflake",
		},
		{
			pattern:    re(`\bJSON_(?:EXTRACT|QUERY)\s*\(\s*` + arg + `\s*,\s*'([^']*)'\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("%s:%s", trim(g[1]), jsonPath(g[2])) },
			message:    "Converted JSON_EXTRACT to path access",
			suggestion: "The column must be VARIANT in Snowflake",
		},
		bigQueryOffset,
		bigQueryOrdinal,
		bigQueryArrayLiteral("ARRAY_CONSTRUCT"),
		rename("ARRAY_LENGTH", "ARRAY_SIZE", "ARRAY_SIZE returns NULL for NULL input"),
	},
	{bq, dbx}: {
		{
			pattern:    re(`\bJSON_(?:EXTRACT_SCALAR|VALUE|EXTRACT|QUERY)\s*\(\s*` + arg + `\s*,\s*('[^']*')\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("get_json_object(%s, %s)", trim(g[1]), g[2]) },
			message:    "Converted JSON_EXTRACT to get_json_object",
			suggestion: "get_json_object always returns STRING",
		},
		bigQueryOffset,
		bigQueryOrdinal,
		bigQueryArrayLiteral("array"),
		rename("ARRAY_LENGTH", "size", "size returns -1 for NULL arrays"),
	},
	{sf, bq}: {
		colonPathToBigQuery,
		castToBigQuery,
		arrayLiteralToBigQuery("ARRAY_CONSTRUCT"),
		rename("ARRAY_SIZE", "ARRAY_LENGTH", "ARRAY_LENGTH returns 0 for NULL arrays"),
		rename("OBJECT_CONSTRUCT", "JSON_OBJECT", "JSON_OBJECT returns JSON rather than an OBJECT"),
		rename("TRY_PARSE_JSON", "SAFE.PARSE_JSON", "SAFE. returns NULL on malformed input"),
	},
	{sf, dbx}: {
		rename("ARRAY_CONSTRUCT", "array", "Databricks arrays are typed; mixed element types fail"),
		rename("OBJECT_CONSTRUCT", "named_struct", "Field names must be string literals"),
		rename("ARRAY_SIZE", "size", "size returns -1 for NULL arrays"),
	},
	{dbx, bq}: {
		{
			pattern:    re(`\bget_json_object\s*\(\s*` + arg + `\s*,\s*('[^']*')\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("JSON_VALUE(%s, %s)", trim(g[1]), g[2]) },
			message:    "Converted get_json_object to JSON_VALUE",
			suggestion: "Use JSON_QUERY when the path selects an object or array",
		},
		colonPathToBigQuery,
		castToBigQuery,
		arrayLiteralToBigQuery("array"),
		rename("size", "ARRAY_LENGTH", "ARRAY_LENGTH returns 0 for NULL arrays"),
	},
	{dbx, sf}: {
		{
			pattern:    re(`\bget_json_object\s*\(\s*` + arg + `\s*,\s*'([^']*)'\s*\)`),
			build:      func(g []string) string { return fmt.Sprintf("%s:%s::VARCHAR", trim(g[1]), jsonPath(g[2])) },
			message:    "Converted get_json_object to path access",
			suggestion: "The column must be VARIANT in Snowflake",
		},
		rename("array", "ARRAY_CONSTRUCT", "ARRAY_CONSTRUCT builds a VARIANT array"),
		rename("named_struct", "OBJECT_CONSTRUCT", "OBJECT_CONSTRUCT drops NULL values"),
		rename("size", "ARRAY_SIZE", "ARRAY_SIZE returns NULL for NULL input"),
	},
}

var semiFindings = map[pair][]finding{
	{bq, sf}: {{
		pattern:    re(`\bSTRUCT\s*\(`),
		severity:   types.SeverityMedium,
		message:    "STRUCT literals have no direct Snowflake equivalent",
		suggestion: "Rebuild the value with OBJECT_CONSTRUCT('field', value, ...)",
	}},
	{sf, bq}: {{
		pattern:    re(`::`),
		severity:   types.SeverityMedium,
		message:    "Cast operator :: left in place",
		suggestion: "Rewrite the cast as CAST(expr AS type)",
	}},
	{sf, dbx}: {{
		pattern:    re(`\b(?:TRY_)?PARSE_JSON\s*\(`),
		severity:   types.SeverityLow,
		message:    "PARSE_JSON needs the Databricks VARIANT type",
		suggestion: "Use from_json with a schema on runtimes without VARIANT",
	}},
	{dbx, bq}: {
		{
			pattern:    re(`\bnamed_struct\s*\(`),
			severity:   types.SeverityMedium,
			message:    "named_struct has no direct BigQuery equivalent",
			suggestion: "Rebuild the value as STRUCT(value AS field, ...)",
		},
		{
			pattern:    re(`\bmap\s*\(`),
			severity:   types.SeverityMedium,
			message:    "BigQuery has no MAP type",
			suggestion: "Use an ARRAY<STRUCT<key, value>> or JSON",
		},
	},
	{dbx, sf}: {{
		pattern:    re(`\bmap\s*\(`),
		severity:   types.SeverityMedium,
		message:    "Snowflake has no MAP constructor",
		suggestion: "Use OBJECT_CONSTRUCT('key', value, ...)",
	}},
}

var simpleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// quotingPass rewrites quoted identifiers and paths into the target's
// convention, quoting only the parts that need it.
func quotingPass(source, target types.Platform) Pass {
	srcQuote := dialect.Get(source).IdentifierQuote
	tgt := dialect.Get(target)
	pattern := regexp.MustCompile(regexp.QuoteMeta(string(srcQuote)) + `([^` + string(srcQuote) + `\n]+)` + regexp.QuoteMeta(string(srcQuote)))
	return linePass{name: TableQuoting, rewrites: []rewrite{{
		pattern: pattern,
		build: func(g []string) string {
			parts := strings.Split(g[1], ".")
			plain := true
			for _, p := range parts {
				if !simpleIdentifier.MatchString(p) {
					plain = false
				}
			}
			if plain {
				return g[1]
			}
			if target == types.PlatformBigQuery {
				return tgt.QuoteIdentifier(g[1])
			}
			for i, p := range parts {
				if !simpleIdentifier.MatchString(p) {
					parts[i] = string(tgt.IdentifierQuote) + p + string(tgt.IdentifierQuote)
				}
			}
			return strings.Join(parts, ".")
		},
		message:    fmt.Sprintf("Converted %s quoted identifiers to %s conventions", source.DisplayName(), target.DisplayName()),
		suggestion: "Map project/dataset or database/schema names to the target's namespace",
	}}}
}

func intervalPass(source, target types.Platform) Pass {
	p := linePass{name: IntervalSyntax}
	switch {
	case target == types.PlatformSnowflake:
		p.rewrites = []rewrite{
			{
				pattern:    re(`\bINTERVAL\s+'?(-?\d+)'?\s+` + unit + `\b`),
				build:      func(g []string) string { return fmt.Sprintf("INTERVAL '%s %s'", g[1], strings.ToLower(g[2])) },
				message:    "Converted INTERVAL to Snowflake string syntax",
				suggestion: "Snowflake interval literals are quoted",
			},
		}
		p.findings = []finding{{
			pattern:    re(`\bINTERVAL\s+'[^']*'\s+` + unit + `\s+TO\s+` + unit),
			severity:   types.SeverityMedium,
			message:    "Range INTERVAL literals are not supported by Snowflake",
			suggestion: "Split the range into separate DATEADD calls",
		}}
	case source == types.PlatformSnowflake:
		p.rewrites = []rewrite{{
			pattern:    re(`\bINTERVAL\s+'\s*(-?\d+)\s*` + unit + `\s*'`),
			build:      func(g []string) string { return fmt.Sprintf("INTERVAL %s %s", g[1], upper(g[2])) },
			message:    "Converted quoted INTERVAL to unquoted syntax",
			suggestion: "The quantity and unit are separate tokens on the target",
		}}
		p.findings = []finding{{
			pattern:    re(`\bINTERVAL\s+'[^']*'`),
			severity:   types.SeverityMedium,
			message:    "Compound or abbreviated INTERVAL literal was not converted",
			suggestion: "Rewrite it as a sum of single-unit intervals",
		}}
	default:
		p.rewrites = []rewrite{{
			pattern:    re(`\bINTERVAL\s+'(-?\d+)'\s+` + unit + `\b`),
			build:      func(g []string) string { return fmt.Sprintf("INTERVAL %s %s", g[1], upper(g[2])) },
			message:    "Unquoted INTERVAL quantity",
			suggestion: "BigQuery interval quantities are integers",
		}}
	}
	return p
}

var unnestRewrites = map[pair][]rewrite{
	{bq, sf}: {{
		pattern: re(`(?:CROSS\s+JOIN|,)\s*UNNEST\s*\(\s*` + list + `\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)(?:\s+WITH\s+OFFSET(?:\s+AS\s+\w+)?)?`),
		build: func(g []string) string {
			return fmt.Sprintf(", LATERAL FLATTEN(input => %s) %s", trim(g[1]), g[2])
		},
		severity:   types.SeverityMedium,
		message:    "Converted UNNEST to LATERAL FLATTEN",
		suggestion: "Reference elements as <alias>.value and offsets as <alias>.index",
	}},
	{bq, dbx}: {
		{
			pattern: re(`(?:CROSS\s+JOIN|,)\s*UNNEST\s*\(\s*` + list + `\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)\s+WITH\s+OFFSET(?:\s+AS\s+(\w+))?`),
			build: func(g []string) string {
				offset := g[3]
				if offset == "" {
					offset = "offset"
				}
				return fmt.Sprintf(" LATERAL VIEW POSEXPLODE(%s) AS %s, %s", trim(g[1]), offset, g[2])
			},
			severity:   types.SeverityMedium,
			message:    "Converted UNNEST WITH OFFSET to LATERAL VIEW POSEXPLODE",
			suggestion: "LATERAL VIEW must follow the table it expands",
		},
		{
			pattern:    re(`(?:CROSS\s+JOIN|,)\s*UNNEST\s*\(\s*` + list + `\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)`),
			build:      func(g []string) string { return fmt.Sprintf(" LATERAL VIEW EXPLODE(%s) AS %s", trim(g[1]), g[2]) },
			message:    "Converted UNNEST to LATERAL VIEW EXPLODE",
			suggestion: "LATERAL VIEW must follow the table it expands",
		},
	},
	{sf, bq}: {
		{
			pattern:    re(`,?\s*LATERAL\s+FLATTEN\s*\(\s*(?:INPUT\s*=>\s*)?` + list + `\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)`),
			build:      func(g []string) string { return fmt.Sprintf(" CROSS JOIN UNNEST(%s) AS %s", trim(g[1]), g[2]) },
			severity:   types.SeverityMedium,
			message:    "Converted LATERAL FLATTEN to UNNEST",
			suggestion: "Replace <alias>.value with <alias>; add WITH OFFSET for <alias>.index",
		},
		{
			pattern:    re(`\bTABLE\s*\(\s*FLATTEN\s*\(\s*(?:INPUT\s*=>\s*)?` + list + `\s*\)\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)`),
			build:      func(g []string) string { return fmt.Sprintf("UNNEST(%s) AS %s", trim(g[1]), g[2]) },
			severity:   types.SeverityMedium,
			message:    "Converted TABLE(FLATTEN(...)) to UNNEST",
			suggestion: "Replace <alias>.value with <alias>",
		},
	},
	{sf, dbx}: {{
		pattern:    re(`,?\s*LATERAL\s+FLATTEN\s*\(\s*(?:INPUT\s*=>\s*)?` + list + `\s*\)\s*(?:AS\s+)?([A-Za-z_]\w*)`),
		build:      func(g []string) string { return fmt.Sprintf(" LATERAL VIEW EXPLODE(%s) AS %s", trim(g[1]), g[2]) },
		severity:   types.SeverityMedium,
		message:    "Converted LATERAL FLATTEN to LATERAL VIEW EXPLODE",
		suggestion: "Replace <alias>.value with <alias>",
	}},
	{dbx, bq}: {
		{
			pattern: re(`\bLATERAL\s+VIEW\s+POSEXPLODE\s*\(\s*` + list + `\s*\)\s*(?:\w+\s+)?AS\s+(\w+)\s*,\s*(\w+)`),
			build: func(g []string) string {
				return fmt.Sprintf("CROSS JOIN UNNEST(%s) AS %s WITH OFFSET AS %s", trim(g[1]), g[3], g[2])
			},
			message:    "Converted LATERAL VIEW POSEXPLODE to UNNEST WITH OFFSET",
			suggestion: "OFFSET is zero-based like POSEXPLODE positions",
		},
		{
			pattern: re(`\bLATERAL\s+VIEW\s+(OUTER\s+)?EXPLODE\s*\(\s*` + list + `\s*\)\s*(?:\w+\s+)?(?:AS\s+)?(\w+)`),
			build: func(g []string) string {
				if g[1] != "" {
					return fmt.Sprintf("LEFT JOIN UNNEST(%s) AS %s ON TRUE", trim(g[2]), g[3])
				}
				return fmt.Sprintf("CROSS JOIN UNNEST(%s) AS %s", trim(g[2]), g[3])
			},
			message:    "Converted LATERAL VIEW EXPLODE to UNNEST",
			suggestion: "UNNEST of a MAP is not supported; convert maps to arrays of structs first",
		},
	},
	{dbx, sf}: {{
		pattern: re(`\s*\bLATERAL\s+VIEW\s+(OUTER\s+)?EXPLODE\s*\(\s*` + list + `\s*\)\s*(?:\w+\s+)?(?:AS\s+)?(\w+)`),
		build: func(g []string) string {
			outer := ""
			if g[1] != "" {
				outer = ", OUTER => TRUE"
			}
			return fmt.Sprintf(", LATERAL FLATTEN(input => %s%s) %s", trim(g[2]), outer, g[3])
		},
		severity:   types.SeverityMedium,
		message:    "Converted LATERAL VIEW EXPLODE to LATERAL FLATTEN",
		suggestion: "Reference elements as <alias>.value",
	}},
}

var unnestFindings = map[pair][]finding{
	{bq, sf}: {{
		pattern:    re(`\bUNNEST\s*\(`),
		severity:   types.SeverityMedium,
		message:    "UNNEST outside a join has no direct Snowflake equivalent",
		suggestion: "Use LATERAL FLATTEN or ARRAY_CONTAINS",
	}},
	{bq, dbx}: {{
		pattern:    re(`\bUNNEST\s*\(`),
		severity:   types.SeverityMedium,
		message:    "UNNEST outside a join has no direct Databricks equivalent",
		suggestion: "Use explode() or array_contains()",
	}},
	{sf, bq}: {{
		pattern:    re(`\bFLATTEN\s*\(`),
		severity:   types.SeverityMedium,
		message:    "FLATTEN call was not converted",
		suggestion: "Rewrite it with UNNEST",
	}},
	{sf, dbx}: {{
		pattern:    re(`\bFLATTEN\s*\(`),
		severity:   types.SeverityMedium,
		message:    "FLATTEN call was not converted",
		suggestion: "Rewrite it with explode()",
	}},
	{dbx, bq}: {{
		pattern:    re(`\b(?:POS)?EXPLODE(?:_OUTER)?\s*\(`),
		severity:   types.SeverityMedium,
		message:    "explode() in the select list has no BigQuery equivalent",
		suggestion: "Move it to a CROSS JOIN UNNEST",
	}},
	{dbx, sf}: {{
		pattern:    re(`\b(?:POS)?EXPLODE(?:_OUTER)?\s*\(`),
		severity:   types.SeverityMedium,
		message:    "explode() in the select list has no Snowflake equivalent",
		suggestion: "Move it to a LATERAL FLATTEN",
	}},
}
