package dialect

import (
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// TypeMapping maps a source type name to the target's equivalent. An empty To
// means the target has no equivalent.
type TypeMapping struct {
	From string
	To   string
}

// Supported reports whether the target has an equivalent type.
func (m TypeMapping) Supported() bool { return m.To != "" }

type pair struct {
	source, target types.Platform
}

// Longer names come first so INT64 is tried before INT.
var typeMappings = map[pair][]TypeMapping{
	{types.PlatformBigQuery, types.PlatformSnowflake}: {
		{From: "BIGNUMERIC", To: "NUMBER(38, 9)"},
		{From: "NUMERIC", To: "NUMBER"},
		{From: "FLOAT64", To: "FLOAT"},
		{From: "INT64", To: "INTEGER"},
		{From: "STRING", To: "VARCHAR"},
		{From: "BYTES", To: "BINARY"},
		{From: "BOOL", To: "BOOLEAN"},
		{From: "DATETIME", To: "TIMESTAMP_NTZ"},
		{From: "JSON", To: "VARIANT"},
		{From: "STRUCT", To: "OBJECT"},
		{From: "INTERVAL", To: ""},
	},
	{types.PlatformBigQuery, types.PlatformDatabricks}: {
		{From: "BIGNUMERIC", To: "DECIMAL(38, 18)"},
		{From: "NUMERIC", To: "DECIMAL(38, 9)"},
		{From: "FLOAT64", To: "DOUBLE"},
		{From: "INT64", To: "BIGINT"},
		{From: "BYTES", To: "BINARY"},
		{From: "BOOL", To: "BOOLEAN"},
		{From: "DATETIME", To: "TIMESTAMP_NTZ"},
		{From: "JSON", To: "STRING"},
		{From: "GEOGRAPHY", To: ""},
	},
	{types.PlatformSnowflake, types.PlatformBigQuery}: {
		{From: "TIMESTAMP_NTZ", To: "DATETIME"},
		{From: "TIMESTAMP_LTZ", To: "TIMESTAMP"},
		{From: "TIMESTAMP_TZ", To: "TIMESTAMP"},
		{From: "VARCHAR", To: "STRING"},
		{From: "VARIANT", To: "JSON"},
		{From: "OBJECT", To: "JSON"},
		{From: "NUMBER", To: "NUMERIC"},
		{From: "DOUBLE", To: "FLOAT64"},
		{From: "FLOAT", To: "FLOAT64"},
		{From: "INTEGER", To: "INT64"},
		{From: "BIGINT", To: "INT64"},
		{From: "BOOLEAN", To: "BOOL"},
		{From: "BINARY", To: "BYTES"},
		{From: "TEXT", To: "STRING"},
		{From: "GEOMETRY", To: ""},
	},
	{types.PlatformSnowflake, types.PlatformDatabricks}: {
		{From: "TIMESTAMP_LTZ", To: "TIMESTAMP"},
		{From: "TIMESTAMP_TZ", To: "TIMESTAMP"},
		{From: "VARCHAR", To: "STRING"},
		{From: "VARIANT", To: "STRING"},
		{From: "OBJECT", To: "STRING"},
		{From: "NUMBER", To: "DECIMAL"},
		{From: "TEXT", To: "STRING"},
		{From: "GEOGRAPHY", To: ""},
		{From: "GEOMETRY", To: ""},
	},
	{types.PlatformDatabricks, types.PlatformBigQuery}: {
		{From: "TIMESTAMP_NTZ", To: "DATETIME"},
		{From: "SMALLINT", To: "INT64"},
		{From: "TINYINT", To: "INT64"},
		{From: "INTEGER", To: "INT64"},
		{From: "BIGINT", To: "INT64"},
		{From: "DECIMAL", To: "NUMERIC"},
		{From: "DOUBLE", To: "FLOAT64"},
		{From: "FLOAT", To: "FLOAT64"},
		{From: "BOOLEAN", To: "BOOL"},
		{From: "BINARY", To: "BYTES"},
		{From: "INT", To: "INT64"},
		{From: "MAP", To: ""},
		{From: "VARIANT", To: "JSON"},
	},
	{types.PlatformDatabricks, types.PlatformSnowflake}: {
		{From: "DECIMAL", To: "NUMBER"},
		{From: "STRING", To: "VARCHAR"},
		{From: "STRUCT", To: "OBJECT"},
		{From: "MAP", To: "OBJECT"},
		{From: "INTERVAL", To: ""},
	},
}

// TypeMappings returns the type mappings for an ordered platform pair. Unknown
// or identical pairs yield nil.
func TypeMappings(source, target types.Platform) []TypeMapping {
	return append([]TypeMapping(nil), typeMappings[pair{source, target}]...)
}

const typeIdent = "(?:[A-Za-z_][\\w$]*|`[^`]+`|\"[^\"]+\")"

// typePositions are the places a type name can appear: CAST(x AS t), x::t,
// ARRAY<t> or STRUCT<f t>, and column definitions.
var typePositions = strings.Join([]string{
	`\b(?:SAFE_|TRY_)?CAST\s*\((?:[^()]|\([^()]*\))*?\bAS\s+`,
	`::\s*`,
	`<\s*(?:` + typeIdent + `\s+)?`,
	`[(,]\s*` + typeIdent + `\s+`,
	`^\s*` + typeIdent + `\s+`,
}, "|")

// TypePattern matches any of names in a type position. Group 1 is everything
// before the name and group 2 is the name itself. Pass longer names first.
func TypePattern(names ...string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?im)(` + typePositions + `)(` + strings.Join(quoted, "|") + `)\b`)
}
