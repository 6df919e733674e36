package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func TestGet(t *testing.T) {
	for _, p := range types.Platforms {
		t.Run(p.String(), func(t *testing.T) {
			d := Get(p)
			require.NotNil(t, d)
			assert.Equal(t, p, d.Platform)
			assert.NotEmpty(t, d.Functions())
			assert.NotEmpty(t, d.NonStandardFunctionNames())
			assert.NotEmpty(t, d.SamplingKeywords())
			assert.NotEmpty(t, d.TypeConventions())
			assert.NotEmpty(t, d.CurrentTimestamp())
		})
	}
	assert.Nil(t, Get(types.PlatformUnspecified))
}

func TestAccessorsReturnCopies(t *testing.T) {
	d := Get(types.PlatformSnowflake)

	keywords := d.SamplingKeywords()
	keywords[0] = "CHANGED"
	assert.NotEqual(t, "CHANGED", d.SamplingKeywords()[0])

	funcs := d.NonStandardFunctions()
	delete(funcs, "IFF")
	assert.Contains(t, d.NonStandardFunctions(), "IFF")

	mappings := TypeMappings(types.PlatformBigQuery, types.PlatformSnowflake)
	mappings[0].To = "CHANGED"
	assert.NotEqual(t, "CHANGED", TypeMappings(types.PlatformBigQuery, types.PlatformSnowflake)[0].To)
}

func TestHasFunction(t *testing.T) {
	assert.True(t, Get(types.PlatformBigQuery).HasFunction("safe_divide"))
	assert.False(t, Get(types.PlatformBigQuery).HasFunction("IFF"))
	assert.True(t, Get(types.PlatformSnowflake).HasFunction("iff"))
	assert.True(t, Get(types.PlatformDatabricks).HasFunction("COALESCE"))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`proj.ds.tbl`", Get(types.PlatformBigQuery).QuoteIdentifier(`"proj"."ds"."tbl"`))
	assert.Equal(t, `"db"."sc"."tbl"`, Get(types.PlatformSnowflake).QuoteIdentifier("`db.sc.tbl`"))
	assert.Equal(t, "`cat`.`sc`.`tbl`", Get(types.PlatformDatabricks).QuoteIdentifier("cat.sc.tbl"))
}

func TestPartitionHint(t *testing.T) {
	bq := Get(types.PlatformBigQuery)
	tests := []struct {
		column   string
		expected bool
	}{
		{"_PARTITIONTIME", true},
		{"order_date", true},
		{"created_at", true},
		{"partition_key", true},
		{"customer_id", false},
		{"amount", false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.expected, bq.PartitionHint(tt.column))
		})
	}
}

func TestTypeMappings(t *testing.T) {
	for _, source := range types.Platforms {
		for _, target := range types.Platforms {
			mappings := TypeMappings(source, target)
			if source == target {
				assert.Empty(t, mappings)
				continue
			}
			assert.NotEmpty(t, mappings, "%s -> %s", source, target)
		}
	}

	var geography *TypeMapping
	for _, m := range TypeMappings(types.PlatformBigQuery, types.PlatformDatabricks) {
		if m.From == "GEOGRAPHY" {
			m := m
			geography = &m
		}
	}
	require.NotNil(t, geography)
	assert.False(t, geography.Supported())
}

func TestNeutralFunctions(t *testing.T) {
	rewrites := NeutralFunctions()
	assert.Contains(t, rewrites, Rewrite{From: "NVL", To: "COALESCE"})
	assert.Contains(t, rewrites, Rewrite{From: "IFNULL", To: "COALESCE"})
}

func TestTypePattern(t *testing.T) {
	re := TypePattern("INT64", "INT", "STRING")
	tests := []struct {
		line string
		want string
	}{
		{line: "SELECT CAST(a AS INT64) FROM t", want: "INT64"},
		{line: "SELECT SAFE_CAST(SUBSTR(a, 1, 2) AS int) FROM t", want: "int"},
		{line: "SELECT a::STRING FROM t", want: "STRING"},
		{line: "CREATE TABLE t (id INT64, name STRING)", want: "INT64"},
		{line: "  amount INT64,", want: "INT64"},
		{line: "col ARRAY<STRING>", want: "STRING"},
		{line: "SELECT int64_col FROM t", want: ""},
		{line: "SELECT 'STRING' AS label FROM t", want: ""},
	}
	for _, tc := range tests {
		m := re.FindStringSubmatch(tc.line)
		if tc.want == "" {
			assert.Nil(t, m, tc.line)
			continue
		}
		require.NotNil(t, m, tc.line)
		assert.Equal(t, tc.want, m[2], tc.line)
	}
}
