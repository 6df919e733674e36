package migration

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

type testCase struct {
	Name      string         `yaml:"name"`
	Source    types.Platform `yaml:"source"`
	Target    types.Platform `yaml:"target"`
	Statement string         `yaml:"statement"`
	Want      string         `yaml:"want"`
	Score     int            `yaml:"score"`
	Issues    []string       `yaml:"issues"`
}

func getMigrateTestCases(t *testing.T) []testCase {
	yamlData, err := os.ReadFile("./testdata/migrate.yaml")
	require.NoError(t, err)

	var testCases []testCase
	err = yaml.Unmarshal(yamlData, &testCases)
	require.NoError(t, err)
	return testCases
}

func TestMigrateWalkThrough(t *testing.T) {
	m := New(WithLogger(logger.Discard()))
	for _, tc := range getMigrateTestCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			result := m.Migrate(tc.Statement, tc.Source, tc.Target)

			require.Equal(t, tc.Want, result.ConvertedQuery)
			assert.Equal(t, tc.Statement, result.OriginalQuery)
			assert.Equal(t, tc.Score, result.CompatibilityScore)

			var messages []string
			for _, issue := range result.Issues {
				messages = append(messages, issue.Message)
			}
			assert.Equal(t, tc.Issues, messages)
		})
	}
}

func TestMigrateIdentity(t *testing.T) {
	queries := []string{
		"SELECT NVL(a, 0), DATE_ADD(d, INTERVAL 1 DAY) FROM `p.d.t`",
		"",
		"   ",
	}
	for _, p := range types.Platforms {
		for _, sql := range queries {
			t.Run(fmt.Sprintf("%s/%q", p, sql), func(t *testing.T) {
				result := Migrate(sql, p, p)
				assert.Equal(t, sql, result.ConvertedQuery)
				assert.Equal(t, 100, result.CompatibilityScore)
				assert.Empty(t, result.Issues)
				assert.NotNil(t, result.Issues)
			})
		}
	}
}

func TestMigrateEmpty(t *testing.T) {
	for _, sql := range []string{"", " \n\t"} {
		result := Migrate(sql, types.PlatformBigQuery, types.PlatformSnowflake)
		assert.Equal(t, 0, result.CompatibilityScore)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, types.SeverityHigh, result.Issues[0].Severity)
	}
}

func TestMigrateScoreIsClamped(t *testing.T) {
	sql := strings.Repeat("SELECT NVL(a, 0), IFNULL(b, 1) FROM t\n", 40)
	result := Migrate(sql, types.PlatformBigQuery, types.PlatformSnowflake)
	assert.Equal(t, 0, result.CompatibilityScore)
	assert.NotContains(t, result.ConvertedQuery, "NVL")

	for _, src := range types.Platforms {
		for _, tgt := range types.Platforms {
			r := Migrate("SELECT * FROM t WHERE x = 1", src, tgt)
			assert.GreaterOrEqual(t, r.CompatibilityScore, 0)
			assert.LessOrEqual(t, r.CompatibilityScore, 100)
		}
	}
}

func TestMigrateUnknownPairRunsCommonPass(t *testing.T) {
	result := Migrate("SELECT NVL(a, 0) FROM t", types.PlatformUnspecified, types.PlatformBigQuery)
	assert.Equal(t, "SELECT COALESCE(a, 0) FROM t", result.ConvertedQuery)
	assert.Equal(t, 98, result.CompatibilityScore)
}

func TestMigrateRecoversFailingPass(t *testing.T) {
	boom := PassFunc{PassName: "boom", Fn: func([]string) PassResult { panic("boom") }}
	m := New(WithLogger(logger.Discard()), WithPass(boom))

	result := m.Migrate("SELECT DATE_ADD(d, INTERVAL 1 DAY) FROM t", types.PlatformBigQuery, types.PlatformSnowflake)

	assert.Equal(t, "SELECT DATEADD(day, 1, d) FROM t", result.ConvertedQuery)
	assert.Equal(t, 88, result.CompatibilityScore)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, "Pass boom failed: boom", result.Issues[1].Message)
	assert.Equal(t, types.SeverityHigh, result.Issues[1].Severity)
	assert.Nil(t, result.Issues[1].Line)
}

func TestRunPassWrapsPanic(t *testing.T) {
	boom := PassFunc{PassName: "boom", Fn: func([]string) PassResult { panic("boom") }}
	_, err := runPass(boom, []string{"SELECT 1"})
	require.EqualError(t, err, "boom")
	_, ok := err.(interface{ StackTrace() errors.StackTrace })
	assert.True(t, ok, "panic error carries a stack trace")
}

func TestPassNames(t *testing.T) {
	tests := []struct {
		source, target types.Platform
		want           []string
	}{
		{types.PlatformBigQuery, types.PlatformSnowflake, []string{DateFunctions, SemiStructured, TableQuoting, PartitionClauses, IntervalSyntax, Unnest}},
		{types.PlatformBigQuery, types.PlatformDatabricks, []string{DateFunctions, SemiStructured, TableQuoting, PartitionClauses, Unnest}},
		{types.PlatformSnowflake, types.PlatformDatabricks, []string{DateFunctions, SemiStructured, TableQuoting, IntervalSyntax, Unnest}},
		{types.PlatformDatabricks, types.PlatformBigQuery, []string{DateFunctions, SemiStructured, PartitionClauses, IntervalSyntax, Unnest}},
		{types.PlatformBigQuery, types.PlatformBigQuery, []string{}},
		{types.PlatformUnspecified, types.PlatformSnowflake, []string{}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PassNames(tc.source, tc.target), "%s -> %s", tc.source, tc.target)

		var names []string
		for _, p := range Passes(tc.source, tc.target) {
			names = append(names, p.Name())
		}
		if len(tc.want) == 0 {
			assert.Empty(t, names)
		} else {
			assert.Equal(t, tc.want, names)
		}
	}
}

func TestLinePassReportsOncePerLine(t *testing.T) {
	p := linePass{name: "test", rewrites: []rewrite{rename("NVL", "COALESCE", "")}}
	in := []string{"SELECT NVL(a, 0), NVL(b, 0)", "-- NVL(c, 0)", "FROM t"}
	res := p.Apply(append([]string(nil), in...))

	assert.Equal(t, []string{"SELECT COALESCE(a, 0), COALESCE(b, 0)", "-- NVL(c, 0)", "FROM t"}, res.Lines)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 1, *res.Issues[0].Line)
	assert.Equal(t, types.SeverityLow, res.Issues[0].Severity)
	assert.Equal(t, lowDeduction, res.Deduction)
}

func TestLinePassSkipsLiteralsAndComments(t *testing.T) {
	p := linePass{
		name:     "test",
		rewrites: []rewrite{rename("NVL", "COALESCE", "")},
		findings: []finding{{pattern: re(`\bQUALIFY\b`), severity: types.SeverityMedium, message: "qualify"}},
	}
	res := p.Apply([]string{"SELECT 'NVL(a, 0) QUALIFY' AS s /* NVL(b, 1) */ FROM t -- QUALIFY NVL(c, 2)"})

	assert.Equal(t, []string{"SELECT 'NVL(a, 0) QUALIFY' AS s /* NVL(b, 1) */ FROM t -- QUALIFY NVL(c, 2)"}, res.Lines)
	assert.Empty(t, res.Issues)
	assert.Zero(t, res.Deduction)
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	in := []string{"SELECT NVL(a, 0) FROM t"}
	out := Pipeline{CommonPass(types.PlatformBigQuery, types.PlatformSnowflake)}.Run(in, logger.Discard())
	assert.Equal(t, "SELECT NVL(a, 0) FROM t", in[0])
	assert.Equal(t, "SELECT COALESCE(a, 0) FROM t", out.Lines[0])
}

func TestDirectionalRewrites(t *testing.T) {
	tests := []struct {
		name           string
		source, target types.Platform
		sql, want      string
	}{
		{"date sub negates", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT DATE_SUB(d, INTERVAL 2 MONTH) FROM t", "SELECT DATEADD(month, -2, d) FROM t"},
		{"trunc to snowflake", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT DATE_TRUNC(created_at, MONTH) FROM t", "SELECT DATE_TRUNC('MONTH', created_at) FROM t"},
		{"literal and trailing comment untouched", types.PlatformSnowflake, types.PlatformBigQuery,
			"SELECT 'use SYSDATE() here' AS note, a FROM t -- GETDATE() legacy",
			"SELECT 'use SYSDATE() here' AS note, a FROM t -- GETDATE() legacy"},
		{"code rewritten next to literal and comment", types.PlatformSnowflake, types.PlatformBigQuery,
			"SELECT SYSDATE(), 'GETDATE()' FROM t -- SYSDATE()",
			"SELECT CURRENT_TIMESTAMP(), 'GETDATE()' FROM t -- SYSDATE()"},
		{"array literal inside string untouched", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT 'tags [1, 2]' AS note FROM t", "SELECT 'tags [1, 2]' AS note FROM t"},
		{"trunc to bigquery", types.PlatformSnowflake, types.PlatformBigQuery,
			"SELECT DATE_TRUNC('week', created_at) FROM t", "SELECT DATE_TRUNC(created_at, WEEK) FROM t"},
		{"dateadd hour to bigquery", types.PlatformSnowflake, types.PlatformBigQuery,
			"SELECT DATEADD(hour, 3, ts) FROM t", "SELECT TIMESTAMP_ADD(ts, INTERVAL 3 HOUR) FROM t"},
		{"json to databricks", types.PlatformBigQuery, types.PlatformDatabricks,
			"SELECT JSON_EXTRACT_SCALAR(doc, '$.a.b') FROM t", "SELECT get_json_object(doc, '$.a.b') FROM t"},
		{"json to snowflake", types.PlatformDatabricks, types.PlatformSnowflake,
			"SELECT get_json_object(doc, '$.a') FROM t", "SELECT doc:a::VARCHAR FROM t"},
		{"array offset", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT tags[OFFSET(0)], tags[ORDINAL(2)] FROM t", "SELECT tags[0], tags[1] FROM t"},
		{"array literal", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT [1, 2, 3] AS xs", "SELECT ARRAY_CONSTRUCT(1, 2, 3) AS xs"},
		{"array construct to bigquery", types.PlatformSnowflake, types.PlatformBigQuery,
			"SELECT ARRAY_CONSTRUCT(1, 2) AS xs", "SELECT [1, 2] AS xs"},
		{"interval to snowflake", types.PlatformBigQuery, types.PlatformSnowflake,
			"SELECT ts - INTERVAL 3 HOUR FROM t", "SELECT ts - INTERVAL '3 hour' FROM t"},
		{"interval from snowflake", types.PlatformSnowflake, types.PlatformDatabricks,
			"SELECT ts - INTERVAL '3 days' FROM t", "SELECT ts - INTERVAL 3 DAY FROM t"},
		{"quoted identifiers to databricks", types.PlatformSnowflake, types.PlatformDatabricks,
			`SELECT "Order Id" FROM "SALES"."ORDERS"`, "SELECT `Order Id` FROM SALES.ORDERS"},
		{"unnest with offset", types.PlatformBigQuery, types.PlatformDatabricks,
			"SELECT x FROM t, UNNEST(t.xs) AS x WITH OFFSET AS pos", "SELECT x FROM t LATERAL VIEW POSEXPLODE(t.xs) AS pos, x"},
		{"posexplode to bigquery", types.PlatformDatabricks, types.PlatformBigQuery,
			"SELECT x FROM t LATERAL VIEW POSEXPLODE(t.xs) AS pos, x", "SELECT x FROM t CROSS JOIN UNNEST(t.xs) AS x WITH OFFSET AS pos"},
		{"outer explode to snowflake", types.PlatformDatabricks, types.PlatformSnowflake,
			"SELECT x FROM t LATERAL VIEW OUTER EXPLODE(t.xs) AS x", "SELECT x FROM t, LATERAL FLATTEN(input => t.xs, OUTER => TRUE) x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Migrate(tc.sql, tc.source, tc.target)
			assert.Equal(t, tc.want, result.ConvertedQuery)
			if tc.want != tc.sql {
				assert.Less(t, result.CompatibilityScore, 100)
			}
		})
	}
}

func TestApplyEdits(t *testing.T) {
	text := "CREATE TABLE t (a INT)\nUSING DELTA\nPARTITIONED BY (a)"
	got := applyEdits(text, []edit{
		{start: strings.Index(text, "USING"), end: strings.Index(text, "USING") + len("USING DELTA")},
		{start: strings.Index(text, "PARTITIONED"), end: len(text), text: "CLUSTER BY (a)"},
	})
	assert.Equal(t, "CREATE TABLE t (a INT)\nCLUSTER BY (a)", got)

	inline := "CREATE TABLE t (a INT) USING DELTA AS SELECT 1"
	got = applyEdits(inline, []edit{{start: strings.Index(inline, "USING"), end: strings.Index(inline, " AS")}})
	assert.Equal(t, "CREATE TABLE t (a INT) AS SELECT 1", got)
}
