package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

func columnNames(t *types.TableNode) []string {
	var names []string
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

func TestExtractEmpty(t *testing.T) {
	for _, sql := range []string{"", "  \n", "-- only a comment", "SELECT 1"} {
		graph := Extract(sql, types.PlatformBigQuery)
		require.NotNil(t, graph)
		assert.True(t, graph.Empty(), sql)
		assert.NotNil(t, graph.Tables)
		assert.NotNil(t, graph.Relationships)
	}
}

func TestExtractCTEChain(t *testing.T) {
	sql := "WITH a AS (SELECT * FROM base), b AS (SELECT * FROM a) SELECT * FROM b"
	graph := Extract(sql, types.PlatformBigQuery)

	assert.ElementsMatch(t, []string{"a", "b", "base"}, graph.TableIDs())
	assert.Equal(t, types.TableKindCTE, graph.Table("a").Kind)
	assert.Equal(t, types.TableKindCTE, graph.Table("b").Kind)
	assert.Equal(t, types.TableKindBase, graph.Table("base").Kind)

	assert.True(t, graph.HasRelationship("b", "a"))
	assert.True(t, graph.HasRelationship("a", "base"))
	assert.False(t, graph.HasRelationship("b", "base"))
	assert.Equal(t, []string{"base"}, graph.Table("a").References)
	assert.Equal(t, []string{"b"}, graph.Table("a").ReferencedBy)
	require.NoError(t, graph.Validate())
}

func TestExtractJoin(t *testing.T) {
	sql := `SELECT o.id, c.name
FROM orders o
JOIN customers c ON c.id = o.customer_id`
	graph := Extract(sql, types.PlatformSnowflake)

	assert.Equal(t, []string{"o", "c"}, graph.TableIDs())
	assert.Equal(t, "orders", graph.Table("o").DisplayName)
	assert.Equal(t, []string{"id", "customer_id"}, columnNames(graph.Table("o")))
	assert.Equal(t, []string{"name", "id"}, columnNames(graph.Table("c")))

	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, types.Relationship{
		SourceTableID: "c",
		TargetTableID: "o",
		Kind:          types.RelationshipJoin,
		SourceColumn:  "id",
		TargetColumn:  "customer_id",
	}, graph.Relationships[0])

	id := graph.Table("c").Column("id")
	require.NotNil(t, id)
	assert.Equal(t, []types.ColumnReference{{ColumnID: "o.customer_id", TableID: "o"}}, id.References)
	require.NoError(t, graph.Validate())
}

func TestExtractJoinDirectionFollowsJoinedTable(t *testing.T) {
	graph := Extract("SELECT * FROM a JOIN b ON a.id = b.id AND a.id = b.id", types.PlatformDatabricks)
	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, "b", graph.Relationships[0].SourceTableID)
	assert.Equal(t, "a", graph.Relationships[0].TargetTableID)
}

func TestExtractJoinUsing(t *testing.T) {
	graph := Extract("SELECT * FROM orders o JOIN customers c USING (customer_id)", types.PlatformBigQuery)
	require.Len(t, graph.Relationships, 1)
	r := graph.Relationships[0]
	assert.Equal(t, types.RelationshipJoin, r.Kind)
	assert.Equal(t, "c", r.SourceTableID)
	assert.Equal(t, "o", r.TargetTableID)
	assert.Equal(t, "customer_id", r.SourceColumn)
	require.NoError(t, graph.Validate())
}

func TestExtractWhereFallback(t *testing.T) {
	graph := Extract("SELECT a.x FROM a, b WHERE a.id = b.a_id AND a.x = a.y", types.PlatformBigQuery)
	assert.Equal(t, []string{"a", "b"}, graph.TableIDs())
	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, types.Relationship{
		SourceTableID: "a",
		TargetTableID: "b",
		Kind:          types.RelationshipReference,
		SourceColumn:  "id",
		TargetColumn:  "a_id",
	}, graph.Relationships[0])
	require.NoError(t, graph.Validate())
}

func TestExtractSubquery(t *testing.T) {
	sql := `SELECT s.total
FROM (SELECT customer_id, SUM(amount) AS total FROM orders GROUP BY customer_id) AS s`
	graph := Extract(sql, types.PlatformSnowflake)

	s := graph.Table("s")
	require.NotNil(t, s)
	assert.Equal(t, types.TableKindSubquery, s.Kind)
	assert.Equal(t, []string{"total"}, columnNames(s))
	assert.True(t, graph.HasRelationship("s", "orders"))
	assert.Equal(t, types.RelationshipSubquery, graph.Relationships[0].Kind)
	require.NoError(t, graph.Validate())
}

func TestExtractNamingConventions(t *testing.T) {
	sql := `WITH orders_group AS (SELECT 1),
upd_orders AS (SELECT 2),
report AS (SELECT 3),
report_final AS (SELECT 4)
SELECT * FROM upd_orders, report_final`
	graph := Extract(sql, types.PlatformBigQuery)

	assert.True(t, graph.HasRelationship("upd_orders", "orders_group"))
	assert.True(t, graph.HasRelationship("report_final", "report"))
	assert.Len(t, graph.Relationships, 2)
	require.NoError(t, graph.Validate())
}

func TestExtractRecursiveCTE(t *testing.T) {
	sql := "WITH RECURSIVE r AS (SELECT 1 AS n UNION ALL SELECT n + 1 FROM r WHERE n < 5) SELECT * FROM r"
	graph := Extract(sql, types.PlatformSnowflake)
	assert.Equal(t, []string{"r"}, graph.TableIDs())
	assert.True(t, graph.HasRelationship("r", "r"))
	require.NoError(t, graph.Validate())
}

func TestExtractReconcilesColumns(t *testing.T) {
	sql := "WITH recent AS (SELECT o.id FROM orders o) SELECT recent.id FROM recent"
	graph := Extract(sql, types.PlatformBigQuery)

	assert.True(t, graph.HasRelationship("recent", "o"))
	var columnLevel []types.Relationship
	for _, r := range graph.Relationships {
		if r.HasColumns() {
			columnLevel = append(columnLevel, r)
		}
	}
	require.Len(t, columnLevel, 1)
	assert.Equal(t, "id", columnLevel[0].SourceColumn)
	assert.Equal(t, "id", columnLevel[0].TargetColumn)
	assert.Equal(t, types.RelationshipReference, columnLevel[0].Kind)
	require.NoError(t, graph.Validate())
}

func TestExtractIgnoresCommentsStringsAndCalls(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		tables []string
	}{
		{
			name:   "comment",
			sql:    "SELECT t.a FROM t -- JOIN fake f ON f.x = t.y\nWHERE t.b = 'u.v'",
			tables: []string{"t"},
		},
		{
			name:   "extract",
			sql:    "SELECT EXTRACT(YEAR FROM o.created_at) FROM orders o",
			tables: []string{"o"},
		},
		{
			name:   "unnest",
			sql:    "SELECT e FROM events ev, UNNEST(ev.items) AS e",
			tables: []string{"ev"},
		},
		{
			name:   "distinct from",
			sql:    "SELECT * FROM t WHERE t.a IS DISTINCT FROM t.b",
			tables: []string{"t"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			graph := Extract(tc.sql, types.PlatformBigQuery)
			assert.Equal(t, tc.tables, graph.TableIDs())
			require.NoError(t, graph.Validate())
		})
	}
}

func TestExtractQuotedPath(t *testing.T) {
	graph := Extract("SELECT o.id FROM `proj.sales.orders` AS o", types.PlatformBigQuery)
	require.Equal(t, []string{"o"}, graph.TableIDs())
	assert.Equal(t, "proj.sales.orders", graph.Table("o").DisplayName)
	assert.Equal(t, []string{"id"}, columnNames(graph.Table("o")))
}

func TestExtractMalformedInput(t *testing.T) {
	for _, sql := range []string{
		"SELECT ((( FROM",
		"WITH a AS (SELECT * FROM",
		"SELECT * FROM a JOIN",
		"FROM , , JOIN ON",
		"SELECT 'unterminated FROM x",
	} {
		assert.NotPanics(t, func() {
			graph := Extract(sql, types.PlatformDatabricks)
			assert.NoError(t, graph.Validate())
		}, sql)
	}
}
