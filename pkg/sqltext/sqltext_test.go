package sqltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		opts     MaskOptions
		expected string
	}{
		{
			name:     "line comment",
			sql:      "SELECT 1 -- hi\nFROM t",
			opts:     MaskOptions{Comments: true},
			expected: "SELECT 1      \nFROM t",
		},
		{
			name:     "block comment",
			sql:      "SELECT /* x */ 1",
			opts:     MaskOptions{Comments: true},
			expected: "SELECT         1",
		},
		{
			name:     "string contents",
			sql:      "WHERE a = 'from x'",
			opts:     MaskOptions{Strings: true},
			expected: "WHERE a = '      '",
		},
		{
			name:     "comment marker inside string is kept",
			sql:      "SELECT '--' FROM t",
			opts:     MaskOptions{Comments: true},
			expected: "SELECT '--' FROM t",
		},
		{
			name:     "escaped quote",
			sql:      "SELECT 'it''s' FROM t",
			opts:     MaskOptions{Strings: true},
			expected: "SELECT '     ' FROM t",
		},
		{
			name:     "identifiers",
			sql:      "SELECT `a b` FROM \"t x\"",
			opts:     MaskOptions{Identifiers: true},
			expected: "SELECT `   ` FROM \"   \"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(tt.sql, tt.opts)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, got, len(tt.sql))
		})
	}
}

func TestScanBalance(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected Balance
	}{
		{name: "balanced", sql: "SELECT COUNT(*) FROM t", expected: Balance{}},
		{name: "missing close", sql: "SELECT COUNT(* FROM (t", expected: Balance{Depth: 2}},
		{name: "surplus close", sql: "SELECT a) FROM t", expected: Balance{Surplus: 1}},
		{name: "paren in string", sql: "SELECT '(' FROM t", expected: Balance{}},
		{name: "open string", sql: "SELECT 'abc FROM t", expected: Balance{OpenQuote: '\''}},
		{name: "open identifier", sql: "SELECT `abc FROM t", expected: Balance{OpenQuote: '`'}},
		{name: "open block comment", sql: "SELECT 1 /* x", expected: Balance{OpenBlockComment: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanBalance(tt.sql)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected == Balance{}, got.Balanced())
		})
	}
}

func TestStringLiterals(t *testing.T) {
	got := StringLiterals("SELECT 'a', 'it''s' -- 'not me'\nFROM t WHERE x = 'b'")
	assert.Equal(t, []string{"a", "it's", "b"}, got)
}

func TestLiterals(t *testing.T) {
	got := Literals(`SELECT "it's" AS c, 'a', 'it''s' /* 'x' */ FROM t`)
	assert.Equal(t, []Literal{
		{Value: "a", Offset: 20},
		{Value: "it's", Offset: 25},
	}, got)

	repeated := "SELECT 'v', 'v'"
	got = Literals(repeated)
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].Offset)
	assert.Equal(t, 12, got[1].Offset)
	assert.Equal(t, byte('\''), repeated[got[1].Offset])
}

func TestKeywordSearch(t *testing.T) {
	sql := "select a from orders group   by a order by a"

	assert.True(t, ContainsKeyword(sql, "GROUP BY"))
	assert.False(t, ContainsKeyword(sql, "der"))
	assert.Equal(t, 1, CountKeyword(sql, "order"), "orders must not match")
	assert.Equal(t, 9, IndexKeyword(sql, "from"))
	assert.Equal(t, -1, IndexKeywordFrom(sql, "from", 10))
	assert.True(t, ContainsAny(sql, "limit", "order by"))
}

func TestMatchingParen(t *testing.T) {
	sql := "SELECT (a + (b)) FROM (SELECT ')' FROM t) x"
	assert.Equal(t, 15, MatchingParen(sql, 7))
	assert.Equal(t, 14, MatchingParen(sql, 12))
	open := 22
	require.Equal(t, byte('('), sql[open])
	assert.Equal(t, 40, MatchingParen(sql, open))
	assert.Equal(t, -1, MatchingParen(sql, 0))
	assert.Equal(t, -1, MatchingParen("(a", 0))
}

func TestSplitTopLevel(t *testing.T) {
	got := SplitTopLevel("a, COALESCE(b, c), 'x,y' AS s, , d", ',')
	assert.Equal(t, []string{"a", "COALESCE(b, c)", "'x,y' AS s", "d"}, got)
}

func TestSelectList(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		at       int
		list     string
		hasFrom  bool
		expectOK bool
	}{
		{name: "simple", sql: "SELECT a, b FROM t", list: "a, b", hasFrom: true, expectOK: true},
		{name: "distinct", sql: "SELECT DISTINCT a FROM t", list: "a", hasFrom: true, expectOK: true},
		{name: "no from", sql: "SELECT 1 + 1", list: "1 + 1", expectOK: true},
		{name: "nested from ignored", sql: "SELECT (SELECT max(x) FROM u) AS m FROM t", list: "(SELECT max(x) FROM u) AS m", hasFrom: true, expectOK: true},
		{name: "not a select", sql: "UPDATE t SET a = 1", expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, fromAt, ok := SelectList(tt.sql, tt.at)
			require.Equal(t, tt.expectOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.list, list)
			assert.Equal(t, tt.hasFrom, fromAt >= 0)
		})
	}
}

func TestScopeEnd(t *testing.T) {
	sql := "SELECT * FROM (SELECT a FROM t) x"
	inner := 15
	assert.Equal(t, 30, ScopeEnd(sql, inner))
	assert.Equal(t, len(sql), ScopeEnd(sql, 0))
	assert.Equal(t, 1, DepthAt(sql, inner))
	assert.Equal(t, 0, DepthAt(sql, len(sql)))
}

func TestLocate(t *testing.T) {
	sql := "SELECT a\nFROM t\nWHERE b = 1"

	line, col := Locate(sql, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = Locate(sql, 14)
	assert.Equal(t, 2, line)
	assert.Equal(t, 6, col)

	line, col, ok := LocateSubstring(sql, "where")
	require.True(t, ok)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)

	_, _, ok = LocateSubstring(sql, "limit")
	assert.False(t, ok)
}

func TestIsComment(t *testing.T) {
	assert.True(t, IsComment("  -- note"))
	assert.True(t, IsComment("/* block */"))
	assert.True(t, IsComment("# hash"))
	assert.False(t, IsComment("SELECT 1 -- trailing"))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, Lines("a\r\nb\n"))
	assert.Equal(t, 2, LineCount("a\n\n  \nb"))
}
