package fixer

import (
	"strings"

	"github.com/leapstack-labs/leapsql/pkg/dialect"
	"github.com/leapstack-labs/leapsql/pkg/dialects/databricks"
	"github.com/leapstack-labs/leapsql/pkg/dialects/snowflake"
	"github.com/leapstack-labs/leapsql/pkg/format"
	"github.com/leapstack-labs/leapsql/pkg/parser"
	"github.com/pkg/errors"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// parserDialects are the platforms leapsql ships a grammar for.
var parserDialects = map[types.Platform]*dialect.Dialect{
	types.PlatformSnowflake:  snowflake.Snowflake,
	types.PlatformDatabricks: databricks.Databricks,
}

// ParserFormatter parses a single query with the leapsql parser of the
// platform and prints it back with the leapsql printer.
//
// The printer drops comments and only knows SELECT statements, so BigQuery
// queries, DDL and DML, scripts with several statements and commented
// queries are handed to Fallback (ClauseFormatter when nil). A query that
// does not parse is an error.
type ParserFormatter struct {
	Fallback Formatter
}

// Format implements Formatter.
func (f ParserFormatter) Format(sql string, platform types.Platform) (string, error) {
	d, ok := parserDialects[platform]
	body, semicolon := trimSemicolon(sql)
	if !ok || !parseable(body) {
		return f.fallback().Format(sql, platform)
	}

	stmt, err := parser.ParseWithDialect(body, d)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse %s query", platform.DisplayName())
	}
	out := strings.TrimRight(format.Format(stmt, d), "\n")
	if semicolon {
		out += ";"
	}
	return out, nil
}

func (f ParserFormatter) fallback() Formatter {
	if f.Fallback == nil {
		return ClauseFormatter{}
	}
	return f.Fallback
}

func trimSemicolon(sql string) (string, bool) {
	trimmed := strings.TrimSpace(sql)
	body := strings.TrimSuffix(trimmed, ";")
	return body, body != trimmed
}

// parseable reports whether body is one comment-free SELECT or WITH query.
func parseable(body string) bool {
	if sqltext.StripComments(body) != body {
		return false
	}
	code := sqltext.Code(body)
	if strings.ContainsRune(code, ';') {
		return false
	}
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(fields[0])
	return first == "select" || first == "with"
}
