package builtin

import "github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"

// query is the masked code of a statement indexed by parenthesis depth, so
// predicates can reason about clauses of the same query block.
type query struct {
	*sqltext.Blocks
	code string
}

func newQuery(code string) *query {
	return &query{Blocks: sqltext.NewBlocks(code), code: code}
}

// clauseTerminators end a FROM, JOIN or WHERE clause.
var clauseTerminators = []string{
	"join", "where", "group by", "having", "qualify", "window", "order by",
	"limit", "union", "intersect", "except", "fetch",
}
