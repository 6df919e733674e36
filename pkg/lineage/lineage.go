// Package lineage extracts a table and column dependency graph from a single
// query without parsing it.
//
// Extraction runs over the query text with comments and string literals
// masked out: CTE blocks, FROM/JOIN table references with their aliases,
// qualified alias.column references, join and WHERE equalities, CTE and
// subquery dependencies and a pair of naming conventions. The result is a
// types.SchemaGraph whose reference lists are kept symmetric.
package lineage

import (
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/advisor"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/logger"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Extractor builds lineage graphs.
type Extractor struct {
	logger logger.Interface
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for recovered failures.
func WithLogger(l logger.Interface) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: logger.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the default Extractor.
func Extract(sql string, platform types.Platform) *types.SchemaGraph {
	return New().Extract(sql, platform)
}

// Extract returns the lineage graph of sql. Empty or unrecognisable input
// yields a graph with no tables and no relationships; it never fails.
func (e *Extractor) Extract(sql string, platform types.Platform) (graph *types.SchemaGraph) {
	if strings.TrimSpace(sql) == "" {
		return emptyGraph()
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("lineage extraction failed",
				"platform", platform,
				"panic", r,
				"statement", advisor.NormalizeStatement(sql))
			graph = emptyGraph()
		}
	}()

	x := newExtraction(sql)
	x.collectCTEs()
	x.collectTables()
	x.collectColumns()
	x.collectJoins()
	x.collectCTEReferences()
	x.collectSubqueries()
	x.applyNamingConventions()
	x.state.reconcile()
	return x.state.graph
}
