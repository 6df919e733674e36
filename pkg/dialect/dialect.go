// Package dialect holds the static lookup tables for each supported warehouse:
// known functions, non-standard functions, type names and mappings, and the
// keyword hints the engines use for partitioning, sampling and caching.
//
// All tables are built once at package initialisation and never mutated.
// Accessors return copies so callers cannot change shared state.
package dialect

import (
	"sort"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// Rewrite is a single whole-word substitution.
type Rewrite struct {
	From string
	To   string
}

// Dialect describes one warehouse.
type Dialect struct {
	Platform types.Platform
	// IdentifierQuote is the character used to quote identifiers.
	IdentifierQuote byte

	functions           map[string]struct{}
	nonStandard         map[string]string
	typeNames           []string
	typeConventions     []Rewrite
	samplingKeywords    []string
	partitionKeywords   []string
	partitionColumns    []string
	cacheKeywords       []string
	nonDeterministic    []string
	currentTimeFunction string
}

// Get returns the dialect for p, or nil when p is not a known platform.
func Get(p types.Platform) *Dialect {
	return dialects[p]
}

// HasFunction reports whether name is a known function of the dialect.
func (d *Dialect) HasFunction(name string) bool {
	_, ok := d.functions[strings.ToUpper(name)]
	return ok
}

// Functions returns the known function names, sorted.
func (d *Dialect) Functions() []string {
	names := make([]string, 0, len(d.functions))
	for name := range d.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NonStandardFunctions returns the functions that only exist in this dialect,
// keyed by name, with a portability suggestion as value.
func (d *Dialect) NonStandardFunctions() map[string]string {
	out := make(map[string]string, len(d.nonStandard))
	for k, v := range d.nonStandard {
		out[k] = v
	}
	return out
}

// NonStandardFunctionNames returns the non-standard function names, sorted.
func (d *Dialect) NonStandardFunctionNames() []string {
	names := make([]string, 0, len(d.nonStandard))
	for name := range d.nonStandard {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeNames returns the native type names of the dialect.
func (d *Dialect) TypeNames() []string { return cloneStrings(d.typeNames) }

// TypeConventions returns the type-name rewrites the fixer applies so DDL and
// casts use the dialect's preferred spelling.
func (d *Dialect) TypeConventions() []Rewrite {
	return append([]Rewrite(nil), d.typeConventions...)
}

// SamplingKeywords returns the clauses that sample a table.
func (d *Dialect) SamplingKeywords() []string { return cloneStrings(d.samplingKeywords) }

// PartitionKeywords returns the clauses and pseudo columns that indicate
// partition or cluster pruning.
func (d *Dialect) PartitionKeywords() []string { return cloneStrings(d.partitionKeywords) }

// PartitionColumns returns column names that usually carry a partition key.
func (d *Dialect) PartitionColumns() []string { return cloneStrings(d.partitionColumns) }

// CacheKeywords returns the keywords that indicate result or data caching.
func (d *Dialect) CacheKeywords() []string { return cloneStrings(d.cacheKeywords) }

// NonDeterministicFunctions returns functions whose result changes per run.
func (d *Dialect) NonDeterministicFunctions() []string { return cloneStrings(d.nonDeterministic) }

// CurrentTimestamp returns the dialect's spelling of the current timestamp call.
func (d *Dialect) CurrentTimestamp() string { return d.currentTimeFunction }

// QuoteIdentifier quotes each dot separated part of a qualified name the way
// the dialect expects. BigQuery quotes the whole path with one pair of backticks.
func (d *Dialect) QuoteIdentifier(name string) string {
	parts := strings.Split(unquote(name), ".")
	q := string(d.IdentifierQuote)
	if d.Platform == types.PlatformBigQuery {
		return q + strings.Join(parts, ".") + q
	}
	for i, p := range parts {
		parts[i] = q + p + q
	}
	return strings.Join(parts, ".")
}

// PartitionHint reports whether a column name looks like a partition or date key.
func (d *Dialect) PartitionHint(column string) bool {
	column = strings.ToLower(column)
	for _, c := range d.partitionColumns {
		if column == c {
			return true
		}
	}
	for _, suffix := range partitionSuffixes {
		if strings.HasSuffix(column, suffix) {
			return true
		}
	}
	return strings.Contains(column, "partition")
}

func unquote(name string) string {
	return strings.NewReplacer("`", "", `"`, "", "[", "", "]", "").Replace(name)
}

func cloneStrings(in []string) []string {
	return append([]string(nil), in...)
}

func set(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[strings.ToUpper(n)] = struct{}{}
	}
	return out
}

func union(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}
