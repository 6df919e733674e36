package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

type clauseKind int

const (
	partitionClause clauseKind = iota
	clusterClause
)

// clause is a top-level PARTITION BY, PARTITIONED BY or CLUSTER BY clause of a
// CREATE statement.
type clause struct {
	kind       clauseKind
	start, end int
	keys       string
}

// edit replaces text[start:end].
type edit struct {
	start, end int
	text       string
}

var clauseKeywords = map[types.Platform]map[string]clauseKind{
	types.PlatformBigQuery:   {"partition by": partitionClause, "cluster by": clusterClause},
	types.PlatformSnowflake:  {"cluster by": clusterClause},
	types.PlatformDatabricks: {"partitioned by": partitionClause, "cluster by": clusterClause},
}

// Unparenthesized clause bodies stop at these.
var clauseStops = []string{"partition by", "partitioned by", "cluster by", "options", "as", "using", "location", "tblproperties", "comment"}

// partitionPass relocates table layout clauses into the target's syntax.
// Statements without CREATE are left alone.
type partitionPass struct {
	source, target types.Platform
}

func (p partitionPass) Name() string { return PartitionClauses }

func (p partitionPass) Apply(lines []string) PassResult {
	text := joinLines(lines)
	code := sqltext.Code(text)
	blocks := sqltext.NewBlocks(code)
	res := PassResult{Lines: lines}

	clauses := findClauses(text, code, blocks, clauseKeywords[p.source])
	var edits []edit
	if len(clauses) > 0 {
		edits = p.relocate(text, clauses, &res)
	}
	if p.source == types.PlatformDatabricks {
		edits = append(edits, p.deltaOptions(text, code, blocks, &res)...)
	}
	if len(edits) == 0 {
		return res
	}
	res.Lines = strings.Split(applyEdits(text, edits), "\n")
	return res
}

func findClauses(text, code string, blocks *sqltext.Blocks, keywords map[string]clauseKind) []clause {
	var out []clause
	for kw, kind := range keywords {
		for _, span := range sqltext.KeywordSpans(code, kw) {
			if blocks.Depth(span[0]) != 0 || !blocks.Has(0, span[0], "create") {
				continue
			}
			c := clause{kind: kind, start: span[0]}
			body := span[1]
			for body < len(code) && (code[body] == ' ' || code[body] == '\t' || code[body] == '\n' || code[body] == '\r') {
				body++
			}
			if body < len(code) && code[body] == '(' {
				closing := blocks.End(body + 1)
				c.keys = text[body+1 : closing]
				c.end = closing
				if closing < len(code) {
					c.end++
				}
			} else {
				to := len(code)
				if semi := strings.IndexByte(code[body:], ';'); semi >= 0 {
					to = body + semi
				}
				c.end = blocks.Next(body, to, clauseStops...)
				for c.end > body && strings.ContainsRune(" \t\r\n", rune(code[c.end-1])) {
					c.end--
				}
				c.keys = text[body:c.end]
			}
			c.keys = strings.TrimSpace(c.keys)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func (p partitionPass) relocate(text string, clauses []clause, res *PassResult) []edit {
	var partition, cluster *clause
	for i := range clauses {
		c := &clauses[i]
		switch {
		case c.kind == partitionClause && partition == nil:
			partition = c
		case c.kind == clusterClause && cluster == nil:
			cluster = c
		}
	}
	first := clauses[0]
	line, _ := sqltext.Locate(text, first.start)
	report := func(sev types.Severity, msg, suggestion string) {
		res.Issues = append(res.Issues, types.MigrationIssue{
			Line:       types.IntPtr(line),
			Message:    msg,
			Suggestion: suggestion,
			Severity:   sev,
		})
		res.Deduction += deductionFor(sev)
	}
	merged := func() string {
		var keys []string
		for _, c := range []*clause{partition, cluster} {
			if c != nil {
				keys = append(keys, c.keys)
			}
		}
		return strings.Join(keys, ", ")
	}
	var edits []edit
	replace := func(c *clause, with string) {
		if c != nil {
			edits = append(edits, edit{start: c.start, end: c.end, text: with})
		}
	}

	switch p.target {
	case types.PlatformSnowflake:
		replace(&first, fmt.Sprintf("CLUSTER BY (%s)", merged()))
		for i := 1; i < len(clauses); i++ {
			replace(&clauses[i], "")
		}
		if partition != nil && p.source == types.PlatformBigQuery {
			report(types.SeverityMedium, "Snowflake has no user-defined partitioning; the partition key was folded into CLUSTER BY",
				"Snowflake micro-partitions automatically; keep only keys that are filtered on")
		} else {
			report(types.SeverityLow, "Converted table layout clauses to CLUSTER BY", "Review clustering keys for Snowflake cost")
		}

	case types.PlatformDatabricks:
		if partition != nil {
			replace(partition, fmt.Sprintf("PARTITIONED BY (%s)", partition.keys))
			if strings.Contains(partition.keys, "(") {
				report(types.SeverityMedium, "Databricks partitions on columns, not expressions",
					fmt.Sprintf("Add a generated column for %s and partition on it", partition.keys))
			} else {
				report(types.SeverityLow, "Converted PARTITION BY to PARTITIONED BY", "Avoid partitioning small tables in Delta")
			}
			if cluster != nil {
				replace(cluster, "")
				report(types.SeverityMedium, "Databricks cannot combine PARTITIONED BY with CLUSTER BY; the clustering keys were dropped",
					fmt.Sprintf("Run OPTIMIZE <table> ZORDER BY (%s)", cluster.keys))
			}
		} else if cluster != nil {
			replace(cluster, fmt.Sprintf("CLUSTER BY (%s)", cluster.keys))
			report(types.SeverityLow, "Converted CLUSTER BY to liquid clustering", "Liquid clustering needs a recent Databricks runtime")
		}

	case types.PlatformBigQuery:
		if partition != nil {
			keys := partition.keys
			if parts := sqltext.SplitTopLevel(keys, ','); len(parts) > 1 {
				keys = strings.TrimSpace(parts[0])
				report(types.SeverityMedium, "BigQuery partitions on a single column; only the first key was kept",
					"Move the remaining partition keys into CLUSTER BY")
			}
			replace(partition, "PARTITION BY "+keys)
			report(types.SeverityLow, "Converted PARTITIONED BY to PARTITION BY", "Partition on a DATE or TIMESTAMP column for pruning")
		}
		if cluster != nil {
			replace(cluster, "CLUSTER BY "+cluster.keys)
			if strings.Contains(cluster.keys, "(") {
				report(types.SeverityMedium, "BigQuery clusters on columns, not expressions",
					"Materialise the expression as a column and cluster on it")
			} else {
				report(types.SeverityLow, "Converted CLUSTER BY to BigQuery syntax", "Add PARTITION BY on a DATE column to enable pruning")
			}
		}
	}
	return edits
}

func (p partitionPass) deltaOptions(text, code string, blocks *sqltext.Blocks, res *PassResult) []edit {
	var edits []edit
	for _, span := range sqltext.KeywordSpans(code, "using delta") {
		if blocks.Depth(span[0]) != 0 {
			continue
		}
		edits = append(edits, edit{start: span[0], end: span[1]})
		line, _ := sqltext.Locate(text, span[0])
		res.Issues = append(res.Issues, types.MigrationIssue{
			Line:       types.IntPtr(line),
			Message:    "Removed USING DELTA table format clause",
			Suggestion: fmt.Sprintf("%s manages its own storage format", p.target.DisplayName()),
			Severity:   types.SeverityLow,
		})
		res.Deduction += lowDeduction
	}
	for _, kw := range []string{"tblproperties", "zorder by"} {
		for _, span := range sqltext.KeywordSpans(code, kw) {
			line, _ := sqltext.Locate(text, span[0])
			res.Issues = append(res.Issues, types.MigrationIssue{
				Line:       types.IntPtr(line),
				Message:    fmt.Sprintf("%s has no %s equivalent", strings.ToUpper(kw), p.target.DisplayName()),
				Suggestion: "Translate table maintenance settings by hand",
				Severity:   types.SeverityMedium,
			})
			res.Deduction += mediumDeduction
		}
	}
	return edits
}

// applyEdits applies non-overlapping edits. A removal that leaves its line
// blank removes the whole line.
func applyEdits(text string, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	last := len(text) + 1
	for _, e := range edits {
		if e.end > last {
			continue
		}
		start, end := e.start, e.end
		if e.text == "" {
			lineStart := strings.LastIndexByte(text[:start], '\n') + 1
			lineEnd := len(text)
			if i := strings.IndexByte(text[end:], '\n'); i >= 0 {
				lineEnd = end + i
			}
			if strings.TrimSpace(text[lineStart:start]) == "" && strings.TrimSpace(text[end:lineEnd]) == "" {
				start, end = lineStart, lineEnd
				if end < len(text) {
					end++
				} else if start > 0 {
					start--
				}
			} else {
				for start > 0 && (text[start-1] == ' ' || text[start-1] == '\t') {
					start--
				}
			}
		}
		text = text[:start] + e.text + text[end:]
		last = start
	}
	return text
}
