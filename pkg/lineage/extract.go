package lineage

import (
	"regexp"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

const identPart = "`[^`]+`|\"[^\"]+\"|[A-Za-z_][\\w$-]*"

var (
	withKeyword    = regexp.MustCompile(`(?i)\bwith(\s+recursive)?\s`)
	fromOrJoin     = regexp.MustCompile(`(?i)\b(from|join)\b`)
	cteName        = regexp.MustCompile(`^\s*(` + identPart + `)\s*`)
	tableName      = regexp.MustCompile(`^\s*((?:` + identPart + `)(?:\.(?:` + identPart + `))*)`)
	aliasClause    = regexp.MustCompile(`(?i)^\s+(?:as\s+)?([A-Za-z_][\w$]*)`)
	qualifiedName  = regexp.MustCompile(`\b([A-Za-z_][\w$]*)\.([A-Za-z_][\w$]*)\b`)
	columnEquality = regexp.MustCompile(`\b([A-Za-z_][\w$]*)\.([A-Za-z_][\w$]*)\s*=\s*([A-Za-z_][\w$]*)\.([A-Za-z_][\w$]*)\b`)
	usingColumns   = regexp.MustCompile(`(?i)^\s*using\s*\(([^)]*)\)`)
)

// Words that end a table reference rather than alias it.
var reservedAfterTable = map[string]bool{
	"where": true, "join": true, "inner": true, "left": true, "right": true,
	"full": true, "outer": true, "cross": true, "natural": true, "on": true,
	"using": true, "group": true, "order": true, "having": true, "limit": true,
	"union": true, "intersect": true, "except": true, "qualify": true,
	"window": true, "lateral": true, "sample": true, "tablesample": true,
	"for": true, "pivot": true, "unpivot": true, "set": true, "with": true,
	"fetch": true, "offset": true, "select": true, "when": true, "then": true,
	"values": true, "at": true, "before": true, "changes": true, "match_recognize": true,
	"semi": true, "anti": true, "distribute": true, "sort": true, "cluster": true,
}

// Clauses that end a WHERE clause.
var whereTerminators = []string{
	"group by", "having", "qualify", "window", "order by", "limit", "union",
	"intersect", "except",
}

// Clauses that end an ON or USING condition.
var joinTerminators = append([]string{"join", "where"}, whereTerminators...)

type cte struct {
	node      *types.TableNode
	bodyStart int
	bodyEnd   int
	recursive bool
}

// tableRef is one FROM or JOIN item.
type tableRef struct {
	node *types.TableNode
	// keyword is the offset of the FROM or JOIN introducing the item.
	keyword int
	join    bool
	start   int
	end     int
	// subquery body bounds, when the item is a parenthesised query.
	bodyStart int
	bodyEnd   int
}

func (r tableRef) subquery() bool { return r.bodyEnd > r.bodyStart }

type extraction struct {
	code    string
	blocks  *sqltext.Blocks
	state   *graphState
	aliases map[string]*types.TableNode
	ctes    []cte
	refs    []tableRef
}

func newExtraction(sql string) *extraction {
	code := sqltext.Mask(sql, sqltext.MaskOptions{Comments: true, Strings: true})
	return &extraction{
		code:    code,
		blocks:  sqltext.NewBlocks(code),
		state:   newGraphState(),
		aliases: make(map[string]*types.TableNode),
	}
}

func (x *extraction) skipSpace(pos int) int {
	for pos < len(x.code) && strings.ContainsRune(" \t\r\n", rune(x.code[pos])) {
		pos++
	}
	return pos
}

// alias registers name for t unless it is already taken.
func (x *extraction) alias(name string, t *types.TableNode) {
	key := strings.ToLower(name)
	if _, ok := x.aliases[key]; !ok {
		x.aliases[key] = t
	}
}

func (x *extraction) resolve(qualifier string) *types.TableNode {
	return x.aliases[strings.ToLower(qualifier)]
}

func (x *extraction) cteByName(name string) *types.TableNode {
	for _, c := range x.ctes {
		if strings.EqualFold(c.node.ID, name) {
			return c.node
		}
	}
	return nil
}

// collectCTEs records every `WITH [RECURSIVE] name [(cols)] AS (...)` block.
func (x *extraction) collectCTEs() {
	for _, loc := range withKeyword.FindAllStringSubmatchIndex(x.code, -1) {
		recursive := loc[2] >= 0
		pos := loc[1]
		for {
			m := cteName.FindStringSubmatchIndex(x.code[pos:])
			if m == nil {
				break
			}
			name := unquote(x.code[pos+m[2] : pos+m[3]])
			p := pos + m[1]
			if p < len(x.code) && x.code[p] == '(' {
				close := sqltext.MatchingParen(x.code, p)
				if close < 0 {
					break
				}
				p = x.skipSpace(close + 1)
			}
			if !strings.EqualFold(x.blocks.NextWord(p), "as") {
				break
			}
			p = x.skipSpace(p + 2)
			for {
				word := strings.ToLower(x.blocks.NextWord(p))
				if word != "not" && word != "materialized" {
					break
				}
				p = x.skipSpace(p + len(word))
			}
			if p >= len(x.code) || x.code[p] != '(' {
				break
			}
			close := sqltext.MatchingParen(x.code, p)
			if close < 0 {
				break
			}
			if x.cteByName(name) == nil {
				node := x.state.addTable(name, name, types.TableKindCTE)
				x.ctes = append(x.ctes, cte{node: node, bodyStart: p + 1, bodyEnd: close, recursive: recursive})
				x.alias(name, node)
			}
			pos = x.skipSpace(close + 1)
			if pos >= len(x.code) || x.code[pos] != ',' {
				break
			}
			pos++
		}
	}
}

// collectTables records the items of every FROM list and JOIN.
func (x *extraction) collectTables() {
	for _, loc := range fromOrJoin.FindAllStringIndex(x.code, -1) {
		keyword := loc[0]
		isJoin := strings.EqualFold(x.code[loc[0]:loc[1]], "join")
		if !isJoin {
			// EXTRACT(YEAR FROM d), TRIM(x FROM y) and IS DISTINCT FROM.
			if !x.blocks.InQuery(keyword) || strings.EqualFold(x.blocks.PreviousWord(keyword), "distinct") {
				continue
			}
		}

		pos := loc[1]
		for {
			ref, ok := x.tableItem(keyword, isJoin, pos)
			if !ok {
				break
			}
			x.refs = append(x.refs, ref)
			pos = x.skipSpace(ref.end)
			if isJoin || pos >= len(x.code) || x.code[pos] != ',' {
				break
			}
			pos++
		}
	}
}

// tableItem reads one table reference or aliased subquery at pos.
func (x *extraction) tableItem(keyword int, isJoin bool, pos int) (tableRef, bool) {
	pos = x.skipSpace(pos)
	ref := tableRef{keyword: keyword, join: isJoin, start: pos}
	if pos >= len(x.code) {
		return ref, false
	}

	if x.code[pos] == '(' {
		close := sqltext.MatchingParen(x.code, pos)
		if close < 0 {
			return ref, false
		}
		ref.bodyStart, ref.bodyEnd, ref.end = pos+1, close, close+1
		if name, end := x.aliasAt(close + 1); name != "" {
			ref.node = x.state.addTable(name, name, types.TableKindSubquery)
			ref.end = end
			x.alias(name, ref.node)
		}
		return ref, true
	}

	m := tableName.FindStringSubmatchIndex(x.code[pos:])
	if m == nil {
		return ref, false
	}
	raw := x.code[pos+m[2] : pos+m[3]]
	ref.end = pos + m[1]
	// Table functions such as UNNEST(...) or TABLE(...) are not tables.
	if after := x.skipSpace(ref.end); after < len(x.code) && x.code[after] == '(' {
		return ref, false
	}
	if reservedAfterTable[strings.ToLower(raw)] {
		return ref, false
	}

	path := splitPath(raw)
	bare := path[len(path)-1]
	name, end := x.aliasAt(ref.end)
	if end > ref.end {
		ref.end = end
	}

	if c := x.cteByName(bare); c != nil && len(path) == 1 {
		ref.node = c
	} else {
		id := bare
		if name != "" {
			id = name
		}
		ref.node = x.state.addTable(id, strings.Join(path, "."), types.TableKindBase)
	}
	if name != "" {
		x.alias(name, ref.node)
	}
	x.alias(bare, ref.node)
	return ref, true
}

// aliasAt reads an optional `[AS] alias` at pos.
func (x *extraction) aliasAt(pos int) (string, int) {
	m := aliasClause.FindStringSubmatchIndex(x.code[pos:])
	if m == nil {
		return "", pos
	}
	name := x.code[pos+m[2] : pos+m[3]]
	if reservedAfterTable[strings.ToLower(name)] {
		return "", pos
	}
	return name, pos + m[1]
}

// collectColumns attaches every qualified alias.column to its table.
func (x *extraction) collectColumns() {
	for _, m := range qualifiedName.FindAllStringSubmatchIndex(x.code, -1) {
		if x.insideTableRef(m[0]) || !x.standalone(m[0], m[1]) {
			continue
		}
		t := x.resolve(x.code[m[2]:m[3]])
		if t == nil {
			continue
		}
		x.state.addColumn(t, x.code[m[4]:m[5]])
	}
}

// standalone rejects matches that are part of a longer dotted path or a
// function call such as SAFE.DIVIDE(...).
func (x *extraction) standalone(start, end int) bool {
	if start > 0 && (x.code[start-1] == '.' || x.code[start-1] == '`' || x.code[start-1] == '"') {
		return false
	}
	if end < len(x.code) && x.code[end] == '.' {
		return false
	}
	after := x.skipSpace(end)
	return after >= len(x.code) || x.code[after] != '('
}

func (x *extraction) insideTableRef(pos int) bool {
	for _, r := range x.refs {
		if r.subquery() {
			continue
		}
		if pos >= r.start && pos < r.end {
			return true
		}
	}
	return false
}

// collectJoins turns join conditions into Join relationships. When none are
// found, WHERE equalities between two tables become Reference relationships.
func (x *extraction) collectJoins() {
	found := false
	for i, r := range x.refs {
		if !r.join || r.node == nil {
			continue
		}
		stop := x.blocks.Next(r.end, x.blocks.End(r.keyword), joinTerminators...)
		if m := usingColumns.FindStringSubmatch(x.code[r.end:stop]); m != nil {
			if prev := x.previousRef(i); prev != nil {
				for _, col := range sqltext.SplitTopLevel(m[1], ',') {
					col = unquote(col)
					found = x.state.relateColumns(types.RelationshipJoin, r.node, col, prev, col) || found
				}
			}
			continue
		}
		for _, eq := range x.equalities(r.end, stop) {
			source, target := eq.left, eq.right
			if target.table == r.node && source.table != r.node {
				source, target = target, source
			}
			found = x.state.relateColumns(types.RelationshipJoin, source.table, source.column, target.table, target.column) || found
		}
	}
	if found {
		return
	}

	for _, span := range sqltext.KeywordSpans(x.code, "where") {
		stop := x.blocks.Next(span[1], x.blocks.End(span[0]), whereTerminators...)
		for _, eq := range x.equalities(span[1], stop) {
			if eq.left.table == eq.right.table {
				continue
			}
			x.state.relateColumns(types.RelationshipReference, eq.left.table, eq.left.column, eq.right.table, eq.right.column)
		}
	}
}

// previousRef returns the item preceding refs[i] in the same query block.
func (x *extraction) previousRef(i int) *types.TableNode {
	block := x.blocks.Start(x.refs[i].keyword)
	for j := i - 1; j >= 0; j-- {
		if x.refs[j].node != nil && x.blocks.Start(x.refs[j].keyword) == block {
			return x.refs[j].node
		}
	}
	return nil
}

type columnSide struct {
	table  *types.TableNode
	column string
}

type equality struct {
	left, right columnSide
}

// equalities returns the resolvable `a.x = b.y` pairs within [from, to).
func (x *extraction) equalities(from, to int) []equality {
	if from >= to {
		return nil
	}
	text := x.code[from:to]
	var out []equality
	for _, m := range columnEquality.FindAllStringSubmatchIndex(text, -1) {
		left, right := x.resolve(text[m[2]:m[3]]), x.resolve(text[m[6]:m[7]])
		if left == nil || right == nil {
			continue
		}
		out = append(out, equality{
			left:  columnSide{table: left, column: text[m[4]:m[5]]},
			right: columnSide{table: right, column: text[m[8]:m[9]]},
		})
	}
	return out
}

// collectCTEReferences relates a CTE to every other table whose id appears
// in its body. A recursive CTE may reference itself.
func (x *extraction) collectCTEReferences() {
	for _, c := range x.ctes {
		body := x.code[c.bodyStart:c.bodyEnd]
		for _, t := range x.state.graph.Tables {
			if t == c.node && !c.recursive {
				continue
			}
			if t.Kind == types.TableKindSubquery {
				continue
			}
			if sqltext.ContainsKeyword(body, t.ID) {
				x.state.relate(types.RelationshipReference, c.node, t)
			}
		}
	}
}

// collectSubqueries relates each aliased subquery to the tables read inside it.
func (x *extraction) collectSubqueries() {
	for _, r := range x.refs {
		if !r.subquery() || r.node == nil {
			continue
		}
		for _, inner := range x.refs {
			if inner.node == nil || inner.node == r.node {
				continue
			}
			if inner.keyword > r.bodyStart && inner.keyword < r.bodyEnd {
				x.state.relate(types.RelationshipSubquery, r.node, inner.node)
			}
		}
	}
}

// applyNamingConventions relates UPD_X to X_GROUP and X_FINAL to X, the
// staging conventions of incremental warehouse jobs.
func (x *extraction) applyNamingConventions() {
	for _, t := range x.state.graph.Tables {
		lower := strings.ToLower(t.ID)
		var target *types.TableNode
		switch {
		case strings.HasPrefix(lower, "upd_") && len(lower) > len("upd_"):
			target = x.state.table(t.ID[len("upd_"):] + "_group")
		case strings.HasSuffix(lower, "_final") && len(lower) > len("_final"):
			target = x.state.table(t.ID[:len(t.ID)-len("_final")])
		}
		if target == nil || target == t || x.state.graph.HasRelationship(t.ID, target.ID) {
			continue
		}
		x.state.relate(types.RelationshipReference, t, target)
	}
}

var identifierQuotes = strings.NewReplacer("`", "", "\"", "")

func splitPath(raw string) []string {
	var parts []string
	for _, p := range strings.Split(identifierQuotes.Replace(raw), ".") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{raw}
	}
	return parts
}

func unquote(name string) string {
	return strings.Trim(strings.TrimSpace(name), "`\"[]")
}
