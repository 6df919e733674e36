package fixer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/dialect"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/sqltext"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var misspellings = map[string]string{
	"SELCT":    "SELECT",
	"SELETC":   "SELECT",
	"SLECT":    "SELECT",
	"SELET":    "SELECT",
	"FRMO":     "FROM",
	"WHRE":     "WHERE",
	"WEHRE":    "WHERE",
	"WHER":     "WHERE",
	"GROPU":    "GROUP",
	"GRUOP":    "GROUP",
	"ODER":     "ORDER",
	"ORDR":     "ORDER",
	"JION":     "JOIN",
	"INNNER":   "INNER",
	"LFET":     "LEFT",
	"HAIVNG":   "HAVING",
	"HAVNIG":   "HAVING",
	"LIMT":     "LIMIT",
	"DISTICT":  "DISTINCT",
	"DISTNICT": "DISTINCT",
	"UNOIN":    "UNION",
}

var (
	misspelled     = regexp.MustCompile(`(?i)\b(` + strings.Join(sortedKeys(misspellings), "|") + `)\b`)
	nullComparison = regexp.MustCompile(`(?i)(!=|<>|=)\s*NULL\b`)
	positionalRef  = regexp.MustCompile(`(?i)\b(GROUP|ORDER)\s+BY\s+(?:[\w.]+\s*,\s*)*\d+\b`)
	selectStar     = regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?\*`)
	getDate        = regexp.MustCompile(`(?i)\b(?:GETDATE|SYSDATE)\s*\(\s*\)`)
)

var joinStops = []string{"join", "where", "group by", "order by", "having", "qualify", "limit", "union", "window"}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func genericChecks() []check {
	return []check{
		fixMisspellings,
		fixNullComparisons,
		closeQuotes,
		closeParentheses,
		appendSemicolon,
		detectJoinWithoutCondition,
		detectOrderBeforeGroup,
		detectPositionalReferences,
		detectSelectStar,
	}
}

func platformChecks(p types.Platform) []check {
	checks := []check{typeConventions}
	switch p {
	case types.PlatformBigQuery:
		checks = append(checks, bareDateFunctions("CURRENT_DATE", "CURRENT_TIMESTAMP"))
	case types.PlatformSnowflake:
		checks = append(checks, bareDateFunctions("CURRENT_DATE", "CURRENT_TIMESTAMP", "SYSDATE"))
	case types.PlatformDatabricks:
		checks = append(checks, databricksCurrentTimestamp)
	}
	return checks
}

// substitute replaces matches of pattern found outside comments and string
// literals. replace receives the submatch offsets and returns the new text,
// or false to keep the match. The offsets of replaced matches are returned.
func substitute(sql string, pattern *regexp.Regexp, replace func(m []int) (string, bool)) (string, []int) {
	code := sqltext.Code(sql)
	var b strings.Builder
	var offsets []int
	last := 0
	for _, m := range pattern.FindAllStringSubmatchIndex(code, -1) {
		with, ok := replace(m)
		if !ok {
			continue
		}
		b.WriteString(sql[last:m[0]])
		b.WriteString(with)
		last = m[1]
		offsets = append(offsets, m[0])
	}
	if len(offsets) == 0 {
		return sql, nil
	}
	b.WriteString(sql[last:])
	return b.String(), offsets
}

func fixMisspellings(s *state) {
	seen := map[string]bool{}
	out, _ := substitute(s.sql, misspelled, func(m []int) (string, bool) {
		word := s.sql[m[0]:m[1]]
		correct := misspellings[strings.ToUpper(word)]
		if !seen[strings.ToUpper(word)] {
			seen[strings.ToUpper(word)] = true
			s.report(m[0], types.SeverityLow, fmt.Sprintf("Misspelled keyword %s", word),
				fmt.Sprintf("Replaced with %s", correct), true)
		}
		if word == strings.ToLower(word) {
			return strings.ToLower(correct), true
		}
		return correct, true
	})
	s.sql = out
}

// updateSetRanges returns the [start, end) ranges of UPDATE ... SET
// assignment lists, where = NULL is an assignment.
func updateSetRanges(code string) [][2]int {
	if !sqltext.ContainsKeyword(code, "update") {
		return nil
	}
	blocks := sqltext.NewBlocks(code)
	var ranges [][2]int
	for _, span := range sqltext.KeywordSpans(code, "set") {
		if !blocks.Has(0, span[0], "update") {
			continue
		}
		to := blocks.End(span[1])
		if semi := strings.IndexByte(code[span[1]:], ';'); semi >= 0 && span[1]+semi < to {
			to = span[1] + semi
		}
		ranges = append(ranges, [2]int{span[1], blocks.Next(span[1], to, "where", "from")})
	}
	return ranges
}

func fixNullComparisons(s *state) {
	ranges := updateSetRanges(sqltext.Code(s.sql))
	out, _ := substitute(s.sql, nullComparison, func(m []int) (string, bool) {
		for _, r := range ranges {
			if m[0] >= r[0] && m[0] < r[1] {
				return "", false
			}
		}
		op := s.sql[m[2]:m[3]]
		if op == "=" && m[0] > 0 && strings.ContainsRune("<>!=", rune(s.sql[m[0]-1])) {
			return "", false
		}
		with, message := "IS NULL", "Comparison with NULL using ="
		if op != "=" {
			with, message = "IS NOT NULL", fmt.Sprintf("Comparison with NULL using %s", op)
		}
		if m[0] > 0 && s.sql[m[0]-1] != ' ' && s.sql[m[0]-1] != '\t' && s.sql[m[0]-1] != '\n' {
			with = " " + with
		}
		s.report(m[0], types.SeverityMedium, message,
			fmt.Sprintf("Use %s; comparisons with NULL are never true", strings.TrimSpace(with)), true)
		return with, true
	})
	s.sql = out
}

func closeQuotes(s *state) {
	b := sqltext.ScanBalance(s.sql)
	if b.OpenQuote != 0 {
		s.report(len(s.sql)-1, types.SeverityHigh, fmt.Sprintf("Unclosed %c quote", b.OpenQuote),
			"Closed the quote at the end of the query; check where the literal should end", true)
		s.sql += string(b.OpenQuote)
	}
	if b.OpenBlockComment {
		s.report(len(s.sql)-1, types.SeverityMedium, "Unclosed block comment",
			"Closed the comment at the end of the query", true)
		s.sql += " */"
	}
}

// tail returns the offset where trailing semicolons, whitespace and comments
// begin, and whether a semicolon is among them.
func tail(sql string) (end int, semicolon bool) {
	stripped := strings.TrimRight(sqltext.StripComments(sql), " \t\r\n")
	if strings.HasSuffix(stripped, ";") {
		semicolon = true
		stripped = strings.TrimRight(stripped[:len(stripped)-1], " \t\r\n")
	}
	return len(stripped), semicolon
}

func closeParentheses(s *state) {
	b := sqltext.ScanBalance(s.sql)
	if b.Surplus > 0 {
		code := sqltext.Code(s.sql)
		depth, at := 0, -1
		for i := 0; i < len(code) && at < 0; i++ {
			switch code[i] {
			case '(':
				depth++
			case ')':
				if depth == 0 {
					at = i
				}
				depth--
			}
		}
		s.report(at, types.SeverityHigh, "Unmatched closing parenthesis", "Remove the extra ')' or add the missing '('", false)
	}
	if b.Depth > 0 {
		end, _ := tail(s.sql)
		noun := "parenthesis"
		if b.Depth > 1 {
			noun = "parentheses"
		}
		s.report(end, types.SeverityHigh, fmt.Sprintf("%d unclosed %s", b.Depth, noun),
			"Closed at the end of the query; check where each group should end", true)
		s.sql = s.sql[:end] + strings.Repeat(")", b.Depth) + s.sql[end:]
	}
}

func appendSemicolon(s *state) {
	end, semicolon := tail(s.sql)
	if semicolon {
		return
	}
	s.report(end, types.SeverityLow, "Missing trailing semicolon", "Terminate statements with ';'", true)
	s.sql = s.sql[:end] + ";" + s.sql[end:]
}

func detectJoinWithoutCondition(s *state) {
	code := sqltext.Code(s.sql)
	blocks := sqltext.NewBlocks(code)
	for _, span := range sqltext.KeywordSpans(code, "join") {
		switch strings.ToLower(blocks.PreviousWord(span[0])) {
		case "cross", "natural":
			continue
		}
		switch strings.ToLower(blocks.NextWord(span[1])) {
		case "lateral", "unnest":
			continue
		}
		to := blocks.End(span[0])
		if semi := strings.IndexByte(code[span[1]:], ';'); semi >= 0 && span[1]+semi < to {
			to = span[1] + semi
		}
		end := blocks.Next(span[1], to, joinStops...)
		if blocks.Has(span[1], end, "on", "using") {
			continue
		}
		s.report(span[0], types.SeverityMedium, "JOIN without ON or USING",
			"Add a join condition, or write CROSS JOIN if a cartesian product is intended", false)
	}
}

func detectOrderBeforeGroup(s *state) {
	code := sqltext.Code(s.sql)
	blocks := sqltext.NewBlocks(code)
	for _, span := range sqltext.KeywordSpans(code, "group by") {
		if len(blocks.Find("order by", blocks.Start(span[0]), span[0])) > 0 {
			s.report(span[0], types.SeverityHigh, "ORDER BY appears before GROUP BY",
				"Move ORDER BY after GROUP BY and HAVING", false)
		}
	}
}

func detectPositionalReferences(s *state) {
	code := sqltext.Code(s.sql)
	seen := map[string]bool{}
	for _, m := range positionalRef.FindAllStringSubmatchIndex(code, -1) {
		clause := strings.ToUpper(code[m[2]:m[3]])
		if seen[clause] {
			continue
		}
		seen[clause] = true
		s.report(m[0], types.SeverityLow, fmt.Sprintf("Positional %s BY reference", clause),
			"Refer to columns by name so the query survives select list changes", false)
	}
}

func detectSelectStar(s *state) {
	if loc := selectStar.FindStringIndex(sqltext.Code(s.sql)); loc != nil {
		s.report(loc[0], types.SeverityLow, "SELECT * is discouraged",
			"List the columns you need", false)
	}
}

func typeConventions(s *state) {
	d := dialect.Get(s.platform)
	if d == nil {
		return
	}
	conventions := d.TypeConventions()
	if len(conventions) == 0 {
		return
	}
	to := make(map[string]string, len(conventions))
	names := make([]string, 0, len(conventions))
	for _, c := range conventions {
		to[c.From] = c.To
		names = append(names, c.From)
	}
	seen := map[string]bool{}
	out, _ := substitute(s.sql, dialect.TypePattern(names...), func(m []int) (string, bool) {
		name := strings.ToUpper(s.sql[m[4]:m[5]])
		if !seen[name] {
			seen[name] = true
			s.report(m[4], types.SeverityLow, fmt.Sprintf("Use %s instead of %s", to[name], name),
				fmt.Sprintf("%s spells this type %s", s.platform.DisplayName(), to[name]), true)
		}
		return s.sql[m[2]:m[3]] + to[name], true
	})
	s.sql = out
}

func bareDateFunctions(names ...string) check {
	pattern := regexp.MustCompile(`(?i)\b(?:` + strings.Join(names, "|") + `)\b`)
	return func(s *state) {
		code := sqltext.Code(s.sql)
		seen := map[string]bool{}
		out, _ := substitute(s.sql, pattern, func(m []int) (string, bool) {
			rest := strings.TrimLeft(code[m[1]:], " \t\r\n")
			if strings.HasPrefix(rest, "(") {
				return "", false
			}
			name := s.sql[m[0]:m[1]]
			if !seen[strings.ToUpper(name)] {
				seen[strings.ToUpper(name)] = true
				s.report(m[0], types.SeverityLow, fmt.Sprintf("%s without parentheses", strings.ToUpper(name)),
					fmt.Sprintf("Write %s()", name), true)
			}
			return name + "()", true
		})
		s.sql = out
	}
}

func databricksCurrentTimestamp(s *state) {
	reported := false
	out, _ := substitute(s.sql, getDate, func(m []int) (string, bool) {
		if !reported {
			reported = true
			s.report(m[0], types.SeverityLow, "GETDATE/SYSDATE are not Databricks functions",
				"Use current_timestamp()", true)
		}
		return "current_timestamp()", true
	})
	s.sql = out
}
