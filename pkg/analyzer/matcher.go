package analyzer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// HeuristicMatcher decides whether a rule without a registered predicate
// applies to a query. query is lowercased with comments blanked. It returns the
// byte offset of the match, or -1 when the position is unknown.
type HeuristicMatcher interface {
	Match(rule *types.Rule, query string) (offset int, matched bool)
}

// KeywordMatcher takes the longest words of a rule description and reports a
// match when any of them appears verbatim in the query.
//
// This is deliberately coarse: "Avoid using DISTINCT on large tables" matches
// any query containing "distinct", "tables" or "avoid", whatever its meaning.
type KeywordMatcher struct {
	// Words is how many words are taken from the description. Default 3.
	Words int
	// MinLength excludes words of this length or shorter. Default 3.
	MinLength int
}

// Keywords returns the words the matcher looks for, longest first. Ties keep
// their order in the description.
func (m KeywordMatcher) Keywords(description string) []string {
	n, minLen := m.Words, m.MinLength
	if n <= 0 {
		n = 3
	}
	if minLen <= 0 {
		minLen = 3
	}

	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if len([]rune(w)) <= minLen || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	sort.SliceStable(words, func(i, j int) bool {
		return len([]rune(words[i])) > len([]rune(words[j]))
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Match implements HeuristicMatcher.
func (m KeywordMatcher) Match(rule *types.Rule, query string) (int, bool) {
	if rule == nil {
		return -1, false
	}
	best := -1
	for _, w := range m.Keywords(rule.Description) {
		if idx := strings.Index(query, w); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best, best >= 0
}
