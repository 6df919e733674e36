package sqltext

import (
	"regexp"
	"strings"
)

// KeywordPattern compiles a case-insensitive, whole-word pattern for a keyword.
// Multi-word keywords such as "GROUP BY" match any run of whitespace between
// the words.
func KeywordPattern(keyword string) *regexp.Regexp {
	words := strings.Fields(keyword)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

// ContainsKeyword reports whether keyword appears in text as a whole word.
func ContainsKeyword(text, keyword string) bool {
	return KeywordPattern(keyword).MatchString(text)
}

// IndexKeyword returns the byte offset of the first whole-word occurrence of
// keyword, or -1.
func IndexKeyword(text, keyword string) int {
	return IndexKeywordFrom(text, keyword, 0)
}

// IndexKeywordFrom is IndexKeyword starting the search at from.
func IndexKeywordFrom(text, keyword string, from int) int {
	if from < 0 {
		from = 0
	}
	if from >= len(text) {
		return -1
	}
	loc := KeywordPattern(keyword).FindStringIndex(text[from:])
	if loc == nil {
		return -1
	}
	return from + loc[0]
}

// KeywordSpans returns the [start, end) offsets of every occurrence of keyword.
func KeywordSpans(text, keyword string) [][]int {
	return KeywordPattern(keyword).FindAllStringIndex(text, -1)
}

// CountKeyword counts whole-word occurrences of keyword.
func CountKeyword(text, keyword string) int {
	return len(KeywordSpans(text, keyword))
}

// ContainsAny reports whether any of the keywords appears in text.
func ContainsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}

// IsIdentByte reports whether c can be part of an unquoted identifier.
func IsIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
