package sqltext

import "strings"

// MatchingParen returns the offset of the ')' that closes the '(' at open, or
// -1 when open is not a '(' or the span never closes. Parentheses inside
// quotes and comments are ignored.
func MatchingParen(sql string, open int) int {
	if open < 0 || open >= len(sql) || sql[open] != '(' {
		return -1
	}
	code := Mask(sql, MaskOptions{Comments: true, Strings: true, Identifiers: true})
	depth := 0
	for i := open; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ScopeEnd returns the offset of the ')' that closes the parenthesised scope
// containing offset, or len(sql) when offset sits at the top level.
func ScopeEnd(sql string, offset int) int {
	code := Mask(sql, MaskOptions{Comments: true, Strings: true, Identifiers: true})
	depth := 0
	for i := offset; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return len(sql)
}

// DepthAt returns the parenthesis depth at offset.
func DepthAt(sql string, offset int) int {
	code := Mask(sql, MaskOptions{Comments: true, Strings: true, Identifiers: true})
	if offset > len(code) {
		offset = len(code)
	}
	depth := 0
	for i := 0; i < offset; i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// SplitTopLevel splits s on sep, ignoring separators nested in parentheses,
// quotes or comments. Parts are trimmed and empty parts dropped.
func SplitTopLevel(s string, sep byte) []string {
	code := Mask(s, MaskOptions{Comments: true, Strings: true, Identifiers: true})
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					parts = append(parts, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}

// SelectList returns the projection of the SELECT starting at selectAt: the
// text after SELECT [DISTINCT|ALL] up to the FROM of the same scope, or up to
// the end of the scope when there is no FROM. ok is false when selectAt does
// not point at a SELECT keyword.
func SelectList(sql string, selectAt int) (list string, fromAt int, ok bool) {
	code := Code(sql)
	if selectAt < 0 || selectAt+6 > len(code) || !strings.EqualFold(code[selectAt:selectAt+6], "select") {
		return "", -1, false
	}
	start := selectAt + 6
	end := ScopeEnd(sql, start)
	depth := 0
	fromAt = -1
	for i := start; i < end; i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth != 0 || !isWordAt(code, i, "from") {
			continue
		}
		fromAt = i
		break
	}
	stop := end
	if fromAt >= 0 {
		stop = fromAt
	}
	list = strings.TrimSpace(sql[start:stop])
	lower := strings.ToLower(list)
	for _, prefix := range []string{"distinct ", "all "} {
		if strings.HasPrefix(lower, prefix) {
			list = strings.TrimSpace(list[len(prefix):])
			break
		}
	}
	return list, fromAt, true
}

func isWordAt(text string, i int, word string) bool {
	if i+len(word) > len(text) || !strings.EqualFold(text[i:i+len(word)], word) {
		return false
	}
	if i > 0 && IsIdentByte(text[i-1]) {
		return false
	}
	end := i + len(word)
	return end == len(text) || !IsIdentByte(text[end])
}
