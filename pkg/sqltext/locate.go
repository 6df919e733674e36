package sqltext

import (
	"strings"
	"unicode/utf8"
)

// Locate converts a byte offset into a 1-based line and column. Columns count
// runes. Offsets past the end are clamped.
func Locate(sql string, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sql) {
		offset = len(sql)
	}
	prefix := sql[:offset]
	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	column = utf8.RuneCountInString(prefix[lineStart:]) + 1
	return line, column
}

// LocateSubstring finds the first case-insensitive occurrence of substr and
// returns its 1-based position.
func LocateSubstring(sql, substr string) (line, column int, ok bool) {
	if substr == "" {
		return 0, 0, false
	}
	idx := strings.Index(strings.ToLower(sql), strings.ToLower(substr))
	if idx < 0 {
		return 0, 0, false
	}
	line, column = Locate(sql, idx)
	return line, column, true
}

// Lines splits on \n, dropping a trailing \r from each line.
func Lines(sql string) []string {
	lines := strings.Split(sql, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// LineCount returns the number of non-blank lines.
func LineCount(sql string) int {
	n := 0
	for _, l := range strings.Split(sql, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
