package advisor

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[\t ]+`)
	blankLines      = regexp.MustCompile(`\n+`)
	indentedLines   = regexp.MustCompile(`\n\s+`)
)

// NormalizeStatement formats and limits the max length of SQL statements for logging.
// It removes extra whitespace, normalizes line breaks, and truncates if too long.
func NormalizeStatement(statement string) string {
	statement = strings.TrimSpace(statement)
	statement = horizontalSpace.ReplaceAllString(statement, " ")
	statement = blankLines.ReplaceAllString(statement, "\n")
	statement = indentedLines.ReplaceAllString(statement, "\n")

	if !strings.Contains(statement, "\n") {
		maxLength := 1000
		if len(statement) > maxLength {
			return statement[:maxLength] + "..."
		}
		return statement
	}

	maxLength := 2000
	if len(statement) > maxLength {
		// Prefer breaking at the end of a line.
		truncated := statement[:maxLength]
		if lastNewline := strings.LastIndex(truncated, "\n"); lastNewline > maxLength-200 {
			truncated = truncated[:lastNewline]
		}
		return truncated + "\n..."
	}

	return statement
}
