// Package sqltext provides the text helpers shared by every engine: comment and
// literal masking, keyword search, balanced-delimiter splitting and mapping
// byte offsets back to line/column positions.
//
// None of the helpers parse SQL. They work on raw text and are quote aware
// only as far as single quotes, double quotes and backticks go.
package sqltext

import "strings"

const (
	stateNormal = iota
	stateSingleQuote
	stateDoubleQuote
	stateBacktick
	stateLineComment
	stateBlockComment
)

// MaskOptions selects what Mask blanks out.
type MaskOptions struct {
	Comments bool
	// Strings blanks the contents of single quoted literals. Quotes are kept.
	Strings bool
	// Identifiers blanks the contents of double quoted and backticked identifiers.
	Identifiers bool
}

// Mask returns a copy of sql with the selected regions replaced by spaces.
// Newlines are kept and the length is unchanged, so offsets into the masked
// text are valid offsets into the original.
func Mask(sql string, opts MaskOptions) string {
	out := []byte(sql)
	state := stateNormal
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateSingleQuote
			case c == '"':
				state = stateDoubleQuote
			case c == '`':
				state = stateBacktick
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stateLineComment
				if opts.Comments {
					out[i] = ' '
				}
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stateBlockComment
				if opts.Comments {
					out[i] = ' '
					out[i+1] = ' '
				}
				i++
			}
		case stateSingleQuote:
			if c == '\\' && i+1 < len(sql) {
				if opts.Strings {
					out[i] = ' '
					if sql[i+1] != '\n' {
						out[i+1] = ' '
					}
				}
				i++
				continue
			}
			if c == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					if opts.Strings {
						out[i] = ' '
						out[i+1] = ' '
					}
					i++
					continue
				}
				state = stateNormal
				continue
			}
			if opts.Strings && c != '\n' {
				out[i] = ' '
			}
		case stateDoubleQuote, stateBacktick:
			closing := byte('"')
			if state == stateBacktick {
				closing = '`'
			}
			if c == closing {
				state = stateNormal
				continue
			}
			if opts.Identifiers && c != '\n' {
				out[i] = ' '
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				continue
			}
			if opts.Comments {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				if opts.Comments {
					out[i] = ' '
					out[i+1] = ' '
				}
				i++
				state = stateNormal
				continue
			}
			if opts.Comments && c != '\n' {
				out[i] = ' '
			}
		}
	}
	return string(out)
}

// Code masks comments and string literal contents, which is what most pattern
// checks want to match against.
func Code(sql string) string {
	return Mask(sql, MaskOptions{Comments: true, Strings: true})
}

// StripComments removes comments while keeping offsets stable.
func StripComments(sql string) string {
	return Mask(sql, MaskOptions{Comments: true})
}

// Balance describes the delimiter state at the end of a query.
type Balance struct {
	// Depth is the number of unclosed '(' at the end of the text.
	Depth int
	// Surplus counts ')' that had no matching '('.
	Surplus int
	// OpenQuote is the quote character left open at the end of the text, or 0.
	OpenQuote byte
	// OpenBlockComment is set when a /* comment is never closed.
	OpenBlockComment bool
}

// Balanced reports whether nothing is left open or unmatched.
func (b Balance) Balanced() bool {
	return b.Depth == 0 && b.Surplus == 0 && b.OpenQuote == 0 && !b.OpenBlockComment
}

// ScanBalance walks the text once and reports unbalanced parentheses and quotes.
func ScanBalance(sql string) Balance {
	var b Balance
	state := stateNormal
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch state {
		case stateNormal:
			switch {
			case c == '(':
				b.Depth++
			case c == ')':
				if b.Depth == 0 {
					b.Surplus++
				} else {
					b.Depth--
				}
			case c == '\'':
				state = stateSingleQuote
			case c == '"':
				state = stateDoubleQuote
			case c == '`':
				state = stateBacktick
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stateLineComment
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stateBlockComment
				i++
			}
		case stateSingleQuote:
			if c == '\\' {
				i++
				continue
			}
			if c == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					i++
					continue
				}
				state = stateNormal
			}
		case stateDoubleQuote:
			if c == '"' {
				state = stateNormal
			}
		case stateBacktick:
			if c == '`' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				i++
				state = stateNormal
			}
		}
	}
	switch state {
	case stateSingleQuote:
		b.OpenQuote = '\''
	case stateDoubleQuote:
		b.OpenQuote = '"'
	case stateBacktick:
		b.OpenQuote = '`'
	case stateBlockComment:
		b.OpenBlockComment = true
	}
	return b
}

// Literal is a single quoted string literal. Offset is the byte offset of its
// opening quote.
type Literal struct {
	Value  string
	Offset int
}

// StringLiterals returns the contents of every single quoted literal in order.
func StringLiterals(sql string) []string {
	var values []string
	for _, l := range Literals(sql) {
		values = append(values, l.Value)
	}
	return values
}

// Literals returns every single quoted literal outside comments and quoted
// identifiers, with escapes resolved.
func Literals(sql string) []Literal {
	masked := StripComments(sql)
	var literals []Literal
	var current strings.Builder
	state := stateNormal
	start := 0
	for i := 0; i < len(masked); i++ {
		c := masked[i]
		switch state {
		case stateNormal:
			switch c {
			case '\'':
				state = stateSingleQuote
				start = i
				current.Reset()
			case '"':
				state = stateDoubleQuote
			case '`':
				state = stateBacktick
			}
		case stateDoubleQuote:
			if c == '"' {
				state = stateNormal
			}
		case stateBacktick:
			if c == '`' {
				state = stateNormal
			}
		case stateSingleQuote:
			if c == '\\' && i+1 < len(masked) {
				current.WriteByte(masked[i+1])
				i++
				continue
			}
			if c == '\'' {
				if i+1 < len(masked) && masked[i+1] == '\'' {
					current.WriteByte('\'')
					i++
					continue
				}
				state = stateNormal
				literals = append(literals, Literal{Value: current.String(), Offset: start})
				continue
			}
			current.WriteByte(c)
		}
	}
	return literals
}

// IsComment reports whether a line holds nothing but a comment.
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "--") ||
		strings.HasPrefix(trimmed, "#") ||
		(strings.HasPrefix(trimmed, "/*") && strings.HasSuffix(trimmed, "*/"))
}
