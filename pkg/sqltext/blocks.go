package sqltext

// Blocks indexes text by parenthesis depth. Build it from masked code so
// parentheses inside literals and comments are not counted.
type Blocks struct {
	code  string
	depth []int
}

// NewBlocks indexes code.
func NewBlocks(code string) *Blocks {
	depth := make([]int, len(code)+1)
	d := 0
	for i := 0; i < len(code); i++ {
		depth[i] = d
		switch code[i] {
		case '(':
			d++
		case ')':
			d--
		}
	}
	depth[len(code)] = d
	return &Blocks{code: code, depth: depth}
}

// Depth returns the depth at pos. A '(' has the depth of its surroundings; a
// ')' has the depth of the block it closes.
func (b *Blocks) Depth(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.code) {
		pos = len(b.code)
	}
	return b.depth[pos]
}

// End returns the offset of the ')' closing the block containing pos, or
// len(code) at the top level.
func (b *Blocks) End(pos int) int {
	if pos < 0 {
		pos = 0
	}
	for j := pos; j < len(b.code); j++ {
		if b.code[j] == ')' && b.depth[j] == b.Depth(pos) {
			return j
		}
	}
	return len(b.code)
}

// Start returns the offset just after the '(' opening the block containing
// pos, or 0 at the top level.
func (b *Blocks) Start(pos int) int {
	if pos > len(b.code) {
		pos = len(b.code)
	}
	for j := pos - 1; j >= 0; j-- {
		if b.code[j] == '(' && b.depth[j] == b.Depth(pos)-1 {
			return j + 1
		}
	}
	return 0
}

// Find returns the offsets of keyword within [from, to) at the depth of from.
func (b *Blocks) Find(keyword string, from, to int) []int {
	var out []int
	for _, span := range KeywordSpans(b.code, keyword) {
		if span[0] < from || span[0] >= to {
			continue
		}
		if b.depth[span[0]] == b.Depth(from) {
			out = append(out, span[0])
		}
	}
	return out
}

// Has reports whether any keyword occurs within [from, to) at the depth of from.
func (b *Blocks) Has(from, to int, keywords ...string) bool {
	for _, kw := range keywords {
		if len(b.Find(kw, from, to)) > 0 {
			return true
		}
	}
	return false
}

// Next returns the first offset of any keyword within [from, to) at the depth
// of from, or to.
func (b *Blocks) Next(from, to int, keywords ...string) int {
	best := to
	for _, kw := range keywords {
		if hits := b.Find(kw, from, to); len(hits) > 0 && hits[0] < best {
			best = hits[0]
		}
	}
	return best
}

// InQuery reports whether pos sits directly in a query block rather than in
// the argument list of a call such as EXTRACT(YEAR FROM d) or OVER (ORDER BY x).
func (b *Blocks) InQuery(pos int) bool {
	start := b.Start(pos)
	return b.Has(start, pos+1, "select") || b.Depth(pos) == 0
}

// PreviousWord returns the word that ends before pos, skipping whitespace.
func (b *Blocks) PreviousWord(pos int) string {
	end := pos
	for end > 0 && isSpaceByte(b.code[end-1]) {
		end--
	}
	start := end
	for start > 0 && IsIdentByte(b.code[start-1]) {
		start--
	}
	return b.code[start:end]
}

// NextWord returns the word that starts at or after pos, skipping whitespace.
func (b *Blocks) NextWord(pos int) string {
	start := pos
	for start < len(b.code) && isSpaceByte(b.code[start]) {
		start++
	}
	end := start
	for end < len(b.code) && IsIdentByte(b.code[end]) {
		end++
	}
	return b.code[start:end]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
