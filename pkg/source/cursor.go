package source

// Cursor walks the bytes of a single line. It never crosses line boundaries,
// so positions only ever move along the column axis.
type Cursor struct {
	text  string
	start Position
	off   int
}

// NewCursor creates a cursor over text whose first byte sits at start.
func NewCursor(text string, start Position) *Cursor {
	return &Cursor{text: text, start: start}
}

// EOF reports whether the cursor has consumed the whole line.
func (c *Cursor) EOF() bool { return c.off >= len(c.text) }

// Peek returns the current byte, or 0 at the end of the line.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.text[c.off]
}

// PeekAt returns the byte n positions ahead of the current one, or 0.
func (c *Cursor) PeekAt(n int) byte {
	if c.off+n >= len(c.text) {
		return 0
	}
	return c.text[c.off+n]
}

// HasPrefix reports whether the unread text starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	return len(c.text)-c.off >= len(s) && c.text[c.off:c.off+len(s)] == s
}

// Bump consumes n bytes.
func (c *Cursor) Bump(n int) {
	c.off += n
	if c.off > len(c.text) {
		c.off = len(c.text)
	}
}

// SkipSpace consumes blanks and tabs.
func (c *Cursor) SkipSpace() {
	for !c.EOF() && (c.text[c.off] == ' ' || c.text[c.off] == '\t') {
		c.off++
	}
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.off }

// Pos returns the absolute position of the current byte.
func (c *Cursor) Pos() Position { return c.start.Advance(c.off) }

// Slice returns text[from:current].
func (c *Cursor) Slice(from int) string { return c.text[from:c.off] }

// Rest returns the unread remainder of the line.
func (c *Cursor) Rest() string { return c.text[c.off:] }

// Seek moves the cursor back (or forward) to an offset previously returned
// by Offset, letting scanners backtrack after a failed match.
func (c *Cursor) Seek(off int) {
	c.off = min(max(off, 0), len(c.text))
}
