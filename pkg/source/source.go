// Package source provides position tracking and a line cursor shared by the
// diagram lexers.
//
// Both supported dialects are line oriented: every statement occupies one
// physical line, except for multi-line notes and references which the parsers
// handle by consuming further lines until a terminator. [Lines] splits input
// into [Line] values that remember where each line starts, and [Cursor] walks
// the bytes of one line while producing absolute [Position] values.
//
// Positions use 1-indexed lines, 0-indexed byte columns and 0-indexed absolute
// byte offsets, both at token and at node level.
package source

import (
	"fmt"
	"strings"
)

// Position locates a byte in the source text.
// The zero value means "unknown" and is what synthesized nodes carry.
type Position struct {
	Line   int // 1-indexed
	Column int // 0-indexed byte column
	Offset int // 0-indexed absolute byte offset
}

// IsValid reports whether the position was produced by a lexer.
func (p Position) IsValid() bool { return p.Line > 0 }

// String formats the position as "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position n bytes further along the same line.
func (p Position) Advance(n int) Position {
	return Position{Line: p.Line, Column: p.Column + n, Offset: p.Offset + n}
}

// Line is one physical line of input without its terminator.
type Line struct {
	Text  string   // raw text, "\r" stripped
	Start Position // position of the first byte of the line
}

// Trimmed returns the line with surrounding whitespace removed together with
// the position of its first non-blank byte.
func (l Line) Trimmed() (string, Position) {
	lead := len(l.Text) - len(strings.TrimLeft(l.Text, " \t"))
	return strings.TrimSpace(l.Text), l.Start.Advance(lead)
}

// IsBlank reports whether the line contains only whitespace.
func (l Line) IsBlank() bool { return strings.TrimSpace(l.Text) == "" }

// Lines splits text into lines. Both "\n" and "\r\n" terminators are
// accepted; a trailing terminator does not produce an empty final line.
func Lines(text string) []Line {
	var out []Line
	offset := 0
	lineNo := 1
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		raw := text
		consumed := len(text)
		if i >= 0 {
			raw = text[:i]
			consumed = i + 1
		}
		out = append(out, Line{
			Text:  strings.TrimSuffix(raw, "\r"),
			Start: Position{Line: lineNo, Column: 0, Offset: offset},
		})
		offset += consumed
		text = text[consumed:]
		lineNo++
	}
	return out
}
