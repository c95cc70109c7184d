package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/polagram/pkg/source"
)

// TokenKind identifies a lexical token inside a statement.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenArrow
	TokenPlus
	TokenMinus
	TokenComma
	TokenColon
	TokenText
	TokenLBracket
	TokenRBracket
)

var tokenNames = map[TokenKind]string{
	TokenEOF:      "end of line",
	TokenIdent:    "identifier",
	TokenArrow:    "arrow",
	TokenPlus:     "'+'",
	TokenMinus:    "'-'",
	TokenComma:    "','",
	TokenColon:    "':'",
	TokenText:     "text",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
}

func (k TokenKind) String() string { return tokenNames[k] }

// Token is a lexeme with its absolute position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  source.Position
}

// LineKind classifies a whole source line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineDirective // %%{init: ...}%%
	LineExtension // %%@ statement
	LineKeyword
	LineSignal // anything else, normally a message
)

// Statement is a classified line. For keyword lines Text holds the payload
// after the keyword; for comments, directives and extensions it holds the
// body; for signals the whole trimmed line.
type Statement struct {
	Kind    LineKind
	Keyword string
	Text    string
	Pos     source.Position // first non-blank byte of the line
	TextPos source.Position // first byte of Text
}

// keywords maps the spelling found in source to its canonical keyword.
var keywords = map[string]string{
	"sequenceDiagram": "sequenceDiagram",
	"participant":     "participant",
	"actor":           "actor",
	"create":          "create",
	"destroy":         "destroy",
	"box":             "box",
	"end":             "end",
	"loop":            "loop",
	"alt":             "alt",
	"else":            "else",
	"opt":             "opt",
	"par":             "par",
	"and":             "and",
	"critical":        "critical",
	"option":          "option",
	"break":           "break",
	"rect":            "rect",
	"activate":        "activate",
	"deactivate":      "deactivate",
	"Note":            "note",
	"note":            "note",
	"title":           "title",
	"accTitle":        "accTitle",
	"accDescr":        "accDescr",
	"autonumber":      "autonumber",
	"link":            "link",
	"links":           "links",
	"properties":      "properties",
	"details":         "details",
}

// colonKeywords may be followed directly by ':' ("title: Checkout").
var colonKeywords = map[string]bool{"title": true, "accTitle": true, "accDescr": true}

// ExtensionPrefix marks comments that carry statements Mermaid itself cannot
// express. Mermaid renderers ignore them as ordinary comments.
const ExtensionPrefix = "%%@"

// Classify determines what kind of statement a line holds.
func Classify(l source.Line) Statement {
	text, pos := l.Trimmed()
	st := Statement{Pos: pos, TextPos: pos, Text: text}
	switch {
	case text == "":
		st.Kind = LineBlank
		return st
	case strings.HasPrefix(text, "%%{"):
		st.Kind = LineDirective
		return st
	case strings.HasPrefix(text, ExtensionPrefix):
		body := text[len(ExtensionPrefix):]
		lead := len(body) - len(strings.TrimLeft(body, " \t"))
		st.Kind = LineExtension
		st.Text = strings.TrimSpace(body)
		st.TextPos = pos.Advance(len(ExtensionPrefix) + lead)
		return st
	case strings.HasPrefix(text, "%%"):
		st.Kind = LineComment
		st.Text = strings.TrimSpace(text[2:])
		return st
	}

	word := leadingWord(text)
	kw, ok := keywords[word]
	if ok && len(word) < len(text) {
		next := text[len(word)]
		ok = next == ' ' || next == '\t' || (next == ':' && colonKeywords[kw])
	}
	if !ok {
		st.Kind = LineSignal
		return st
	}

	rest := text[len(word):]
	skip := len(rest) - len(strings.TrimLeft(rest, " \t"))
	rest = rest[skip:]
	if colonKeywords[kw] && strings.HasPrefix(rest, ":") {
		trimmed := strings.TrimLeft(rest[1:], " \t")
		skip += len(rest) - len(trimmed)
		rest = trimmed
	}
	st.Kind = LineKeyword
	st.Keyword = kw
	st.Text = rest
	st.TextPos = pos.Advance(len(word) + skip)
	return st
}

func leadingWord(s string) string {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	return s[:i]
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// arrows lists every Mermaid arrow, longest first so that matching is greedy.
var arrows = []string{"<<-->>", "<<->>", "-->>", "->>", "--x", "--)", "-->", "-x", "-)", "->"}

// Tokenize splits a message, note or reference body into tokens. Everything
// after the first ':' becomes a single text token. When endpoints is set,
// '[' and ']' are accepted as found and lost message boundaries.
func Tokenize(text string, pos source.Position, endpoints bool) ([]Token, error) {
	c := source.NewCursor(text, pos)
	var toks []Token
	afterArrow := false
	for {
		c.SkipSpace()
		start := c.Pos()
		if c.EOF() {
			return append(toks, Token{Kind: TokenEOF, Pos: start}), nil
		}
		ch := c.Peek()
		switch {
		case ch == ':':
			c.Bump(1)
			c.SkipSpace()
			toks = append(toks,
				Token{Kind: TokenColon, Text: ":", Pos: start},
				Token{Kind: TokenText, Text: strings.TrimRight(c.Rest(), " \t"), Pos: c.Pos()})
			c.Bump(len(c.Rest()))
			continue
		case ch == ',':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenComma, Text: ",", Pos: start})
		case afterArrow && ch == '+':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenPlus, Text: "+", Pos: start})
		case afterArrow && ch == '-':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenMinus, Text: "-", Pos: start})
		case endpoints && ch == '[':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenLBracket, Text: "[", Pos: start})
		case endpoints && ch == ']':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenRBracket, Text: "]", Pos: start})
		default:
			if a := matchArrow(c); a != "" {
				c.Bump(len(a))
				toks = append(toks, Token{Kind: TokenArrow, Text: a, Pos: start})
				afterArrow = true
				continue
			}
			if isDelimiter(ch, endpoints) {
				return nil, &lexError{pos: start, msg: fmt.Sprintf("unexpected %q", ch)}
			}
			from := c.Offset()
			for !c.EOF() && !isDelimiter(c.Peek(), endpoints) {
				c.Bump(1)
			}
			toks = append(toks, Token{Kind: TokenIdent, Text: strings.TrimRight(c.Slice(from), " \t"), Pos: start})
		}
		afterArrow = false
	}
}

func matchArrow(c *source.Cursor) string {
	for _, a := range arrows {
		if c.HasPrefix(a) {
			return a
		}
	}
	return ""
}

func isDelimiter(c byte, endpoints bool) bool {
	switch c {
	case ':', ',', ';', '<', '>', '-', '+':
		return true
	case '[', ']':
		return endpoints
	}
	return false
}

// lexError carries a position so the parser can build a ParseError.
type lexError struct {
	pos source.Position
	msg string
}

func (e *lexError) Error() string { return e.msg }
