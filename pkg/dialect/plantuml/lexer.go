package plantuml

import (
	"fmt"
	"strings"

	"github.com/matzehuels/polagram/pkg/source"
)

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWord
	TokenString   // "quoted", Text holds the unquoted value
	TokenBoundary // [ ] or ?, a found/lost endpoint
	TokenArrow
	TokenSuffix     // ++ -- ** !!
	TokenStereotype // <<...>>, Text holds the inner value
	TokenColor      // #..., Text holds the value without '#'
	TokenComma
	TokenColon
	TokenText
)

var tokenNames = map[TokenKind]string{
	TokenEOF:        "end of line",
	TokenWord:       "identifier",
	TokenString:     "string",
	TokenBoundary:   "boundary",
	TokenArrow:      "arrow",
	TokenSuffix:     "suffix",
	TokenStereotype: "stereotype",
	TokenColor:      "color",
	TokenComma:      "','",
	TokenColon:      "':'",
	TokenText:       "text",
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
	LineBlockComment // opens a /' ... '/ comment spanning lines
	LineStart        // @startuml
	LineEnd          // @enduml
	LineDirective    // !theme, skinparam, hide, ...
	LineDivider
	LineSpacer
	LineDelay
	LineKeyword
	LineSignal
)

// Statement is a classified line. Keyword is lower-cased; Text is the
// payload after the keyword, or the whole trimmed line for everything else.
type Statement struct {
	Kind    LineKind
	Keyword string
	Text    string
	Pos     source.Position
	TextPos source.Position
}

var keywords = map[string]bool{
	"participant": true, "actor": true, "boundary": true, "control": true,
	"entity": true, "database": true, "collections": true, "queue": true,
	"box": true, "end": true, "endnote": true, "endref": true,
	"alt": true, "else": true, "opt": true, "loop": true, "par": true,
	"break": true, "critical": true, "group": true,
	"note": true, "hnote": true, "rnote": true, "ref": true,
	"activate": true, "deactivate": true, "create": true, "destroy": true, "return": true,
	"title": true, "header": true, "footer": true, "autonumber": true,
}

// directiveWords start statements kept verbatim as directives.
var directiveWords = map[string]bool{
	"skinparam": true, "hide": true, "show": true, "newpage": true, "mainframe": true,
	"scale": true, "autoactivate": true, "legend": true, "left": true, "right": true,
	"center": true, "caption": true, "skin": true, "style": true,
}

// Classify determines what kind of statement a line holds.
func Classify(l source.Line) Statement {
	text, pos := l.Trimmed()
	st := Statement{Pos: pos, TextPos: pos, Text: text}
	switch {
	case text == "":
		st.Kind = LineBlank
	case strings.HasPrefix(text, "'"):
		st.Kind = LineComment
	case strings.HasPrefix(text, "/'"):
		st.Kind = LineComment
		if !strings.Contains(text[2:], "'/") {
			st.Kind = LineBlockComment
		}
	case strings.HasPrefix(text, "@startuml"):
		st.Kind = LineStart
		st.Text = strings.TrimSpace(text[len("@startuml"):])
	case strings.HasPrefix(text, "@enduml"):
		st.Kind = LineEnd
	case strings.HasPrefix(text, "!"):
		st.Kind = LineDirective
	case strings.HasPrefix(text, "=="):
		st.Kind = LineDivider
	case strings.HasPrefix(text, "||"):
		st.Kind = LineSpacer
	case strings.HasPrefix(text, "..."):
		st.Kind = LineDelay
	default:
		word := leadingWord(text)
		lower := strings.ToLower(word)
		bounded := len(word) > 0 && (len(word) == len(text) || text[len(word)] == ' ' || text[len(word)] == '\t' ||
			(text[len(word)] == ':' && lower != "end"))
		// "Database -> API" is a message from a participant named like a keyword.
		if rest := strings.TrimLeft(text[len(word):], " \t"); strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "<") {
			bounded = false
		}
		switch {
		case bounded && directiveWords[lower]:
			st.Kind = LineDirective
		case bounded && keywords[lower]:
			rest := text[len(word):]
			trimmed := strings.TrimLeft(rest, " \t")
			st.Kind = LineKeyword
			st.Keyword = lower
			st.Text = strings.TrimSpace(trimmed)
			st.TextPos = pos.Advance(len(word) + len(rest) - len(trimmed))
		default:
			st.Kind = LineSignal
		}
	}
	return st
}

func leadingWord(s string) string {
	i := 0
	for i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z') {
		i++
	}
	return s[:i]
}

// isWordByte reports whether c may appear in an unquoted participant name.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '@' || c >= 0x80
}

// IsWord reports whether s can be written without quotes.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

type lexError struct {
	pos source.Position
	msg string
}

func (e *lexError) Error() string { return e.msg }

func errAt(pos source.Position, format string, args ...any) error {
	return &lexError{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// arrowShape is the decoded form of an arrow lexeme.
type arrowShape struct {
	dotted   bool
	left     string // "", "<" or "<<"
	right    string // "", ">", ">>", "x", ">x", ">o", "\\", "/", "\\\\", "//"
	reversed bool
}

// TokenizeMessage lexes "from arrow to [suffixes] [: text]".
func TokenizeMessage(text string, pos source.Position) ([]Token, error) {
	c := source.NewCursor(text, pos)
	var toks []Token

	c.SkipSpace()
	from, err := scanEndpoint(c)
	if err != nil {
		return nil, err
	}
	toks = append(toks, from)

	c.SkipSpace()
	start := c.Pos()
	arrow, ok := scanArrow(c)
	if !ok {
		return nil, errAt(start, "expected arrow")
	}
	toks = append(toks, Token{Kind: TokenArrow, Text: arrow, Pos: start})

	c.SkipSpace()
	to, err := scanEndpoint(c)
	if err != nil {
		return nil, err
	}
	toks = append(toks, to)

	for {
		c.SkipSpace()
		start := c.Pos()
		switch {
		case c.HasPrefix("++"), c.HasPrefix("--"), c.HasPrefix("**"), c.HasPrefix("!!"):
			toks = append(toks, Token{Kind: TokenSuffix, Text: c.Rest()[:2], Pos: start})
			c.Bump(2)
			continue
		case c.Peek() == '#':
			from := c.Offset()
			for !c.EOF() && c.Peek() != ' ' && c.Peek() != ':' {
				c.Bump(1)
			}
			toks = append(toks, Token{Kind: TokenColor, Text: c.Slice(from)[1:], Pos: start})
			continue
		}
		break
	}

	c.SkipSpace()
	if c.Peek() == ':' {
		colon := c.Pos()
		c.Bump(1)
		c.SkipSpace()
		toks = append(toks,
			Token{Kind: TokenColon, Text: ":", Pos: colon},
			Token{Kind: TokenText, Text: strings.TrimRight(c.Rest(), " \t"), Pos: c.Pos()})
		c.Bump(len(c.Rest()))
	}
	if !c.EOF() {
		return nil, errAt(c.Pos(), "unexpected %q after message", c.Rest())
	}
	return append(toks, Token{Kind: TokenEOF, Pos: c.Pos()}), nil
}

func scanEndpoint(c *source.Cursor) (Token, error) {
	start := c.Pos()
	switch ch := c.Peek(); {
	case ch == '[' || ch == ']' || ch == '?':
		c.Bump(1)
		return Token{Kind: TokenBoundary, Text: string(ch), Pos: start}, nil
	case ch == '"':
		return scanString(c)
	case isWordByte(ch):
		from := c.Offset()
		for !c.EOF() && isWordByte(c.Peek()) {
			c.Bump(1)
		}
		return Token{Kind: TokenWord, Text: c.Slice(from), Pos: start}, nil
	case ch == 0:
		return Token{}, errAt(start, "expected participant, found end of line")
	default:
		return Token{}, errAt(start, "expected participant, found %q", ch)
	}
}

func scanString(c *source.Cursor) (Token, error) {
	start := c.Pos()
	c.Bump(1)
	from := c.Offset()
	for !c.EOF() && c.Peek() != '"' {
		c.Bump(1)
	}
	if c.EOF() {
		return Token{}, errAt(start, "unterminated string")
	}
	s := c.Slice(from)
	c.Bump(1)
	return Token{Kind: TokenString, Text: s, Pos: start}, nil
}

// scanArrow consumes an arrow or leaves the cursor untouched.
func scanArrow(c *source.Cursor) (string, bool) {
	from := c.Offset()
	fail := func() (string, bool) {
		c.Seek(from)
		return "", false
	}

	left := ""
	switch {
	case c.HasPrefix("<<"):
		left = "<<"
	case c.Peek() == '<':
		left = "<"
	}
	c.Bump(len(left))

	dashes := 0
	for c.Peek() == '-' {
		dashes++
		c.Bump(1)
	}
	if dashes == 0 {
		return fail()
	}
	if c.Peek() == '[' {
		end := strings.IndexByte(c.Rest(), ']')
		if end < 0 {
			return fail()
		}
		c.Bump(end + 1)
		dashes = 1
		for c.Peek() == '-' {
			dashes++
			c.Bump(1)
		}
		if dashes > 1 {
			dashes--
		}
	}
	if dashes > 2 {
		return fail()
	}

	right := ""
	switch {
	case c.HasPrefix(">>"):
		right = ">>"
	case c.Peek() == '>':
		right = ">"
		if (c.PeekAt(1) == 'x' || c.PeekAt(1) == 'o') && !isWordByte(c.PeekAt(2)) {
			right = c.Rest()[:2]
		}
	case c.Peek() == 'x' && !isWordByte(c.PeekAt(1)):
		right = "x"
	case c.HasPrefix(`\\`), c.HasPrefix("//"):
		right = c.Rest()[:2]
	case c.Peek() == '\\' || c.Peek() == '/':
		right = c.Rest()[:1]
	}
	c.Bump(len(right))
	if left == "" && right == "" {
		return fail()
	}
	return c.Slice(from), true
}

// decodeArrow interprets an arrow lexeme produced by scanArrow.
func decodeArrow(s string) arrowShape {
	var a arrowShape
	switch {
	case strings.HasPrefix(s, "<<"):
		a.left = "<<"
	case strings.HasPrefix(s, "<"):
		a.left = "<"
	}
	body := s[len(a.left):]
	if i := strings.IndexByte(body, '['); i >= 0 {
		j := strings.IndexByte(body, ']')
		body = body[:i] + body[j+1:]
		if strings.Count(body, "-") > 1 {
			body = body[1:]
		}
	}
	a.dotted = strings.HasPrefix(body, "--")
	a.right = strings.TrimLeft(body, "-")
	a.reversed = a.left != "" && a.right == ""
	return a
}

// TokenizeDecl lexes participant and box declarations: words, strings,
// <<stereotypes>> and #colors.
func TokenizeDecl(text string, pos source.Position) ([]Token, error) {
	c := source.NewCursor(text, pos)
	var toks []Token
	for {
		c.SkipSpace()
		start := c.Pos()
		if c.EOF() {
			return append(toks, Token{Kind: TokenEOF, Pos: start}), nil
		}
		switch {
		case c.Peek() == '"':
			t, err := scanString(c)
			if err != nil {
				return nil, err
			}
			toks = append(toks, t)
		case c.HasPrefix("<<"):
			end := strings.Index(c.Rest(), ">>")
			if end < 0 {
				return nil, errAt(start, "unterminated stereotype")
			}
			toks = append(toks, Token{Kind: TokenStereotype, Text: strings.TrimSpace(c.Rest()[2:end]), Pos: start})
			c.Bump(end + 2)
		case c.Peek() == '#':
			from := c.Offset()
			for !c.EOF() && c.Peek() != ' ' && c.Peek() != '\t' {
				c.Bump(1)
			}
			toks = append(toks, Token{Kind: TokenColor, Text: c.Slice(from)[1:], Pos: start})
		case c.Peek() == ',':
			c.Bump(1)
			toks = append(toks, Token{Kind: TokenComma, Text: ",", Pos: start})
		default:
			from := c.Offset()
			for !c.EOF() && !strings.ContainsRune(" \t\",#", rune(c.Peek())) && !c.HasPrefix("<<") {
				c.Bump(1)
			}
			toks = append(toks, Token{Kind: TokenWord, Text: c.Slice(from), Pos: start})
		}
	}
}
