package selector

import (
	"fmt"
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

// ParseExpr parses the compact selector syntax used on the command line:
//
//	participant
//	participant[name=Logger]
//	message[from=API,text=/^GET/i]
//	fragment[operator=alt,text=Success]
//	group[text=glob:Back*]
//	note[text=i:"todo, later"]
//
// Values are bare words or double-quoted strings. A text value wrapped in
// slashes is a regular expression (trailing "i" ignores case), a "glob:"
// prefix selects glob matching and an "i:" prefix makes a literal
// case-insensitive. The result is validated with Compile semantics but not
// compiled.
func ParseExpr(expr string) (Selector, error) {
	p := &exprParser{src: strings.TrimSpace(expr)}
	sel, err := p.parse()
	if err != nil {
		return Selector{}, &errors.SelectorError{Field: "expr", Pattern: expr, Message: err.Error()}
	}
	if _, err := Compile(sel); err != nil {
		return Selector{}, err
	}
	return sel, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) parse() (Selector, error) {
	var sel Selector
	kind := p.word()
	k, ok := ParseKind(kind)
	if !ok {
		return sel, fmt.Errorf("unknown kind %q", kind)
	}
	sel.Kind = k
	if p.eof() {
		return sel, nil
	}
	if !p.consume('[') {
		return sel, fmt.Errorf("expected '[' at offset %d", p.pos)
	}
	for {
		p.skipSpace()
		if p.consume(']') {
			break
		}
		key := p.word()
		if key == "" {
			return sel, fmt.Errorf("expected attribute name at offset %d", p.pos)
		}
		p.skipSpace()
		if !p.consume('=') {
			return sel, fmt.Errorf("expected '=' after %q", key)
		}
		p.skipSpace()
		if err := p.attribute(&sel, key); err != nil {
			return sel, err
		}
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if !p.consume(']') {
			return sel, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
		}
		break
	}
	p.skipSpace()
	if !p.eof() {
		return sel, fmt.Errorf("unexpected %q after selector", p.src[p.pos:])
	}
	return sel, nil
}

func (p *exprParser) attribute(sel *Selector, key string) error {
	if key == "text" {
		t, err := p.text()
		if err != nil {
			return err
		}
		sel.Text = &t
		return nil
	}
	value, err := p.value()
	if err != nil {
		return err
	}
	switch key {
	case "name":
		sel.Name = value
	case "operator":
		sel.Operator = ast.Operator(value)
	case "from":
		sel.From = value
	case "to":
		sel.To = value
	default:
		return fmt.Errorf("unknown attribute %q", key)
	}
	return nil
}

func (p *exprParser) text() (TextMatch, error) {
	switch {
	case p.peek() == '/':
		return p.regex()
	case strings.HasPrefix(p.src[p.pos:], "glob:"):
		p.pos += len("glob:")
		v, err := p.value()
		return TextMatch{Pattern: v, Mode: ModeGlob}, err
	case strings.HasPrefix(p.src[p.pos:], "i:"):
		p.pos += len("i:")
		v, err := p.value()
		return TextMatch{Pattern: v, Mode: ModeLiteral, IgnoreCase: true}, err
	}
	v, err := p.value()
	return TextMatch{Pattern: v, Mode: ModeLiteral}, err
}

func (p *exprParser) regex() (TextMatch, error) {
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return TextMatch{}, fmt.Errorf("unterminated regular expression")
		}
		c := p.src[p.pos]
		p.pos++
		if c == '\\' && p.peek() == '/' {
			b.WriteByte('/')
			p.pos++
			continue
		}
		if c == '/' {
			break
		}
		b.WriteByte(c)
	}
	t := TextMatch{Pattern: b.String(), Mode: ModeRegex}
	if p.consume('i') {
		t.IgnoreCase = true
	}
	return t, nil
}

func (p *exprParser) value() (string, error) {
	if p.peek() != '"' {
		start := p.pos
		for !p.eof() && !strings.ContainsRune(",]", rune(p.peek())) {
			p.pos++
		}
		return strings.TrimSpace(p.src[start:p.pos]), nil
	}
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return "", fmt.Errorf("unterminated string")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.eof() {
				return "", fmt.Errorf("unterminated string")
			}
			b.WriteByte(p.src[p.pos])
			p.pos++
		case '"':
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
}

func (p *exprParser) word() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *exprParser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) eof() bool { return p.pos >= len(p.src) }
