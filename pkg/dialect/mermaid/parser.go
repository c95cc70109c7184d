package mermaid

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect/internal/builder"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/source"
)

// FormatName is the format tag used in errors.
const FormatName = "mermaid"

// arrowStyles maps each arrow to its line and head style.
var arrowStyles = map[string]struct {
	line ast.LineStyle
	head ast.HeadStyle
}{
	"->":     {ast.LineSolid, ast.HeadNone},
	"-->":    {ast.LineDotted, ast.HeadNone},
	"->>":    {ast.LineSolid, ast.HeadArrow},
	"-->>":   {ast.LineDotted, ast.HeadArrow},
	"-x":     {ast.LineSolid, ast.HeadCross},
	"--x":    {ast.LineDotted, ast.HeadCross},
	"-)":     {ast.LineSolid, ast.HeadOpen},
	"--)":    {ast.LineDotted, ast.HeadOpen},
	"<<->>":  {ast.LineSolid, ast.HeadBoth},
	"<<-->>": {ast.LineDotted, ast.HeadBoth},
}

// Parse parses a Mermaid sequence diagram. The returned tree carries
// positions for every node and deterministic ids assigned in source order.
func Parse(text string) (*ast.Root, error) {
	p := &parser{b: builder.New(), lines: source.Lines(text)}
	if err := p.run(); err != nil {
		return nil, err
	}
	root, pos, err := p.b.Finish()
	if err != nil {
		return nil, p.errorf(pos, "%v", err)
	}
	return root, nil
}

type parser struct {
	b      *builder.Builder
	lines  []source.Line
	i      int
	header bool
	blocks []string // "box" or "fragment", innermost last

	// pendingCreate holds created participants still waiting for their first
	// message. A create declared inside a box may be followed by unrelated
	// messages first.
	pendingCreate  []string
	pendingDestroy string
}

func (p *parser) run() error {
	for p.i = 0; p.i < len(p.lines); p.i++ {
		line := p.lines[p.i]
		st := Classify(line)
		switch st.Kind {
		case LineBlank, LineComment:
			continue
		case LineDirective:
			p.directive(st.Text, st.Pos)
			continue
		}
		if !p.header {
			if err := p.preamble(st); err != nil {
				return err
			}
			continue
		}
		if err := p.statement(st); err != nil {
			return err
		}
	}
	if !p.header {
		return p.errorf(source.Position{Line: 1}, "missing sequenceDiagram header")
	}
	return nil
}

func (p *parser) directive(text string, pos source.Position) {
	r := p.b.Root()
	r.Directives = append(r.Directives, ast.Directive{Dialect: ast.DialectMermaid, Text: text, Pos: pos})
}

// preamble handles what may precede the header: YAML front matter and the
// header itself.
func (p *parser) preamble(st Statement) error {
	if st.Kind == LineSignal && st.Text == "---" {
		start := st.Pos
		body := []string{"---"}
		for p.i++; p.i < len(p.lines); p.i++ {
			body = append(body, p.lines[p.i].Text)
			if strings.TrimSpace(p.lines[p.i].Text) == "---" {
				p.directive(strings.Join(body, "\n"), start)
				return nil
			}
		}
		return p.errorf(start, "unterminated front matter")
	}
	if st.Kind == LineKeyword && st.Keyword == "sequenceDiagram" && st.Text == "" {
		p.header = true
		return nil
	}
	return p.errorf(st.Pos, "expected sequenceDiagram header, found %q", st.Text)
}

func (p *parser) statement(st Statement) error {
	switch st.Kind {
	case LineExtension:
		return p.extension(st.Text, st.TextPos)
	case LineSignal:
		toks, err := Tokenize(st.Text, st.Pos, false)
		if err != nil {
			return p.lexErr(err)
		}
		return p.message(toks, st.Pos)
	}

	r := p.b.Root()
	switch st.Keyword {
	case "sequenceDiagram":
		return p.errorf(st.Pos, "duplicate sequenceDiagram header")
	case "participant", "actor":
		_, err := p.participant(st.Keyword, st.Text, st.Pos, false)
		return err
	case "create":
		kw, rest, _ := strings.Cut(st.Text, " ")
		if kw != "participant" && kw != "actor" {
			return p.errorf(st.TextPos, "create must be followed by participant or actor")
		}
		pt, err := p.participant(kw, strings.TrimSpace(rest), st.Pos, true)
		if err != nil {
			return err
		}
		p.pendingCreate = append(p.pendingCreate, pt.ID)
		return nil
	case "destroy":
		id := strings.TrimSpace(st.Text)
		if id == "" {
			return p.errorf(st.TextPos, "destroy needs a participant")
		}
		p.b.Ensure(id, st.TextPos)
		p.pendingDestroy = id
		return nil
	case "box":
		if p.inFragment() {
			return p.errorf(st.Pos, "box cannot appear inside a fragment")
		}
		color, label := splitBoxColor(st.Text)
		if err := p.b.OpenBox(label, color, st.Pos); err != nil {
			return p.errorf(st.Pos, "%v", err)
		}
		p.blocks = append(p.blocks, "box")
		return nil
	case "end":
		return p.end(st)
	case "loop", "alt", "opt", "par", "critical", "break", "rect":
		if p.b.InBox() {
			return p.errorf(st.Pos, "%s cannot appear inside a box", st.Keyword)
		}
		op, _ := ast.ParseOperator(st.Keyword)
		p.b.OpenFragment(op, st.Text, st.Pos)
		p.blocks = append(p.blocks, "fragment")
		return nil
	case "else", "and", "option":
		if !p.inFragment() {
			return p.errorf(st.Pos, "%s outside of a fragment", st.Keyword)
		}
		return p.b.AddBranch(st.Text, st.Pos)
	case "activate", "deactivate":
		id := strings.TrimSpace(st.Text)
		if id == "" {
			return p.errorf(st.TextPos, "%s needs a participant", st.Keyword)
		}
		p.b.Ensure(id, st.TextPos)
		p.b.Emit(&ast.Activation{
			ID:          p.b.NextID(ast.PrefixActivation),
			Participant: id,
			Action:      ast.ActivationAction(st.Keyword),
			Pos:         st.Pos,
		})
		return nil
	case "note":
		toks, err := Tokenize(st.Text, st.TextPos, false)
		if err != nil {
			return p.lexErr(err)
		}
		return p.note(toks, st.Pos)
	case "title", "accTitle", "accDescr":
		r.Meta[st.Keyword] = st.Text
		return nil
	case "autonumber":
		v := st.Text
		if v == "" {
			v = "on"
		}
		r.Meta["autonumber"] = v
		return nil
	case "link":
		return p.link(st)
	case "links":
		return p.links(st)
	case "properties", "details":
		return p.unsupported(st.Pos, st.Keyword, "participant menus have no representation in the diagram model")
	}
	return p.errorf(st.Pos, "unknown statement %q", st.Keyword)
}

func (p *parser) inFragment() bool {
	return len(p.blocks) > 0 && p.blocks[len(p.blocks)-1] == "fragment"
}

func (p *parser) end(st Statement) error {
	if st.Text != "" {
		return p.errorf(st.TextPos, "unexpected text after end")
	}
	if len(p.blocks) == 0 {
		return p.errorf(st.Pos, "end without an open block")
	}
	kind := p.blocks[len(p.blocks)-1]
	p.blocks = p.blocks[:len(p.blocks)-1]
	if kind == "box" {
		return p.b.CloseBox()
	}
	return p.b.CloseFragment()
}

// participantProps is the "@{...}" configuration object of a declaration.
type participantProps struct {
	Type  string `json:"type"`
	Alias string `json:"alias"`
}

func (p *parser) participant(kw, payload string, pos source.Position, created bool) (*ast.Participant, error) {
	var props participantProps
	if i := strings.Index(payload, "@{"); i >= 0 {
		j := strings.IndexByte(payload[i:], '}')
		if j < 0 {
			return nil, p.errorf(pos, "unterminated participant properties")
		}
		raw := payload[i+1 : i+j+1]
		if err := json.Unmarshal([]byte(raw), &props); err != nil {
			return nil, p.errorf(pos, "invalid participant properties: %v", err)
		}
		payload = payload[:i] + payload[i+j+1:]
	}

	id, name, hasAlias := strings.Cut(payload, " as ")
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return nil, p.errorf(pos, "%s needs an identifier", kw)
	}
	pt := &ast.Participant{ID: id, Name: id, Type: ast.TypeParticipant, Created: created, Pos: pos}
	if kw == "actor" {
		pt.Type = ast.TypeActor
	}
	if props.Type != "" {
		t, ok := ast.ParseParticipantType(props.Type)
		if !ok {
			return nil, p.errorf(pos, "unknown participant type %q", props.Type)
		}
		pt.Type = t
	}
	if props.Alias != "" && !hasAlias {
		name, hasAlias = props.Alias, true
	}
	if hasAlias {
		pt.Name = name
		pt.Alias = id
	}
	return p.b.Declare(pt), nil
}

func (p *parser) message(toks []Token, pos source.Position) error {
	ts := &tokens{toks: toks}
	m := &ast.Message{Pos: pos}

	switch t := ts.next(); t.Kind {
	case TokenIdent:
		m.From = t.Text
	case TokenLBracket:
	default:
		return p.errorf(t.Pos, "expected participant, found %s", t.Kind)
	}
	arrow := ts.next()
	if arrow.Kind != TokenArrow {
		return p.errorf(arrow.Pos, "expected arrow, found %s", arrow.Kind)
	}
	style := arrowStyles[arrow.Text]
	m.Line, m.Head = style.line, style.head

	switch ts.peek().Kind {
	case TokenPlus:
		ts.next()
		m.Activate = true
	case TokenMinus:
		ts.next()
		m.Deactivate = true
	}

	switch t := ts.next(); t.Kind {
	case TokenIdent:
		m.To = t.Text
	case TokenRBracket:
	default:
		return p.errorf(t.Pos, "expected participant, found %s", t.Kind)
	}
	if m.From == "" && m.To == "" {
		return p.errorf(pos, "message needs at least one participant")
	}
	if ts.peek().Kind == TokenColon {
		ts.next()
		m.Text = ts.next().Text
	}
	if t := ts.next(); t.Kind != TokenEOF {
		return p.errorf(t.Pos, "unexpected %s after message", t.Kind)
	}

	m.Type = ast.InferMessageType(m.Line, m.Head)
	p.pendingCreate = slices.DeleteFunc(p.pendingCreate, func(id string) bool {
		if m.Touches(id) {
			m.Type = ast.MessageCreate
			return true
		}
		return false
	})
	if p.pendingDestroy != "" {
		if m.Touches(p.pendingDestroy) {
			m.Type = ast.MessageDestroy
		}
		p.pendingDestroy = ""
	}

	p.b.Ensure(m.From, pos)
	p.b.Ensure(m.To, pos)
	m.ID = p.b.NextID(ast.PrefixMessage)
	p.b.Emit(m)
	return nil
}

var notePlacements = []struct {
	prefix string
	pos    ast.NotePosition
}{
	{"left of ", ast.NoteLeft},
	{"right of ", ast.NoteRight},
	{"over ", ast.NoteOver},
}

func (p *parser) note(toks []Token, pos source.Position) error {
	ts := &tokens{toks: toks}
	first := ts.next()
	if first.Kind != TokenIdent {
		return p.errorf(first.Pos, "expected note placement, found %s", first.Kind)
	}
	n := &ast.Note{Pos: pos}
	for _, pl := range notePlacements {
		if strings.HasPrefix(strings.ToLower(first.Text), pl.prefix) {
			n.Position = pl.pos
			n.Participants = []string{strings.TrimSpace(first.Text[len(pl.prefix):])}
			break
		}
	}
	if n.Position == "" || n.Participants[0] == "" {
		return p.errorf(first.Pos, "note placement must be left of, right of or over a participant")
	}
	ids, err := p.participantList(ts, n.Participants)
	if err != nil {
		return err
	}
	n.Participants = ids
	if t := ts.next(); t.Kind != TokenColon {
		return p.errorf(t.Pos, "expected ':' before note text, found %s", t.Kind)
	}
	n.Text = ts.next().Text
	for _, id := range n.Participants {
		p.b.Ensure(id, pos)
	}
	n.ID = p.b.NextID(ast.PrefixNote)
	p.b.Emit(n)
	return nil
}

// participantList reads ", B, C" continuations after an initial list.
func (p *parser) participantList(ts *tokens, ids []string) ([]string, error) {
	for ts.peek().Kind == TokenComma {
		ts.next()
		t := ts.next()
		if t.Kind != TokenIdent {
			return nil, p.errorf(t.Pos, "expected participant after ',', found %s", t.Kind)
		}
		ids = append(ids, t.Text)
	}
	return ids, nil
}

func (p *parser) link(st Statement) error {
	id, rest, ok := strings.Cut(st.Text, ":")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return p.errorf(st.TextPos, "link must look like \"link A: label @ url\"")
	}
	label, url, ok := strings.Cut(rest, "@")
	if !ok {
		return p.errorf(st.TextPos, "link is missing '@ url'")
	}
	return p.addLinks(id, st.Pos, ast.Link{Label: strings.TrimSpace(label), URL: strings.TrimSpace(url)})
}

func (p *parser) links(st Statement) error {
	id, rest, ok := strings.Cut(st.Text, ":")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return p.errorf(st.TextPos, "links must look like \"links A: {...}\"")
	}
	links, err := decodeLinks(rest)
	if err != nil {
		return p.errorf(st.TextPos, "invalid links object: %v", err)
	}
	return p.addLinks(id, st.Pos, links...)
}

// decodeLinks reads a JSON object of label to url, keeping key order.
func decodeLinks(raw string) ([]ast.Link, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object")
	}
	var out []ast.Link
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var url string
		if err := dec.Decode(&url); err != nil {
			return nil, err
		}
		out = append(out, ast.Link{Label: key.(string), URL: url})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after object")
	}
	return out, nil
}

func (p *parser) addLinks(id string, pos source.Position, links ...ast.Link) error {
	p.b.Ensure(id, pos)
	pt, _ := p.b.Root().Participant(id)
	pt.Links = append(pt.Links, links...)
	return nil
}

// extension parses a "%%@" statement. Its body uses PlantUML spelling.
func (p *parser) extension(body string, pos source.Position) error {
	var err error
	switch {
	case strings.HasPrefix(body, "=="):
		var text string
		if text, err = builder.ParseDivider(body); err == nil {
			p.b.Emit(&ast.Divider{ID: p.b.NextID(ast.PrefixDivider), Text: text, Pos: pos})
		}
	case strings.HasPrefix(body, "||"):
		var h int
		if h, err = builder.ParseSpacer(body); err == nil {
			p.b.Emit(&ast.Spacer{ID: p.b.NextID(ast.PrefixSpacer), Height: h, Pos: pos})
		}
	case strings.HasPrefix(body, "..."):
		var text string
		if text, err = builder.ParseDelay(body); err == nil {
			p.b.Emit(&ast.Spacer{ID: p.b.NextID(ast.PrefixSpacer), Text: text, Delay: true, Pos: pos})
		}
	case strings.HasPrefix(body, "ref "):
		return p.reference(body[len("ref "):], pos.Advance(len("ref ")), pos)
	default:
		toks, lerr := Tokenize(body, pos, true)
		if lerr != nil {
			return p.lexErr(lerr)
		}
		return p.message(toks, pos)
	}
	if err != nil {
		return p.errorf(pos, "%v", err)
	}
	return nil
}

func (p *parser) reference(body string, bodyPos, pos source.Position) error {
	toks, err := Tokenize(body, bodyPos, false)
	if err != nil {
		return p.lexErr(err)
	}
	ts := &tokens{toks: toks}
	first := ts.next()
	if first.Kind != TokenIdent || !strings.HasPrefix(first.Text, "over ") {
		return p.errorf(first.Pos, "reference must look like \"ref over A, B: text\"")
	}
	ids, err := p.participantList(ts, []string{strings.TrimSpace(first.Text[len("over "):])})
	if err != nil {
		return err
	}
	if t := ts.next(); t.Kind != TokenColon {
		return p.errorf(t.Pos, "expected ':' before reference text, found %s", t.Kind)
	}
	text, link := builder.SplitLink(ts.next().Text)
	for _, id := range ids {
		p.b.Ensure(id, pos)
	}
	p.b.Emit(&ast.Reference{
		ID:           p.b.NextID(ast.PrefixReference),
		Text:         text,
		Participants: ids,
		Link:         link,
		Pos:          pos,
	})
	return nil
}

func (p *parser) errorf(pos source.Position, format string, args ...any) error {
	return &errors.ParseError{
		Format:  FormatName,
		Line:    pos.Line,
		Column:  pos.Column,
		Offset:  pos.Offset,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) lexErr(err error) error {
	if le, ok := err.(*lexError); ok {
		return p.errorf(le.pos, "%s", le.msg)
	}
	return p.errorf(source.Position{}, "%v", err)
}

func (p *parser) unsupported(pos source.Position, construct, reason string) error {
	return &errors.UnsupportedConstructError{
		Format:    FormatName,
		Construct: construct,
		Line:      pos.Line,
		Column:    pos.Column,
		Reason:    reason,
	}
}

// tokens is a read cursor over a token slice. Reading past the end keeps
// returning the trailing EOF token.
type tokens struct {
	toks []Token
	i    int
}

func (ts *tokens) peek() Token {
	if ts.i >= len(ts.toks) {
		return ts.toks[len(ts.toks)-1]
	}
	return ts.toks[ts.i]
}

func (ts *tokens) next() Token {
	t := ts.peek()
	if ts.i < len(ts.toks) {
		ts.i++
	}
	return t
}

// splitBoxColor separates a leading color from a box label.
func splitBoxColor(s string) (color, label string) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, fn := range []string{"rgb(", "rgba(", "hsl(", "hsla("} {
		if strings.HasPrefix(lower, fn) {
			if end := strings.IndexByte(s, ')'); end >= 0 {
				return s[:end+1], strings.TrimSpace(s[end+1:])
			}
		}
	}
	word, rest, _ := strings.Cut(s, " ")
	if namedColors[strings.ToLower(word)] {
		return word, strings.TrimSpace(rest)
	}
	return "", s
}

var namedColors = map[string]bool{}

func init() {
	for _, c := range strings.Fields(`transparent aqua aquamarine azure beige bisque black blue
		blueviolet brown burlywood cadetblue chartreuse chocolate coral cornflowerblue
		cornsilk crimson cyan darkblue darkcyan darkgray darkgreen darkgrey darkkhaki
		darkmagenta darkolivegreen darkorange darkorchid darkred darksalmon darkseagreen
		darkslateblue darkslategray darkturquoise darkviolet deeppink deepskyblue dimgray
		dodgerblue firebrick forestgreen fuchsia gainsboro gold goldenrod gray green
		greenyellow grey honeydew hotpink indianred indigo ivory khaki lavender lawngreen
		lemonchiffon lightblue lightcoral lightcyan lightgray lightgreen lightgrey lightpink
		lightsalmon lightseagreen lightskyblue lightslategray lightsteelblue lightyellow lime
		limegreen linen magenta maroon mediumaquamarine mediumblue mediumorchid mediumpurple
		mediumseagreen mediumslateblue mediumspringgreen mediumturquoise mediumvioletred
		midnightblue mintcream mistyrose moccasin navajowhite navy oldlace olive olivedrab
		orange orangered orchid palegoldenrod palegreen paleturquoise palevioletred papayawhip
		peachpuff peru pink plum powderblue purple rebeccapurple red rosybrown royalblue
		saddlebrown salmon sandybrown seagreen seashell sienna silver skyblue slateblue
		slategray snow springgreen steelblue tan teal thistle tomato turquoise violet wheat
		white whitesmoke yellow yellowgreen`) {
		namedColors[c] = true
	}
}
