package plantuml

import (
	"fmt"
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect/internal/builder"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/source"
)

// FormatName is the format tag used in errors.
const FormatName = "plantuml"

// Parse parses a PlantUML sequence diagram. The @startuml/@enduml envelope
// is optional; text after @enduml is ignored.
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

// activation is an open activation bar and the participant that opened it.
type activation struct {
	caller string // "" when unknown
	callee string
}

type parser struct {
	b     *builder.Builder
	lines []source.Line
	i     int

	started  bool
	startPos source.Position
	blocks   []string // "box" or "fragment", innermost last

	pendingCreate string
	active        []activation
}

func (p *parser) run() error {
	for p.i = 0; p.i < len(p.lines); p.i++ {
		st := Classify(p.lines[p.i])
		switch st.Kind {
		case LineBlank, LineComment:
			continue
		case LineBlockComment:
			if err := p.skipBlockComment(st); err != nil {
				return err
			}
			continue
		case LineStart:
			if p.started {
				return p.errorf(st.Pos, "nested @startuml")
			}
			p.started, p.startPos = true, st.Pos
			if st.Text != "" {
				p.b.Root().Meta["name"] = st.Text
			}
			continue
		case LineEnd:
			if !p.started {
				return p.errorf(st.Pos, "@enduml without @startuml")
			}
			return nil
		}
		if err := p.statement(st); err != nil {
			return err
		}
	}
	if p.started {
		return p.errorf(p.startPos, "missing @enduml")
	}
	return nil
}

func (p *parser) skipBlockComment(st Statement) error {
	for p.i++; p.i < len(p.lines); p.i++ {
		if strings.Contains(p.lines[p.i].Text, "'/") {
			return nil
		}
	}
	return p.errorf(st.Pos, "unterminated block comment")
}

func (p *parser) statement(st Statement) error {
	switch st.Kind {
	case LineDirective:
		return p.directive(st)
	case LineDivider:
		text, err := builder.ParseDivider(st.Text)
		if err != nil {
			return p.errorf(st.Pos, "%v", err)
		}
		p.b.Emit(&ast.Divider{ID: p.b.NextID(ast.PrefixDivider), Text: text, Pos: st.Pos})
		return nil
	case LineSpacer:
		h, err := builder.ParseSpacer(st.Text)
		if err != nil {
			return p.errorf(st.Pos, "%v", err)
		}
		p.b.Emit(&ast.Spacer{ID: p.b.NextID(ast.PrefixSpacer), Height: h, Pos: st.Pos})
		return nil
	case LineDelay:
		text, err := builder.ParseDelay(st.Text)
		if err != nil {
			return p.errorf(st.Pos, "%v", err)
		}
		p.b.Emit(&ast.Spacer{ID: p.b.NextID(ast.PrefixSpacer), Text: text, Delay: true, Pos: st.Pos})
		return nil
	case LineSignal:
		toks, err := TokenizeMessage(st.Text, st.Pos)
		if err != nil {
			return p.lexErr(err)
		}
		return p.message(toks, st.Pos)
	}

	if t, ok := ast.ParseParticipantType(st.Keyword); ok {
		_, err := p.declaration(t, st.Text, st.TextPos, st.Pos, false)
		return err
	}
	r := p.b.Root()
	switch st.Keyword {
	case "create":
		return p.create(st)
	case "destroy":
		return p.destroy(st)
	case "box":
		return p.box(st)
	case "end":
		return p.end(st)
	case "endnote", "endref":
		return p.errorf(st.Pos, "%s without an open block", st.Keyword)
	case "alt", "opt", "loop", "par", "break", "critical", "group":
		if p.b.InBox() {
			return p.errorf(st.Pos, "%s cannot appear inside a box", st.Keyword)
		}
		op, _ := ast.ParseOperator(st.Keyword)
		p.b.OpenFragment(op, st.Text, st.Pos)
		p.blocks = append(p.blocks, "fragment")
		return nil
	case "else":
		if !p.inFragment() {
			return p.errorf(st.Pos, "else outside of a fragment")
		}
		return p.b.AddBranch(st.Text, st.Pos)
	case "note", "hnote", "rnote":
		return p.note(st)
	case "ref":
		return p.ref(st)
	case "activate", "deactivate":
		return p.activation(st)
	case "return":
		return p.ret(st)
	case "title", "header", "footer":
		r.Meta[st.Keyword] = st.Text
		return nil
	case "autonumber":
		if _, ok := r.Meta["autonumber"]; ok {
			return p.unsupported(st.Pos, "autonumber", "numbering can only be configured once per diagram")
		}
		v := st.Text
		if v == "" {
			v = "on"
		}
		r.Meta["autonumber"] = v
		return nil
	}
	return p.errorf(st.Pos, "unknown statement %q", st.Keyword)
}

// directive keeps a pragma verbatim. Blocks opened with "{" run to the
// matching "}" line; legends run to "endlegend".
func (p *parser) directive(st Statement) error {
	text := st.Text
	lower := strings.ToLower(text)
	var end []string
	switch {
	case strings.HasSuffix(text, "{"):
		end = []string{"}"}
	case lower == "legend" || strings.HasPrefix(lower, "legend "):
		end = []string{"endlegend", "end legend"}
	}
	if end != nil {
		body, err := p.block(st, "directive", end...)
		if err != nil {
			return err
		}
		text = text + "\n" + body
		if body != "" {
			text += "\n"
		}
		text += end[0]
	}
	r := p.b.Root()
	r.Directives = append(r.Directives, ast.Directive{Dialect: ast.DialectPlantUML, Text: text, Pos: st.Pos})
	return nil
}

// block consumes lines until one of the terminators and returns the trimmed
// lines in between joined with "\n".
func (p *parser) block(st Statement, what string, terminators ...string) (string, error) {
	var lines []string
	for p.i++; p.i < len(p.lines); p.i++ {
		t := strings.TrimSpace(p.lines[p.i].Text)
		norm := strings.ToLower(strings.Join(strings.Fields(t), " "))
		for _, term := range terminators {
			if norm == term {
				return strings.Join(lines, "\n"), nil
			}
		}
		lines = append(lines, t)
	}
	return "", p.errorf(st.Pos, "unterminated %s", what)
}

func (p *parser) inFragment() bool {
	return len(p.blocks) > 0 && p.blocks[len(p.blocks)-1] == "fragment"
}

func (p *parser) end(st Statement) error {
	want := "fragment"
	switch strings.ToLower(st.Text) {
	case "":
	case "box":
		want = "box"
	default:
		return p.errorf(st.Pos, "unexpected %q", "end "+st.Text)
	}
	if len(p.blocks) == 0 || p.blocks[len(p.blocks)-1] != want {
		return p.errorf(st.Pos, "%s without an open %s", strings.TrimSpace("end "+st.Text), want)
	}
	p.blocks = p.blocks[:len(p.blocks)-1]
	if want == "box" {
		return p.b.CloseBox()
	}
	return p.b.CloseFragment()
}

func (p *parser) declaration(typ ast.ParticipantType, text string, textPos, pos source.Position, created bool) (*ast.Participant, error) {
	toks, err := TokenizeDecl(text, textPos)
	if err != nil {
		return nil, p.lexErr(err)
	}
	ts := &tokens{toks: toks}
	primary := ts.next()
	if primary.Kind != TokenWord && primary.Kind != TokenString {
		return nil, p.errorf(primary.Pos, "expected participant name, found %s", primary.Kind)
	}
	pt := &ast.Participant{ID: primary.Text, Name: primary.Text, Type: typ, Created: created, Pos: pos}
	if t := ts.peek(); t.Kind == TokenWord && strings.EqualFold(t.Text, "as") {
		ts.next()
		second := ts.next()
		if second.Kind != TokenWord && second.Kind != TokenString {
			return nil, p.errorf(second.Pos, "expected alias after 'as', found %s", second.Kind)
		}
		if second.Kind == TokenString && primary.Kind == TokenWord {
			pt.ID, pt.Name = primary.Text, second.Text
		} else {
			pt.ID, pt.Name = second.Text, primary.Text
		}
		pt.Alias = pt.ID
	}
	for {
		t := ts.next()
		switch t.Kind {
		case TokenEOF:
			return p.b.Declare(pt), nil
		case TokenStereotype:
			pt.Stereotype = t.Text
		case TokenColor:
			pt.Color = t.Text
		case TokenWord:
			if !strings.EqualFold(t.Text, "order") || ts.next().Kind != TokenWord {
				return nil, p.errorf(t.Pos, "unexpected %q in declaration", t.Text)
			}
		default:
			return nil, p.errorf(t.Pos, "unexpected %s in declaration", t.Kind)
		}
	}
}

func (p *parser) create(st Statement) error {
	typ, text, textPos := ast.TypeParticipant, st.Text, st.TextPos
	word, rest, _ := strings.Cut(st.Text, " ")
	if t, ok := ast.ParseParticipantType(strings.ToLower(word)); ok {
		trimmed := strings.TrimLeft(rest, " \t")
		typ, text = t, trimmed
		textPos = st.TextPos.Advance(len(st.Text) - len(trimmed))
	}
	pt, err := p.declaration(typ, text, textPos, st.Pos, true)
	if err != nil {
		return err
	}
	p.pendingCreate = pt.ID
	return nil
}

func (p *parser) destroy(st Statement) error {
	id := unquote(st.Text)
	if id == "" {
		return p.errorf(st.TextPos, "destroy needs a participant")
	}
	m := p.b.LastMessage()
	if m == nil || !m.Touches(id) {
		return p.unsupported(st.Pos, "destroy", fmt.Sprintf("no preceding message involves %q", id))
	}
	m.Type = ast.MessageDestroy
	return nil
}

func (p *parser) box(st Statement) error {
	if p.inFragment() {
		return p.errorf(st.Pos, "box cannot appear inside a fragment")
	}
	toks, err := TokenizeDecl(st.Text, st.TextPos)
	if err != nil {
		return p.lexErr(err)
	}
	var label []string
	color := ""
	for _, t := range toks {
		switch t.Kind {
		case TokenWord, TokenString:
			label = append(label, t.Text)
		case TokenColor:
			color = t.Text
		case TokenEOF:
		default:
			return p.errorf(t.Pos, "unexpected %s in box", t.Kind)
		}
	}
	if err := p.b.OpenBox(strings.Join(label, " "), color, st.Pos); err != nil {
		return p.errorf(st.Pos, "%v", err)
	}
	p.blocks = append(p.blocks, "box")
	return nil
}

func (p *parser) message(toks []Token, pos source.Position) error {
	shape := decodeArrow(toks[1].Text)
	from, to := endpoint(toks[0]), endpoint(toks[2])
	if shape.reversed {
		from, to = to, from
	}
	if from == "" && to == "" {
		return p.errorf(pos, "message needs at least one participant")
	}
	m := &ast.Message{From: from, To: to, Line: ast.LineSolid, Head: headStyle(shape), Pos: pos}
	if shape.dotted {
		m.Line = ast.LineDotted
	}
	m.Type = ast.InferMessageType(m.Line, m.Head)

	ts := &tokens{toks: toks, i: 3}
	for {
		t := ts.peek()
		if t.Kind == TokenSuffix {
			switch t.Text {
			case "++":
				m.Activate = true
			case "--":
				m.Deactivate = true
			case "**":
				m.Type = ast.MessageCreate
			case "!!":
				m.Type = ast.MessageDestroy
			}
		} else if t.Kind != TokenColor {
			break
		}
		ts.next()
	}
	if ts.peek().Kind == TokenColon {
		ts.next()
		m.Text = ts.next().Text
	}
	if p.pendingCreate != "" {
		if m.Touches(p.pendingCreate) {
			m.Type = ast.MessageCreate
		}
		p.pendingCreate = ""
	}

	p.b.Ensure(m.From, pos)
	p.b.Ensure(m.To, pos)
	if m.Deactivate {
		p.pop(m.From)
	}
	if m.Activate {
		p.active = append(p.active, activation{caller: m.From, callee: m.To})
	}
	m.ID = p.b.NextID(ast.PrefixMessage)
	p.b.Emit(m)
	return nil
}

func endpoint(t Token) string {
	if t.Kind == TokenBoundary {
		return ""
	}
	return t.Text
}

func headStyle(a arrowShape) ast.HeadStyle {
	if a.left != "" && a.right != "" {
		return ast.HeadBoth
	}
	switch a.right + a.left {
	case ">", ">o", "<":
		return ast.HeadArrow
	case "x", ">x":
		return ast.HeadCross
	default:
		return ast.HeadOpen
	}
}

// pop closes the innermost activation of callee.
func (p *parser) pop(callee string) {
	for i := len(p.active) - 1; i >= 0; i-- {
		if p.active[i].callee == callee {
			p.active = append(p.active[:i], p.active[i+1:]...)
			return
		}
	}
}

func (p *parser) activation(st Statement) error {
	toks, err := TokenizeDecl(st.Text, st.TextPos)
	if err != nil {
		return p.lexErr(err)
	}
	first := toks[0]
	if first.Kind != TokenWord && first.Kind != TokenString {
		return p.errorf(st.TextPos, "%s needs a participant", st.Keyword)
	}
	id := first.Text
	p.b.Ensure(id, first.Pos)
	if st.Keyword == "activate" {
		caller := ""
		if m, ok := p.b.LastEvent().(*ast.Message); ok && m.To == id {
			caller = m.From
		}
		p.active = append(p.active, activation{caller: caller, callee: id})
	} else {
		p.pop(id)
	}
	p.b.Emit(&ast.Activation{
		ID:          p.b.NextID(ast.PrefixActivation),
		Participant: id,
		Action:      ast.ActivationAction(st.Keyword),
		Pos:         st.Pos,
	})
	return nil
}

func (p *parser) ret(st Statement) error {
	if len(p.active) == 0 {
		return p.unsupported(st.Pos, "return", "no active call to return from")
	}
	top := p.active[len(p.active)-1]
	if top.caller == "" {
		return p.unsupported(st.Pos, "return", fmt.Sprintf("the caller that activated %q is unknown", top.callee))
	}
	p.active = p.active[:len(p.active)-1]
	p.b.Emit(&ast.Message{
		ID:         p.b.NextID(ast.PrefixMessage),
		From:       top.callee,
		To:         top.caller,
		Text:       st.Text,
		Type:       ast.MessageReply,
		Line:       ast.LineDotted,
		Head:       ast.HeadArrow,
		Deactivate: true,
		Pos:        st.Pos,
	})
	return nil
}

var noteEnds = []string{"end note", "endnote", "end hnote", "endhnote", "end rnote", "endrnote"}

func (p *parser) note(st Statement) error {
	head, text, inline := strings.Cut(st.Text, ":")
	head = stripColors(head)
	lower := strings.ToLower(head)
	n := &ast.Note{Pos: st.Pos}
	switch {
	case strings.HasPrefix(lower, "left of "):
		n.Position, n.Participants = ast.NoteLeft, splitIDs(head[len("left of "):])
	case strings.HasPrefix(lower, "right of "):
		n.Position, n.Participants = ast.NoteRight, splitIDs(head[len("right of "):])
	case strings.HasPrefix(lower, "over "):
		n.Position, n.Participants = ast.NoteOver, splitIDs(head[len("over "):])
	case lower == "left" || lower == "right":
		m := p.b.LastMessage()
		if m == nil {
			return p.unsupported(st.Pos, st.Keyword+" "+lower, "note is not attached to a participant or message")
		}
		n.Position = ast.NotePosition(lower)
		n.Participants = m.Participants()[:1]
		if lower == "right" && m.To != "" {
			n.Participants = []string{m.To}
		}
	case lower == "across":
		n.Position, n.Participants = ast.NoteOver, p.b.Root().ParticipantIDs()
		if len(n.Participants) == 0 {
			return p.unsupported(st.Pos, "note across", "no participants declared yet")
		}
	case strings.HasPrefix(lower, "as "):
		return p.unsupported(st.Pos, st.Keyword+" as", "floating notes are not attached to lifelines")
	default:
		return p.errorf(st.TextPos, "note placement must be left of, right of, over or across")
	}
	if len(n.Participants) == 0 {
		return p.errorf(st.TextPos, "note needs at least one participant")
	}
	if inline {
		n.Text = strings.TrimSpace(text)
	} else {
		body, err := p.block(st, "note", noteEnds...)
		if err != nil {
			return err
		}
		n.Text = body
	}
	for _, id := range n.Participants {
		p.b.Ensure(id, st.Pos)
	}
	n.ID = p.b.NextID(ast.PrefixNote)
	p.b.Emit(n)
	return nil
}

func (p *parser) ref(st Statement) error {
	head, text, inline := strings.Cut(st.Text, ":")
	head = stripColors(head)
	if !strings.HasPrefix(strings.ToLower(head), "over ") {
		return p.errorf(st.TextPos, "reference must look like \"ref over A, B : text\"")
	}
	ids := splitIDs(head[len("over "):])
	if len(ids) == 0 {
		return p.errorf(st.TextPos, "reference needs at least one participant")
	}
	if inline {
		text = strings.TrimSpace(text)
	} else {
		body, err := p.block(st, "reference", "end ref", "endref")
		if err != nil {
			return err
		}
		text = body
	}
	text, link := builder.SplitLink(text)
	for _, id := range ids {
		p.b.Ensure(id, st.Pos)
	}
	p.b.Emit(&ast.Reference{
		ID:           p.b.NextID(ast.PrefixReference),
		Text:         text,
		Participants: ids,
		Link:         link,
		Pos:          st.Pos,
	})
	return nil
}

func stripColors(s string) string {
	var kept []string
	for _, f := range strings.Fields(s) {
		if !strings.HasPrefix(f, "#") {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := unquote(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
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
