package plantuml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect/internal/builder"
)

const indent = "    "

var arrowSpelling = map[ast.LineStyle]map[ast.HeadStyle]string{
	ast.LineSolid: {
		ast.HeadNone: "->", ast.HeadArrow: "->", ast.HeadOpen: "->>",
		ast.HeadCross: "->x", ast.HeadBoth: "<->",
	},
	ast.LineDotted: {
		ast.HeadNone: "-->", ast.HeadArrow: "-->", ast.HeadOpen: "-->>",
		ast.HeadCross: "-->x", ast.HeadBoth: "<-->",
	},
}

// Generate renders root as PlantUML text wrapped in @startuml/@enduml.
// Participant links have no PlantUML spelling and are not written.
func Generate(root *ast.Root) string {
	g := newGenerator(root)
	g.line("%s", strings.TrimSpace("@startuml "+root.Meta["name"]))
	for _, d := range root.Directives {
		if d.Dialect == ast.DialectPlantUML {
			g.buf.WriteString(d.Text)
			g.buf.WriteByte('\n')
		}
	}
	g.meta()
	g.flush(false)
	g.events(root.Events)
	g.flush(true)
	g.line("@enduml")
	return g.buf.String()
}

type generator struct {
	root  *ast.Root
	buf   bytes.Buffer
	depth int

	next     int
	emitted  map[string]bool
	boxes    map[string]bool
	deferred map[string]bool
}

func newGenerator(root *ast.Root) *generator {
	g := &generator{
		root:     root,
		emitted:  map[string]bool{},
		boxes:    map[string]bool{},
		deferred: map[string]bool{},
	}
	ast.Walk(root.Events, func(e ast.Event) bool {
		if m, ok := e.(*ast.Message); ok && m.Type == ast.MessageCreate {
			for _, id := range m.Participants() {
				p, ok := root.Participant(id)
				if _, grouped := root.GroupOf(id); ok && p.Created && !grouped {
					g.deferred[id] = true
				}
			}
		}
		return true
	})
	return g
}

func (g *generator) line(format string, args ...any) {
	g.buf.WriteString(strings.Repeat(indent, g.depth))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *generator) meta() {
	for _, key := range []string{"title", "header", "footer"} {
		if v, ok := g.root.Meta[key]; ok {
			g.line("%s", strings.TrimSpace(key+" "+v))
		}
	}
	if v, ok := g.root.Meta["autonumber"]; ok {
		if v == "on" || v == "" {
			g.line("autonumber")
		} else {
			g.line("autonumber %s", v)
		}
	}
}

func (g *generator) flush(final bool) {
	for g.next < len(g.root.Participants) {
		p := g.root.Participants[g.next]
		if g.deferred[p.ID] && !g.emitted[p.ID] {
			if !final {
				return
			}
			g.declare(p, "")
		}
		if !g.emitted[p.ID] {
			if grp, ok := g.root.GroupOf(p.ID); ok {
				g.box(grp)
			} else {
				g.declare(p, "")
			}
		}
		g.next++
	}
	if final {
		for _, grp := range g.root.Groups {
			if !g.boxes[grp.ID] {
				g.box(grp)
			}
		}
	}
}

func (g *generator) box(grp *ast.Group) {
	g.boxes[grp.ID] = true
	s := "box"
	if grp.Label != "" {
		s += fmt.Sprintf(" %q", grp.Label)
	}
	if grp.Color != "" {
		s += " #" + strings.TrimPrefix(grp.Color, "#")
	}
	g.line("%s", s)
	g.depth++
	for _, id := range grp.Participants {
		if p, ok := g.root.Participant(id); ok && !g.emitted[id] {
			g.declare(p, "")
		}
	}
	g.depth--
	g.line("end box")
}

// declare writes a participant declaration. prefix is "create " for
// participants introduced at their create message.
func (g *generator) declare(p *ast.Participant, prefix string) {
	g.emitted[p.ID] = true
	kw := string(p.Type)
	if kw == "" {
		kw = string(ast.TypeParticipant)
	}
	s := kw + " " + ident(p.ID)
	if name := p.DisplayName(); p.Alias != "" || name != p.ID {
		s = fmt.Sprintf("%s %q as %s", kw, name, ident(p.ID))
	}
	if p.Stereotype != "" {
		s += " <<" + p.Stereotype + ">>"
	}
	if p.Color != "" {
		s += " #" + strings.TrimPrefix(p.Color, "#")
	}
	if p.Created && (prefix != "" || !g.deferred[p.ID]) {
		s = "create " + s
	}
	g.line("%s", s)
}

// ident quotes names that are not plain words.
func ident(id string) string {
	if IsWord(id) {
		return id
	}
	return `"` + id + `"`
}

func idents(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ident(id)
	}
	return strings.Join(out, ", ")
}

func (g *generator) events(events []ast.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case *ast.Message:
			g.message(ev)
		case *ast.Fragment:
			g.fragment(ev)
		case *ast.Note:
			g.note(ev)
		case *ast.Activation:
			g.line("%s %s", ev.Action, ident(ev.Participant))
		case *ast.Reference:
			g.block("ref over "+idents(ev.Participants), builder.JoinLink(ev.Text, ev.Link), "end ref")
		case *ast.Divider:
			g.line("== %s ==", ev.Text)
		case *ast.Spacer:
			g.line("%s", builder.FormatSpacer(ev.Text, ev.Height, ev.Delay))
		}
	}
}

func (g *generator) message(m *ast.Message) {
	created := false
	if m.Type == ast.MessageCreate {
		for _, id := range m.Participants() {
			if g.deferred[id] && !g.emitted[id] {
				p, _ := g.root.Participant(id)
				g.declare(p, "create ")
				created = true
				break
			}
		}
	}

	line, head := m.Style()
	arrow := arrowSpelling[line][head]
	var s string
	switch {
	case m.From == "":
		s = "[" + arrow + " " + ident(m.To)
	case m.To == "":
		s = ident(m.From) + " " + arrow + "]"
	default:
		s = ident(m.From) + " " + arrow + " " + ident(m.To)
	}
	switch m.Type {
	case ast.MessageCreate:
		s += " **"
	case ast.MessageDestroy:
		s += " !!"
	}
	switch {
	case m.Activate && m.Deactivate:
		s += " --++"
	case m.Activate:
		s += " ++"
	case m.Deactivate:
		s += " --"
	}
	if m.Text != "" {
		s += " : " + strings.ReplaceAll(m.Text, "\n", `\n`)
	}
	g.line("%s", s)

	if created {
		g.flush(false)
	}
}

func (g *generator) fragment(f *ast.Fragment) {
	op := f.Operator
	if op == ast.OpRect {
		op = ast.OpGroup
	}
	for i, br := range f.Branches {
		kw := string(op)
		if i > 0 {
			kw = "else"
		}
		g.line("%s", strings.TrimSpace(kw+" "+br.Condition))
		g.depth++
		g.events(br.Events)
		g.depth--
	}
	if len(f.Branches) == 0 {
		g.line("%s", op)
	}
	g.line("end")
}

func (g *generator) note(n *ast.Note) {
	var head string
	switch n.Position {
	case ast.NoteLeft:
		head = "note left of " + idents(n.Participants)
	case ast.NoteRight:
		head = "note right of " + idents(n.Participants)
	default:
		head = "note over " + idents(n.Participants)
	}
	g.block(head, n.Text, "end note")
}

// block writes "head : text" or, for multi-line text, the head followed by
// indented lines and the terminator.
func (g *generator) block(head, text, end string) {
	if !strings.Contains(text, "\n") {
		g.line("%s", strings.TrimRight(head+" : "+text, " "))
		return
	}
	g.line("%s", head)
	g.depth++
	for _, l := range strings.Split(text, "\n") {
		if l == "" {
			g.buf.WriteByte('\n')
			continue
		}
		g.line("%s", l)
	}
	g.depth--
	g.line("%s", end)
}
