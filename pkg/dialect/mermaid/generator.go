package mermaid

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
		ast.HeadNone: "->", ast.HeadArrow: "->>", ast.HeadCross: "-x",
		ast.HeadOpen: "-)", ast.HeadBoth: "<<->>",
	},
	ast.LineDotted: {
		ast.HeadNone: "-->", ast.HeadArrow: "-->>", ast.HeadCross: "--x",
		ast.HeadOpen: "--)", ast.HeadBoth: "<<-->>",
	},
}

// Generate renders root as Mermaid sequence diagram text. Output is
// deterministic; constructs Mermaid cannot draw are written as "%%@"
// extension comments so that Parse restores them.
func Generate(root *ast.Root) string {
	g := newGenerator(root)
	for _, d := range root.Directives {
		if d.Dialect == ast.DialectMermaid {
			g.buf.WriteString(d.Text)
			g.buf.WriteByte('\n')
		}
	}
	g.line("sequenceDiagram")
	g.depth++
	g.meta()
	g.flush(false)
	g.events(root.Events)
	g.flush(true)
	return g.buf.String()
}

type generator struct {
	root  *ast.Root
	buf   bytes.Buffer
	depth int

	next     int // index into root.Participants of the next undeclared one
	emitted  map[string]bool
	boxes    map[string]bool // group ids already written
	deferred map[string]bool // declared at their create message
}

func newGenerator(root *ast.Root) *generator {
	g := &generator{
		root:     root,
		emitted:  map[string]bool{},
		boxes:    map[string]bool{},
		deferred: map[string]bool{},
	}
	ast.Walk(root.Events, func(e ast.Event) bool {
		m, ok := e.(*ast.Message)
		if !ok || m.Type != ast.MessageCreate {
			return true
		}
		for _, id := range m.Participants() {
			if p, ok := root.Participant(id); ok && p.Created {
				if _, grouped := root.GroupOf(id); !grouped {
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
	m := g.root.Meta
	if v, ok := m["title"]; ok {
		g.line("title %s", v)
	}
	if v, ok := m["accTitle"]; ok {
		g.line("accTitle: %s", v)
	}
	if v, ok := m["accDescr"]; ok {
		g.line("accDescr: %s", v)
	}
	if v, ok := m["autonumber"]; ok {
		if v == "on" || v == "" {
			g.line("autonumber")
		} else {
			g.line("autonumber %s", v)
		}
	}
}

// flush declares participants in order until it reaches one that must wait
// for its create message. The final flush also writes groups that never got
// a member declared.
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
	parts := []string{"box"}
	for _, part := range []string{grp.Color, grp.Label} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	g.line("%s", strings.Join(parts, " "))
	g.depth++
	for _, id := range grp.Participants {
		if p, ok := g.root.Participant(id); ok && !g.emitted[id] {
			g.declare(p, "")
		}
	}
	g.depth--
	g.line("end")
}

func (g *generator) declare(p *ast.Participant, prefix string) {
	g.emitted[p.ID] = true
	kw := "participant"
	if p.Type == ast.TypeActor {
		kw = "actor"
	}
	s := prefix + kw + " " + p.ID
	if p.Type != ast.TypeParticipant && p.Type != ast.TypeActor && p.Type != "" {
		s += fmt.Sprintf(`@{ "type": %q }`, string(p.Type))
	}
	if name := p.DisplayName(); p.Alias != "" || name != p.ID {
		s += " as " + name
	}
	if p.Created && !g.deferred[p.ID] && prefix == "" {
		s = "create " + s
	}
	g.line("%s", s)
	for _, l := range p.Links {
		g.line("link %s: %s @ %s", p.ID, l.Label, l.URL)
	}
}

func (g *generator) events(events []ast.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case *ast.Message:
			g.message(ev)
		case *ast.Fragment:
			g.fragment(ev)
		case *ast.Note:
			g.line("Note %s: %s", placement(ev.Position, ev.Participants), oneLine(ev.Text))
		case *ast.Activation:
			g.line("%s %s", ev.Action, ev.Participant)
		case *ast.Reference:
			g.line("%s ref over %s: %s", ExtensionPrefix, strings.Join(ev.Participants, ","),
				builder.JoinLink(oneLine(ev.Text), ev.Link))
		case *ast.Divider:
			g.line("%s == %s ==", ExtensionPrefix, ev.Text)
		case *ast.Spacer:
			g.line("%s %s", ExtensionPrefix, builder.FormatSpacer(ev.Text, ev.Height, ev.Delay))
		}
	}
}

func (g *generator) message(m *ast.Message) {
	var created *ast.Participant
	if m.Type == ast.MessageCreate {
		for _, id := range m.Participants() {
			if g.deferred[id] && !g.emitted[id] {
				created, _ = g.root.Participant(id)
				g.declare(created, "create ")
				break
			}
		}
	}
	if m.Type == ast.MessageDestroy {
		target := m.To
		if target == "" {
			target = m.From
		}
		g.line("destroy %s", target)
	}

	line, head := m.Style()
	arrow := arrowSpelling[line][head]
	switch {
	case m.Activate:
		arrow += "+"
	case m.Deactivate:
		arrow += "-"
	}
	from, to, prefix := m.From, m.To, ""
	if from == "" {
		from, prefix = "[", ExtensionPrefix+" "
	}
	if to == "" {
		to, prefix = "]", ExtensionPrefix+" "
	}
	g.line("%s", strings.TrimRight(fmt.Sprintf("%s%s%s%s: %s", prefix, from, arrow, to, oneLine(m.Text)), " "))
	// Mermaid arrows carry one activation suffix. The sender's deactivation
	// follows as its own statement.
	if m.Activate && m.Deactivate && m.From != "" {
		g.line("deactivate %s", m.From)
	}

	if created != nil {
		g.flush(false)
	}
}

// branchKeyword is the separator Mermaid uses between operands.
func branchKeyword(op ast.Operator) string {
	switch op {
	case ast.OpPar:
		return "and"
	case ast.OpCritical:
		return "option"
	default:
		return "else"
	}
}

func (g *generator) fragment(f *ast.Fragment) {
	op := f.Operator
	if op == ast.OpGroup {
		op = ast.OpRect
	}
	for i, br := range f.Branches {
		kw := string(op)
		if i > 0 {
			kw = branchKeyword(f.Operator)
		}
		g.line("%s", strings.TrimSpace(kw+" "+oneLine(br.Condition)))
		g.depth++
		g.events(br.Events)
		g.depth--
	}
	if len(f.Branches) == 0 {
		g.line("%s", op)
	}
	g.line("end")
}

func placement(pos ast.NotePosition, ids []string) string {
	list := strings.Join(ids, ",")
	switch pos {
	case ast.NoteLeft:
		return "left of " + list
	case ast.NoteRight:
		return "right of " + list
	default:
		return "over " + list
	}
}

// oneLine folds multi-line text into Mermaid's <br/> line breaks.
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", "<br/>")
}
