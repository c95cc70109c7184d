package ast

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Dump renders r as an indented, deterministic outline. Metadata keys are
// sorted, everything else keeps tree order. The output is meant for tests,
// debugging and content hashing, not for humans to edit.
func Dump(r *Root) string {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(r.Meta)) {
		fmt.Fprintf(&b, "meta %s=%q\n", k, r.Meta[k])
	}
	for _, d := range r.Directives {
		fmt.Fprintf(&b, "directive %s %q\n", d.Dialect, d.Text)
	}
	for _, p := range r.Participants {
		fmt.Fprintf(&b, "participant %s name=%q alias=%q type=%s stereo=%q color=%q created=%t",
			p.ID, p.Name, p.Alias, p.Type, p.Stereotype, p.Color, p.Created)
		for _, l := range p.Links {
			fmt.Fprintf(&b, " link=%q@%q", l.Label, l.URL)
		}
		b.WriteByte('\n')
	}
	for _, g := range r.Groups {
		fmt.Fprintf(&b, "group %s label=%q color=%q members=%s\n",
			g.ID, g.Label, g.Color, strings.Join(g.Participants, ","))
	}
	dumpEvents(&b, r.Events, 0)
	return b.String()
}

func dumpEvents(b *strings.Builder, events []Event, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range events {
		b.WriteString(indent)
		switch ev := e.(type) {
		case *Message:
			fmt.Fprintf(b, "message %s %s->%s %q type=%s line=%s head=%s act=%t deact=%t\n",
				ev.ID, ev.From, ev.To, ev.Text, ev.Type, ev.Line, ev.Head, ev.Activate, ev.Deactivate)
		case *Fragment:
			fmt.Fprintf(b, "fragment %s %s\n", ev.ID, ev.Operator)
			for _, br := range ev.Branches {
				fmt.Fprintf(b, "%s  branch %q\n", indent, br.Condition)
				dumpEvents(b, br.Events, depth+2)
			}
		case *Note:
			fmt.Fprintf(b, "note %s %s %s %q\n", ev.ID, ev.Position, strings.Join(ev.Participants, ","), ev.Text)
		case *Activation:
			fmt.Fprintf(b, "%s %s %s\n", ev.Action, ev.ID, ev.Participant)
		case *Reference:
			fmt.Fprintf(b, "ref %s %s %q link=%q\n", ev.ID, strings.Join(ev.Participants, ","), ev.Text, ev.Link)
		case *Divider:
			fmt.Fprintf(b, "divider %s %q\n", ev.ID, ev.Text)
		case *Spacer:
			fmt.Fprintf(b, "spacer %s %q height=%d delay=%t\n", ev.ID, ev.Text, ev.Height, ev.Delay)
		}
	}
}
