package ast

import "github.com/matzehuels/polagram/pkg/source"

// Canonical returns a copy of r with every node identifier and source
// position cleared, message styles made explicit and empty slices normalized
// to nil. Two trees are
// structurally equivalent when their canonical forms are equal: kinds, text
// and ordering must match while ids may be renumbered.
func Canonical(r *Root) *Root {
	out := Clone(r)
	out.Directives = nilIfEmpty(out.Directives)
	out.Participants = nilIfEmpty(out.Participants)
	out.Groups = nilIfEmpty(out.Groups)
	for i := range out.Directives {
		out.Directives[i].Pos = source.Position{}
	}
	for _, p := range out.Participants {
		p.Pos = source.Position{}
		p.Links = nilIfEmpty(p.Links)
	}
	for _, g := range out.Groups {
		g.ID = ""
		g.Pos = source.Position{}
		g.Participants = nilIfEmpty(g.Participants)
	}
	out.Events = canonicalEvents(out.Events)
	return out
}

// Equivalent reports whether a and b are structurally equivalent.
func Equivalent(a, b *Root) bool {
	return Dump(Canonical(a)) == Dump(Canonical(b))
}

func canonicalEvents(events []Event) []Event {
	for _, e := range events {
		switch ev := e.(type) {
		case *Message:
			ev.ID, ev.Pos = "", source.Position{}
			ev.Line, ev.Head = ev.Style()
			if ev.Type == "" {
				ev.Type = InferMessageType(ev.Line, ev.Head)
			}
		case *Fragment:
			ev.ID, ev.Pos = "", source.Position{}
			ev.Branches = nilIfEmpty(ev.Branches)
			for _, b := range ev.Branches {
				b.Pos = source.Position{}
				b.Events = canonicalEvents(b.Events)
			}
		case *Note:
			ev.ID, ev.Pos = "", source.Position{}
			ev.Participants = nilIfEmpty(ev.Participants)
		case *Activation:
			ev.ID, ev.Pos = "", source.Position{}
		case *Reference:
			ev.ID, ev.Pos = "", source.Position{}
			ev.Participants = nilIfEmpty(ev.Participants)
		case *Divider:
			ev.ID, ev.Pos = "", source.Position{}
		case *Spacer:
			ev.ID, ev.Pos = "", source.Position{}
		}
	}
	return nilIfEmpty(events)
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
