package transform

import (
	"slices"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/selector"
)

// Filter is the signature shared by all filters.
type Filter func(*ast.Root, *selector.Matcher) *ast.Root

// dropEvents removes every event for which drop returns true, recursing into
// the branches of surviving fragments. Branches are kept even when they end
// up empty.
func dropEvents(events []ast.Event, drop func(ast.Event) bool) []ast.Event {
	out := events[:0]
	for _, e := range events {
		if drop(e) {
			continue
		}
		if f, ok := e.(*ast.Fragment); ok {
			for _, b := range f.Branches {
				b.Events = dropEvents(b.Events, drop)
			}
		}
		out = append(out, e)
	}
	return out
}

// withoutParticipants removes the declarations of ids from r together with
// every event that cannot exist without them. r is modified in place and must
// be a private copy.
func withoutParticipants(r *ast.Root, ids map[string]bool) {
	if len(ids) == 0 {
		return
	}
	r.Participants = slices.DeleteFunc(r.Participants, func(p *ast.Participant) bool { return ids[p.ID] })
	gone := func(id string) bool { return ids[id] }
	for _, g := range r.Groups {
		g.Participants = slices.DeleteFunc(g.Participants, gone)
	}
	r.Events = dropEvents(r.Events, func(e ast.Event) bool {
		switch ev := e.(type) {
		case *ast.Message:
			return ids[ev.From] || ids[ev.To]
		case *ast.Activation:
			return ids[ev.Participant]
		case *ast.Note:
			ev.Participants = slices.DeleteFunc(ev.Participants, gone)
			return len(ev.Participants) == 0
		case *ast.Reference:
			ev.Participants = slices.DeleteFunc(ev.Participants, gone)
			return len(ev.Participants) == 0
		}
		return false
	})
}

// keepOnly restricts the declarations of r to ids. Participants outside the
// set are removed as by withoutParticipants.
func keepOnly(r *ast.Root, ids map[string]bool) {
	drop := map[string]bool{}
	for _, p := range r.Participants {
		if !ids[p.ID] {
			drop[p.ID] = true
		}
	}
	withoutParticipants(r, drop)
}
