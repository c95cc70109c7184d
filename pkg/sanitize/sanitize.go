// Package sanitize restores the structural and referential well-formedness of
// a diagram after lens filters ran.
//
// Both sanitizers are total and idempotent and return new trees. The
// pipeline always runs [All] after the filters of a lens, whatever the lens
// contains.
package sanitize

import (
	"slices"

	"github.com/matzehuels/polagram/pkg/ast"
)

// Structural removes empty containers bottom-up: first every branch whose
// event list is empty, then every fragment left without branches, then every
// group without members. Working bottom-up lets an emptied inner fragment
// empty its enclosing branch, and so on up to the top level.
func Structural(r *ast.Root) *ast.Root {
	out := ast.Clone(r)
	out.Events = prune(out.Events)
	out.Groups = slices.DeleteFunc(out.Groups, func(g *ast.Group) bool { return len(g.Participants) == 0 })
	return out
}

func prune(events []ast.Event) []ast.Event {
	out := events[:0]
	for _, e := range events {
		if f, ok := e.(*ast.Fragment); ok {
			for _, b := range f.Branches {
				b.Events = prune(b.Events)
			}
			f.Branches = slices.DeleteFunc(f.Branches, func(b *ast.Branch) bool { return len(b.Events) == 0 })
			if len(f.Branches) == 0 {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// References deletes every declared participant that is not referenced by an
// event (at any depth) or a group. It never deletes a participant that is
// still referenced.
func References(r *ast.Root) *ast.Root {
	out := ast.Clone(r)
	used := ast.ReferencedIDs(out.Events, out.Groups)
	out.Participants = slices.DeleteFunc(out.Participants, func(p *ast.Participant) bool { return !used[p.ID] })
	return out
}

// All runs Structural and then References.
func All(r *ast.Root) *ast.Root {
	return References(Structural(r))
}
