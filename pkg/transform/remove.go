package transform

import (
	"slices"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/selector"
)

// Remove deletes the matched nodes and the events they directly own.
//
//   - participant: the declaration, every message and activation involving
//     it, and its entries in notes, references and group member lists. Notes
//     and references left without targets go too.
//   - group: the box only. Its members stay declared and keep their events.
//   - message, note: the matched events wherever they are nested.
//   - fragment: the matching branches. A fragment that loses every branch is
//     left empty for the structural sanitizer.
//
// Remove never cascades: a participant that only talked to a removed one is
// still declared afterwards. Dropping it is the reference sanitizer's job.
func Remove(r *ast.Root, m *selector.Matcher) *ast.Root {
	out := ast.Clone(r)
	switch m.Kind() {
	case selector.KindParticipant:
		ids := map[string]bool{}
		for _, p := range out.Participants {
			if m.MatchesParticipant(p) {
				ids[p.ID] = true
			}
		}
		withoutParticipants(out, ids)
	case selector.KindGroup:
		out.Groups = slices.DeleteFunc(out.Groups, m.MatchesGroup)
	case selector.KindFragment:
		ast.Walk(out.Events, func(e ast.Event) bool {
			if f, ok := e.(*ast.Fragment); ok {
				f.Branches = slices.DeleteFunc(f.Branches, func(b *ast.Branch) bool { return m.MatchesBranch(f, b) })
			}
			return true
		})
	default:
		out.Events = dropEvents(out.Events, func(e ast.Event) bool { return m.Matches(e) })
	}
	return out
}

// HideParticipant is the legacy name for Remove restricted to participant
// and message selectors. Other selectors leave the diagram unchanged.
func HideParticipant(r *ast.Root, m *selector.Matcher) *ast.Root {
	switch m.Kind() {
	case selector.KindParticipant, selector.KindMessage:
		return Remove(r, m)
	}
	return ast.Clone(r)
}
