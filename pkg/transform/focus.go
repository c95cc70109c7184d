package transform

import (
	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/selector"
)

// Focus narrows a diagram down to the matched nodes and their causal context.
//
// For participant and group selectors the focused set is every matched
// participant (for groups: every member of a matched group). The retained
// set extends it with every participant that exchanges a message with a
// focused one. Participants outside the retained set are removed, and with
// them every message, activation, note target and reference target that
// involves them. Fragments, dividers and spacers stay; branches emptied by
// this are left for the structural sanitizer.
//
// For fragment, message and note selectors only the matched events survive,
// together with the fragments that enclose them. Inside a matched fragment
// only the matching branches are kept, in full. An enclosing fragment keeps
// only the branches that still lead to a match. Participants and group
// members that no surviving event refers to are removed.
//
// Focus with a selector that matches nothing yields a diagram without events.
func Focus(r *ast.Root, m *selector.Matcher) *ast.Root {
	out := ast.Clone(r)
	switch m.Kind() {
	case selector.KindParticipant, selector.KindGroup:
		keepOnly(out, retained(out, focused(out, m)))
	default:
		out.Events = focusEvents(out.Events, m)
		keepOnly(out, ast.ReferencedIDs(out.Events, nil))
	}
	return out
}

// focused returns the ids of matched participants, or the members of matched
// groups.
func focused(r *ast.Root, m *selector.Matcher) map[string]bool {
	ids := map[string]bool{}
	if m.Kind() == selector.KindGroup {
		for _, g := range r.Groups {
			if m.MatchesGroup(g) {
				for _, id := range g.Participants {
					ids[id] = true
				}
			}
		}
		return ids
	}
	for _, p := range r.Participants {
		if m.MatchesParticipant(p) {
			ids[p.ID] = true
		}
	}
	return ids
}

// retained extends focus with the counterpart of every message that touches
// a focused participant.
func retained(r *ast.Root, focus map[string]bool) map[string]bool {
	keep := make(map[string]bool, len(focus))
	for id := range focus {
		keep[id] = true
	}
	ast.Walk(r.Events, func(e ast.Event) bool {
		if msg, ok := e.(*ast.Message); ok && (focus[msg.From] || focus[msg.To]) {
			for _, id := range msg.Participants() {
				keep[id] = true
			}
		}
		return true
	})
	return keep
}

// focusEvents keeps matched events and the fragments leading to them.
func focusEvents(events []ast.Event, m *selector.Matcher) []ast.Event {
	var out []ast.Event
	for _, e := range events {
		f, isFragment := e.(*ast.Fragment)
		if !isFragment {
			if m.Matches(e) {
				out = append(out, e)
			}
			continue
		}
		if m.Kind() == selector.KindFragment && m.MatchesFragment(f) {
			f.Branches = matchingBranches(f, m)
			out = append(out, f)
			continue
		}
		var branches []*ast.Branch
		for _, b := range f.Branches {
			if b.Events = focusEvents(b.Events, m); len(b.Events) > 0 {
				branches = append(branches, b)
			}
		}
		if len(branches) > 0 {
			f.Branches = branches
			out = append(out, f)
		}
	}
	return out
}

func matchingBranches(f *ast.Fragment, m *selector.Matcher) []*ast.Branch {
	var out []*ast.Branch
	for _, b := range f.Branches {
		if m.MatchesBranch(f, b) {
			out = append(out, b)
		}
	}
	return out
}
