package transform

import (
	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/selector"
)

// Resolve unwraps matched fragments. Each fragment with at least one matching
// branch is replaced by the events of the first matching branch; the operator
// and all other branches are discarded. An unconditioned selector matches
// every branch, so the first branch wins. Fragments where no branch matches
// are left in place and searched for nested matches.
//
// Spliced events are resolved as well, so nested fragments matching the same
// selector are unwrapped in one pass. Non-fragment selectors leave the
// diagram unchanged.
func Resolve(r *ast.Root, m *selector.Matcher) *ast.Root {
	out := ast.Clone(r)
	if m.Kind() != selector.KindFragment {
		return out
	}
	out.Events = resolveEvents(out.Events, m)
	return out
}

func resolveEvents(events []ast.Event, m *selector.Matcher) []ast.Event {
	out := make([]ast.Event, 0, len(events))
	for _, e := range events {
		f, ok := e.(*ast.Fragment)
		if !ok {
			out = append(out, e)
			continue
		}
		if b := firstMatch(f, m); b != nil {
			out = append(out, resolveEvents(b.Events, m)...)
			continue
		}
		for _, b := range f.Branches {
			b.Events = resolveEvents(b.Events, m)
		}
		out = append(out, f)
	}
	return out
}

func firstMatch(f *ast.Fragment, m *selector.Matcher) *ast.Branch {
	for _, b := range f.Branches {
		if m.MatchesBranch(f, b) {
			return b
		}
	}
	return nil
}
