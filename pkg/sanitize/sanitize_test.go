package sanitize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/polagram/pkg/ast"
)

func msg(from, to, text string) *ast.Message {
	return &ast.Message{From: from, To: to, Text: text, Type: ast.MessageSync}
}

func frag(op ast.Operator, branches ...*ast.Branch) *ast.Fragment {
	return &ast.Fragment{Operator: op, Branches: branches}
}

func branch(cond string, events ...ast.Event) *ast.Branch {
	return &ast.Branch{Condition: cond, Events: events}
}

func participants(ids ...string) []*ast.Participant {
	out := make([]*ast.Participant, len(ids))
	for i, id := range ids {
		out[i] = &ast.Participant{ID: id, Name: id, Type: ast.TypeParticipant}
	}
	return out
}

func TestStructuralCascadesUpward(t *testing.T) {
	r := ast.New()
	r.Participants = participants("A", "B")
	r.Events = []ast.Event{
		msg("A", "B", "keep"),
		frag(ast.OpAlt,
			branch("outer", frag(ast.OpOpt, branch("inner"))),
			branch("other"),
		),
	}
	got := Structural(r)
	if n := len(got.Events); n != 1 {
		t.Fatalf("Structural() left %d events, want 1:\n%s", n, ast.Dump(got))
	}
	if m, ok := got.Events[0].(*ast.Message); !ok || m.Text != "keep" {
		t.Errorf("Structural() kept %v, want the message", got.Events[0])
	}
	if len(r.Events) != 2 {
		t.Error("Structural() modified its input")
	}
}

func TestStructuralKeepsNonEmptyBranches(t *testing.T) {
	r := ast.New()
	r.Events = []ast.Event{
		frag(ast.OpAlt, branch("ok", msg("A", "B", "x")), branch("empty")),
	}
	got := Structural(r)
	f := got.Events[0].(*ast.Fragment)
	if len(f.Branches) != 1 || f.Branches[0].Condition != "ok" {
		t.Errorf("Structural() branches = %d, want only the non-empty one", len(f.Branches))
	}
}

func TestStructuralGroups(t *testing.T) {
	r := ast.New()
	r.Groups = []*ast.Group{
		{Label: "empty"},
		{Label: "full", Participants: []string{"A"}},
	}
	got := Structural(r)
	if len(got.Groups) != 1 || got.Groups[0].Label != "full" {
		t.Errorf("Structural() groups = %v, want only the non-empty group", got.Groups)
	}
}

func TestReferences(t *testing.T) {
	r := ast.New()
	r.Participants = participants("A", "B", "Deep", "Noted", "Grouped", "Unused")
	r.Groups = []*ast.Group{{Label: "g", Participants: []string{"Grouped"}}}
	r.Events = []ast.Event{
		msg("A", "B", "hello"),
		frag(ast.OpLoop, branch("", frag(ast.OpOpt, branch("", msg("B", "Deep", "nested"))))),
		&ast.Note{Position: ast.NoteOver, Participants: []string{"Noted"}, Text: "n"},
	}
	got := References(r)
	want := []string{"A", "B", "Deep", "Noted", "Grouped"}
	if diff := cmp.Diff(want, got.ParticipantIDs()); diff != "" {
		t.Errorf("References() participants mismatch (-want +got):\n%s", diff)
	}
}

func TestIdempotent(t *testing.T) {
	inputs := map[string]*ast.Root{
		"empty": ast.New(),
		"degenerate": func() *ast.Root {
			r := ast.New()
			r.Participants = participants("A", "B", "C")
			r.Groups = []*ast.Group{{Label: "none"}, {Label: "c", Participants: []string{"C"}}}
			r.Events = []ast.Event{
				frag(ast.OpAlt),
				frag(ast.OpPar, branch("a", frag(ast.OpLoop, branch(""))), branch("b", msg("A", "B", "x"))),
				&ast.Divider{Text: "section"},
			}
			return r
		}(),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			once := All(in)
			twice := All(once)
			if diff := cmp.Diff(ast.Dump(once), ast.Dump(twice)); diff != "" {
				t.Errorf("All() is not idempotent (-once +twice):\n%s", diff)
			}
			if diff := cmp.Diff(ast.Dump(Structural(once)), ast.Dump(once)); diff != "" {
				t.Errorf("Structural() changed sanitized input:\n%s", diff)
			}
			if diff := cmp.Diff(ast.Dump(References(once)), ast.Dump(once)); diff != "" {
				t.Errorf("References() changed sanitized input:\n%s", diff)
			}
		})
	}
}

func TestAllReferenceIntegrity(t *testing.T) {
	r := ast.New()
	r.Participants = participants("A", "B", "C")
	r.Events = []ast.Event{frag(ast.OpOpt, branch("", frag(ast.OpLoop, branch("")))), msg("A", "B", "x")}
	got := All(r)
	declared := map[string]bool{}
	for _, p := range got.Participants {
		declared[p.ID] = true
	}
	for id := range ast.ReferencedIDs(got.Events, got.Groups) {
		if !declared[id] {
			t.Errorf("referenced participant %q is not declared", id)
		}
	}
	if diff := cmp.Diff([]string{"A", "B"}, got.ParticipantIDs()); diff != "" {
		t.Errorf("All() participants mismatch (-want +got):\n%s", diff)
	}
}
