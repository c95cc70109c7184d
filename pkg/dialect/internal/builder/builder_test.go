package builder

import (
	"testing"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/source"
)

func TestDeclareMergesImplicit(t *testing.T) {
	b := New()
	b.Ensure("A", source.Position{Line: 3})
	b.Ensure("B", source.Position{Line: 3})
	b.Declare(&ast.Participant{ID: "A", Name: "Alice", Alias: "A", Pos: source.Position{Line: 5}})

	r := b.Root()
	if got := len(r.Participants); got != 2 {
		t.Fatalf("len(Participants) = %d, want 2", got)
	}
	a := r.Participants[0]
	if a.Name != "Alice" || a.Type != ast.TypeParticipant {
		t.Errorf("merged participant = %+v", a)
	}
	if a.Pos.Line != 3 {
		t.Errorf("merged Pos.Line = %d, want 3 (first appearance)", a.Pos.Line)
	}
}

func TestFragmentNesting(t *testing.T) {
	b := New()
	b.OpenFragment(ast.OpAlt, "ok", source.Position{Line: 1})
	b.Emit(&ast.Message{ID: "msg-1", From: "A", To: "B"})
	b.OpenFragment(ast.OpLoop, "", source.Position{Line: 3})
	b.Emit(&ast.Message{ID: "msg-2", From: "B", To: "A"})
	if err := b.CloseFragment(); err != nil {
		t.Fatal(err)
	}
	if err := b.AddBranch("fail", source.Position{Line: 5}); err != nil {
		t.Fatal(err)
	}
	b.Emit(&ast.Message{ID: "msg-3", From: "A", To: "B"})
	if err := b.CloseFragment(); err != nil {
		t.Fatal(err)
	}

	r, _, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if len(r.Events) != 1 {
		t.Fatalf("len(Events) = %d, want 1", len(r.Events))
	}
	alt := r.Events[0].(*ast.Fragment)
	if alt.ID != "frag-1" || len(alt.Branches) != 2 {
		t.Fatalf("alt = %+v", alt)
	}
	if got := len(alt.Branches[0].Events); got != 2 {
		t.Errorf("first branch events = %d, want 2", got)
	}
	if got := alt.Branches[1].Condition; got != "fail" {
		t.Errorf("second branch condition = %q, want fail", got)
	}
}

func TestFinishUnclosed(t *testing.T) {
	b := New()
	b.OpenFragment(ast.OpLoop, "", source.Position{Line: 4, Column: 2})
	_, pos, err := b.Finish()
	if err == nil {
		t.Fatal("Finish() expected error for unclosed fragment")
	}
	if pos.Line != 4 {
		t.Errorf("error position line = %d, want 4", pos.Line)
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	b := New()
	if err := b.CloseFragment(); err != ErrNoOpenBlock {
		t.Errorf("CloseFragment() = %v, want ErrNoOpenBlock", err)
	}
	if err := b.AddBranch("", source.Position{}); err != ErrNoOpenBlock {
		t.Errorf("AddBranch() = %v, want ErrNoOpenBlock", err)
	}
	if err := b.CloseBox(); err != ErrNoOpenBlock {
		t.Errorf("CloseBox() = %v, want ErrNoOpenBlock", err)
	}
}

func TestBoxMembership(t *testing.T) {
	b := New()
	if err := b.OpenBox("Backend", "Aqua", source.Position{Line: 1}); err != nil {
		t.Fatal(err)
	}
	if err := b.OpenBox("x", "", source.Position{}); err == nil {
		t.Error("nested OpenBox() expected error")
	}
	b.Declare(&ast.Participant{ID: "API"})
	b.Declare(&ast.Participant{ID: "DB", Type: ast.TypeDatabase})
	if err := b.CloseBox(); err != nil {
		t.Fatal(err)
	}
	b.Declare(&ast.Participant{ID: "User"})

	g := b.Root().Groups[0]
	if g.ID != "grp-1" || len(g.Participants) != 2 || g.Participants[1] != "DB" {
		t.Errorf("group = %+v", g)
	}
}

func TestSyntaxHelpers(t *testing.T) {
	if got, err := ParseDivider("== Setup =="); err != nil || got != "Setup" {
		t.Errorf("ParseDivider() = %q, %v", got, err)
	}
	if _, err := ParseDivider("== Setup"); err == nil {
		t.Error("ParseDivider() expected error")
	}

	spacers := []struct {
		in   string
		want int
		ok   bool
	}{
		{"|||", 0, true},
		{"||45||", 45, true},
		{"||x||", 0, false},
		{"||", 0, false},
	}
	for _, tt := range spacers {
		got, err := ParseSpacer(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseSpacer(%q) = %d, %v", tt.in, got, err)
		}
	}

	if got, err := ParseDelay("...5 minutes later..."); err != nil || got != "5 minutes later" {
		t.Errorf("ParseDelay() = %q, %v", got, err)
	}
	if got, err := ParseDelay("..."); err != nil || got != "" {
		t.Errorf("ParseDelay(...) = %q, %v", got, err)
	}

	text, link := SplitLink("Checkout [[https://wiki/checkout]]")
	if text != "Checkout" || link != "https://wiki/checkout" {
		t.Errorf("SplitLink() = %q, %q", text, link)
	}
	if got := JoinLink(text, link); got != "Checkout [[https://wiki/checkout]]" {
		t.Errorf("JoinLink() = %q", got)
	}

	for _, sp := range []struct {
		text  string
		h     int
		delay bool
	}{{"", 0, false}, {"", 30, false}, {"", 0, true}, {"later", 0, true}} {
		s := FormatSpacer(sp.text, sp.h, sp.delay)
		if sp.delay {
			if got, _ := ParseDelay(s); got != sp.text {
				t.Errorf("ParseDelay(FormatSpacer()) = %q, want %q", got, sp.text)
			}
		} else if got, _ := ParseSpacer(s); got != sp.h {
			t.Errorf("ParseSpacer(FormatSpacer()) = %d, want %d", got, sp.h)
		}
	}
}
