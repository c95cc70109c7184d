package selector

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

func TestMatchesParticipant(t *testing.T) {
	p := &ast.Participant{ID: "L", Name: "Logger", Alias: "L"}
	tests := []struct {
		name string
		sel  Selector
		want bool
	}{
		{"kind only", Selector{Kind: KindParticipant}, true},
		{"by id", Selector{Kind: KindParticipant, Name: "L"}, true},
		{"by display name", Selector{Kind: KindParticipant, Name: "Logger"}, true},
		{"other name", Selector{Kind: KindParticipant, Name: "API"}, false},
		{"literal text", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "Logger"}}, true},
		{"literal is whole string", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "Log"}}, false},
		{"literal case", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "logger"}}, false},
		{"literal ignore case", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "logger", IgnoreCase: true}}, true},
		{"regex search", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "og", Mode: ModeRegex}}, true},
		{"glob", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "Log*", Mode: ModeGlob}}, true},
		{"glob full match", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "og*", Mode: ModeGlob}}, false},
		{"glob ignore case", Selector{Kind: KindParticipant, Text: &TextMatch{Pattern: "LOG*", Mode: ModeGlob, IgnoreCase: true}}, true},
		{"and of attributes", Selector{Kind: KindParticipant, Name: "L", Text: &TextMatch{Pattern: "API"}}, false},
		{"wrong kind", Selector{Kind: KindMessage}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.sel)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			if got := m.Matches(p); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesEvents(t *testing.T) {
	msg := &ast.Message{From: "API", To: "User", Text: "GET /orders"}
	note := &ast.Note{Participants: []string{"API", "DB"}, Text: "retry later"}
	group := &ast.Group{Label: "Backend"}

	tests := []struct {
		name string
		sel  Selector
		node any
		want bool
	}{
		{"message from", Selector{Kind: KindMessage, From: "API"}, msg, true},
		{"message to mismatch", Selector{Kind: KindMessage, To: "API"}, msg, false},
		{"message either endpoint", Selector{Kind: KindMessage, Name: "User"}, msg, true},
		{"message regex", Selector{Kind: KindMessage, Text: &TextMatch{Pattern: "^get", Mode: ModeRegex, IgnoreCase: true}}, msg, true},
		{"note participant", Selector{Kind: KindNote, Name: "DB"}, note, true},
		{"note text", Selector{Kind: KindNote, Text: &TextMatch{Pattern: "*later", Mode: ModeGlob}}, note, true},
		{"group label", Selector{Kind: KindGroup, Name: "Backend"}, group, true},
		{"group glob", Selector{Kind: KindGroup, Text: &TextMatch{Pattern: "Front*", Mode: ModeGlob}}, group, false},
		{"unsupported node", Selector{Kind: KindMessage}, "message", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MustCompile(tt.sel).Matches(tt.node); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesFragment(t *testing.T) {
	f := &ast.Fragment{Operator: ast.OpAlt, Branches: []*ast.Branch{
		{Condition: "Success"},
		{Condition: "Error"},
	}}

	m := MustCompile(Selector{Kind: KindFragment, Text: &TextMatch{Pattern: "Error"}})
	if !m.Matches(f) {
		t.Error("fragment should match when any branch matches")
	}
	if m.MatchesBranch(f, f.Branches[0]) {
		t.Error("MatchesBranch(Success) = true, want false")
	}
	if !m.MatchesBranch(f, f.Branches[1]) {
		t.Error("MatchesBranch(Error) = false, want true")
	}

	loop := MustCompile(Selector{Kind: KindFragment, Operator: ast.OpLoop})
	if loop.Matches(f) {
		t.Error("operator=loop matched an alt fragment")
	}
	if MustCompile(Selector{Kind: KindFragment}).Matches(&ast.Fragment{Operator: ast.OpAlt}) {
		t.Error("fragment without branches should never match")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		sel   Selector
		field string
	}{
		{"unknown kind", Selector{Kind: "lifeline"}, "kind"},
		{"bad regex", Selector{Kind: KindMessage, Text: &TextMatch{Pattern: "(", Mode: ModeRegex}}, "text"},
		{"bad mode", Selector{Kind: KindGroup, Text: &TextMatch{Pattern: "x", Mode: "fuzzy"}}, "text.mode"},
		{"operator on message", Selector{Kind: KindMessage, Operator: ast.OpAlt}, "operator"},
		{"unknown operator", Selector{Kind: KindFragment, Operator: "switch"}, "operator"},
		{"name on fragment", Selector{Kind: KindFragment, Name: "x"}, "name"},
		{"from on note", Selector{Kind: KindNote, From: "A"}, "from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.sel)
			var serr *errors.SelectorError
			if !stderrors.As(err, &serr) {
				t.Fatalf("Compile() error = %v, want *SelectorError", err)
			}
			if serr.Field != tt.field {
				t.Errorf("Field = %q, want %q", serr.Field, tt.field)
			}
			if !errors.Is(err, errors.ErrCodeSelector) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeSelector)
			}
		})
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		expr string
		want Selector
	}{
		{"participant", Selector{Kind: KindParticipant}},
		{"participant[name=Logger]", Selector{Kind: KindParticipant, Name: "Logger"}},
		{"message[ from = API , text=/^GET/i ]", Selector{Kind: KindMessage, From: "API",
			Text: &TextMatch{Pattern: "^GET", Mode: ModeRegex, IgnoreCase: true}}},
		{"fragment[operator=alt,text=Success]", Selector{Kind: KindFragment, Operator: ast.OpAlt,
			Text: &TextMatch{Pattern: "Success", Mode: ModeLiteral}}},
		{"group[text=glob:Back*]", Selector{Kind: KindGroup, Text: &TextMatch{Pattern: "Back*", Mode: ModeGlob}}},
		{`note[text=i:"todo, later"]`, Selector{Kind: KindNote, Text: &TextMatch{Pattern: "todo, later", IgnoreCase: true, Mode: ModeLiteral}}},
		{`message[text=/a\/b/]`, Selector{Kind: KindMessage, Text: &TextMatch{Pattern: "a/b", Mode: ModeRegex}}},
		{`participant[name="Order Service"]`, Selector{Kind: KindParticipant, Name: "Order Service"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseExpr(tt.expr)
			if err != nil {
				t.Fatalf("ParseExpr() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseExpr() mismatch (-want +got):\n%s", diff)
			}
			again, err := ParseExpr(got.String())
			if err != nil {
				t.Fatalf("ParseExpr(%q) error: %v", got.String(), err)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("String() does not round-trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"lifeline",
		"participant[",
		"participant[name]",
		"participant[color=red]",
		"participant[name=A] extra",
		"message[text=/unterminated]",
		`message[text="open]`,
		"message[text=/(/]",
		"participant[operator=alt]",
	} {
		if _, err := ParseExpr(expr); !errors.Is(err, errors.ErrCodeSelector) {
			t.Errorf("ParseExpr(%q) error = %v, want selector error", expr, err)
		}
	}
}

func ExampleParseExpr() {
	sel, _ := ParseExpr("fragment[operator=alt,text=Success]")
	m := MustCompile(sel)
	f := &ast.Fragment{Operator: ast.OpAlt, Branches: []*ast.Branch{{Condition: "Success"}, {Condition: "Error"}}}
	fmt.Println(sel.Kind, m.MatchesBranch(f, f.Branches[0]), m.MatchesBranch(f, f.Branches[1]))
	// Output: fragment true false
}
