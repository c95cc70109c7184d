package transform

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect/mermaid"
	"github.com/matzehuels/polagram/pkg/selector"
)

const checkout = `sequenceDiagram
    participant User
    box Backend
    participant API
    participant DB
    end
    participant Logger
    User->>API: Req
    API->>Logger: Log
    alt Success
        API->>DB: Save
        DB-->>API: ok
        API-->>User: 200
    else Error
        API-->>User: 404
    end
    Note over API,Logger: audit
    loop retry
        User->>API: Ping
    end
`

func parse(t *testing.T, src string) *ast.Root {
	t.Helper()
	r, err := mermaid.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return r
}

func expr(t *testing.T, s string) *selector.Matcher {
	t.Helper()
	sel, err := selector.ParseExpr(s)
	if err != nil {
		t.Fatalf("ParseExpr(%q) error: %v", s, err)
	}
	return selector.MustCompile(sel)
}

// messages lists message texts in tree order.
func messages(r *ast.Root) []string {
	var out []string
	ast.Walk(r.Events, func(e ast.Event) bool {
		if m, ok := e.(*ast.Message); ok {
			out = append(out, m.Text)
		}
		return true
	})
	return out
}

// outline lists the top-level event kinds with fragment branch conditions.
func outline(r *ast.Root) string {
	var parts []string
	for _, e := range r.Events {
		s := string(e.Kind())
		if f, ok := e.(*ast.Fragment); ok {
			var conds []string
			for _, b := range f.Branches {
				conds = append(conds, b.Condition)
			}
			s += "(" + strings.Join(conds, "|") + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func groupMembers(r *ast.Root) map[string][]string {
	out := map[string][]string{}
	for _, g := range r.Groups {
		out[g.Label] = g.Participants
	}
	return out
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		expr         string
		participants []string
		messages     []string
		outline      string
		groups       map[string][]string
	}{
		{
			name:         "remove participant",
			filter:       Remove,
			expr:         "participant[name=Logger]",
			participants: []string{"User", "API", "DB"},
			messages:     []string{"Req", "Save", "ok", "200", "404", "Ping"},
			outline:      "message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "remove participant leaves empty branches",
			filter:       Remove,
			expr:         "participant[name=User]",
			participants: []string{"API", "DB", "Logger"},
			messages:     []string{"Log", "Save", "ok"},
			outline:      "message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "remove group",
			filter:       Remove,
			expr:         "group[name=Backend]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{},
		},
		{
			name:         "remove message",
			filter:       Remove,
			expr:         "message[from=API]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "ok", "Ping"},
			outline:      "message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "remove note",
			filter:       Remove,
			expr:         "note[text=audit]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "remove fragment branch",
			filter:       Remove,
			expr:         "fragment[text=Error]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "Ping"},
			outline:      "message message fragment(Success) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "focus participant keeps counterparts",
			filter:       Focus,
			expr:         "participant[name=DB]",
			participants: []string{"API", "DB"},
			messages:     []string{"Save", "ok"},
			outline:      "fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "focus group",
			filter:       Focus,
			expr:         "group[text=glob:Back*]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "focus fragment branch",
			filter:       Focus,
			expr:         "fragment[text=Error]",
			participants: []string{"User", "API"},
			messages:     []string{"404"},
			outline:      "fragment(Error)",
			groups:       map[string][]string{"Backend": {"API"}},
		},
		{
			name:         "focus messages",
			filter:       Focus,
			expr:         "message[from=API]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Log", "Save", "200", "404"},
			outline:      "message fragment(Success|Error)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "resolve condition",
			filter:       Resolve,
			expr:         "fragment[text=Success]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "Ping"},
			outline:      "message message message message message note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "resolve unconditioned takes first branch",
			filter:       Resolve,
			expr:         "fragment[operator=loop]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) note message",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "resolve ambiguous takes first match",
			filter:       Resolve,
			expr:         "fragment[operator=alt,text=/^[SE]/]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "Ping"},
			outline:      "message message message message message note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "resolve without match is a no-op",
			filter:       Resolve,
			expr:         "fragment[text=Timeout]",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "hide participant",
			filter:       HideParticipant,
			expr:         "participant[name=Logger]",
			participants: []string{"User", "API", "DB"},
			messages:     []string{"Req", "Save", "ok", "200", "404", "Ping"},
			outline:      "message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
		{
			name:         "hide ignores fragments",
			filter:       HideParticipant,
			expr:         "fragment",
			participants: []string{"User", "API", "DB", "Logger"},
			messages:     []string{"Req", "Log", "Save", "ok", "200", "404", "Ping"},
			outline:      "message message fragment(Success|Error) note fragment(retry)",
			groups:       map[string][]string{"Backend": {"API", "DB"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := parse(t, checkout)
			before := ast.Dump(in)

			got := tt.filter(in, expr(t, tt.expr))

			if ast.Dump(in) != before {
				t.Error("filter modified its input")
			}
			if diff := cmp.Diff(tt.participants, got.ParticipantIDs()); diff != "" {
				t.Errorf("participants mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.messages, messages(got)); diff != "" {
				t.Errorf("messages mismatch (-want +got):\n%s", diff)
			}
			if o := outline(got); o != tt.outline {
				t.Errorf("outline = %q, want %q", o, tt.outline)
			}
			if diff := cmp.Diff(tt.groups, groupMembers(got)); diff != "" {
				t.Errorf("groups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveParticipantTrimsNotes(t *testing.T) {
	got := Remove(parse(t, checkout), expr(t, "participant[name=Logger]"))
	var note *ast.Note
	ast.Walk(got.Events, func(e ast.Event) bool {
		if n, ok := e.(*ast.Note); ok {
			note = n
		}
		return true
	})
	if note == nil {
		t.Fatal("note was removed, want it trimmed")
	}
	if diff := cmp.Diff([]string{"API"}, note.Participants); diff != "" {
		t.Errorf("note participants mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveDoesNotCascade(t *testing.T) {
	r := parse(t, "sequenceDiagram\n    A->>B: only A\n    C->>D: other\n")
	got := Remove(r, expr(t, "participant[name=A]"))
	if diff := cmp.Diff([]string{"B", "C", "D"}, got.ParticipantIDs()); diff != "" {
		t.Errorf("participants mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveGroupKeepsMembers(t *testing.T) {
	r := parse(t, `sequenceDiagram
    participant User
    box Backend
    participant API
    end
    User->>API: Req
`)
	got := Remove(r, expr(t, "group[name=Backend]"))
	if len(got.Groups) != 0 {
		t.Errorf("Remove() kept %d groups, want 0", len(got.Groups))
	}
	if diff := cmp.Diff([]string{"User", "API"}, got.ParticipantIDs()); diff != "" {
		t.Errorf("participants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Req"}, messages(got)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveNested(t *testing.T) {
	r := parse(t, `sequenceDiagram
    alt outer
        A->>B: before
        alt inner
            B->>C: deep
        else no
            B->>C: skipped
        end
    end
`)
	got := Resolve(r, expr(t, "fragment[operator=alt]"))
	if diff := cmp.Diff([]string{"before", "deep"}, messages(got)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if o := outline(got); o != "message message" {
		t.Errorf("outline = %q, want all fragments unwrapped", o)
	}
}

func TestFiltersTolerateDegenerateTrees(t *testing.T) {
	r := ast.New()
	r.Groups = []*ast.Group{{Label: "empty"}}
	r.Events = []ast.Event{&ast.Fragment{Operator: ast.OpAlt}, &ast.Fragment{Operator: ast.OpOpt, Branches: []*ast.Branch{{}}}}
	for _, f := range []Filter{Focus, Remove, Resolve, HideParticipant} {
		for _, e := range []string{"participant", "fragment", "message", "group", "note"} {
			_ = f(r, expr(t, e))
		}
	}
}
