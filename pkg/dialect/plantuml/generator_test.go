package plantuml

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/polagram/pkg/ast"
)

func TestGenerateCheckout(t *testing.T) {
	got := Generate(mustParse(t, checkout))
	if diff := cmp.Diff(checkout, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSynthesized(t *testing.T) {
	root := ast.New()
	root.Participants = []*ast.Participant{
		{ID: "Web Client"},
		{ID: "svc", Name: "Service", Type: ast.TypeControl},
	}
	root.Groups = []*ast.Group{{ID: "grp-1", Label: "Edge", Participants: []string{"svc"}}}
	root.Events = []ast.Event{
		&ast.Message{To: "svc", Text: "wake", Type: ast.MessageAsync},
		&ast.Message{From: "svc", To: "Web Client", Type: ast.MessageReply, Text: "a\nb"},
		&ast.Fragment{Operator: ast.OpRect, Branches: []*ast.Branch{{Condition: "highlight"}}},
		&ast.Note{Position: ast.NoteOver, Participants: []string{"Web Client", "svc"}, Text: "one\ntwo"},
		&ast.Reference{Participants: []string{"svc"}, Text: "auth", Link: "https://wiki/auth"},
		&ast.Divider{Text: "Later"},
		&ast.Spacer{Height: 20},
	}

	want := `@startuml
participant "Web Client"
box "Edge"
    control "Service" as svc
end box
[->> svc : wake
svc --> "Web Client" : a\nb
group highlight
end
note over "Web Client", svc
    one
    two
end note
ref over svc : auth [[https://wiki/auth]]
== Later ==
||20||
@enduml
`
	if diff := cmp.Diff(want, Generate(root)); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

var roundTripSources = map[string]string{
	"checkout": checkout,
	"create and destroy": wrap(`A -> B : hi
create C
B -> C : new
C -> B : bye
destroy C`),
	"returns": wrap(`A -> B ++ : call
B -> C : inner
return done
A -> D : ask
activate D
return ok
deactivate A`),
	"notes and refs": wrap(`participant A
participant B
note left of A : single
note right of A #aqua
first
second
end note
A -> B : call
note left : attached
note across : everyone
ref over A, B
multi
line [[https://x]]
end ref
== Init ==
...
...later...
|||
||40||`),
	"directives": `@startuml demo
!theme plain
skinparam sequence {
  ArrowColor red
}
title Demo
header draft
footer page 1
autonumber 10 5
participant "Long Name" as L <<svc>> #red
queue Q
L -> Q : put
loop forever
    par
        Q ->> L : a
    else
        Q -[#blue]->> L : b
    end
    opt
        critical
            break
                L <-> Q : sync
            end
        end
    end
end
@enduml
`,
}

func TestRoundTrip(t *testing.T) {
	for name, src := range roundTripSources {
		t.Run(name, func(t *testing.T) {
			first := mustParse(t, src)
			text := Generate(first)
			second, err := Parse(text)
			if err != nil {
				t.Fatalf("Parse(Generate()) error = %v\n%s", err, text)
			}
			if diff := cmp.Diff(ast.Dump(ast.Canonical(first)), ast.Dump(ast.Canonical(second))); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s\ngenerated:\n%s", diff, text)
			}
			if again := Generate(second); again != text {
				t.Errorf("Generate() is not stable:\n%s\nvs\n%s", text, again)
			}
		})
	}
}

func ExampleGenerate() {
	root, err := Parse("@startuml\nAlice -> Bob ++ : Hello\nreturn Hi\n@enduml\n")
	if err != nil {
		panic(err)
	}
	fmt.Print(Generate(root))
	// Output:
	// @startuml
	// participant Alice
	// participant Bob
	// Alice -> Bob ++ : Hello
	// Bob --> Alice -- : Hi
	// @enduml
}
