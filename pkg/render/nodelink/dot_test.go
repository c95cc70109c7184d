package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/polagram/pkg/ast"
)

func sample() *ast.Root {
	r := ast.New()
	r.Meta["title"] = "Checkout"
	r.Participants = []*ast.Participant{
		{ID: "U", Name: "User", Type: ast.TypeActor},
		{ID: "API", Type: ast.TypeParticipant},
		{ID: "DB", Type: ast.TypeDatabase, Color: "#eeeeee"},
	}
	r.Groups = []*ast.Group{{Label: "Backend", Participants: []string{"API", "DB"}}}
	r.Events = []ast.Event{
		&ast.Message{From: "U", To: "API", Text: "Req"},
		&ast.Fragment{Operator: ast.OpAlt, Branches: []*ast.Branch{
			{Condition: "ok", Events: []ast.Event{
				&ast.Message{From: "API", To: "DB", Text: "Save"},
				&ast.Message{From: "API", To: "DB", Text: "Commit"},
			}},
		}},
		&ast.Message{From: "API", To: "U", Text: "200"},
	}
	return r
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})
	for _, want := range []string{
		`label="Checkout";`,
		"subgraph cluster_0 {",
		`label="Backend";`,
		`"U" [label="User", shape=oval];`,
		`"DB" [label="DB", shape=cylinder, fillcolor="#eeeeee"];`,
		`"U" -> "API" [label="1"];`,
		`"API" -> "DB" [label="2"];`,
		`"API" -> "U" [label="1"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s:\n%s", want, dot)
		}
	}
	if strings.Index(dot, `"U" -> "API"`) > strings.Index(dot, `"API" -> "DB"`) {
		t.Error("edges should follow message order")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(dot, `"API" -> "DB" [label="Save\nCommit"];`) {
		t.Errorf("ToDOT(detailed) should list message texts:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	if ToDOT(sample(), Options{}) != ToDOT(sample(), Options{}) {
		t.Error("ToDOT() is not deterministic")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 200.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() did not produce SVG:\n%s", svg)
	}
}
