package mermaid

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

const checkout = `sequenceDiagram
    title Checkout
    participant U as User
    actor Admin
    participant DB@{ "type": "database" }
    U->>+API: POST /orders
    alt stock available
        API->>DB: reserve
        DB-->>API: ok
    else out of stock
        API--)U: notify
    end
    Note over U,API: done
    API-->>-U: 201
`

func mustParse(t *testing.T, src string) *ast.Root {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestParseCheckout(t *testing.T) {
	root := mustParse(t, checkout)

	if got := root.Title(); got != "Checkout" {
		t.Errorf("Title() = %q, want Checkout", got)
	}
	if got := strings.Join(root.ParticipantIDs(), ","); got != "U,Admin,DB,API" {
		t.Errorf("ParticipantIDs() = %s, want U,Admin,DB,API", got)
	}
	u, _ := root.Participant("U")
	if u.Name != "User" || u.Alias != "U" {
		t.Errorf("U = %+v, want Name=User Alias=U", u)
	}
	if a, _ := root.Participant("Admin"); a.Type != ast.TypeActor {
		t.Errorf("Admin.Type = %s, want actor", a.Type)
	}
	if db, _ := root.Participant("DB"); db.Type != ast.TypeDatabase {
		t.Errorf("DB.Type = %s, want database", db.Type)
	}

	if len(root.Events) != 4 {
		t.Fatalf("len(Events) = %d, want 4", len(root.Events))
	}
	first := root.Events[0].(*ast.Message)
	if first.ID != "msg-1" || first.From != "U" || first.To != "API" || !first.Activate {
		t.Errorf("first message = %+v", first)
	}
	alt := root.Events[1].(*ast.Fragment)
	if alt.ID != "frag-1" || alt.Operator != ast.OpAlt || len(alt.Branches) != 2 {
		t.Fatalf("alt = %+v", alt)
	}
	if got := alt.Branches[1].Condition; got != "out of stock" {
		t.Errorf("else condition = %q, want %q", got, "out of stock")
	}
	notify := alt.Branches[1].Events[0].(*ast.Message)
	if notify.ID != "msg-4" || notify.Type != ast.MessageAsync {
		t.Errorf("notify = %+v, want msg-4 async", notify)
	}
	note := root.Events[2].(*ast.Note)
	if note.Position != ast.NoteOver || strings.Join(note.Participants, ",") != "U,API" {
		t.Errorf("note = %+v", note)
	}
	last := root.Events[3].(*ast.Message)
	if last.Type != ast.MessageReply || !last.Deactivate {
		t.Errorf("last = %+v, want reply with deactivate", last)
	}
}

func TestArrows(t *testing.T) {
	tests := []struct {
		arrow string
		line  ast.LineStyle
		head  ast.HeadStyle
		typ   ast.MessageType
	}{
		{"->", ast.LineSolid, ast.HeadNone, ast.MessageSync},
		{"-->", ast.LineDotted, ast.HeadNone, ast.MessageReply},
		{"->>", ast.LineSolid, ast.HeadArrow, ast.MessageSync},
		{"-->>", ast.LineDotted, ast.HeadArrow, ast.MessageReply},
		{"-x", ast.LineSolid, ast.HeadCross, ast.MessageSync},
		{"--x", ast.LineDotted, ast.HeadCross, ast.MessageReply},
		{"-)", ast.LineSolid, ast.HeadOpen, ast.MessageAsync},
		{"--)", ast.LineDotted, ast.HeadOpen, ast.MessageAsync},
		{"<<->>", ast.LineSolid, ast.HeadBoth, ast.MessageSync},
		{"<<-->>", ast.LineDotted, ast.HeadBoth, ast.MessageReply},
	}
	for _, tt := range tests {
		t.Run(tt.arrow, func(t *testing.T) {
			root := mustParse(t, "sequenceDiagram\nA"+tt.arrow+"B: hi\n")
			m := root.Events[0].(*ast.Message)
			if m.Line != tt.line || m.Head != tt.head || m.Type != tt.typ {
				t.Errorf("%s = %s/%s/%s, want %s/%s/%s", tt.arrow, m.Line, m.Head, m.Type, tt.line, tt.head, tt.typ)
			}
			if m.From != "A" || m.To != "B" || m.Text != "hi" {
				t.Errorf("%s endpoints = %q->%q %q", tt.arrow, m.From, m.To, m.Text)
			}
		})
	}
}

func TestParsePositions(t *testing.T) {
	root := mustParse(t, "sequenceDiagram\n  A->>B: hi\n  loop\n    B->>A: ok\n  end\n")
	m := root.Events[0].(*ast.Message)
	if m.Pos.Line != 2 || m.Pos.Column != 2 || m.Pos.Offset != 18 {
		t.Errorf("message Pos = %+v, want 2:2 offset 18", m.Pos)
	}
	loop := root.Events[1].(*ast.Fragment)
	if loop.Pos.Line != 3 {
		t.Errorf("loop Pos.Line = %d, want 3", loop.Pos.Line)
	}
	inner := loop.Branches[0].Events[0].(*ast.Message)
	if inner.Pos.Line != 4 || inner.Pos.Column != 4 {
		t.Errorf("inner Pos = %+v, want 4:4", inner.Pos)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
		msg  string
	}{
		{"empty", "", 1, 0, "missing sequenceDiagram header"},
		{"wrong header", "graph TD\n", 1, 0, "expected sequenceDiagram header"},
		{"stray end", "sequenceDiagram\n  A->>B: x\n  end\n", 3, 2, "end without an open block"},
		{"unclosed", "sequenceDiagram\n  loop every\n  A->>B: x\n", 2, 2, "unclosed loop block"},
		{"bad token", "sequenceDiagram\n  A > B\n", 2, 4, "unexpected"},
		{"else outside", "sequenceDiagram\n  else\n", 2, 2, "else outside of a fragment"},
		{"bad note", "sequenceDiagram\n  Note left A: x\n", 2, 7, "note placement"},
		{"no arrow", "sequenceDiagram\n  hello\n", 2, 7, "expected arrow"},
		{"unknown type", "sequenceDiagram\n  participant A@{ \"type\": \"robot\" }\n", 2, 2, "unknown participant type"},
		{"unclosed box", "sequenceDiagram\n  box Aqua\n  participant A\n", 2, 2, "unclosed box"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.src)
			if err == nil {
				t.Fatalf("Parse() = %v, want error", root)
			}
			if root != nil {
				t.Error("Parse() returned a partial tree alongside the error")
			}
			var perr *errors.ParseError
			if !stderrors.As(err, &perr) {
				t.Fatalf("Parse() error = %T, want *errors.ParseError", err)
			}
			if perr.Line != tt.line || perr.Column != tt.col {
				t.Errorf("error position = %d:%d, want %d:%d (%v)", perr.Line, perr.Column, tt.line, tt.col, err)
			}
			if !strings.Contains(perr.Message, tt.msg) {
				t.Errorf("error message = %q, want it to contain %q", perr.Message, tt.msg)
			}
			if perr.Format != FormatName {
				t.Errorf("error format = %q, want %q", perr.Format, FormatName)
			}
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("sequenceDiagram\n  participant A\n  properties A: {\"class\": \"x\"}\n")
	var uerr *errors.UnsupportedConstructError
	if !stderrors.As(err, &uerr) {
		t.Fatalf("Parse() error = %v, want UnsupportedConstructError", err)
	}
	if uerr.Construct != "properties" || uerr.Line != 3 {
		t.Errorf("UnsupportedConstructError = %+v", uerr)
	}
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Error("errors.Is(err, ErrCodeUnsupported) = false")
	}
}

func TestParseCreateDestroy(t *testing.T) {
	root := mustParse(t, `sequenceDiagram
    A->>B: hi
    create participant C
    B->>C: new
    C->>D: x
    destroy C
    C-->>B: bye
`)
	if got := strings.Join(root.ParticipantIDs(), ","); got != "A,B,C,D" {
		t.Errorf("ParticipantIDs() = %s, want A,B,C,D", got)
	}
	if c, _ := root.Participant("C"); !c.Created {
		t.Error("C.Created = false, want true")
	}
	types := []ast.MessageType{ast.MessageSync, ast.MessageCreate, ast.MessageSync, ast.MessageDestroy}
	for i, want := range types {
		if got := root.Events[i].(*ast.Message).Type; got != want {
			t.Errorf("message %d type = %s, want %s", i+1, got, want)
		}
	}
}

func TestParseCreateInBox(t *testing.T) {
	root := mustParse(t, `sequenceDiagram
    box Svc
        create participant X
    end
    A->>B: first
    A->>X: new
`)
	types := []ast.MessageType{ast.MessageSync, ast.MessageCreate}
	for i, want := range types {
		if got := root.Events[i].(*ast.Message).Type; got != want {
			t.Errorf("message %d type = %s, want %s", i+1, got, want)
		}
	}
}

func TestParseLinksAndBoxes(t *testing.T) {
	root := mustParse(t, `sequenceDiagram
    box Aqua Backend
        participant API
        participant DB
    end
    box rgb(10, 20, 30)
        participant Cache
    end
    link API: Dash @ https://dash
    links API: {"Wiki": "https://wiki", "Repo": "https://repo"}
    API->>DB: q
`)
	if len(root.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(root.Groups))
	}
	g := root.Groups[0]
	if g.Color != "Aqua" || g.Label != "Backend" || strings.Join(g.Participants, ",") != "API,DB" {
		t.Errorf("group 1 = %+v", g)
	}
	if g := root.Groups[1]; g.Color != "rgb(10, 20, 30)" || g.Label != "" {
		t.Errorf("group 2 = %+v", g)
	}
	api, _ := root.Participant("API")
	var labels []string
	for _, l := range api.Links {
		labels = append(labels, l.Label+"="+l.URL)
	}
	if got := strings.Join(labels, " "); got != "Dash=https://dash Wiki=https://wiki Repo=https://repo" {
		t.Errorf("links = %s", got)
	}
}

func TestParseExtensions(t *testing.T) {
	root := mustParse(t, `sequenceDiagram
    participant A
    %% plain comment
    %%@ == Setup ==
    %%@ [->>A: wake
    %%@ ...5 min...
    %%@ ||30||
    %%@ ref over A,B: init [[https://x]]
    %%@ A-)]: fire
`)
	if len(root.Events) != 6 {
		t.Fatalf("len(Events) = %d, want 6", len(root.Events))
	}
	if d := root.Events[0].(*ast.Divider); d.Text != "Setup" {
		t.Errorf("divider = %+v", d)
	}
	if m := root.Events[1].(*ast.Message); m.From != "" || m.To != "A" || m.Text != "wake" {
		t.Errorf("found message = %+v", m)
	}
	if s := root.Events[2].(*ast.Spacer); !s.Delay || s.Text != "5 min" {
		t.Errorf("delay = %+v", s)
	}
	if s := root.Events[3].(*ast.Spacer); s.Delay || s.Height != 30 {
		t.Errorf("spacer = %+v", s)
	}
	ref := root.Events[4].(*ast.Reference)
	if ref.Text != "init" || ref.Link != "https://x" || strings.Join(ref.Participants, ",") != "A,B" {
		t.Errorf("reference = %+v", ref)
	}
	if m := root.Events[5].(*ast.Message); m.From != "A" || m.To != "" || m.Type != ast.MessageAsync {
		t.Errorf("lost message = %+v", m)
	}
}

func TestParseMetaAndDirectives(t *testing.T) {
	root := mustParse(t, `---
title: Front
---
%%{init: {"theme": "dark"}}%%
sequenceDiagram
    accTitle: Orders
    accDescr: How orders flow
    autonumber 10 5
    A->>B: hi
`)
	if len(root.Directives) != 2 {
		t.Fatalf("len(Directives) = %d, want 2", len(root.Directives))
	}
	if got := root.Directives[0].Text; got != "---\ntitle: Front\n---" {
		t.Errorf("front matter = %q", got)
	}
	want := map[string]string{"accTitle": "Orders", "accDescr": "How orders flow", "autonumber": "10 5"}
	for k, v := range want {
		if root.Meta[k] != v {
			t.Errorf("Meta[%q] = %q, want %q", k, root.Meta[k], v)
		}
	}
}

func TestParseDeterministicIDs(t *testing.T) {
	a := ast.Dump(mustParse(t, checkout))
	b := ast.Dump(mustParse(t, checkout))
	if a != b {
		t.Errorf("two parses of the same text differ:\n%s\n%s", a, b)
	}
}
