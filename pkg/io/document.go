package io

import (
	"fmt"
	"maps"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/source"
)

// FormatVersion is the version of the JSON projection written by this
// package.
const FormatVersion = 1

// Document is the serializable projection of an ast.Root.
type Document struct {
	Version      int               `json:"version"`
	Meta         map[string]string `json:"meta,omitempty"`
	Directives   []Directive       `json:"directives,omitempty"`
	Participants []Participant     `json:"participants"`
	Groups       []Group           `json:"groups"`
	Events       []Event           `json:"events"`
}

// Position is a source location: 1-indexed line, 0-indexed column and
// offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Directive is a dialect specific pragma kept verbatim.
type Directive struct {
	Dialect string    `json:"dialect" jsonschema:"enum=mermaid,enum=plantuml"`
	Text    string    `json:"text"`
	Pos     *Position `json:"pos,omitempty"`
}

// Link is a participant hyperlink.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Participant is a lifeline declaration.
type Participant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Alias      string    `json:"alias,omitempty"`
	Type       string    `json:"type,omitempty"`
	Stereotype string    `json:"stereotype,omitempty"`
	Color      string    `json:"color,omitempty"`
	Links      []Link    `json:"links,omitempty"`
	Created    bool      `json:"created,omitempty"`
	Pos        *Position `json:"pos,omitempty"`
}

// Group is a box around participants.
type Group struct {
	ID           string    `json:"id,omitempty"`
	Label        string    `json:"label"`
	Color        string    `json:"color,omitempty"`
	Participants []string  `json:"participants"`
	Pos          *Position `json:"pos,omitempty"`
}

// Event is the discriminated union of all event kinds. Kind selects which
// of the remaining fields are meaningful.
type Event struct {
	Kind string    `json:"kind" jsonschema:"enum=message,enum=fragment,enum=note,enum=activation,enum=reference,enum=divider,enum=spacer"`
	ID   string    `json:"id,omitempty"`
	Pos  *Position `json:"pos,omitempty"`

	// message
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Type       string `json:"type,omitempty"`
	Line       string `json:"line,omitempty"`
	Head       string `json:"head,omitempty"`
	Activate   bool   `json:"activate,omitempty"`
	Deactivate bool   `json:"deactivate,omitempty"`

	// message, note, reference, divider, spacer
	Text string `json:"text,omitempty"`

	// fragment
	Operator string   `json:"operator,omitempty"`
	Branches []Branch `json:"branches,omitempty"`

	// note, reference
	Position     string   `json:"position,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Link         string   `json:"link,omitempty"`

	// activation
	Participant string `json:"participant,omitempty"`
	Action      string `json:"action,omitempty"`

	// spacer
	Height int  `json:"height,omitempty"`
	Delay  bool `json:"delay,omitempty"`
}

// Branch is one operand of a fragment.
type Branch struct {
	Condition string    `json:"condition"`
	Events    []Event   `json:"events"`
	Pos       *Position `json:"pos,omitempty"`
}

// ToDocument projects r into its serializable form.
func ToDocument(r *ast.Root) *Document {
	d := &Document{
		Version:      FormatVersion,
		Participants: make([]Participant, 0, len(r.Participants)),
		Groups:       make([]Group, 0, len(r.Groups)),
		Events:       toEvents(r.Events),
	}
	if len(r.Meta) > 0 {
		d.Meta = maps.Clone(r.Meta)
	}
	for _, dir := range r.Directives {
		d.Directives = append(d.Directives, Directive{Dialect: string(dir.Dialect), Text: dir.Text, Pos: toPos(dir.Pos)})
	}
	for _, p := range r.Participants {
		out := Participant{
			ID: p.ID, Name: p.Name, Alias: p.Alias, Type: string(p.Type),
			Stereotype: p.Stereotype, Color: p.Color, Created: p.Created, Pos: toPos(p.Pos),
		}
		for _, l := range p.Links {
			out.Links = append(out.Links, Link{Label: l.Label, URL: l.URL})
		}
		d.Participants = append(d.Participants, out)
	}
	for _, g := range r.Groups {
		members := append([]string{}, g.Participants...)
		d.Groups = append(d.Groups, Group{ID: g.ID, Label: g.Label, Color: g.Color, Participants: members, Pos: toPos(g.Pos)})
	}
	return d
}

func toEvents(events []ast.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		ev := Event{Kind: string(e.Kind()), ID: e.NodeID(), Pos: toPos(e.Location())}
		switch n := e.(type) {
		case *ast.Message:
			ev.From, ev.To, ev.Text = n.From, n.To, n.Text
			ev.Type, ev.Line, ev.Head = string(n.Type), string(n.Line), string(n.Head)
			ev.Activate, ev.Deactivate = n.Activate, n.Deactivate
		case *ast.Fragment:
			ev.Operator = string(n.Operator)
			for _, b := range n.Branches {
				ev.Branches = append(ev.Branches, Branch{Condition: b.Condition, Events: toEvents(b.Events), Pos: toPos(b.Pos)})
			}
		case *ast.Note:
			ev.Text, ev.Position = n.Text, string(n.Position)
			ev.Participants = append([]string{}, n.Participants...)
		case *ast.Activation:
			ev.Participant, ev.Action = n.Participant, string(n.Action)
		case *ast.Reference:
			ev.Text, ev.Link = n.Text, n.Link
			ev.Participants = append([]string{}, n.Participants...)
		case *ast.Divider:
			ev.Text = n.Text
		case *ast.Spacer:
			ev.Text, ev.Height, ev.Delay = n.Text, n.Height, n.Delay
		}
		out = append(out, ev)
	}
	return out
}

func toPos(p source.Position) *Position {
	if !p.IsValid() {
		return nil
	}
	return &Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

func fromPos(p *Position) source.Position {
	if p == nil {
		return source.Position{}
	}
	return source.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

// FromDocument rebuilds a tree from its projection. It rejects unknown
// event kinds and duplicate participant ids.
func FromDocument(d *Document) (*ast.Root, error) {
	if d.Version != FormatVersion {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unsupported document version %d", d.Version)
	}
	r := ast.New()
	for k, v := range d.Meta {
		r.Meta[k] = v
	}
	for _, dir := range d.Directives {
		r.Directives = append(r.Directives, ast.Directive{Dialect: ast.Dialect(dir.Dialect), Text: dir.Text, Pos: fromPos(dir.Pos)})
	}
	seen := map[string]bool{}
	for _, p := range d.Participants {
		if seen[p.ID] {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "duplicate participant id %q", p.ID)
		}
		seen[p.ID] = true
		out := &ast.Participant{
			ID: p.ID, Name: p.Name, Alias: p.Alias, Type: ast.ParticipantType(p.Type),
			Stereotype: p.Stereotype, Color: p.Color, Created: p.Created, Pos: fromPos(p.Pos),
		}
		for _, l := range p.Links {
			out.Links = append(out.Links, ast.Link{Label: l.Label, URL: l.URL})
		}
		r.Participants = append(r.Participants, out)
	}
	for _, g := range d.Groups {
		r.Groups = append(r.Groups, &ast.Group{
			ID: g.ID, Label: g.Label, Color: g.Color,
			Participants: append([]string{}, g.Participants...), Pos: fromPos(g.Pos),
		})
	}
	events, err := fromEvents(d.Events)
	if err != nil {
		return nil, err
	}
	r.Events = events
	return r, nil
}

func fromEvents(events []Event) ([]ast.Event, error) {
	out := make([]ast.Event, 0, len(events))
	for _, ev := range events {
		pos := fromPos(ev.Pos)
		switch ast.EventKind(ev.Kind) {
		case ast.KindMessage:
			out = append(out, &ast.Message{
				ID: ev.ID, From: ev.From, To: ev.To, Text: ev.Text,
				Type: ast.MessageType(ev.Type), Line: ast.LineStyle(ev.Line), Head: ast.HeadStyle(ev.Head),
				Activate: ev.Activate, Deactivate: ev.Deactivate, Pos: pos,
			})
		case ast.KindFragment:
			f := &ast.Fragment{ID: ev.ID, Operator: ast.Operator(ev.Operator), Pos: pos}
			for _, b := range ev.Branches {
				children, err := fromEvents(b.Events)
				if err != nil {
					return nil, err
				}
				f.Branches = append(f.Branches, &ast.Branch{Condition: b.Condition, Events: children, Pos: fromPos(b.Pos)})
			}
			out = append(out, f)
		case ast.KindNote:
			out = append(out, &ast.Note{
				ID: ev.ID, Text: ev.Text, Position: ast.NotePosition(ev.Position),
				Participants: append([]string{}, ev.Participants...), Pos: pos,
			})
		case ast.KindActivation:
			out = append(out, &ast.Activation{ID: ev.ID, Participant: ev.Participant, Action: ast.ActivationAction(ev.Action), Pos: pos})
		case ast.KindReference:
			out = append(out, &ast.Reference{
				ID: ev.ID, Text: ev.Text, Participants: append([]string{}, ev.Participants...), Link: ev.Link, Pos: pos,
			})
		case ast.KindDivider:
			out = append(out, &ast.Divider{ID: ev.ID, Text: ev.Text, Pos: pos})
		case ast.KindSpacer:
			out = append(out, &ast.Spacer{ID: ev.ID, Text: ev.Text, Height: ev.Height, Delay: ev.Delay, Pos: pos})
		default:
			return nil, errors.New(errors.ErrCodeInvalidDocument, "event %s: unknown kind %q", ev.ID, ev.Kind)
		}
	}
	return out, nil
}

// String summarizes the document for logs.
func (d *Document) String() string {
	return fmt.Sprintf("document v%d: %d participants, %d events", d.Version, len(d.Participants), len(d.Events))
}
