package ast

import (
	"github.com/matzehuels/polagram/pkg/source"
)

// ParticipantType is the lifeline shape of a participant.
type ParticipantType string

const (
	TypeParticipant ParticipantType = "participant"
	TypeActor       ParticipantType = "actor"
	TypeBoundary    ParticipantType = "boundary"
	TypeControl     ParticipantType = "control"
	TypeEntity      ParticipantType = "entity"
	TypeDatabase    ParticipantType = "database"
	TypeCollections ParticipantType = "collections"
	TypeQueue       ParticipantType = "queue"
)

// ParticipantTypes lists every participant type in declaration order.
var ParticipantTypes = []ParticipantType{
	TypeParticipant, TypeActor, TypeBoundary, TypeControl,
	TypeEntity, TypeDatabase, TypeCollections, TypeQueue,
}

// ParseParticipantType maps a keyword to a participant type.
// "collection" is accepted as a synonym for collections.
func ParseParticipantType(s string) (ParticipantType, bool) {
	if s == "collection" {
		return TypeCollections, true
	}
	for _, t := range ParticipantTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Dialect tags directives that only make sense in one source language.
type Dialect string

const (
	DialectMermaid  Dialect = "mermaid"
	DialectPlantUML Dialect = "plantuml"
)

// Directive is a raw, dialect specific pragma (skinparam, !theme, %%{init}%%,
// hide footbox, ...) kept verbatim so regeneration in the same dialect is
// lossless.
type Directive struct {
	Dialect Dialect
	Text    string
	Pos     source.Position
}

// Link is a named hyperlink attached to a participant.
type Link struct {
	Label string
	URL   string
}

// Participant is a lifeline declaration.
type Participant struct {
	ID         string // unique within a Root
	Name       string // display name, defaults to ID
	Alias      string // secondary name, e.g. the short key of `participant "Long" as L`
	Type       ParticipantType
	Stereotype string
	Color      string
	Links      []Link
	Created    bool // declared by a create statement instead of up front
	Pos        source.Position
}

// DisplayName returns Name, falling back to ID.
func (p *Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Group is a box around a set of participants.
type Group struct {
	ID           string
	Label        string
	Color        string
	Participants []string // participant ids, resolved by lookup
	Pos          source.Position
}

// Root is a complete diagram.
type Root struct {
	Meta         map[string]string
	Directives   []Directive
	Participants []*Participant
	Groups       []*Group
	Events       []Event
}

// New returns an empty Root with initialized metadata.
func New() *Root {
	return &Root{Meta: map[string]string{}}
}

// Participant returns the participant with the given id.
func (r *Root) Participant(id string) (*Participant, bool) {
	for _, p := range r.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ParticipantIDs returns the declared participant ids in order.
func (r *Root) ParticipantIDs() []string {
	ids := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Title returns the "title" metadata entry.
func (r *Root) Title() string { return r.Meta["title"] }

// GroupOf returns the group containing participant id, if any.
func (r *Root) GroupOf(id string) (*Group, bool) {
	for _, g := range r.Groups {
		for _, m := range g.Participants {
			if m == id {
				return g, true
			}
		}
	}
	return nil, false
}
