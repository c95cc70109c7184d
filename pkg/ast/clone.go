package ast

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of r. The copy shares no mutable state with r.
func Clone(r *Root) *Root {
	if r == nil {
		return nil
	}
	out := &Root{
		Meta:         maps.Clone(r.Meta),
		Directives:   slices.Clone(r.Directives),
		Participants: make([]*Participant, len(r.Participants)),
		Groups:       make([]*Group, len(r.Groups)),
		Events:       CloneEvents(r.Events),
	}
	if out.Meta == nil {
		out.Meta = map[string]string{}
	}
	for i, p := range r.Participants {
		out.Participants[i] = CloneParticipant(p)
	}
	for i, g := range r.Groups {
		out.Groups[i] = CloneGroup(g)
	}
	return out
}

// CloneParticipant copies a participant.
func CloneParticipant(p *Participant) *Participant {
	cp := *p
	cp.Links = slices.Clone(p.Links)
	return &cp
}

// CloneGroup copies a group.
func CloneGroup(g *Group) *Group {
	cp := *g
	cp.Participants = slices.Clone(g.Participants)
	return &cp
}

// CloneEvents deep-copies an event list, recursing into fragments.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = CloneEvent(e)
	}
	return out
}

// CloneEvent deep-copies a single event.
func CloneEvent(e Event) Event {
	switch ev := e.(type) {
	case *Message:
		cp := *ev
		return &cp
	case *Fragment:
		cp := *ev
		cp.Branches = make([]*Branch, len(ev.Branches))
		for i, b := range ev.Branches {
			cp.Branches[i] = CloneBranch(b)
		}
		return &cp
	case *Note:
		cp := *ev
		cp.Participants = slices.Clone(ev.Participants)
		return &cp
	case *Activation:
		cp := *ev
		return &cp
	case *Reference:
		cp := *ev
		cp.Participants = slices.Clone(ev.Participants)
		return &cp
	case *Divider:
		cp := *ev
		return &cp
	case *Spacer:
		cp := *ev
		return &cp
	default:
		panic("ast: unknown event type")
	}
}

// CloneBranch deep-copies a branch.
func CloneBranch(b *Branch) *Branch {
	return &Branch{Condition: b.Condition, Events: CloneEvents(b.Events), Pos: b.Pos}
}
