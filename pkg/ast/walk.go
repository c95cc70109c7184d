package ast

// Visitor is called for every event in pre-order. Returning false skips the
// children of a fragment.
type Visitor func(e Event) bool

// Walk visits events and, recursively, the events of every fragment branch.
func Walk(events []Event, visit Visitor) {
	for _, e := range events {
		if !visit(e) {
			continue
		}
		if f, ok := e.(*Fragment); ok {
			for _, b := range f.Branches {
				Walk(b.Events, visit)
			}
		}
	}
}

// EventParticipants returns the participant ids an event refers to.
// Fragments, dividers and spacers refer to none directly.
func EventParticipants(e Event) []string {
	switch ev := e.(type) {
	case *Message:
		return ev.Participants()
	case *Note:
		return ev.Participants
	case *Activation:
		return []string{ev.Participant}
	case *Reference:
		return ev.Participants
	}
	return nil
}

// ReferencedIDs returns the set of participant ids referenced anywhere in the
// event tree and, when groups is non-nil, by group membership.
func ReferencedIDs(events []Event, groups []*Group) map[string]bool {
	ids := map[string]bool{}
	Walk(events, func(e Event) bool {
		for _, id := range EventParticipants(e) {
			if id != "" {
				ids[id] = true
			}
		}
		return true
	})
	for _, g := range groups {
		for _, id := range g.Participants {
			ids[id] = true
		}
	}
	return ids
}

// CountEvents returns the number of events in the tree, fragments included.
func CountEvents(events []Event) int {
	n := 0
	Walk(events, func(Event) bool { n++; return true })
	return n
}
