package ast

import "github.com/matzehuels/polagram/pkg/source"

// EventKind discriminates the Event variants.
type EventKind string

const (
	KindMessage    EventKind = "message"
	KindFragment   EventKind = "fragment"
	KindNote       EventKind = "note"
	KindActivation EventKind = "activation"
	KindReference  EventKind = "reference"
	KindDivider    EventKind = "divider"
	KindSpacer     EventKind = "spacer"
)

// Event is one entry of an ordered event list. The set of implementations is
// closed; see the package documentation.
type Event interface {
	Kind() EventKind
	NodeID() string
	Location() source.Position
	isEvent()
}

// MessageType is the semantic meaning of a message.
type MessageType string

const (
	MessageSync    MessageType = "sync"
	MessageAsync   MessageType = "async"
	MessageReply   MessageType = "reply"
	MessageCreate  MessageType = "create"
	MessageDestroy MessageType = "destroy"
)

// LineStyle is the stroke of a message arrow.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDotted LineStyle = "dotted"
)

// HeadStyle is the arrowhead of a message.
type HeadStyle string

const (
	HeadArrow HeadStyle = "arrow" // filled head
	HeadOpen  HeadStyle = "open"  // open/async head
	HeadCross HeadStyle = "cross"
	HeadNone  HeadStyle = "none"
	HeadBoth  HeadStyle = "both" // bidirectional
)

// Message is an arrow between two lifelines. An empty From is a found
// message, an empty To a lost one.
type Message struct {
	ID         string
	From       string
	To         string
	Text       string
	Type       MessageType
	Line       LineStyle
	Head       HeadStyle
	Activate   bool // activate the receiver
	Deactivate bool // deactivate the sender
	Pos        source.Position
}

// InferMessageType derives the semantic type of an arrow from its drawing:
// open heads are asynchronous, dotted lines are replies, everything else is a
// synchronous call. Create and destroy are never inferred from the arrow.
func InferMessageType(line LineStyle, head HeadStyle) MessageType {
	switch {
	case head == HeadOpen:
		return MessageAsync
	case line == LineDotted:
		return MessageReply
	default:
		return MessageSync
	}
}

// Style returns the drawing of the arrow. Messages built without explicit
// line and head styles get the conventional drawing of their type.
func (m *Message) Style() (LineStyle, HeadStyle) {
	line, head := m.Line, m.Head
	if line == "" {
		line = LineSolid
		if m.Type == MessageReply {
			line = LineDotted
		}
	}
	if head == "" {
		head = HeadArrow
		if m.Type == MessageAsync {
			head = HeadOpen
		}
	}
	return line, head
}

// Participants returns the non-empty endpoints.
func (m *Message) Participants() []string {
	var ids []string
	if m.From != "" {
		ids = append(ids, m.From)
	}
	if m.To != "" && m.To != m.From {
		ids = append(ids, m.To)
	}
	return ids
}

// Touches reports whether id is one of the endpoints.
func (m *Message) Touches(id string) bool { return id != "" && (m.From == id || m.To == id) }

// Operator is the keyword of a combined fragment.
type Operator string

const (
	OpAlt      Operator = "alt"
	OpOpt      Operator = "opt"
	OpLoop     Operator = "loop"
	OpPar      Operator = "par"
	OpBreak    Operator = "break"
	OpCritical Operator = "critical"
	OpRect     Operator = "rect"
	OpGroup    Operator = "group"
)

// Operators lists every fragment operator.
var Operators = []Operator{OpAlt, OpOpt, OpLoop, OpPar, OpBreak, OpCritical, OpRect, OpGroup}

// ParseOperator maps a keyword to an operator.
func ParseOperator(s string) (Operator, bool) {
	for _, op := range Operators {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

// Fragment is a combined fragment (alt, loop, ...). It owns its branches.
type Fragment struct {
	ID       string
	Operator Operator
	Branches []*Branch
	Pos      source.Position
}

// Branch is one operand of a fragment.
type Branch struct {
	Condition string
	Events    []Event
	Pos       source.Position
}

// NotePosition places a note relative to its participants.
type NotePosition string

const (
	NoteLeft  NotePosition = "left"
	NoteRight NotePosition = "right"
	NoteOver  NotePosition = "over"
)

// Note is an annotation attached to one or more lifelines.
type Note struct {
	ID           string
	Text         string
	Position     NotePosition
	Participants []string
	Pos          source.Position
}

// ActivationAction toggles a lifeline's activation bar.
type ActivationAction string

const (
	Activate   ActivationAction = "activate"
	Deactivate ActivationAction = "deactivate"
)

// Activation is a standalone activate/deactivate statement.
type Activation struct {
	ID          string
	Participant string
	Action      ActivationAction
	Pos         source.Position
}

// Reference is an interaction use ("ref over A, B").
type Reference struct {
	ID           string
	Text         string
	Participants []string
	Link         string
	Pos          source.Position
}

// Divider is a horizontal section separator.
type Divider struct {
	ID   string
	Text string
	Pos  source.Position
}

// Spacer is vertical whitespace or a delay marker.
type Spacer struct {
	ID     string
	Text   string
	Height int  // explicit pixel height, 0 for default
	Delay  bool // "..." delay instead of "|||" space
	Pos    source.Position
}

func (*Message) Kind() EventKind    { return KindMessage }
func (*Fragment) Kind() EventKind   { return KindFragment }
func (*Note) Kind() EventKind       { return KindNote }
func (*Activation) Kind() EventKind { return KindActivation }
func (*Reference) Kind() EventKind  { return KindReference }
func (*Divider) Kind() EventKind    { return KindDivider }
func (*Spacer) Kind() EventKind     { return KindSpacer }

func (e *Message) NodeID() string    { return e.ID }
func (e *Fragment) NodeID() string   { return e.ID }
func (e *Note) NodeID() string       { return e.ID }
func (e *Activation) NodeID() string { return e.ID }
func (e *Reference) NodeID() string  { return e.ID }
func (e *Divider) NodeID() string    { return e.ID }
func (e *Spacer) NodeID() string     { return e.ID }

func (e *Message) Location() source.Position    { return e.Pos }
func (e *Fragment) Location() source.Position   { return e.Pos }
func (e *Note) Location() source.Position       { return e.Pos }
func (e *Activation) Location() source.Position { return e.Pos }
func (e *Reference) Location() source.Position  { return e.Pos }
func (e *Divider) Location() source.Position    { return e.Pos }
func (e *Spacer) Location() source.Position     { return e.Pos }

func (*Message) isEvent()    {}
func (*Fragment) isEvent()   {}
func (*Note) isEvent()       {}
func (*Activation) isEvent() {}
func (*Reference) isEvent()  {}
func (*Divider) isEvent()    {}
func (*Spacer) isEvent()     {}

var (
	_ Event = (*Message)(nil)
	_ Event = (*Fragment)(nil)
	_ Event = (*Note)(nil)
	_ Event = (*Activation)(nil)
	_ Event = (*Reference)(nil)
	_ Event = (*Divider)(nil)
	_ Event = (*Spacer)(nil)
)
