// Package builder accumulates an ast.Root while a dialect parser walks its
// statements. It owns the bookkeeping both dialects share: deterministic ids,
// implicit participant declaration, the stack of open fragments and the
// currently open box.
//
// Builder methods return plain errors; parsers attach positions and convert
// them into errors.ParseError.
package builder

import (
	"errors"
	"fmt"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/source"
)

// ErrNoOpenBlock is returned when a branch separator or block terminator
// appears outside any block.
var ErrNoOpenBlock = errors.New("no open block")

type frame struct {
	frag   *ast.Fragment
	branch *ast.Branch
}

// Builder is single-use: create one per parse.
type Builder struct {
	root     *ast.Root
	ids      *ast.IDGen
	stack    []*frame
	box      *ast.Group
	implicit map[string]bool
	last     *ast.Message
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{
		root:     ast.New(),
		ids:      ast.NewIDGen(),
		implicit: map[string]bool{},
	}
}

// Root exposes the tree under construction for metadata and directives.
func (b *Builder) Root() *ast.Root { return b.root }

// NextID returns the next identifier for a node kind prefix.
func (b *Builder) NextID(prefix string) string { return b.ids.Next(prefix) }

// Declare registers an explicit participant declaration. Declaring an id that
// was already seen updates the existing participant in place, keeping its
// original position in the participant order.
func (b *Builder) Declare(p *ast.Participant) *ast.Participant {
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Type == "" {
		p.Type = ast.TypeParticipant
	}
	if existing, ok := b.root.Participant(p.ID); ok {
		pos := existing.Pos
		*existing = *p
		existing.Pos = pos
		delete(b.implicit, p.ID)
		b.addToBox(p.ID)
		return existing
	}
	b.root.Participants = append(b.root.Participants, p)
	b.addToBox(p.ID)
	return p
}

// Ensure declares id implicitly unless it is already known. Empty ids
// (found/lost endpoints) are ignored.
func (b *Builder) Ensure(id string, pos source.Position) {
	if id == "" {
		return
	}
	if _, ok := b.root.Participant(id); ok {
		return
	}
	b.root.Participants = append(b.root.Participants, &ast.Participant{
		ID:   id,
		Name: id,
		Type: ast.TypeParticipant,
		Pos:  pos,
	})
	b.implicit[id] = true
}

func (b *Builder) addToBox(id string) {
	if b.box == nil {
		return
	}
	for _, m := range b.box.Participants {
		if m == id {
			return
		}
	}
	b.box.Participants = append(b.box.Participants, id)
}

// Emit appends an event to the innermost open branch, or to the root.
func (b *Builder) Emit(e ast.Event) {
	if m, ok := e.(*ast.Message); ok {
		b.last = m
	}
	if n := len(b.stack); n > 0 {
		br := b.stack[n-1].branch
		br.Events = append(br.Events, e)
		return
	}
	b.root.Events = append(b.root.Events, e)
}

// LastMessage returns the most recently emitted message, if any.
func (b *Builder) LastMessage() *ast.Message { return b.last }

// LastEvent returns the event emitted last in the current container.
func (b *Builder) LastEvent() ast.Event {
	events := b.root.Events
	if n := len(b.stack); n > 0 {
		events = b.stack[n-1].branch.Events
	}
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

// OpenFragment starts a fragment with its first branch.
func (b *Builder) OpenFragment(op ast.Operator, condition string, pos source.Position) *ast.Fragment {
	br := &ast.Branch{Condition: condition, Pos: pos}
	f := &ast.Fragment{
		ID:       b.ids.Next(ast.PrefixFragment),
		Operator: op,
		Branches: []*ast.Branch{br},
		Pos:      pos,
	}
	b.Emit(f)
	b.stack = append(b.stack, &frame{frag: f, branch: br})
	return f
}

// AddBranch starts a new branch in the innermost fragment.
func (b *Builder) AddBranch(condition string, pos source.Position) error {
	n := len(b.stack)
	if n == 0 {
		return ErrNoOpenBlock
	}
	top := b.stack[n-1]
	br := &ast.Branch{Condition: condition, Pos: pos}
	top.frag.Branches = append(top.frag.Branches, br)
	top.branch = br
	return nil
}

// InFragment reports whether a fragment is open.
func (b *Builder) InFragment() bool { return len(b.stack) > 0 }

// CloseFragment ends the innermost fragment.
func (b *Builder) CloseFragment() error {
	if len(b.stack) == 0 {
		return ErrNoOpenBlock
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// OpenBox starts a participant group. Boxes do not nest.
func (b *Builder) OpenBox(label, color string, pos source.Position) error {
	if b.box != nil {
		return errors.New("boxes cannot be nested")
	}
	b.box = &ast.Group{
		ID:    b.ids.Next(ast.PrefixGroup),
		Label: label,
		Color: color,
		Pos:   pos,
	}
	b.root.Groups = append(b.root.Groups, b.box)
	return nil
}

// InBox reports whether a box is open.
func (b *Builder) InBox() bool { return b.box != nil }

// CloseBox ends the open box.
func (b *Builder) CloseBox() error {
	if b.box == nil {
		return ErrNoOpenBlock
	}
	b.box = nil
	return nil
}

// Finish validates that every block was closed and returns the tree.
func (b *Builder) Finish() (*ast.Root, source.Position, error) {
	if n := len(b.stack); n > 0 {
		f := b.stack[n-1].frag
		return nil, f.Pos, fmt.Errorf("unclosed %s block", f.Operator)
	}
	if b.box != nil {
		return nil, b.box.Pos, errors.New("unclosed box")
	}
	return b.root, source.Position{}, nil
}
