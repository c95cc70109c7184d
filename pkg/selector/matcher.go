package selector

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

// Matcher is a compiled, validated selector. It is immutable and safe for
// concurrent use.
type Matcher struct {
	sel  Selector
	text func(string) bool
}

// Compile validates s and prepares its text matcher. Invalid selectors are
// reported as *errors.SelectorError.
func Compile(s Selector) (*Matcher, error) {
	if _, ok := ParseKind(string(s.Kind)); !ok {
		return nil, &errors.SelectorError{Field: "kind", Pattern: string(s.Kind), Message: "unknown kind"}
	}
	if err := checkAttributes(s); err != nil {
		return nil, err
	}
	m := &Matcher{sel: s}
	if s.Text != nil {
		fn, err := compileText(*s.Text)
		if err != nil {
			return nil, err
		}
		m.text = fn
	}
	return m, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// selectors known at compile time.
func MustCompile(s Selector) *Matcher {
	m, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return m
}

func checkAttributes(s Selector) error {
	invalid := func(field string) error {
		return &errors.SelectorError{Field: field, Message: fmt.Sprintf("not supported for %s selectors", s.Kind)}
	}
	if s.Name != "" && s.Kind == KindFragment {
		return invalid("name")
	}
	if s.Operator != "" {
		if s.Kind != KindFragment {
			return invalid("operator")
		}
		if _, ok := ast.ParseOperator(string(s.Operator)); !ok {
			return &errors.SelectorError{Field: "operator", Pattern: string(s.Operator), Message: "unknown operator"}
		}
	}
	if s.From != "" && s.Kind != KindMessage {
		return invalid("from")
	}
	if s.To != "" && s.Kind != KindMessage {
		return invalid("to")
	}
	return nil
}

func compileText(t TextMatch) (func(string) bool, error) {
	switch t.Mode {
	case "", ModeLiteral:
		if t.IgnoreCase {
			return func(s string) bool { return strings.EqualFold(s, t.Pattern) }, nil
		}
		return func(s string) bool { return s == t.Pattern }, nil
	case ModeRegex:
		expr := t.Pattern
		if t.IgnoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &errors.SelectorError{Field: "text", Pattern: t.Pattern, Message: "invalid regular expression", Cause: err}
		}
		return re.MatchString, nil
	case ModeGlob:
		pattern := t.Pattern
		if t.IgnoreCase {
			pattern = strings.ToLower(pattern)
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, &errors.SelectorError{Field: "text", Pattern: t.Pattern, Message: "invalid glob", Cause: err}
		}
		if t.IgnoreCase {
			return func(s string) bool { return g.Match(strings.ToLower(s)) }, nil
		}
		return g.Match, nil
	default:
		return nil, &errors.SelectorError{Field: "text.mode", Pattern: string(t.Mode), Message: "unknown mode"}
	}
}

// Selector returns the selector the matcher was compiled from.
func (m *Matcher) Selector() Selector { return m.sel }

// Kind returns the targeted node kind.
func (m *Matcher) Kind() Kind { return m.sel.Kind }

// Conditioned reports whether the matcher constrains branch conditions.
func (m *Matcher) Conditioned() bool { return m.text != nil }

// Matches reports whether node matches. node may be a *ast.Participant,
// *ast.Group or any ast.Event; other values never match.
func (m *Matcher) Matches(node any) bool {
	switch n := node.(type) {
	case *ast.Participant:
		return m.MatchesParticipant(n)
	case *ast.Group:
		return m.MatchesGroup(n)
	case *ast.Message:
		return m.MatchesMessage(n)
	case *ast.Note:
		return m.MatchesNote(n)
	case *ast.Fragment:
		return m.MatchesFragment(n)
	}
	return false
}

// MatchesParticipant matches a participant declaration.
func (m *Matcher) MatchesParticipant(p *ast.Participant) bool {
	if m.sel.Kind != KindParticipant {
		return false
	}
	if n := m.sel.Name; n != "" && n != p.ID && n != p.Name && n != p.Alias {
		return false
	}
	return m.matchText(p.ID, p.DisplayName())
}

// MatchesGroup matches a box by its label.
func (m *Matcher) MatchesGroup(g *ast.Group) bool {
	if m.sel.Kind != KindGroup {
		return false
	}
	if m.sel.Name != "" && m.sel.Name != g.Label {
		return false
	}
	return m.matchText(g.Label)
}

// MatchesMessage matches a message by endpoints and text.
func (m *Matcher) MatchesMessage(msg *ast.Message) bool {
	if m.sel.Kind != KindMessage {
		return false
	}
	if m.sel.Name != "" && !msg.Touches(m.sel.Name) {
		return false
	}
	if m.sel.From != "" && m.sel.From != msg.From {
		return false
	}
	if m.sel.To != "" && m.sel.To != msg.To {
		return false
	}
	return m.matchText(msg.Text)
}

// MatchesNote matches a note by attached participants and text.
func (m *Matcher) MatchesNote(n *ast.Note) bool {
	if m.sel.Kind != KindNote {
		return false
	}
	if m.sel.Name != "" && !slices.Contains(n.Participants, m.sel.Name) {
		return false
	}
	return m.matchText(n.Text)
}

// MatchesFragment reports whether any branch of f matches.
func (m *Matcher) MatchesFragment(f *ast.Fragment) bool {
	for _, b := range f.Branches {
		if m.MatchesBranch(f, b) {
			return true
		}
	}
	return false
}

// MatchesBranch matches a single branch of f: the operator attribute is
// checked against f and the text attribute against the branch condition.
func (m *Matcher) MatchesBranch(f *ast.Fragment, b *ast.Branch) bool {
	if m.sel.Kind != KindFragment {
		return false
	}
	if m.sel.Operator != "" && m.sel.Operator != f.Operator {
		return false
	}
	return m.matchText(b.Condition)
}

// matchText succeeds when there is no text attribute or any candidate
// matches it.
func (m *Matcher) matchText(candidates ...string) bool {
	if m.text == nil {
		return true
	}
	for _, c := range candidates {
		if m.text(c) {
			return true
		}
	}
	return false
}
