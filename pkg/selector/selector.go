// Package selector matches AST nodes against declarative predicates.
//
// A [Selector] names a target kind (participant, fragment, message, group or
// note) and zero or more attributes. Every supplied attribute must hold for a
// node to match; a selector without attributes matches every node of its
// kind. Selectors are plain data so they can be loaded from configuration and
// serialized. [Compile] validates a selector and turns it into a [Matcher].
//
// # Text matching
//
// The text attribute is a [TextMatch]: a literal (whole-string equality), a
// regular expression (RE2, unanchored search) or a glob (full match, see
// github.com/gobwas/glob). IgnoreCase applies to all three modes.
//
// # Fragments
//
// Fragments are matched per branch. A branch matches when the operator
// attribute equals the fragment's operator and the text attribute matches the
// branch condition. A fragment matches when any of its branches does.
package selector

import (
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
)

// Kind is the node kind a selector targets.
type Kind string

const (
	KindParticipant Kind = "participant"
	KindFragment    Kind = "fragment"
	KindMessage     Kind = "message"
	KindGroup       Kind = "group"
	KindNote        Kind = "note"
)

// Kinds lists every selectable kind.
var Kinds = []Kind{KindParticipant, KindFragment, KindMessage, KindGroup, KindNote}

// Mode is the matching strategy of a TextMatch.
type Mode string

const (
	ModeLiteral Mode = "literal"
	ModeRegex   Mode = "regex"
	ModeGlob    Mode = "glob"
)

// TextMatch matches a string field of a node.
type TextMatch struct {
	Pattern    string `json:"pattern" toml:"pattern"`
	Mode       Mode   `json:"mode,omitempty" toml:"mode" jsonschema:"enum=literal,enum=regex,enum=glob"`
	IgnoreCase bool   `json:"ignore_case,omitempty" toml:"ignore_case"`
}

// Selector is a predicate over one node kind.
//
// Attribute applicability:
//
//	participant  name (id, display name or alias), text (id or display name)
//	fragment     operator, text (branch condition)
//	message      name (either endpoint), from, to, text (message text)
//	group        name (label), text (label)
//	note         name (any attached participant), text (note text)
type Selector struct {
	Kind     Kind         `json:"kind" toml:"kind" jsonschema:"enum=participant,enum=fragment,enum=message,enum=group,enum=note"`
	Name     string       `json:"name,omitempty" toml:"name"`
	Operator ast.Operator `json:"operator,omitempty" toml:"operator"`
	From     string       `json:"from,omitempty" toml:"from"`
	To       string       `json:"to,omitempty" toml:"to"`
	Text     *TextMatch   `json:"text,omitempty" toml:"text"`
}

// String renders the selector in the compact expression syntax accepted by
// ParseExpr.
func (s Selector) String() string {
	var attrs []string
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, key+"="+quote(value))
		}
	}
	add("name", s.Name)
	add("operator", string(s.Operator))
	add("from", s.From)
	add("to", s.To)
	if s.Text != nil {
		attrs = append(attrs, "text="+s.Text.String())
	}
	if len(attrs) == 0 {
		return string(s.Kind)
	}
	return string(s.Kind) + "[" + strings.Join(attrs, ",") + "]"
}

// String renders the text matcher as an expression value.
func (t TextMatch) String() string {
	switch t.Mode {
	case ModeRegex:
		flags := ""
		if t.IgnoreCase {
			flags = "i"
		}
		return "/" + strings.ReplaceAll(t.Pattern, "/", `\/`) + "/" + flags
	case ModeGlob:
		return "glob:" + quote(t.Pattern)
	default:
		if t.IgnoreCase {
			return "i:" + quote(t.Pattern)
		}
		return quote(t.Pattern)
	}
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, `,]"/ `) || strings.HasPrefix(s, "glob:") || strings.HasPrefix(s, "i:") {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
	}
	return s
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
