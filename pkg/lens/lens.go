// Package lens defines named, ordered filter chains over sequence diagrams.
//
// A [Lens] is plain data: a name and a list of [Layer] values, each pairing a
// filter [Action] with a selector. Lenses are usually loaded from
// polagram.toml (see package config) or built from command-line flags with
// [ParseLayer]. [Lens.Validate] reports every problem at once; [Lens.Compile]
// turns a valid lens into ready-to-run [Step] values.
//
// Applying a compiled lens, including the mandatory sanitization pass, is the
// job of package pipeline.
package lens

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/selector"
	"github.com/matzehuels/polagram/pkg/transform"
)

// Action names a filter.
type Action string

const (
	ActionFocus           Action = "focus"
	ActionRemove          Action = "remove"
	ActionResolve         Action = "resolve"
	ActionHideParticipant Action = "hideParticipant"
)

// Actions lists every action.
var Actions = []Action{ActionFocus, ActionRemove, ActionResolve, ActionHideParticipant}

// filters maps each action to its filter and the selector kinds it accepts.
// A nil kind list accepts every kind.
var filters = map[Action]struct {
	fn    transform.Filter
	kinds []selector.Kind
}{
	ActionFocus:           {transform.Focus, nil},
	ActionRemove:          {transform.Remove, nil},
	ActionResolve:         {transform.Resolve, []selector.Kind{selector.KindFragment}},
	ActionHideParticipant: {transform.HideParticipant, []selector.Kind{selector.KindParticipant, selector.KindMessage}},
}

// ParseAction validates an action name. "unwrap" is accepted for resolve and
// "hide" for hideParticipant.
func ParseAction(s string) (Action, error) {
	switch strings.TrimSpace(s) {
	case "focus":
		return ActionFocus, nil
	case "remove":
		return ActionRemove, nil
	case "resolve", "unwrap":
		return ActionResolve, nil
	case "hideParticipant", "hide":
		return ActionHideParticipant, nil
	}
	return "", errors.New(errors.ErrCodeInvalidLens, "unknown action %q (must be one of: focus, remove, resolve, hideParticipant)", s)
}

// Layer is one filter step.
type Layer struct {
	Action   Action            `json:"action" toml:"action" jsonschema:"enum=focus,enum=remove,enum=resolve,enum=hideParticipant"`
	Selector selector.Selector `json:"selector" toml:"selector"`
}

// String renders the layer in the form accepted by ParseLayer.
func (l Layer) String() string {
	return string(l.Action) + ":" + l.Selector.String()
}

// Lens is a named, ordered list of layers.
type Lens struct {
	Name        string  `json:"name" toml:"name"`
	Description string  `json:"description,omitempty" toml:"description"`
	Layers      []Layer `json:"layers" toml:"layer"`
}

// ParseLayer parses "action:selector", e.g. "remove:participant[name=Logger]".
func ParseLayer(s string) (Layer, error) {
	action, expr, ok := strings.Cut(s, ":")
	if !ok {
		return Layer{}, errors.New(errors.ErrCodeInvalidLens, "layer %q must have the form action:selector", s)
	}
	a, err := ParseAction(action)
	if err != nil {
		return Layer{}, err
	}
	sel, err := selector.ParseExpr(expr)
	if err != nil {
		return Layer{}, err
	}
	l := Layer{Action: a, Selector: sel}
	if err := l.check(); err != nil {
		return Layer{}, err
	}
	return l, nil
}

// Validate checks every layer and returns all problems found, or nil.
// Selector problems keep their *errors.SelectorError type inside the
// aggregate so callers can match them with errors.As.
func (l *Lens) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(l.Name) == "" {
		result = multierror.Append(result, errors.New(errors.ErrCodeInvalidLens, "lens name is required"))
	}
	for i, layer := range l.Layers {
		if err := layer.check(); err != nil {
			result = multierror.Append(result, fmt.Errorf("layer %d (%s): %w", i+1, layer.Action, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLens, err, "invalid lens %q", l.Name)
	}
	return nil
}

func (l Layer) check() error {
	_, _, err := l.compile()
	return err
}

// compile resolves the filter and matcher of a layer.
func (l Layer) compile() (transform.Filter, *selector.Matcher, error) {
	action, err := ParseAction(string(l.Action))
	if err != nil {
		return nil, nil, err
	}
	m, err := selector.Compile(l.Selector)
	if err != nil {
		return nil, nil, err
	}
	f := filters[action]
	if f.kinds != nil && !slices.Contains(f.kinds, l.Selector.Kind) {
		return nil, nil, errors.New(errors.ErrCodeInvalidLens, "%s does not accept %s selectors", action, l.Selector.Kind)
	}
	return f.fn, m, nil
}
