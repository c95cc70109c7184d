package lens

import (
	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/selector"
	"github.com/matzehuels/polagram/pkg/transform"
)

// Step is a compiled layer.
type Step struct {
	Layer   Layer
	Filter  transform.Filter
	Matcher *selector.Matcher
}

// Apply runs the step's filter on r.
func (s Step) Apply(r *ast.Root) *ast.Root {
	return s.Filter(r, s.Matcher)
}

// Compile validates the lens and compiles every selector. Nothing is
// compiled partially: on error no steps are returned.
func (l *Lens) Compile() ([]Step, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	steps := make([]Step, len(l.Layers))
	for i, layer := range l.Layers {
		fn, m, err := layer.compile()
		if err != nil {
			return nil, err
		}
		steps[i] = Step{Layer: layer, Filter: fn, Matcher: m}
	}
	return steps, nil
}

// Identity is the lens without layers. Applying it only sanitizes.
var Identity = Lens{Name: "identity"}
