package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/cache"
	"github.com/matzehuels/polagram/pkg/lens"
	"github.com/matzehuels/polagram/pkg/sanitize"
)

// ApplyLens derives a view of root. Every selector is compiled before any
// filter runs, so an invalid lens fails without partial work. The layers run
// in declaration order and the sanitizers always run last, so a lens without
// layers still sanitizes. root is never modified.
func ApplyLens(root *ast.Root, l lens.Lens) (*ast.Root, error) {
	steps, err := l.Compile()
	if err != nil {
		return nil, err
	}
	out := root
	for _, s := range steps {
		out = s.Apply(out)
	}
	return sanitize.All(out), nil
}

// LensHash is the content hash of a lens definition. The name and
// description do not take part: two lenses with the same layers produce the
// same views.
func LensHash(l lens.Lens) string {
	data, err := json.Marshal(l.Layers)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
