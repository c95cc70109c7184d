package pipeline

import (
	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect"
)

// Parse parses the source text of opts in its input format.
func Parse(opts Options) (*ast.Root, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	return dialect.Parse(opts.Source, opts.Format)
}
