package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect"
	"github.com/matzehuels/polagram/pkg/errors"
	polaio "github.com/matzehuels/polagram/pkg/io"
	"github.com/matzehuels/polagram/pkg/render/nodelink"
)

// Render generates root in one output format.
func Render(ctx context.Context, root *ast.Root, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatMermaid, FormatPlantUML:
		text, err := dialect.Generate(root, dialect.Format(format))
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	case FormatJSON:
		return polaio.Marshal(root)
	case FormatDOT:
		return []byte(nodelink.ToDOT(root, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(root, nodelink.Options{Detailed: opts.Detailed}))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %s", format)
}

// RenderAll generates root in every format of opts.Formats.
func RenderAll(ctx context.Context, root *ast.Root, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := Render(ctx, root, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
