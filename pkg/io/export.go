package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/polagram/pkg/ast"
)

// WriteJSON encodes r as an indented JSON document and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(r *ast.Root, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(r)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes r to a JSON file at path.
func ExportJSON(r *ast.Root, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(r, f)
}

// Marshal returns the indented JSON document for r.
func Marshal(r *ast.Root) ([]byte, error) {
	data, err := json.MarshalIndent(ToDocument(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}
