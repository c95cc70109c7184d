package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

// ReadJSON decodes a JSON document from r.
//
// The input is first validated against [Schema], so structural problems are
// reported all at once with their JSON paths. The decoded document must also
// use known event kinds and unique participant ids.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*ast.Root, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// ImportJSON reads a JSON document from the file at path.
func ImportJSON(path string) (*ast.Root, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Unmarshal validates and decodes a JSON document.
func Unmarshal(data []byte) (*ast.Root, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	return FromDocument(&doc)
}
