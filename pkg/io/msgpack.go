package io

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

// EncodeMsgpack encodes r in the compact binary form used by the cache. The
// field names match the JSON document.
func EncodeMsgpack(r *ast.Root) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(ToDocument(r)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode msgpack")
	}
	return buf.Bytes(), nil
}

// DecodeMsgpack is the inverse of EncodeMsgpack.
func DecodeMsgpack(data []byte) (*ast.Root, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode msgpack")
	}
	return FromDocument(&doc)
}
