package io

import (
	"github.com/wI2L/jsondiff"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/errors"
)

// Diff returns the RFC 6902 patch turning document a into document b. Both
// inputs must be valid JSON documents.
func Diff(a, b []byte) (jsondiff.Patch, error) {
	p, err := jsondiff.CompareJSON(a, b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "compare documents")
	}
	return p, nil
}

// DiffRoots compares two trees through their JSON projections. Source
// positions are ignored so that a reparsed diagram diffs clean against its
// original.
func DiffRoots(a, b *ast.Root) (jsondiff.Patch, error) {
	p, err := jsondiff.Compare(stripPositions(ToDocument(a)), stripPositions(ToDocument(b)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compare trees")
	}
	return p, nil
}

func stripPositions(d *Document) *Document {
	for i := range d.Directives {
		d.Directives[i].Pos = nil
	}
	for i := range d.Participants {
		d.Participants[i].Pos = nil
	}
	for i := range d.Groups {
		d.Groups[i].Pos = nil
	}
	stripEventPositions(d.Events)
	return d
}

func stripEventPositions(events []Event) {
	for i := range events {
		events[i].Pos = nil
		for j := range events[i].Branches {
			events[i].Branches[j].Pos = nil
			stripEventPositions(events[i].Branches[j].Events)
		}
	}
}
