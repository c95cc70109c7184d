// Package dialect dispatches parsing and generation to the supported diagram
// languages and detects which language a file is written in.
package dialect

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/polagram/pkg/ast"
	"github.com/matzehuels/polagram/pkg/dialect/mermaid"
	"github.com/matzehuels/polagram/pkg/dialect/plantuml"
	"github.com/matzehuels/polagram/pkg/errors"
)

// Format names a diagram language.
type Format string

const (
	Mermaid  Format = "mermaid"
	PlantUML Format = "plantuml"
)

// Formats lists the supported formats.
var Formats = []Format{Mermaid, PlantUML}

var extensions = map[string]Format{
	".mmd":      Mermaid,
	".mermaid":  Mermaid,
	".puml":     PlantUML,
	".plantuml": PlantUML,
	".pu":       PlantUML,
	".wsd":      PlantUML,
	".iuml":     PlantUML,
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Mermaid, PlantUML:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown diagram format %q (want mermaid or plantuml)", s)
}

// Detect guesses the format from the file extension and, failing that, from
// the content. Content containing "@startuml" is PlantUML, content whose first
// statement is "sequenceDiagram" (possibly after front matter or directives)
// is Mermaid.
func Detect(filename, text string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return f, nil
	}
	if strings.Contains(text, "@startuml") {
		return PlantUML, nil
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "sequenceDiagram" {
			return Mermaid, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect diagram format of %q", filename)
}

// Parse parses text in the given format.
func Parse(text string, f Format) (*ast.Root, error) {
	switch f {
	case Mermaid:
		return mermaid.Parse(text)
	case PlantUML:
		return plantuml.Parse(text)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown diagram format %q", f)
}

// Generate renders root in the given format.
func Generate(root *ast.Root, f Format) (string, error) {
	switch f {
	case Mermaid:
		return mermaid.Generate(root), nil
	case PlantUML:
		return plantuml.Generate(root), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown diagram format %q", f)
}
