package io

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/polagram/pkg/errors"
)

var (
	schemaOnce sync.Once
	schemaData []byte
	schemaErr  error
)

// Schema returns the JSON Schema of [Document], generated by reflection.
func Schema() ([]byte, error) {
	schemaOnce.Do(func() {
		r := jsonschema.Reflector{Anonymous: true, ExpandedStruct: true}
		s := r.Reflect(&Document{})
		s.Version = ""
		s.Title = "Polagram document"
		s.Description = fmt.Sprintf("Serialized sequence diagram, format version %d", FormatVersion)
		schemaData, schemaErr = json.MarshalIndent(s, "", "  ")
	})
	return schemaData, schemaErr
}

// ValidateJSON checks data against [Schema] and returns every violation
// found, or nil.
func ValidateJSON(data []byte) error {
	schema, err := Schema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "generate schema")
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "validate document")
	}
	if result.Valid() {
		return nil
	}
	var all *multierror.Error
	for _, e := range result.Errors() {
		all = multierror.Append(all, fmt.Errorf("%s: %s", e.Field(), e.Description()))
	}
	all.ErrorFormat = func(errs []error) string {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = "  " + e.Error()
		}
		return fmt.Sprintf("%d schema violation(s):\n%s", len(errs), strings.Join(lines, "\n"))
	}
	return errors.Wrap(errors.ErrCodeInvalidDocument, all, "document does not match schema")
}
