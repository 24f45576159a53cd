package schema

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed boqa_results.schema.json
var resultsSchema []byte

// Violation is a single schema failure. Type carries the gojsonschema error
// type, e.g. "required" or "invalid_type".
type Violation struct {
	Field       string
	Type        string
	Description string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// Missing reports whether the violation is an absent required key.
func (v Violation) Missing() bool {
	return v.Type == "required"
}

// ResultsSchema returns a copy of the embedded result bundle schema.
func ResultsSchema() []byte {
	out := make([]byte, len(resultsSchema))
	copy(out, resultsSchema)
	return out
}

// Validate checks doc against the JSON schema file at schemaPath.
func Validate(schemaPath string, doc any) ([]Violation, error) {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("resolve schema %s: %w", schemaPath, err)
	}
	return validate(gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(abs)), schemaPath, doc)
}

// ValidateResults checks a decoded result bundle against the embedded schema.
func ValidateResults(doc any) ([]Violation, error) {
	return validate(gojsonschema.NewBytesLoader(resultsSchema), "boqa_results.schema.json", doc)
}

func validate(schemaLoader gojsonschema.JSONLoader, name string, doc any) ([]Violation, error) {
	docLoader := gojsonschema.NewGoLoader(doc)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	out := make([]Violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, Violation{Field: e.Field(), Type: e.Type(), Description: e.Description()})
	}
	return out, nil
}
