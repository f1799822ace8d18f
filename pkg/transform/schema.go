package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	// ErrInvalidSchema is returned when a schema document does not compile.
	ErrInvalidSchema = errors.New("invalid JSON schema")
	// ErrSchemaViolation is wrapped by records that do not match the schema.
	ErrSchemaViolation = errors.New("schema violation")
)

const schemaResource = "record.schema.json"

// Schema validates records against a JSON Schema document. Field values
// are validated as JSON strings.
type Schema struct {
	schema *jsonschema.Schema
}

func CompileSchema(doc []byte) (*Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	s, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &Schema{schema: s}, nil
}

func (s *Schema) Validate(r record.Record) error {
	doc := make(map[string]any, len(r))
	for k, v := range r {
		doc[k] = v
	}
	if err := s.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	return nil
}

func (s *Schema) Stage() Stage[record.Record] {
	return func(_ context.Context, r record.Record) (record.Record, error) {
		return r, s.Validate(r)
	}
}
