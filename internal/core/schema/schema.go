// Package schema holds the declarative response schemas for every
// structured model call. A Schema is rendered into the request so the
// model is constrained, and the same definition validates the decoded
// output before it is trusted.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

// Schema is a named, resolved JSON Schema.
type Schema struct {
	name     string
	def      *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// New resolves def and returns a Schema.
func New(name string, def *jsonschema.Schema) (*Schema, error) {
	resolved, err := def.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema %s: %w", name, err)
	}
	return &Schema{name: name, def: def, resolved: resolved}, nil
}

// MustNew is New for package-level definitions.
func MustNew(name string, def *jsonschema.Schema) *Schema {
	s, err := New(name, def)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name, used as the response format name.
func (s *Schema) Name() string {
	return s.name
}

// JSON renders the schema for inclusion in a model request.
func (s *Schema) JSON() json.RawMessage {
	data, err := json.Marshal(s.def)
	if err != nil {
		// Definitions are static; a marshal failure is a programming error.
		panic(fmt.Sprintf("marshal schema %s: %v", s.name, err))
	}
	return data
}

// String renders the schema indented, for prompts.
func (s *Schema) String() string {
	data, err := json.MarshalIndent(s.def, "", "  ")
	if err != nil {
		return string(s.JSON())
	}
	return string(data)
}

// Validate checks a decoded JSON value against the schema.
// Failures wrap domain.ErrInvalidAIOutput.
func (s *Schema) Validate(v any) error {
	if err := s.resolved.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidAIOutput, s.name, err)
	}
	return nil
}
