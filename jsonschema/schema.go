// Package jsonschema holds the JSON Schema document produced by the schema
// emitter. Only the keywords the emitter writes are modelled.
package jsonschema

import (
	json "github.com/goccy/go-json"

	"github.com/vaeryn-uk/vulfield/value"
)

// TypeNameKey is the non-standard annotation carrying a definition's type name.
const TypeNameKey = "x-vul-typename"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Ref         string `json:"$ref,omitempty"`
	Type        any    `json:"type,omitempty"` // string, or []string when nullable
	Description string `json:"description,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`

	// Literals
	Enum  []string     `json:"enum,omitempty"`
	Const *value.Value `json:"const,omitempty"`

	TypeName    string             `json:"x-vul-typename,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Always marks the boolean schema `true`, which matches anything. All
	// other fields are ignored when set.
	Always bool `json:"-"`
}

// True returns the schema that accepts any value.
func True() *Schema { return &Schema{Always: true} }

// RefTo returns a schema referencing the named definition.
func RefTo(name string) *Schema { return &Schema{Ref: "#definitions/" + name} }

type plain Schema

// MarshalJSON implements json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s.Always {
		return []byte("true"), nil
	}
	return json.Marshal((*plain)(s))
}

// Encode renders the schema as indented JSON.
func (s *Schema) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Value converts the schema into a value tree.
func (s *Schema) Value() (*value.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return value.Parse(b)
}
