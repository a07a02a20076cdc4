package jsonschema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield/jsonschema"
	"github.com/vaeryn-uk/vulfield/value"
)

func TestSchemaMarshal(t *testing.T) {
	s := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"any":  jsonschema.True(),
			"kind": {Const: value.NewString("Leaf")},
			"next": jsonschema.RefTo("Node"),
			"name": {Type: []string{"string", "null"}},
		},
		Required: []string{"kind"},
		TypeName: "Node",
	}

	v, err := s.Value()
	require.NoError(t, err)

	want, err := value.Parse([]byte(`{
		"type": "object",
		"properties": {
			"any": true,
			"kind": {"const": "Leaf"},
			"next": {"$ref": "#definitions/Node"},
			"name": {"type": ["string", "null"]}
		},
		"required": ["kind"],
		"x-vul-typename": "Node"
	}`))
	require.NoError(t, err)
	require.True(t, value.Equal(want, v), "got %s", v)
}

func TestTrueSchemaIgnoresFields(t *testing.T) {
	s := jsonschema.True()
	s.Type = "string"
	b, err := s.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "true", string(b))
}
