package vulfield_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
	"github.com/vaeryn-uk/vulfield/jsonschema"
)

func defNames(s *jsonschema.Schema) []string {
	var out []string
	for name := range s.Definitions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestSchemaDefinitions(t *testing.T) {
	r := sampleRegistry(t)
	s, err := vulfield.SchemaOf[sample.Unit](r, false)
	require.NoError(t, err)

	require.Equal(t, []*jsonschema.Schema{jsonschema.RefTo("Unit"), jsonschema.RefTo(vulfield.RefDefinition)}, s.OneOf)
	require.Equal(t, []string{"Measure", "Ref", "Unit", "Weapon"}, defNames(s))

	unit := s.Definitions["Unit"]
	require.Equal(t, "object", unit.Type)
	require.Equal(t, "Unit", unit.TypeName)
	require.Equal(t, jsonschema.RefTo("Measure"), unit.Properties["speed"])
	require.Equal(t, &jsonschema.Schema{OneOf: []*jsonschema.Schema{
		jsonschema.RefTo("Weapon"),
		jsonschema.RefTo("Ref"),
		{Type: "null"},
	}}, unit.Properties["weapon"])

	require.Equal(t, "number", s.Definitions["Measure"].Type)
	require.Equal(t, "string", s.Definitions["Ref"].Type)
	require.Equal(t, "A string reference to an existing object", s.Definitions["Ref"].Description)

	b, err := s.Encode()
	require.NoError(t, err)
	require.Contains(t, string(b), `"$ref": "#definitions/Unit"`)
	require.Contains(t, string(b), `"x-vul-typename": "Weapon"`)
}

func TestSchemaExtractedEnvelope(t *testing.T) {
	r := sampleRegistry(t)
	s, err := vulfield.SchemaOf[sample.Army](r, true)
	require.NoError(t, err)

	require.Equal(t, "object", s.Type)
	require.Equal(t, []string{"refs", "data"}, s.Required)
	require.Equal(t, jsonschema.RefTo("Army"), s.Properties["data"])
	require.Equal(t, "object", s.Properties["refs"].Type)

	armory := s.Definitions["Army"].Properties["armory"]
	require.Equal(t, &jsonschema.Schema{OneOf: []*jsonschema.Schema{jsonschema.RefTo("Ref"), {Type: "null"}}}, armory.Items)
}

func TestSchemaNullableAndScalars(t *testing.T) {
	r := sampleRegistry(t)
	s, err := vulfield.SchemaOf[sample.Outer](r, false)
	require.NoError(t, err)
	require.Equal(t, "#definitions/Outer", s.Ref)

	outer := s.Definitions["Outer"]
	require.Equal(t, &jsonschema.Schema{OneOf: []*jsonschema.Schema{jsonschema.RefTo("Inner"), {Type: "null"}}}, outer.Properties["inner"])
	require.Equal(t, "number", outer.Properties["size"].Type)
	require.Empty(t, outer.Required)

	flat, err := vulfield.SchemaOf[sample.Flat](r, false)
	require.NoError(t, err)
	props := flat.Definitions["Flat"].Properties
	require.Equal(t, []string{"name", "count", "ratio", "enabled"}, flat.Definitions["Flat"].Required)
	require.Equal(t, []string{"string", "null"}, props["note"].Type)
	require.Equal(t, "number", props["scores"].AdditionalProperties.Type)
	require.Equal(t, "string", props["tags"].Items.Type)
	require.NotContains(t, defNames(flat), "Ref")
}

func TestSchemaPolymorphicBase(t *testing.T) {
	r := sampleRegistry(t)
	s, err := vulfield.SchemaOf[sample.TreeNode](r, false)
	require.NoError(t, err)

	base := s.Definitions["TreeNode"]
	require.Equal(t, "object", base.Type)
	require.Equal(t, []*jsonschema.Schema{jsonschema.RefTo("Leaf"), jsonschema.RefTo("Branch")}, base.OneOf)
	require.Equal(t, jsonschema.RefTo("NodeType"), base.Properties["type"])
	require.Equal(t, []string{"Leaf", "Branch"}, s.Definitions["NodeType"].Enum)

	disc := s.Definitions["Leaf"].Properties["type"]
	require.Equal(t, "string", disc.Type)
	require.Equal(t, "Leaf", disc.Const.Str())

	children := s.Definitions["Branch"].Properties["children"]
	require.Equal(t, jsonschema.RefTo("TreeNode"), children.Items)
}

func TestSchemaAssetUnion(t *testing.T) {
	r := sampleRegistry(t)
	s, err := vulfield.SchemaOf[sample.Sprite](r, false)
	require.NoError(t, err)

	texture := s.Definitions["Sprite"].Properties["texture"]
	require.Len(t, texture.OneOf, 2)
	require.Equal(t, "string", texture.OneOf[0].Type)
	require.Equal(t, "Path to a sample.Texture asset", texture.OneOf[0].Description)
	require.Equal(t, jsonschema.RefTo("Texture"), texture.OneOf[1])
	require.Equal(t, "A #rrggbb color", s.Definitions["Color"].Description)
}

type fieldKinds struct {
	Bool   bool
	Int    int
	String string
	Map    map[string]int
	Array  []bool
}

func (k *fieldKinds) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&k.Bool), "bool")
	fs.Add(vulfield.Create(&k.Int), "int")
	fs.Add(vulfield.Create(&k.String), "string")
	fs.Add(vulfield.Create(&k.Map), "map")
	fs.Add(vulfield.Create(&k.Array), "array")
	return fs
}

type fieldParent struct {
	Inner fieldKinds
}

func (p *fieldParent) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&p.Inner), "inner")
	return fs
}

const fieldKindsSchema = `{
	"type": "object",
	"properties": {
		"bool": {"type": "boolean"},
		"int": {"type": "number"},
		"string": {"type": "string"},
		"map": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		},
		"array": {
			"type": "array",
			"items": {"type": "boolean"}
		}
	}
}`

func TestSchemaOfUnregisteredObject(t *testing.T) {
	s, err := vulfield.SchemaOf[fieldKinds](vulfield.NewRegistry(), false)
	require.NoError(t, err)
	b, err := s.Encode()
	require.NoError(t, err)
	require.JSONEq(t, fieldKindsSchema, string(b))
}

func TestSchemaNestsUnregisteredObjects(t *testing.T) {
	s, err := vulfield.SchemaOf[fieldParent](vulfield.NewRegistry(), false)
	require.NoError(t, err)
	b, err := s.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"type": "object", "properties": {"inner": `+fieldKindsSchema+`}}`, string(b))
}
