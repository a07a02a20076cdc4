package vulfield_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
)

func useDefault(t *testing.T) {
	t.Helper()
	require.NoError(t, sample.RegisterDefault())
}

func TestMarshalAndUnmarshal(t *testing.T) {
	useDefault(t)

	b, err := vulfield.Marshal(sample.Weapon{ID: "w", Damage: 2})
	require.NoError(t, err)
	require.Equal(t, `{"id":"w","damage":2}`, string(b))

	y, err := vulfield.MarshalYAML(sample.Weapon{ID: "w", Damage: 2})
	require.NoError(t, err)
	require.Equal(t, "id: w\ndamage: 2\n", string(y))

	var w sample.Weapon
	require.NoError(t, vulfield.Unmarshal(b, &w))
	require.Equal(t, sample.Weapon{ID: "w", Damage: 2}, w)

	b, err = vulfield.Marshal(sample.Measure(1.23456), vulfield.Options{Precision: 2})
	require.NoError(t, err)
	require.Equal(t, "1.23", string(b))
}

func TestUnmarshalErrors(t *testing.T) {
	useDefault(t)

	var w sample.Weapon
	err := vulfield.Unmarshal([]byte(`{"id":1}`), &w)
	iss, ok := vulfield.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, ".id", iss[0].Path)
	require.Equal(t, vulfield.CodeInvalidType, iss[0].Code)

	err = vulfield.Unmarshal([]byte(`{"id":`), &w)
	iss, ok = vulfield.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, vulfield.CodeParseError, iss[0].Code)
	require.True(t, strings.HasPrefix(iss[0].Message, "invalid json: "), iss[0].Message)

	_, err = vulfield.Marshal(w, vulfield.Options{Flags: map[string]bool{"nope": true}})
	require.ErrorContains(t, err, `unknown flag "nope"`)
}

func TestReadFromYAML(t *testing.T) {
	useDefault(t)

	doc := `
armory:
  - id: axe
    damage: 5
units:
  - id: u1
    weapon: axe
  - u1
`
	var army sample.Army
	require.NoError(t, vulfield.ReadFrom(vulfield.YAMLBytes([]byte(doc)), &army))
	require.Len(t, army.Units, 2)
	require.Same(t, army.Units[0], army.Units[1])
	require.Same(t, army.Armory[0], army.Units[0].Weapon)

	err := vulfield.ReadFrom(vulfield.JSONReader(strings.NewReader(`{"units":[{"id":"u1","weapon":"axe"}]}`)), &army)
	require.EqualError(t, err, ".units[0].weapon: Unable to resolve reference `axe`")
}

func TestExtractedRoundTripThroughOptions(t *testing.T) {
	useDefault(t)
	opts := vulfield.Options{ExtractReferences: true}

	sword := &sample.Weapon{ID: "sword", Damage: 1}
	in := sample.Army{Armory: []*sample.Weapon{sword}, Units: []*sample.Unit{{ID: "u", Weapon: sword}}}
	b, err := vulfield.Marshal(in, opts)
	require.NoError(t, err)

	var out sample.Army
	require.NoError(t, vulfield.Unmarshal(b, &out, opts))
	require.Same(t, out.Armory[0], out.Units[0].Weapon)
}

func TestRegistryDescribeAndSchema(t *testing.T) {
	r := sampleRegistry(t)

	d, err := r.Describe("Weapon")
	require.NoError(t, err)
	require.Equal(t, "Weapon", d.TypeName())

	_, err = r.Describe("Nope")
	require.EqualError(t, err, `vulfield: unknown type "Nope"`)

	s, err := vulfield.SchemaOf[sample.Weapon](r, false)
	require.NoError(t, err)
	require.Contains(t, s.Definitions, "Weapon")

	_, err = vulfield.DescribeType[chan int](r)
	require.Error(t, err)
}
