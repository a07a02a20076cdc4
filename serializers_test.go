package vulfield_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
	"github.com/vaeryn-uk/vulfield/value"
)

func TestFlatRoundTrip(t *testing.T) {
	r := sampleRegistry(t)
	in := sample.Flat{
		Name:    "a",
		Count:   3,
		Ratio:   1.2,
		Enabled: true,
		Tags:    []string{"x", "y"},
		Scores:  map[string]int{"b": 2, "a": 1},
		Note:    vulfield.Some("hi"),
	}
	js := encode(t, serCtx(r), in)
	require.Equal(t, `{"name":"a","count":3,"ratio":1.2,"enabled":true,"tags":["x","y"],"scores":{"a":1,"b":2},"note":"hi"}`, js)

	var out sample.Flat
	ctx := deserCtx(r)
	require.True(t, decode(t, ctx, js, &out), ctx.Errors.Strings())
	require.Empty(t, cmp.Diff(in, out))
}

func TestEmptyValuesAreOmitted(t *testing.T) {
	r := sampleRegistry(t)
	require.Equal(t, `{"name":"","count":0,"ratio":0,"enabled":false}`, encode(t, serCtx(r), sample.Flat{}))

	require.Equal(t, `{"size":2}`, encode(t, serCtx(r), sample.Outer{Items: []sample.Inner{{}, {}}}))
	require.Equal(t,
		`{"id":"o","items":[{"label":"a"},null],"size":2}`,
		encode(t, serCtx(r), sample.Outer{ID: "o", Items: []sample.Inner{{Label: "a"}, {}}}),
	)
}

func TestDeserializeReplacesContainers(t *testing.T) {
	r := sampleRegistry(t)
	out := sample.Flat{Tags: []string{"x", "y"}, Scores: map[string]int{"old": 1}}
	ctx := deserCtx(r)
	require.True(t, decode(t, ctx, `{"tags":["z"],"scores":{"new":2},"unknown":true}`, &out))
	require.Equal(t, []string{"z"}, out.Tags)
	require.Equal(t, map[string]int{"new": 2}, out.Scores)
}

func TestDeserializeTypeMismatch(t *testing.T) {
	r := sampleRegistry(t)
	var out sample.Flat
	ctx := deserCtx(r)
	require.False(t, decode(t, ctx, `{"name":1,"count":"x"}`, &out))
	require.Equal(t, []string{".name: Required JSON type String, but got Number"}, ctx.Errors.Strings(),
		"a field set stops at its first failing field")

	ctx = deserCtx(r)
	require.False(t, decode(t, ctx, `[]`, &out))
	require.Equal(t, []string{".: Required JSON type Object, but got Array"}, ctx.Errors.Strings())
}

func TestIntegerRange(t *testing.T) {
	ctx := vulfield.NewDeserializationContext()
	var small int8
	require.False(t, vulfield.Deserialize(ctx, vulfield.Int[int8](), value.NewInt(300), &small, nil))
	require.Equal(t, []string{".: Number 300 is not a valid int8"}, ctx.Errors.Strings())

	var u uint16
	ctx = vulfield.NewDeserializationContext()
	require.False(t, vulfield.Deserialize(ctx, vulfield.Uint[uint16](), value.NewInt(-1), &u, nil))

	ctx = vulfield.NewDeserializationContext()
	require.True(t, vulfield.Deserialize(ctx, vulfield.Uint[uint16](), value.NewInt(65535), &u, nil))
	require.Equal(t, uint16(65535), u)
}

func TestFloatPrecision(t *testing.T) {
	ctx := vulfield.NewSerializationContext()
	require.Equal(t, "3.14159", encode(t, ctx, 3.14159))
	ctx.Precision = 2
	require.Equal(t, "3.14", encode(t, ctx, 3.14159))
	require.Equal(t, "1.2", encode(t, vulfield.NewSerializationContext(), float32(1.2)))
}

func TestMapKeysMustBeStrings(t *testing.T) {
	s := vulfield.MapOf(vulfield.Int[int](), vulfield.String[string]())
	ctx := vulfield.NewSerializationContext()
	_, ok := vulfield.Serialize(ctx, s, map[int]string{1: "a"}, nil)
	require.False(t, ok)
	require.Equal(t, []string{".: Map keys must serialize to a JSON String, but got Number"}, ctx.Errors.Strings())

	_, ok = vulfield.Describe(ctx, s, nil)
	require.False(t, ok)
}

func TestEnum(t *testing.T) {
	require.Equal(t, `"Branch"`, encode(t, vulfield.NewSerializationContext(), sample.NodeBranch))

	var nt sample.NodeType
	ctx := vulfield.NewDeserializationContext()
	require.True(t, decode(t, ctx, `"Branch"`, &nt))
	require.Equal(t, sample.NodeBranch, nt)

	require.False(t, decode(t, ctx, `"Bogus"`, &nt))
	require.Equal(t, []string{".: `Bogus` is not a valid sample.NodeType, expected one of Leaf, Branch"}, ctx.Errors.Strings())
	require.Equal(t, vulfield.CodeInvalidEnum, ctx.Errors.Issues()[0].Code)
}

func TestPointersAndOptionals(t *testing.T) {
	ctx := vulfield.NewSerializationContext()
	var nilInt *int
	five := 5
	require.Equal(t, "null", encode(t, ctx, vulfield.Optional[int]{}))
	require.Equal(t, "7", encode(t, ctx, vulfield.Some(7)))

	out, ok := vulfield.Serialize(ctx, vulfield.Ptr[int](), nilInt, nil)
	require.True(t, ok)
	require.True(t, out.IsNull())
	out, ok = vulfield.Serialize(ctx, vulfield.Ptr[int](), &five, nil)
	require.True(t, ok)
	require.Equal(t, "5", out.Literal())

	dctx := vulfield.NewDeserializationContext()
	p := &five
	require.True(t, vulfield.Deserialize(dctx, vulfield.Ptr[int](), value.NewNull(), &p, nil))
	require.Nil(t, p)
	require.True(t, vulfield.Deserialize(dctx, vulfield.Ptr[int](), value.NewInt(9), &p, nil))
	require.Equal(t, 9, *p)
	require.Equal(t, 5, five, "deserializing allocates rather than writing through the old pointer")

	var opt vulfield.Optional[string]
	require.True(t, decode(t, dctx, `"x"`, &opt))
	got, set := opt.Get()
	require.True(t, set)
	require.Equal(t, "x", got)
	require.True(t, decode(t, dctx, `null`, &opt))
	require.False(t, opt.Set)
}

func TestRawPassesThrough(t *testing.T) {
	tree, err := value.Parse([]byte(`{"b":[1,true],"a":null}`))
	require.NoError(t, err)
	require.Equal(t, `{"b":[1,true],"a":null}`, encode(t, vulfield.NewSerializationContext(), tree))

	var out *value.Value
	require.True(t, vulfield.Deserialize(vulfield.NewDeserializationContext(), vulfield.Raw(), tree, &out, nil))
	require.Same(t, tree, out)
}

func TestUnsupportedType(t *testing.T) {
	ctx := vulfield.NewSerializationContext()
	_, ok := vulfield.Serialize(ctx, vulfield.For[chan int](), make(chan int), nil)
	require.False(t, ok)
	require.Equal(t, []string{".: No serializer is available for chan int"}, ctx.Errors.Strings())

	ctx = vulfield.NewSerializationContext()
	_, ok = vulfield.Describe(ctx, vulfield.For[chan int](), nil)
	require.False(t, ok)
	require.Contains(t, ctx.Errors.Strings()[0], "did not produce a valid description")
}

func TestCustomSerializer(t *testing.T) {
	r := sampleRegistry(t)
	require.Equal(t, `"#ff8000"`, encode(t, serCtx(r), sample.Color{R: 255, G: 128}))

	var c sample.Color
	ctx := deserCtx(r)
	require.True(t, decode(t, ctx, `"#0a0b0c"`, &c))
	require.Equal(t, sample.Color{R: 10, G: 11, B: 12}, c)
	require.False(t, decode(t, ctx, `"red"`, &c))
	require.Equal(t, []string{".: `red` is not a #rrggbb color"}, ctx.Errors.Strings())
}
