package vulfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
	"github.com/vaeryn-uk/vulfield/value"
)

func sampleRegistry(t *testing.T) *vulfield.Registry {
	t.Helper()
	r := vulfield.NewRegistry()
	require.NoError(t, sample.RegisterTypes(r))
	return r
}

func serCtx(r *vulfield.Registry) *vulfield.SerializationContext {
	ctx := vulfield.NewSerializationContext()
	ctx.Registry = r
	return ctx
}

func deserCtx(r *vulfield.Registry) *vulfield.DeserializationContext {
	ctx := vulfield.NewDeserializationContext()
	ctx.Registry = r
	return ctx
}

// encode serializes v with For[T]() and returns compact JSON text.
func encode[T any](t *testing.T, ctx *vulfield.SerializationContext, v T) string {
	t.Helper()
	out, ok := vulfield.Serialize(ctx, vulfield.For[T](), v, nil)
	require.True(t, ok, "serialize: %v", ctx.Errors.Strings())
	b, err := value.Marshal(out)
	require.NoError(t, err)
	return string(b)
}

// decode deserializes JSON text into out with For[T]().
func decode[T any](t *testing.T, ctx *vulfield.DeserializationContext, js string, out *T) bool {
	t.Helper()
	data, err := value.Parse([]byte(js))
	require.NoError(t, err)
	return vulfield.Deserialize(ctx, vulfield.For[T](), data, out, nil)
}

func describe[T any](t *testing.T, ctx *vulfield.SerializationContext) *vulfield.Description {
	t.Helper()
	d, ok := vulfield.Describe(ctx, vulfield.For[T](), nil)
	require.True(t, ok, "describe: %v", ctx.Errors.Strings())
	return d
}
