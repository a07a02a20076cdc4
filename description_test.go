package vulfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/value"
)

func scalar(kind value.Kind) *vulfield.Description {
	d := vulfield.NewDescription()
	switch kind {
	case value.String:
		d.AsString()
	case value.Number:
		d.AsNumber()
	}
	return d
}

func TestUnionDropsEquivalentAlternatives(t *testing.T) {
	d := vulfield.NewDescription()
	d.Union(scalar(value.String), scalar(value.String), scalar(value.Number))
	require.Len(t, d.Alternatives(), 2)
	require.Equal(t, value.String, d.Alternatives()[0].Kind())
	require.Equal(t, value.Number, d.Alternatives()[1].Kind())

	b, err := d.JSONSchema(false).Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"oneOf": [{"type": "string"}, {"type": "number"}]}`, string(b))

	one := vulfield.NewDescription()
	one.Union(scalar(value.String), scalar(value.String))
	require.Empty(t, one.Alternatives())
	require.Equal(t, value.String, one.Kind())
}
