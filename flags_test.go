package vulfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
)

func TestFlagDefaults(t *testing.T) {
	var f vulfield.Flags
	require.True(t, f.Enabled(vulfield.FlagReferencing, nil))
	require.True(t, f.Enabled(vulfield.FlagAssetReferencing, nil))
	require.False(t, f.Enabled(vulfield.FlagAnnotateTypes, nil))
	require.False(t, f.Enabled("no-such-flag", nil))

	require.False(t, vulfield.KnownFlag("flags-test-default"))
	vulfield.RegisterDefault("flags-test-default", true)
	require.True(t, vulfield.KnownFlag("flags-test-default"))
	require.Contains(t, vulfield.KnownFlags(), "flags-test-default")
	require.True(t, f.Enabled("flags-test-default", nil))
}

func TestFlagPrecedence(t *testing.T) {
	var f vulfield.Flags
	f.Set(vulfield.FlagReferencing, false)
	require.NoError(t, f.SetAt(".units[*]", vulfield.FlagReferencing, true))
	require.NoError(t, f.SetAt(".units[1]", vulfield.FlagReferencing, false))

	require.False(t, f.Enabled(vulfield.FlagReferencing, path("armory", 0)), "global override")
	require.True(t, f.Enabled(vulfield.FlagReferencing, path("units", 0)), "wildcard override")
	require.False(t, f.Enabled(vulfield.FlagReferencing, path("units", 1)), "most literal segments win")
	require.False(t, f.Enabled(vulfield.FlagReferencing, path("units", 0, "ally")), "patterns match whole paths")

	// Equal specificity: the later override wins.
	require.NoError(t, f.SetAt(".units[1]", vulfield.FlagReferencing, true))
	require.True(t, f.Enabled(vulfield.FlagReferencing, path("units", 1)))

	require.Error(t, f.SetAt(".units[", vulfield.FlagReferencing, true))
}
