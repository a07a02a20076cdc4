package vulfield_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/internal/sample"
)

func textures(path string) (any, error) {
	switch path {
	case "tex/a.png":
		return &sample.Texture{Path: path, Width: 8, Height: 8}, nil
	case "tex/b.png":
		return sample.Texture{Path: path, Width: 2, Height: 2}, nil
	case "missing":
		return (*sample.Texture)(nil), nil
	case "wrong":
		return "not a texture", nil
	}
	return nil, errors.New("disk unavailable")
}

func TestAssetsSerializeAsPath(t *testing.T) {
	r := sampleRegistry(t)
	s := sample.Sprite{Name: "s", Texture: sample.Texture{Path: "tex/a.png", Width: 8}}
	require.Equal(t, `{"name":"s","texture":"tex/a.png","tint":"#000000"}`, encode(t, serCtx(r), s))

	s.Texture.Path = ""
	require.Equal(t, `{"name":"s","texture":{"width":8,"height":0},"tint":"#000000"}`, encode(t, serCtx(r), s),
		"assets without a path are written inline")

	ctx := serCtx(r)
	ctx.Flags.Set(vulfield.FlagAssetReferencing, false)
	s.Texture.Path = "tex/a.png"
	require.Equal(t, `{"name":"s","texture":{"path":"tex/a.png","width":8,"height":0},"tint":"#000000"}`, encode(t, ctx, s))
}

func TestAssetsLoadByPath(t *testing.T) {
	r := sampleRegistry(t)

	for _, path := range []string{"tex/a.png", "tex/b.png"} {
		var s sample.Sprite
		ctx := deserCtx(r)
		ctx.Assets = vulfield.AssetLoaderFunc(textures)
		require.True(t, decode(t, ctx, `{"texture":"`+path+`"}`, &s), ctx.Errors.Strings())
		require.Equal(t, path, s.Texture.Path)
		require.NotZero(t, s.Texture.Width)
	}

	var s sample.Sprite
	ctx := deserCtx(r)
	require.True(t, decode(t, ctx, `{"texture":{"path":"inline","width":1}}`, &s))
	require.Equal(t, sample.Texture{Path: "inline", Width: 1}, s.Texture)
}

func TestAssetLoadErrors(t *testing.T) {
	r := sampleRegistry(t)
	for path, want := range map[string]string{
		"missing": ".texture: Asset `missing` was not found",
		"wrong":   ".texture: Asset `wrong` is a string, not a sample.Texture",
		"gone":    ".texture: Unable to load asset `gone`: disk unavailable",
	} {
		t.Run(path, func(t *testing.T) {
			var s sample.Sprite
			ctx := deserCtx(r)
			ctx.Assets = vulfield.AssetLoaderFunc(textures)
			require.False(t, decode(t, ctx, `{"texture":"`+path+`"}`, &s))
			require.Equal(t, []string{want}, ctx.Errors.Strings())
			require.Equal(t, vulfield.CodeAsset, ctx.Errors.Issues()[0].Code)
		})
	}

	var s sample.Sprite
	ctx := deserCtx(r)
	require.False(t, decode(t, ctx, `{"texture":"tex/a.png"}`, &s))
	require.Equal(t, []string{".texture: No asset loader is configured to load `tex/a.png`"}, ctx.Errors.Strings())
}
