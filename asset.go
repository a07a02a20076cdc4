package vulfield

import "github.com/vaeryn-uk/vulfield/value"

// Asset is a value stored on its own and identified by a path, such as a
// texture or a sound. AssetPath must be safe to call on the zero value.
type Asset interface {
	AssetPath() string
}

// AssetLoader materialises assets by path during deserialization. It may
// return either T or *T for an asset of type T.
type AssetLoader interface {
	LoadAsset(path string) (any, error)
}

type AssetLoaderFunc func(path string) (any, error)

func (f AssetLoaderFunc) LoadAsset(path string) (any, error) { return f(path) }

type assetSerializer[T Asset] struct {
	inline Serializer[T]
}

// AssetOf serializes assets as their path while FlagAssetReferencing is on,
// and with inline otherwise. Deserialization accepts both forms.
func AssetOf[T Asset](inline Serializer[T]) Serializer[T] {
	return assetSerializer[T]{inline: inline}
}

func (assetSerializer[T]) describesSite() {}

func (s assetSerializer[T]) Serialize(v T, ctx *SerializationContext) (*value.Value, bool) {
	if ctx.flag(FlagAssetReferencing) {
		if p := v.AssetPath(); p != "" {
			return value.NewString(p), true
		}
	}
	return Serialize(ctx, s.inline, v, nil)
}

func (s assetSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if data.Kind() != value.String || !ctx.flag(FlagAssetReferencing) {
		return Deserialize(ctx, s.inline, data, out, nil)
	}
	path := data.Str()
	if ctx.Assets == nil {
		ctx.Errors.AddCode(CodeAsset, "No asset loader is configured to load `%s`", path)
		return false
	}
	loaded, err := ctx.Assets.LoadAsset(path)
	if err != nil {
		ctx.Errors.AddCode(CodeAsset, "Unable to load asset `%s`: %v", path, err)
		return false
	}
	switch a := loaded.(type) {
	case T:
		*out = a
	case *T:
		if a == nil {
			ctx.Errors.AddCode(CodeAsset, "Asset `%s` was not found", path)
			return false
		}
		*out = *a
	default:
		ctx.Errors.AddCode(CodeAsset, "Asset `%s` is a %T, not a %s", path, loaded, typeName[T]())
		return false
	}
	return true
}

func (s assetSerializer[T]) Describe(ctx *SerializationContext, d *Description) bool {
	inline, ok := Describe(ctx, s.inline, nil)
	if !ok {
		return false
	}
	if !ctx.flag(FlagAssetReferencing) {
		d.adopt(inline)
		return true
	}
	path := NewDescription()
	path.AsString()
	path.Document("Path to a " + typeName[T]() + " asset")
	d.Union(path, inline)
	return true
}
