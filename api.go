package vulfield

import (
	"fmt"

	"github.com/vaeryn-uk/vulfield/jsonschema"
	"github.com/vaeryn-uk/vulfield/value"
)

// The helpers below run one call in a fresh context built from the last of
// opts, using For[T]() and the default registry. Use the contexts directly
// for anything else.

func lastOptions(opts []Options) *Options {
	if len(opts) == 0 {
		return &Options{}
	}
	return &opts[len(opts)-1]
}

// ToValue serializes v into a value tree.
func ToValue[T any](v T, opts ...Options) (*value.Value, error) {
	ctx := NewSerializationContext()
	if err := lastOptions(opts).ApplySerialization(ctx); err != nil {
		return nil, err
	}
	out, ok := Serialize(ctx, For[T](), v, nil)
	if !ok {
		return nil, ctx.Errors.Err()
	}
	return out, nil
}

// Marshal serializes v as compact JSON text.
func Marshal[T any](v T, opts ...Options) ([]byte, error) {
	tree, err := ToValue(v, opts...)
	if err != nil {
		return nil, err
	}
	return value.Marshal(tree)
}

// MarshalYAML serializes v as YAML text.
func MarshalYAML[T any](v T, opts ...Options) ([]byte, error) {
	tree, err := ToValue(v, opts...)
	if err != nil {
		return nil, err
	}
	return value.MarshalYAML(tree)
}

// ReadFrom deserializes the document in src into out.
func ReadFrom[T any](src Source, out *T, opts ...Options) error {
	ctx := NewDeserializationContext()
	if err := lastOptions(opts).ApplyDeserialization(ctx); err != nil {
		return err
	}
	tree, err := src.Value()
	if err != nil {
		ctx.Errors.AddCode(CodeParseError, "invalid %s: %v", src.Format(), err)
		return ctx.Errors.Err()
	}
	if !Deserialize(ctx, For[T](), tree, out, nil) {
		return ctx.Errors.Err()
	}
	return nil
}

// Unmarshal deserializes JSON text into out.
func Unmarshal[T any](data []byte, out *T, opts ...Options) error {
	return ReadFrom(JSONBytes(data), out, opts...)
}

// DescribeType describes T.
func DescribeType[T any](r *Registry) (*Description, error) {
	ctx := NewSerializationContext()
	ctx.Registry = r
	d, ok := Describe(ctx, For[T](), nil)
	if !ok {
		return nil, ctx.Errors.Err()
	}
	return d, nil
}

// SchemaOf renders T's JSON Schema.
func SchemaOf[T any](r *Registry, extract bool) (*jsonschema.Schema, error) {
	d, err := DescribeType[T](r)
	if err != nil {
		return nil, err
	}
	return d.JSONSchema(extract), nil
}

// Describe describes the named type.
func (r *Registry) Describe(name string) (*Description, error) {
	e, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("vulfield: unknown type %q", name)
	}
	ctx := NewSerializationContext()
	ctx.Registry = r
	d, ok := e.Describe(ctx)
	if !ok {
		return nil, ctx.Errors.Err()
	}
	return d, nil
}

// TypeScript renders declarations for every registered type.
func (r *Registry) TypeScript(opts TypeScriptOptions) (string, error) {
	ctx := NewSerializationContext()
	ctx.Registry = r
	var roots []*Description
	for _, e := range r.Entries() {
		d, ok := e.Describe(ctx)
		if !ok {
			return "", ctx.Errors.Err()
		}
		roots = append(roots, d)
	}
	return TypeScriptDefinitions(opts, roots...), nil
}
