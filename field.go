package vulfield

import "github.com/vaeryn-uk/vulfield/value"

// Field binds one memory location to its serializer. A Field holds a
// pointer into caller data and must not outlive the call that built it.
type Field struct {
	readOnly bool

	serialize   func(ctx *SerializationContext, id *PathItem) (*value.Value, bool)
	deserialize func(ctx *DeserializationContext, data *value.Value, id *PathItem) bool
	describe    func(ctx *SerializationContext, id *PathItem) (*Description, bool)
}

// Create binds ptr using For[T]().
func Create[T any](ptr *T) Field { return CreateWith(ptr, For[T]()) }

// CreateWith binds ptr using s.
func CreateWith[T any](ptr *T, s Serializer[T]) Field {
	return Field{
		serialize: func(ctx *SerializationContext, id *PathItem) (*value.Value, bool) {
			return Serialize(ctx, s, *ptr, id)
		},
		deserialize: func(ctx *DeserializationContext, data *value.Value, id *PathItem) bool {
			return Deserialize(ctx, s, data, ptr, id)
		},
		describe: func(ctx *SerializationContext, id *PathItem) (*Description, bool) {
			return Describe(ctx, s, id)
		},
	}
}

// CreateSlice binds a slice whose elements For[V]() serializes.
func CreateSlice[V any](ptr *[]V) Field { return CreateWith(ptr, SliceOf(For[V]())) }

// CreateMap binds a string-keyed map whose values For[V]() serializes.
func CreateMap[V any](ptr *map[string]V) Field {
	return CreateWith(ptr, MapOf(String[string](), For[V]()))
}

// CreateReadOnly binds ptr for output only. Field Sets skip it when
// deserializing.
func CreateReadOnly[T any](ptr *T) Field { return CreateReadOnlyWith(ptr, For[T]()) }

func CreateReadOnlyWith[T any](ptr *T, s Serializer[T]) Field {
	f := CreateWith(ptr, s)
	f.readOnly = true
	return f
}

func (f Field) IsReadOnly() bool { return f.readOnly }

func (f Field) Serialize(ctx *SerializationContext) (*value.Value, bool) {
	return f.serialize(ctx, nil)
}

// Deserialize writes data into the bound location. Read-only fields fail.
func (f Field) Deserialize(data *value.Value, ctx *DeserializationContext) bool {
	if f.readOnly {
		ctx.Errors.AddCode(CodeReadOnly, "Cannot deserialize a read-only field")
		return false
	}
	return f.deserialize(ctx, data, nil)
}

func (f Field) Describe(ctx *SerializationContext) (*Description, bool) {
	return f.describe(ctx, nil)
}

// SerializeJSON serializes the field and encodes the result as JSON text.
func (f Field) SerializeJSON(ctx *SerializationContext) ([]byte, error) {
	return serializeJSON(ctx, f.Serialize)
}

// DeserializeJSON parses data as JSON and deserializes it into the field.
func (f Field) DeserializeJSON(data []byte, ctx *DeserializationContext) error {
	return deserializeJSON(data, ctx, f.Deserialize)
}

func serializeJSON(ctx *SerializationContext, fn func(*SerializationContext) (*value.Value, bool)) ([]byte, error) {
	v, ok := fn(ctx)
	if !ok {
		return nil, ctx.Errors.Err()
	}
	return value.Marshal(v)
}

func deserializeJSON(data []byte, ctx *DeserializationContext, fn func(*value.Value, *DeserializationContext) bool) error {
	v, err := value.Parse(data)
	if err != nil {
		ctx.Errors.AddCode(CodeParseError, "%v", err)
		return ctx.Errors.Err()
	}
	if !fn(v, ctx) {
		return ctx.Errors.Err()
	}
	return nil
}

type fieldSerializer[T any] struct{}

// field builds the single Field for a value of T, whose pointer implements
// FieldProvider.
func (fieldSerializer[T]) field(v *T) Field { return any(v).(FieldProvider).VulField() }

func (s fieldSerializer[T]) Serialize(v T, ctx *SerializationContext) (*value.Value, bool) {
	return s.field(&v).serialize(ctx, nil)
}

func (s fieldSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	return s.field(out).deserialize(ctx, data, nil)
}

func (s fieldSerializer[T]) Describe(ctx *SerializationContext, d *Description) bool {
	var zero T
	inner, ok := s.field(&zero).describe(ctx, nil)
	if !ok {
		return false
	}
	d.adopt(inner)
	return true
}
