package vulfield

import (
	"fmt"
	"math"
	"strings"

	"github.com/vaeryn-uk/vulfield/value"
)

// SerializerProvider lets a type supply its own serializer. Either T or *T
// may implement it.
type SerializerProvider[T any] interface {
	VulSerializer() Serializer[T]
}

// FieldSetProvider is implemented by *T for types declared as a Field Set.
type FieldSetProvider interface {
	VulFieldSet() *FieldSet
}

// FieldProvider is implemented by *T for types that serialize as one field.
type FieldProvider interface {
	VulField() Field
}

// Enumerable is implemented by enum types: String names a value and
// VulEnumValues lists every value.
type Enumerable[T any] interface {
	fmt.Stringer
	VulEnumValues() []T
}

// For selects the serializer for T, in order: a provided serializer, a Field
// Set, a single Field, an enum, a built-in scalar or container, and finally
// the registered polymorphic base when T is an interface. Other types get a
// serializer that reports an error on use.
//
// Pointer types are not resolved automatically; use Ptr.
func For[T any]() Serializer[T] {
	var zero T
	if p, ok := any(zero).(SerializerProvider[T]); ok {
		return p.VulSerializer()
	}
	if p, ok := any(&zero).(SerializerProvider[T]); ok {
		return p.VulSerializer()
	}
	if _, ok := any(&zero).(FieldSetProvider); ok {
		return fieldSetSerializer[T]{}
	}
	if _, ok := any(&zero).(FieldProvider); ok {
		return fieldSerializer[T]{}
	}
	if _, ok := any(zero).(Enumerable[T]); ok {
		return enumSerializer[T]{values: func() []T { return any(zero).(Enumerable[T]).VulEnumValues() }}
	}
	if s, ok := builtin[T](); ok {
		return s
	}
	if any(zero) == nil {
		return polySerializer[T]{}
	}
	return unsupported[T]{}
}

func builtin[T any]() (Serializer[T], bool) {
	var zero T
	var s any
	switch any(&zero).(type) {
	case *bool:
		s = Bool[bool]()
	case *string:
		s = String[string]()
	case *int:
		s = Int[int]()
	case *int8:
		s = Int[int8]()
	case *int16:
		s = Int[int16]()
	case *int32:
		s = Int[int32]()
	case *int64:
		s = Int[int64]()
	case *uint:
		s = Uint[uint]()
	case *uint8:
		s = Uint[uint8]()
	case *uint16:
		s = Uint[uint16]()
	case *uint32:
		s = Uint[uint32]()
	case *uint64:
		s = Uint[uint64]()
	case *float32:
		s = Float[float32]()
	case *float64:
		s = Float[float64]()
	case **value.Value:
		s = Raw()
	case *[]string:
		s = SliceOf(String[string]())
	case *[]int:
		s = SliceOf(Int[int]())
	case *[]int64:
		s = SliceOf(Int[int64]())
	case *[]float32:
		s = SliceOf(Float[float32]())
	case *[]float64:
		s = SliceOf(Float[float64]())
	case *[]bool:
		s = SliceOf(Bool[bool]())
	case *map[string]string:
		s = MapOf(String[string](), String[string]())
	case *map[string]int:
		s = MapOf(String[string](), Int[int]())
	case *map[string]float64:
		s = MapOf(String[string](), Float[float64]())
	case *map[string]bool:
		s = MapOf(String[string](), Bool[bool]())
	default:
		return nil, false
	}
	return s.(Serializer[T]), true
}

type unsupported[T any] struct{}

func (unsupported[T]) Serialize(_ T, ctx *SerializationContext) (*value.Value, bool) {
	ctx.Errors.AddCode(CodeUndescribable, "No serializer is available for %s", typeName[T]())
	return nil, false
}

func (unsupported[T]) Deserialize(_ *value.Value, _ *T, ctx *DeserializationContext) bool {
	ctx.Errors.AddCode(CodeUndescribable, "No serializer is available for %s", typeName[T]())
	return false
}

// Describe leaves d empty; Describe reports the type as undescribable.
func (unsupported[T]) Describe(*SerializationContext, *Description) bool { return true }

type boolSerializer[T ~bool] struct{}

func Bool[T ~bool]() Serializer[T] { return boolSerializer[T]{} }

func (boolSerializer[T]) Serialize(v T, _ *SerializationContext) (*value.Value, bool) {
	return value.NewBool(bool(v)), true
}

func (boolSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Bool) {
		return false
	}
	*out = T(data.Bool())
	return true
}

func (boolSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	d.AsBoolean()
	return true
}

type stringSerializer[T ~string] struct{}

func String[T ~string]() Serializer[T] { return stringSerializer[T]{} }

func (stringSerializer[T]) Serialize(v T, _ *SerializationContext) (*value.Value, bool) {
	return value.NewString(string(v)), true
}

func (stringSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.String) {
		return false
	}
	*out = T(data.Str())
	return true
}

func (stringSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	d.AsString()
	return true
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type intSerializer[T signed] struct{}

func Int[T signed]() Serializer[T] { return intSerializer[T]{} }

func (intSerializer[T]) Serialize(v T, _ *SerializationContext) (*value.Value, bool) {
	return value.NewInt(int64(v)), true
}

func (intSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Number) {
		return false
	}
	i, err := data.Int()
	if err != nil || int64(T(i)) != i {
		ctx.Errors.AddCode(CodeInvalidType, "Number %s is not a valid %s", data.Literal(), typeName[T]())
		return false
	}
	*out = T(i)
	return true
}

func (intSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	d.AsNumber()
	return true
}

type uintSerializer[T unsigned] struct{}

func Uint[T unsigned]() Serializer[T] { return uintSerializer[T]{} }

func (uintSerializer[T]) Serialize(v T, _ *SerializationContext) (*value.Value, bool) {
	return value.NewUint(uint64(v)), true
}

func (uintSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Number) {
		return false
	}
	u, err := data.Uint()
	if err != nil || uint64(T(u)) != u {
		ctx.Errors.AddCode(CodeInvalidType, "Number %s is not a valid %s", data.Literal(), typeName[T]())
		return false
	}
	*out = T(u)
	return true
}

func (uintSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	d.AsNumber()
	return true
}

type floatSerializer[T ~float32 | ~float64] struct{}

func Float[T ~float32 | ~float64]() Serializer[T] { return floatSerializer[T]{} }

// bits reports 32 for float32-based types, so 1.2 renders as 1.2 rather than
// its widened float64 digits.
func (floatSerializer[T]) bits() int {
	tenth := 0.1
	if float64(T(tenth)) == float64(float32(tenth)) {
		return 32
	}
	return 64
}

func (s floatSerializer[T]) Serialize(v T, ctx *SerializationContext) (*value.Value, bool) {
	f := float64(v)
	if ctx.Precision > 0 {
		scale := math.Pow10(ctx.Precision)
		f = math.Round(f*scale) / scale
		if s.bits() == 32 {
			f = float64(float32(f))
		}
	}
	return value.NewFloat(f, s.bits()), true
}

func (floatSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Number) {
		return false
	}
	f, err := data.Float()
	if err != nil {
		ctx.Errors.AddCode(CodeInvalidType, "Number %s is not a valid %s", data.Literal(), typeName[T]())
		return false
	}
	*out = T(f)
	return true
}

func (floatSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	d.AsNumber()
	return true
}

type rawSerializer struct{}

// Raw passes value trees through unchanged and describes them as anything.
func Raw() Serializer[*value.Value] { return rawSerializer{} }

func (rawSerializer) Serialize(v *value.Value, _ *SerializationContext) (*value.Value, bool) {
	if v == nil {
		return value.NewNull(), true
	}
	return v, true
}

func (rawSerializer) Deserialize(data *value.Value, out **value.Value, _ *DeserializationContext) bool {
	*out = data
	return true
}

func (rawSerializer) Describe(_ *SerializationContext, d *Description) bool {
	d.Any()
	return true
}

type enumSerializer[T any] struct {
	values func() []T
}

// EnumOf serializes T as the String() of one of values.
func EnumOf[T fmt.Stringer](values ...T) Serializer[T] {
	return enumSerializer[T]{values: func() []T { return values }}
}

func (enumSerializer[T]) name(v T) string { return any(v).(fmt.Stringer).String() }

func (s enumSerializer[T]) Serialize(v T, _ *SerializationContext) (*value.Value, bool) {
	return value.NewString(s.name(v)), true
}

func (s enumSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.String) {
		return false
	}
	names := make([]string, 0)
	for _, v := range s.values() {
		n := s.name(v)
		if n == data.Str() {
			*out = v
			return true
		}
		names = append(names, n)
	}
	ctx.Errors.AddCode(CodeInvalidEnum, "`%s` is not a valid %s, expected one of %s",
		data.Str(), typeName[T](), strings.Join(names, ", "))
	return false
}

func (s enumSerializer[T]) Describe(_ *SerializationContext, d *Description) bool {
	for _, v := range s.values() {
		d.Enum(s.name(v))
	}
	return true
}
