package vulfield

import (
	"sort"

	"github.com/vaeryn-uk/vulfield/value"
)

type sliceSerializer[V any] struct {
	item Serializer[V]
}

// SliceOf serializes []V as an array.
func SliceOf[V any](item Serializer[V]) Serializer[[]V] { return sliceSerializer[V]{item: item} }

func (s sliceSerializer[V]) Serialize(v []V, ctx *SerializationContext) (*value.Value, bool) {
	arr := value.NewArray()
	for i, it := range v {
		id := Index(i)
		iv, ok := Serialize(ctx, s.item, it, &id)
		if !ok {
			return nil, false
		}
		arr.Append(iv)
	}
	return arr, true
}

func (s sliceSerializer[V]) Deserialize(data *value.Value, out *[]V, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Array) {
		return false
	}
	items := data.Items()
	res := make([]V, len(items))
	for i, it := range items {
		id := Index(i)
		if !Deserialize(ctx, s.item, it, &res[i], &id) {
			return false
		}
	}
	*out = res
	return true
}

func (s sliceSerializer[V]) Describe(ctx *SerializationContext, d *Description) bool {
	items, ok := Describe(ctx, s.item, nil)
	if !ok {
		return false
	}
	d.Array(items)
	return true
}

type mapSerializer[K comparable, V any] struct {
	key Serializer[K]
	val Serializer[V]
}

// MapOf serializes map[K]V as an object. Keys must serialize to strings;
// members are written in key order.
func MapOf[K comparable, V any](key Serializer[K], val Serializer[V]) Serializer[map[K]V] {
	return mapSerializer[K, V]{key: key, val: val}
}

func (s mapSerializer[K, V]) Serialize(m map[K]V, ctx *SerializationContext) (*value.Value, bool) {
	type member struct {
		key string
		val V
	}
	members := make([]member, 0, len(m))
	for k, v := range m {
		kv, ok := s.key.Serialize(k, ctx)
		if !ok {
			return nil, false
		}
		if kv.Kind() != value.String {
			ctx.Errors.AddCode(CodeMapKey, "Map keys must serialize to a JSON String, but got %s", kv.Kind())
			return nil, false
		}
		members = append(members, member{key: kv.Str(), val: v})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].key < members[j].key })

	obj := value.NewMap()
	for _, mb := range members {
		id := Prop(mb.key)
		vv, ok := Serialize(ctx, s.val, mb.val, &id)
		if !ok {
			return nil, false
		}
		obj.Set(mb.key, vv)
	}
	return value.FromMap(obj), true
}

func (s mapSerializer[K, V]) Deserialize(data *value.Value, out *map[K]V, ctx *DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.Object) {
		return false
	}
	res := make(map[K]V, data.Map().Len())
	ok := true
	data.Map().Range(func(k string, member *value.Value) bool {
		id := Prop(k)
		ok = ctx.Errors.WithIdentifier(&id, func() bool {
			var key K
			if !s.key.Deserialize(value.NewString(k), &key, ctx) {
				return false
			}
			v := new(V)
			if !Deserialize(ctx, s.val, member, v, nil) {
				return false
			}
			res[key] = *v
			return true
		})
		return ok
	})
	if !ok {
		return false
	}
	*out = res
	return true
}

func (s mapSerializer[K, V]) Describe(ctx *SerializationContext, d *Description) bool {
	keys, ok := Describe(ctx, s.key, nil)
	if !ok {
		return false
	}
	vals, ok := Describe(ctx, s.val, nil)
	if !ok {
		return false
	}
	if !d.Map(keys, vals) {
		ctx.Errors.AddCode(CodeMapKey, "Map keys must be described as a JSON String")
		return false
	}
	return true
}

type ptrSerializer[V any] struct {
	inner Serializer[V]
	owned bool
}

// Ptr serializes *V with For[V](). nil is null.
func Ptr[V any]() Serializer[*V] { return PtrOf(For[V]()) }

// PtrOf serializes *V with inner. Deserializing always allocates a new V.
// References supported by inner carry over to the pointer, and resolved
// tokens share the pointer of the first occurrence.
func PtrOf[V any](inner Serializer[V]) Serializer[*V] { return ptrSerializer[V]{inner: inner} }

// Owned is PtrOf for values whose lifetime belongs to the deserialization
// context's Outer, which adopts every allocation.
func Owned[V any](inner Serializer[V]) Serializer[*V] {
	return ptrSerializer[V]{inner: inner, owned: true}
}

func (s ptrSerializer[V]) Serialize(p *V, ctx *SerializationContext) (*value.Value, bool) {
	if p == nil {
		return value.NewNull(), true
	}
	return s.inner.Serialize(*p, ctx)
}

func (s ptrSerializer[V]) Deserialize(data *value.Value, out **V, ctx *DeserializationContext) bool {
	if data.Kind() == value.Null || data.Kind() == value.None {
		*out = nil
		return true
	}
	if s.owned && ctx.Outer == nil {
		ctx.Errors.AddCode(CodeAllocation, "Cannot deserialize owned object without an Outer set")
		return false
	}
	p := new(V)
	*out = p
	if s.owned {
		ctx.Outer.Adopt(p)
	}
	return s.inner.Deserialize(data, p, ctx)
}

func (s ptrSerializer[V]) Describe(ctx *SerializationContext, d *Description) bool {
	inner, ok := Describe(ctx, s.inner, nil)
	if !ok {
		return false
	}
	d.Alias(inner)
	d.Nullable()
	return true
}

func (s ptrSerializer[V]) SupportsRef() bool {
	_, ok := refResolver(s.inner)
	return ok
}

func (s ptrSerializer[V]) Resolve(p *V) (*value.Value, bool) {
	rr, ok := refResolver(s.inner)
	if !ok || p == nil {
		return nil, false
	}
	return rr.Resolve(*p)
}

// Optional holds a value that may be absent. It serializes as null when
// unset and is never replaced by a reference token.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

func (o Optional[T]) Get() (T, bool) { return o.Value, o.Set }

// VulSerializer makes For[Optional[T]] resolve to OptionalOf(For[T]()).
func (Optional[T]) VulSerializer() Serializer[Optional[T]] { return OptionalOf(For[T]()) }

type optionalSerializer[V any] struct {
	inner Serializer[V]
}

func OptionalOf[V any](inner Serializer[V]) Serializer[Optional[V]] {
	return optionalSerializer[V]{inner: inner}
}

func (s optionalSerializer[V]) Serialize(o Optional[V], ctx *SerializationContext) (*value.Value, bool) {
	if !o.Set {
		return value.NewNull(), true
	}
	return Serialize(ctx, s.inner, o.Value, nil)
}

func (s optionalSerializer[V]) Deserialize(data *value.Value, out *Optional[V], ctx *DeserializationContext) bool {
	if data.Kind() == value.Null || data.Kind() == value.None {
		*out = Optional[V]{}
		return true
	}
	v := new(V)
	if !Deserialize(ctx, s.inner, data, v, nil) {
		return false
	}
	*out = Some(*v)
	return true
}

func (s optionalSerializer[V]) Describe(ctx *SerializationContext, d *Description) bool {
	inner, ok := Describe(ctx, s.inner, nil)
	if !ok {
		return false
	}
	d.Alias(inner)
	d.Nullable()
	return true
}
