package vulfield

import (
	"fmt"
	"strings"

	"github.com/vaeryn-uk/vulfield/value"
)

// Serializer converts T to and from the value model and describes its shape.
// Implementations report failures through the context and return false; they
// never panic on bad input.
//
// Composite serializers must recurse through the package-level Serialize,
// Deserialize and Describe functions so paths, depth limits and references
// are handled uniformly.
type Serializer[T any] interface {
	Serialize(v T, ctx *SerializationContext) (*value.Value, bool)
	// Deserialize writes into out, replacing containers rather than merging.
	Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool
	Describe(ctx *SerializationContext, d *Description) bool
}

// RefResolver is implemented by serializers whose values can be replaced by
// a string token on repeat occurrences.
type RefResolver[T any] interface {
	SupportsRef() bool
	// Resolve returns the token for v, or false when v has none.
	Resolve(v T) (*value.Value, bool)
}

// siteSerializer is implemented by wrappers around a serializer of the same
// type. They describe a use site, so registration of T does not apply.
type siteSerializer interface {
	describesSite()
}

type registryBound interface {
	bindRegistry(r *Registry) any
}

// bound returns s tied to r when s needs registry access outside a context.
func bound[T any](s Serializer[T], r *Registry) Serializer[T] {
	if b, ok := s.(registryBound); ok {
		if bs, ok := b.bindRegistry(r).(Serializer[T]); ok {
			return bs
		}
	}
	return s
}

func refResolver[T any](s Serializer[T]) (RefResolver[T], bool) {
	rr, ok := s.(RefResolver[T])
	if !ok || !rr.SupportsRef() {
		return nil, false
	}
	return rr, true
}

// token resolves v's reference token, enforcing that it is a string.
func token[T any](errs *Errors, rr RefResolver[T], v T) (string, bool, bool) {
	ref, has := rr.Resolve(v)
	if !has || ref == nil {
		return "", false, true
	}
	if ref.Kind() != value.String {
		errs.AddCode(CodeRefUnresolved, "Resolved a reference that cannot be represented as a JSON string")
		return "", false, false
	}
	if ref.Str() == "" {
		return "", false, true
	}
	return ref.Str(), true, true
}

// Serialize serializes v with s, under id when non-nil. It applies
// referencing and reference extraction.
func Serialize[T any](ctx *SerializationContext, s Serializer[T], v T, id *PathItem) (*value.Value, bool) {
	s = bound(s, ctx.registry())
	var out *value.Value
	ok := ctx.Errors.WithIdentifier(id, func() bool {
		outermost := false
		if ctx.ExtractReferences && ctx.Memory.Refs == nil {
			outermost = true
			ctx.Memory.Refs = value.NewMap()
		}

		var tok string
		var hasRef bool
		if rr, ok := refResolver(s); ok && ctx.flag(FlagReferencing) {
			var valid bool
			if tok, hasRef, valid = token(&ctx.Errors, rr, v); !valid {
				return false
			}
			if hasRef {
				owner := refOwner(v)
				if first := ctx.Memory.claim(tok, owner); first != owner {
					ctx.Errors.AddCode(CodeRefUnresolved, "Reference `%s` is already used by a %s, not a %s", tok, first, owner)
					return false
				}
				if _, seen := ctx.Memory.Lookup(tok); seen {
					out = value.NewString(tok)
					return true
				}
				// Reserve the token first so cycles back to v collapse to it.
				ctx.Memory.remember(tok, nil)
				if ctx.Memory.Refs != nil {
					ctx.Memory.Refs.Set(tok, value.NewNull())
				}
			}
		}

		res, ok := s.Serialize(v, ctx)
		if !ok {
			return false
		}
		if hasRef {
			ctx.Memory.remember(tok, res)
			if ctx.Memory.Refs != nil {
				ctx.Memory.Refs.Set(tok, res)
				res = value.NewString(tok)
			}
		}
		if outermost {
			env := value.NewMap()
			env.Set("refs", value.FromMap(ctx.Memory.Refs))
			env.Set("data", res)
			res = value.FromMap(env)
		}
		out = res
		return true
	})
	return out, ok
}

// Deserialize reads data into out with s, under id when non-nil. Reference
// tokens are resolved against values materialised earlier in the same call.
func Deserialize[T any](ctx *DeserializationContext, s Serializer[T], data *value.Value, out *T, id *PathItem) bool {
	s = bound(s, ctx.registry())
	return ctx.Errors.WithIdentifier(id, func() bool {
		if ctx.ExtractedReferences && ctx.Memory.Refs == nil {
			refs, ok := ctx.Errors.RequireProperty(data, "refs", value.Object)
			if !ok {
				return false
			}
			inner, ok := ctx.Errors.RequireProperty(data, "data")
			if !ok {
				return false
			}
			ctx.Memory.Refs = refs.Map()
			data = inner
		}

		rr, supports := refResolver(s)
		supports = supports && ctx.flag(FlagReferencing)
		register := func(tok string) { ctx.Memory.remember(tok, out) }

		if supports && data.Kind() == value.String {
			tok := data.Str()
			if stored, ok := ctx.Memory.Lookup(tok); ok && stored != nil {
				return assignRef(&ctx.Errors, out, stored, tok)
			}
			full, ok := ctx.Memory.Refs.Get(tok)
			if !ok {
				ctx.Errors.AddCode(CodeRefUnresolved, "Unable to resolve reference `%s`", tok)
				return false
			}
			register(tok)
			data = full
		}

		var frame func(string)
		if supports {
			frame = register
		}
		ctx.frames = append(ctx.frames, frame)
		ok := s.Deserialize(data, out, ctx)
		ctx.frames = ctx.frames[:len(ctx.frames)-1]
		if !ok {
			return false
		}

		if supports {
			tok, has, valid := token(&ctx.Errors, rr, *out)
			if !valid {
				return false
			}
			if has {
				register(tok)
			}
		}
		return true
	})
}

// assignRef copies a remembered instance into out. Pointers keep their
// identity; values are copied.
func assignRef[T any](errs *Errors, out *T, stored any, tok string) bool {
	switch p := stored.(type) {
	case *T:
		*out = *p
		return true
	case T:
		*out = p
		return true
	case **T:
		if *p != nil {
			*out = **p
			return true
		}
	}
	errs.AddCode(CodeRefUnresolved, "Reference `%s` resolves to %T, which is not a %s", tok, stored, typeName[T]())
	return false
}

// Describe describes T with s, under id when non-nil. Registered types are
// described once per context and shared; every call returns a fresh use
// site.
func Describe[T any](ctx *SerializationContext, s Serializer[T], id *PathItem) (*Description, bool) {
	if ctx.descriptions == nil {
		ctx.descriptions = map[string]*Description{}
	}
	s = bound(s, ctx.registry())
	var out *Description
	ok := ctx.Errors.WithIdentifier(id, func() bool {
		_, supportsRef := refResolver(s)
		supportsRef = supportsRef && ctx.flag(FlagReferencing)

		entry := Lookup[T](ctx.registry())
		if _, site := s.(siteSerializer); site {
			entry = nil
		}
		if entry == nil {
			d := NewDescription()
			if !s.Describe(ctx, d) {
				return false
			}
			if !d.Valid() {
				ctx.Errors.AddCode(CodeUndescribable, "Describe() did not produce a valid description. type info: %s", typeName[T]())
				return false
			}
			if supportsRef {
				d.MaybeRef()
			}
			out = d
			return true
		}

		shared, known := ctx.descriptions[entry.Name]
		if !known {
			shared = &Description{entry: entry}
			ctx.descriptions[entry.Name] = shared
			if !s.Describe(ctx, shared) {
				return false
			}
			if !shared.hasShape() {
				ctx.Errors.AddCode(CodeUndescribable, "Describe() did not produce a valid description. type info: %s", entry.Name)
				return false
			}
			if entry.Base != nil && !bindSubtype(ctx, entry, shared) {
				return false
			}
		}
		out = &Description{target: shared}
		if supportsRef {
			out.MaybeRef()
		}
		return true
	})
	return out, ok
}

func (d *Description) hasShape() bool {
	return d.kind != value.None || len(d.union) > 0 || d.constant != nil || d.anything || d.target != nil
}

// bindSubtype links a subtype to its base and pins the discriminator
// property to the subtype's literal.
func bindSubtype(ctx *SerializationContext, entry *TypeEntry, shared *Description) bool {
	site, ok := entry.Base.describe(ctx)
	if !ok {
		return false
	}
	base, _, _ := site.resolve()
	shared.base = base
	if disc := entry.Base.Discriminator; disc != "" {
		c := NewDescription()
		c.Const(value.NewString(entry.DiscriminatorValue()), base.Property(disc))
		shared.Prop(disc, c, true)
	}
	return true
}

// refOwner names the dynamic type behind v, ignoring pointer indirection,
// so *Weapon and Weapon sites share tokens.
func refOwner(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}

func typeName[T any]() string {
	return strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*")
}
