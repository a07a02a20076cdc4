package vulfield

import "github.com/vaeryn-uk/vulfield/value"

type polySerializer[B any] struct {
	reg   *Registry
	shape Describer
}

// Poly serializes the abstract type B through its registered subtypes,
// selected by the discriminator property when deserializing.
func Poly[B any]() Serializer[B] { return polySerializer[B]{} }

// bindRegistry pins a serializer obtained from For or Poly to the registry
// of the context using it.
func (s polySerializer[B]) bindRegistry(r *Registry) any {
	if s.reg != nil {
		return s
	}
	return polySerializer[B]{reg: r, shape: s.shape}
}

func (s polySerializer[B]) base(reg *Registry, errs *Errors) *TypeEntry {
	if s.reg != nil {
		reg = s.reg
	}
	e := Lookup[B](reg)
	if e == nil || !e.abstract {
		if errs != nil {
			errs.AddCode(CodeUnregistered, "%s is not a registered abstract type", typeName[B]())
		}
		return nil
	}
	return e
}

func (s polySerializer[B]) subtypeOf(reg *Registry, base *TypeEntry, v B) *TypeEntry {
	for _, e := range reg.Subtypes(base.Name) {
		if e.owns(v) {
			return e
		}
	}
	return nil
}

func (s polySerializer[B]) Serialize(v B, ctx *SerializationContext) (*value.Value, bool) {
	if any(v) == nil {
		return value.NewNull(), true
	}
	base := s.base(ctx.registry(), &ctx.Errors)
	if base == nil {
		return nil, false
	}
	sub := s.subtypeOf(ctx.registry(), base, v)
	if sub == nil {
		ctx.Errors.AddCode(CodeUnregistered, "%T is not a registered subtype of %s", v, base.Name)
		return nil, false
	}
	out, ok := sub.encodeDirect(v, ctx)
	if !ok {
		return nil, false
	}
	if m := out.Map(); m != nil {
		m.Set(base.Discriminator, value.NewString(sub.DiscriminatorValue()))
	}
	return out, true
}

func (s polySerializer[B]) Deserialize(data *value.Value, out *B, ctx *DeserializationContext) bool {
	if data.Kind() == value.Null {
		var zero B
		*out = zero
		return true
	}
	base := s.base(ctx.registry(), &ctx.Errors)
	if base == nil {
		return false
	}
	disc, ok := ctx.Errors.RequireProperty(data, base.Discriminator, value.String)
	if !ok {
		return false
	}
	for _, sub := range ctx.registry().Subtypes(base.Name) {
		if sub.DiscriminatorValue() != disc.Str() {
			continue
		}
		target := sub.alloc()
		*out = target.(B)
		return sub.decodeInto(data, target, ctx)
	}
	ctx.Errors.AddCode(CodeDiscriminatorUnknown, "Unknown %s `%s` for %s", base.Discriminator, disc.Str(), base.Name)
	return false
}

func (s polySerializer[B]) Describe(ctx *SerializationContext, d *Description) bool {
	base := s.base(ctx.registry(), &ctx.Errors)
	if base == nil {
		return false
	}
	shape := s.shape
	if shape == nil {
		shape = base.shape
	}
	if shape != nil && !shape.Describe(ctx, d) {
		return false
	}
	d.setKind(value.Object)

	var subs []*Description
	for _, sub := range ctx.registry().Subtypes(base.Name) {
		site, ok := sub.describe(ctx)
		if !ok {
			return false
		}
		subs = append(subs, site)
	}
	if len(subs) > 0 {
		d.subtypes(subs)
	}
	return true
}

func (s polySerializer[B]) SupportsRef() bool {
	reg := orDefault(s.reg)
	base := s.base(reg, nil)
	if base == nil {
		return false
	}
	for _, sub := range reg.Subtypes(base.Name) {
		if sub.supportsRef() {
			return true
		}
	}
	return false
}

func (s polySerializer[B]) Resolve(v B) (*value.Value, bool) {
	if any(v) == nil {
		return nil, false
	}
	reg := orDefault(s.reg)
	base := s.base(reg, nil)
	if base == nil {
		return nil, false
	}
	sub := s.subtypeOf(reg, base, v)
	if sub == nil || !sub.supportsRef() {
		return nil, false
	}
	return sub.resolveRef(v)
}
