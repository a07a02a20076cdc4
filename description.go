package vulfield

import "github.com/vaeryn-uk/vulfield/value"

type property struct {
	name     string
	desc     *Description
	required bool
}

// Description is a recursive schema node describing the shape of a value.
//
// A node either has a primitive kind or union alternatives, never both; the
// one exception is a registered base type, which is an object holding the
// shared properties plus a union over its subtypes. Misuse is logged and
// ignored.
//
// Descriptions of registered types are shared within a context. Each use
// site gets a thin alias node (see Alias) carrying its own nullability and
// reference capability.
type Description struct {
	kind       value.Kind
	props      []property
	items      *Description
	additional *Description
	union      []*Description
	enum       []string
	constant   *value.Value
	constOf    *Description
	nullable   bool
	canBeRef   bool
	anything   bool
	doc        string

	entry  *TypeEntry
	base   *Description
	target *Description
}

func NewDescription() *Description { return &Description{} }

func (d *Description) setKind(k value.Kind) bool {
	if len(d.union) > 0 && !(k == value.Object && d.entry != nil) {
		logger().Warn("vulfield: ignoring primitive type on a union description", "type", k.SchemaType())
		return false
	}
	if d.kind != value.None && d.kind != k {
		logger().Warn("vulfield: ignoring conflicting description type", "have", d.kind.SchemaType(), "want", k.SchemaType())
		return false
	}
	d.kind = k
	return true
}

// Prop adds or replaces a property, making d an object.
func (d *Description) Prop(name string, desc *Description, required bool) {
	if !d.setKind(value.Object) {
		return
	}
	for i := range d.props {
		if d.props[i].name == name {
			d.props[i] = property{name: name, desc: desc, required: required}
			return
		}
	}
	d.props = append(d.props, property{name: name, desc: desc, required: required})
}

// Property returns the named property's description, or nil.
func (d *Description) Property(name string) *Description {
	for _, p := range d.props {
		if p.name == name {
			return p.desc
		}
	}
	return nil
}

// Required reports whether the named property is required.
func (d *Description) Required(name string) bool {
	for _, p := range d.props {
		if p.name == name {
			return p.required
		}
	}
	return false
}

// Properties lists property names in declaration order.
func (d *Description) Properties() []string {
	out := make([]string, len(d.props))
	for i, p := range d.props {
		out[i] = p.name
	}
	return out
}

func (d *Description) AsString()  { d.setKind(value.String) }
func (d *Description) AsNumber()  { d.setKind(value.Number) }
func (d *Description) AsBoolean() { d.setKind(value.Bool) }

// Array makes d an array of items.
func (d *Description) Array(items *Description) {
	if d.setKind(value.Array) {
		d.items = items
	}
}

// Map makes d an object with arbitrary string keys. keys must describe a
// string.
func (d *Description) Map(keys, values *Description) bool {
	if keys == nil {
		return false
	}
	if k, _, _ := keys.resolve(); k.kind != value.String {
		logger().Warn("vulfield: map keys must be described as strings")
		return false
	}
	if !d.setKind(value.Object) {
		return false
	}
	d.additional = values
	return true
}

// Enum adds a string literal to the enumeration, making d a string.
func (d *Description) Enum(item string) {
	if !d.setKind(value.String) {
		return
	}
	if !d.HasEnumValue(item) {
		d.enum = append(d.enum, item)
	}
}

func (d *Description) HasEnumValue(item string) bool {
	for _, e := range d.enum {
		if e == item {
			return true
		}
	}
	return false
}

// Const restricts d to a single scalar literal. of optionally names the
// description the literal belongs to, e.g. the enum of a discriminator.
func (d *Description) Const(v *value.Value, of *Description) bool {
	switch v.Kind() {
	case value.String, value.Number, value.Bool:
	default:
		logger().Warn("vulfield: const values must be a string, number or boolean", "kind", v.Kind().String())
		return false
	}
	d.constant = v
	d.constOf = of
	return true
}

func (d *Description) Nullable() { d.nullable = true }

// MaybeRef marks that occurrences may be a reference token instead.
func (d *Description) MaybeRef() { d.canBeRef = true }

// Any marks d as matching every value.
func (d *Description) Any() { d.anything = true }

// Document attaches a human-readable description.
func (d *Description) Document(doc string) { d.doc = doc }

// Alias turns d into a use site of target.
func (d *Description) Alias(target *Description) { d.target = target }

// adopt copies inner's shape into d, keeping d's own binding. Use sites of
// named types are linked instead.
func (d *Description) adopt(inner *Description) {
	if inner.target != nil || inner.entry != nil {
		d.Alias(inner)
		return
	}
	entry, doc := d.entry, d.doc
	*d = *inner
	d.entry = entry
	if d.doc == "" {
		d.doc = doc
	}
}

// Union sets the alternatives. When every alternative is equivalent, d
// becomes that single description instead.
func (d *Description) Union(alternatives ...*Description) {
	var unique []*Description
	for _, a := range alternatives {
		dup := false
		for _, u := range unique {
			if Equivalent(a, u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, a)
		}
	}
	if len(unique) == 1 {
		*d = *unique[0]
		return
	}
	if d.kind != value.None {
		logger().Warn("vulfield: ignoring union on a description with a primitive type", "type", d.kind.SchemaType())
		return
	}
	d.union = unique
}

// subtypes sets the union of a registered base type, which keeps its own
// object shape alongside.
func (d *Description) subtypes(alternatives []*Description) { d.union = alternatives }

// Valid reports whether d describes anything.
func (d *Description) Valid() bool {
	return d.kind != value.None || len(d.union) > 0 || d.entry != nil || d.constant != nil ||
		d.anything || d.target != nil
}

func (d *Description) Kind() value.Kind                   { return d.kind }
func (d *Description) IsNullable() bool                   { return d.nullable }
func (d *Description) CanBeRef() bool                     { return d.canBeRef }
func (d *Description) Items() *Description                { return d.items }
func (d *Description) AdditionalProperties() *Description { return d.additional }
func (d *Description) Alternatives() []*Description       { return d.union }
func (d *Description) EnumValues() []string               { return d.enum }
func (d *Description) ConstValue() *value.Value           { return d.constant }
func (d *Description) Target() *Description               { return d.target }
func (d *Description) Entry() *TypeEntry                  { return d.entry }

// TypeName is the registered name d is bound to, following aliases.
func (d *Description) TypeName() string {
	root, _, _ := d.resolve()
	if root.entry == nil {
		return ""
	}
	return root.entry.Name
}

// resolve follows alias targets, accumulating site flags.
func (d *Description) resolve() (root *Description, nullable, canBeRef bool) {
	root = d
	for root.target != nil {
		nullable = nullable || root.nullable
		canBeRef = canBeRef || root.canBeRef
		root = root.target
	}
	return root, nullable || root.nullable, canBeRef || root.canBeRef
}

// Equivalent compares two descriptions structurally. Bound descriptions of
// the same registered type without const restrictions compare equal without
// recursing, which keeps recursive types finite.
func Equivalent(a, b *Description) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, na, ca := a.resolve()
	rb, nb, cb := b.resolve()
	if na != nb || ca != cb {
		return false
	}
	if ra.entry != nil && ra.entry == rb.entry && ra.constant == nil && rb.constant == nil {
		return true
	}
	if ra.entry != rb.entry || ra.kind != rb.kind || ra.anything != rb.anything {
		return false
	}
	if !Equivalent(ra.items, rb.items) || !Equivalent(ra.additional, rb.additional) || !Equivalent(ra.constOf, rb.constOf) {
		return false
	}
	if len(ra.props) != len(rb.props) {
		return false
	}
	for _, p := range ra.props {
		other := rb.Property(p.name)
		if other == nil || rb.Required(p.name) != p.required || !Equivalent(p.desc, other) {
			return false
		}
	}
	if (ra.constant == nil) != (rb.constant == nil) || (ra.constant != nil && !value.Equal(ra.constant, rb.constant)) {
		return false
	}
	if len(ra.enum) != len(rb.enum) {
		return false
	}
	for i := range ra.enum {
		if ra.enum[i] != rb.enum[i] {
			return false
		}
	}
	if len(ra.union) != len(rb.union) {
		return false
	}
	for i := range ra.union {
		if !Equivalent(ra.union[i], rb.union[i]) {
			return false
		}
	}
	return true
}

// NamedTypes returns every bound description reachable from d, in discovery
// order, including the bases of subtypes.
func (d *Description) NamedTypes() []*Description {
	var out []*Description
	seen := map[*TypeEntry]bool{}
	visited := map[*Description]bool{}
	d.collect(&out, seen, visited)
	return out
}

func (d *Description) collect(out *[]*Description, seen map[*TypeEntry]bool, visited map[*Description]bool) {
	if d == nil || visited[d] {
		return
	}
	visited[d] = true
	if d.target != nil {
		d.target.collect(out, seen, visited)
		return
	}
	if d.entry != nil {
		if seen[d.entry] {
			return
		}
		seen[d.entry] = true
		*out = append(*out, d)
	}
	d.base.collect(out, seen, visited)
	for _, p := range d.props {
		p.desc.collect(out, seen, visited)
	}
	for _, u := range d.union {
		u.collect(out, seen, visited)
	}
	d.items.collect(out, seen, visited)
	d.additional.collect(out, seen, visited)
	d.constOf.collect(out, seen, visited)
}

// ContainsReference reports whether any reachable site may be a reference.
func (d *Description) ContainsReference() bool {
	found := false
	d.walkSites(map[*Description]bool{}, func(s *Description) {
		if s.canBeRef {
			found = true
		}
	})
	return found
}

func (d *Description) walkSites(visited map[*Description]bool, fn func(*Description)) {
	if d == nil || visited[d] {
		return
	}
	visited[d] = true
	fn(d)
	d.target.walkSites(visited, fn)
	d.base.walkSites(visited, fn)
	for _, p := range d.props {
		p.desc.walkSites(visited, fn)
	}
	for _, u := range d.union {
		u.walkSites(visited, fn)
	}
	d.items.walkSites(visited, fn)
	d.additional.walkSites(visited, fn)
}
