package vulfield

import "github.com/vaeryn-uk/vulfield/value"

// Entry is one named member of a FieldSet.
type Entry struct {
	set  *FieldSet
	name string

	field   *Field // nil for virtual entries
	compute func(ctx *SerializationContext, id *PathItem) (*value.Value, bool)
	desc    func(ctx *SerializationContext, id *PathItem) (*Description, bool)

	omitIfEmpty bool
}

func (e *Entry) Name() string { return e.name }

// Ref designates this entry's serialized value as the set's reference
// token. A set has at most one; the latest call wins.
func (e *Entry) Ref() *Entry {
	if e.set.ref != nil && e.set.ref != e {
		logger().Warn("vulfield: replacing reference field", "old", e.set.ref.name, "new", e.name)
	}
	e.set.ref = e
	return e
}

// EvenIfEmpty keeps the entry in serialized output when its value is empty.
func (e *Entry) EvenIfEmpty(keep bool) *Entry {
	e.omitIfEmpty = !keep
	return e
}

func (e *Entry) serialize(ctx *SerializationContext, id *PathItem) (*value.Value, bool) {
	if e.field != nil {
		return e.field.serialize(ctx, id)
	}
	return e.compute(ctx, id)
}

func (e *Entry) describe(ctx *SerializationContext, id *PathItem) (*Description, bool) {
	if e.field != nil {
		return e.field.describe(ctx, id)
	}
	return e.desc(ctx, id)
}

// writable reports whether Deserialize should populate the entry.
func (e *Entry) writable() bool { return e.field != nil && !e.field.readOnly }

// FieldSet is the declared shape of one object: named entries in
// registration order, an optional validity predicate and an optional
// reference field. Sets are built fresh from a value for each call.
type FieldSet struct {
	entries []*Entry
	ref     *Entry
	valid   func() bool
}

func NewFieldSet() *FieldSet { return &FieldSet{} }

func (fs *FieldSet) put(e *Entry) *Entry {
	for i, cur := range fs.entries {
		if cur.name == e.name {
			if fs.ref == cur {
				fs.ref = e
			}
			fs.entries[i] = e
			return e
		}
	}
	fs.entries = append(fs.entries, e)
	return e
}

// Add registers f under name. Adding a name twice replaces the entry in
// place.
func (fs *FieldSet) Add(f Field, name string) *Entry {
	return fs.put(&Entry{set: fs, name: name, field: &f, omitIfEmpty: true})
}

// Virtual registers a computed, serialize-only entry.
func Virtual[T any](fs *FieldSet, name string, fn func() T) *Entry {
	return VirtualWith(fs, name, fn, For[T]())
}

func VirtualWith[T any](fs *FieldSet, name string, fn func() T, s Serializer[T]) *Entry {
	return fs.put(&Entry{
		set:  fs,
		name: name,
		compute: func(ctx *SerializationContext, id *PathItem) (*value.Value, bool) {
			return Serialize(ctx, s, fn(), id)
		},
		desc: func(ctx *SerializationContext, id *PathItem) (*Description, bool) {
			return Describe(ctx, s, id)
		},
		omitIfEmpty: true,
	})
}

// Names lists entry names in registration order.
func (fs *FieldSet) Names() []string {
	out := make([]string, len(fs.entries))
	for i, e := range fs.entries {
		out[i] = e.name
	}
	return out
}

// SetValidator installs the predicate deciding whether the set serializes
// as an object or as null.
func (fs *FieldSet) SetValidator(fn func() bool) { fs.valid = fn }

func (fs *FieldSet) IsValid() bool { return fs.valid == nil || fs.valid() }

// Serialize writes the entries as an object, skipping empty values of
// entries that omit them. An invalid set serializes as null.
func (fs *FieldSet) Serialize(ctx *SerializationContext) (*value.Value, bool) {
	if !fs.IsValid() {
		return value.NewNull(), true
	}
	obj := value.NewMap()
	for _, e := range fs.entries {
		id := Prop(e.name)
		v, ok := e.serialize(ctx, &id)
		if !ok {
			return nil, false
		}
		if e.omitIfEmpty && value.IsEmpty(v) {
			continue
		}
		obj.Set(e.name, v)
	}
	return value.FromMap(obj), true
}

// Deserialize populates writable entries from an object. Unknown members
// and members missing from data are ignored. The reference field is read
// first so members referring back to this value resolve to it. Sets with a
// validator accept null, the form of an invalid set, and leave it unchanged.
func (fs *FieldSet) Deserialize(data *value.Value, ctx *DeserializationContext) bool {
	if fs.valid != nil && data.Kind() == value.Null {
		return true
	}
	if !ctx.Errors.RequireType(data, value.Object) {
		return false
	}
	read := func(e *Entry) bool {
		member, ok := data.Get(e.name)
		if !ok || !e.writable() {
			return true
		}
		id := Prop(e.name)
		return e.field.deserialize(ctx, member, &id)
	}

	if fs.ref != nil {
		if !read(fs.ref) {
			return false
		}
		if tok, ok := fs.GetRef(); ok && tok.Kind() == value.String && tok.Str() != "" {
			ctx.announceRef(tok.Str())
		}
	}
	for _, e := range fs.entries {
		if e == fs.ref {
			continue
		}
		if !read(e) {
			return false
		}
	}
	return true
}

// Describe adds one property per entry to d. Entries that are never
// omitted are required.
func (fs *FieldSet) Describe(ctx *SerializationContext, d *Description) bool {
	d.setKind(value.Object)
	if fs.valid != nil {
		d.Nullable()
	}
	for _, e := range fs.entries {
		id := Prop(e.name)
		desc, ok := e.describe(ctx, &id)
		if !ok {
			return false
		}
		d.Prop(e.name, desc, !e.omitIfEmpty)
	}
	return true
}

// GetRef returns the serialized value of the reference field, or false
// when the set has none.
func (fs *FieldSet) GetRef() (*value.Value, bool) {
	if fs.ref == nil {
		return nil, false
	}
	ctx := NewSerializationContext()
	ctx.Flags.Set(FlagReferencing, false)
	v, ok := fs.ref.serialize(ctx, nil)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (fs *FieldSet) SerializeJSON(ctx *SerializationContext) ([]byte, error) {
	return serializeJSON(ctx, fs.Serialize)
}

func (fs *FieldSet) DeserializeJSON(data []byte, ctx *DeserializationContext) error {
	return deserializeJSON(data, ctx, fs.Deserialize)
}

// fieldSetSerializer serializes T through the set returned by *T's
// VulFieldSet.
type fieldSetSerializer[T any] struct{}

func (fieldSetSerializer[T]) set(v *T) *FieldSet { return any(v).(FieldSetProvider).VulFieldSet() }

func (s fieldSetSerializer[T]) Serialize(v T, ctx *SerializationContext) (*value.Value, bool) {
	out, ok := s.set(&v).Serialize(ctx)
	if !ok {
		return nil, false
	}
	if ctx.flag(FlagAnnotateTypes) {
		if e := Lookup[T](ctx.registry()); e != nil && out.Kind() == value.Object {
			annotated := value.NewMap()
			annotated.Set(TypeAnnotationKey, value.NewString(e.Name))
			out.Map().Range(func(k string, v *value.Value) bool {
				annotated.Set(k, v)
				return true
			})
			out = value.FromMap(annotated)
		}
	}
	return out, true
}

func (s fieldSetSerializer[T]) Deserialize(data *value.Value, out *T, ctx *DeserializationContext) bool {
	return s.set(out).Deserialize(data, ctx)
}

func (s fieldSetSerializer[T]) Describe(ctx *SerializationContext, d *Description) bool {
	if ctx.flag(FlagAnnotateTypes) {
		if e := Lookup[T](ctx.registry()); e != nil {
			c := NewDescription()
			c.Const(value.NewString(e.Name), nil)
			d.Prop(TypeAnnotationKey, c, true)
		}
	}
	var zero T
	return s.set(&zero).Describe(ctx, d)
}

func (s fieldSetSerializer[T]) SupportsRef() bool {
	var zero T
	return s.set(&zero).ref != nil
}

func (s fieldSetSerializer[T]) Resolve(v T) (*value.Value, bool) {
	return s.set(&v).GetRef()
}
