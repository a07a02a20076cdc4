package vulfield

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vaeryn-uk/vulfield/value"
)

// Registry errors.
var (
	ErrDuplicateType = errors.New("vulfield: type already registered")
	ErrUnknownBase   = errors.New("vulfield: base type is not registered as abstract")
	ErrNotSubtype    = errors.New("vulfield: subtype does not implement its base")
	ErrInvalidName   = errors.New("vulfield: invalid type name")
)

// typeKey gives every Go type a distinct comparable identity without
// reflection.
type typeKey[T any] struct{}

// Describer is anything that can describe a shape. Every Serializer is one.
type Describer interface {
	Describe(ctx *SerializationContext, d *Description) bool
}

// TypeEntry is one registered type.
type TypeEntry struct {
	// Name is the build-stable identity used for definitions and declarations.
	Name string
	// Discriminator is the property distinguishing subtypes of an abstract
	// type.
	Discriminator string
	// Base is set for subtypes.
	Base *TypeEntry

	key      any
	abstract bool
	value    func() string
	shape    Describer

	describe func(ctx *SerializationContext) (*Description, bool)
	decode   func(data *value.Value, ctx *DeserializationContext) (any, bool)
	encode   func(v any, ctx *SerializationContext) (*value.Value, bool)

	// Direct (non-dispatching) hooks used by Poly for subtypes.
	owns         func(v any) bool
	alloc        func() any
	decodeInto   func(data *value.Value, target any, ctx *DeserializationContext) bool
	encodeDirect func(v any, ctx *SerializationContext) (*value.Value, bool)
	supportsRef  func() bool
	resolveRef   func(v any) (*value.Value, bool)
}

// DiscriminatorValue returns the literal identifying this subtype. It is
// computed on demand.
func (e *TypeEntry) DiscriminatorValue() string {
	if e.value == nil {
		return ""
	}
	return e.value()
}

// IsAbstract reports whether the entry was registered with RegisterAbstract.
func (e *TypeEntry) IsAbstract() bool { return e.abstract }

// Describe describes the type within ctx.
func (e *TypeEntry) Describe(ctx *SerializationContext) (*Description, bool) { return e.describe(ctx) }

// Decode materialises a new instance from data. Concrete types decode to a
// pointer; abstract types decode to the base interface value.
func (e *TypeEntry) Decode(data *value.Value, ctx *DeserializationContext) (any, bool) {
	return e.decode(data, ctx)
}

// Encode serializes a value produced by Decode.
func (e *TypeEntry) Encode(v any, ctx *SerializationContext) (*value.Value, bool) {
	return e.encode(v, ctx)
}

// Registry maps types to entries. It is safe for concurrent use; registration
// is expected to happen once at startup.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*TypeEntry
	byKey  map[any]*TypeEntry
	order  []*TypeEntry
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*TypeEntry{}, byKey: map[any]*TypeEntry{}}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide registry used when a context has none.
func DefaultRegistry() *Registry { return defaultRegistry }

func orDefault(r *Registry) *Registry {
	if r == nil {
		return defaultRegistry
	}
	return r
}

func (r *Registry) add(e *TypeEntry) error {
	switch e.Name {
	case "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case RefDefinition, tsRefsType:
		// Emitted schemas and declarations define these themselves.
		return fmt.Errorf("%w: %s is reserved", ErrInvalidName, e.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, e.Name)
	}
	if prev, ok := r.byKey[e.key]; ok {
		return fmt.Errorf("%w: %s is already registered as %s", ErrDuplicateType, e.Name, prev.Name)
	}
	r.byName[e.Name] = e
	r.byKey[e.key] = e
	r.order = append(r.order, e)
	return nil
}

func (r *Registry) lookupKey(key any) *TypeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (*TypeEntry, bool) {
	r = orDefault(r)
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// Entries lists entries in registration order.
func (r *Registry) Entries() []*TypeEntry {
	r = orDefault(r)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*TypeEntry(nil), r.order...)
}

// Names lists registered names, sorted.
func (r *Registry) Names() []string {
	var out []string
	for _, e := range r.Entries() {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}

// Subtypes lists the subtypes of the named base in registration order.
func (r *Registry) Subtypes(name string) []*TypeEntry {
	var out []*TypeEntry
	for _, e := range r.Entries() {
		if e.Base != nil && e.Base.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// BaseType returns the base of the named subtype.
func (r *Registry) BaseType(name string) (*TypeEntry, bool) {
	e, ok := r.Get(name)
	if !ok || e.Base == nil {
		return nil, false
	}
	return e.Base, true
}

// Lookup returns the entry for T, or nil when T is not registered.
func Lookup[T any](r *Registry) *TypeEntry {
	return orDefault(r).lookupKey(typeKey[T]{})
}

// Register registers T under name using For[T]().
func Register[T any](r *Registry, name string) (*TypeEntry, error) {
	return RegisterWith(r, name, For[T]())
}

// RegisterWith registers T under name with an explicit serializer.
func RegisterWith[T any](r *Registry, name string, s Serializer[T]) (*TypeEntry, error) {
	e := &TypeEntry{Name: name, key: typeKey[T]{}}
	bindConcrete(e, s)
	if err := orDefault(r).add(e); err != nil {
		return nil, err
	}
	return e, nil
}

func bindConcrete[T any](e *TypeEntry, s Serializer[T]) {
	e.describe = func(ctx *SerializationContext) (*Description, bool) {
		return Describe(ctx, s, nil)
	}
	e.decode = func(data *value.Value, ctx *DeserializationContext) (any, bool) {
		out := new(T)
		if !Deserialize(ctx, s, data, out, nil) {
			return nil, false
		}
		return out, true
	}
	e.encode = func(v any, ctx *SerializationContext) (*value.Value, bool) {
		p, ok := v.(*T)
		if !ok {
			ctx.Errors.AddCode(CodeInvalidType, "cannot encode %T as %s", v, e.Name)
			return nil, false
		}
		return Serialize(ctx, s, *p, nil)
	}
}

// RegisterAbstract registers the interface type B as the base of a
// discriminated union. shape describes the properties every subtype shares;
// discriminator names the property holding each subtype's literal.
func RegisterAbstract[B any](r *Registry, name, discriminator string, shape Describer) (*TypeEntry, error) {
	if discriminator == "" {
		return nil, fmt.Errorf("vulfield: abstract type %s needs a discriminator property", name)
	}
	r = orDefault(r)
	e := &TypeEntry{Name: name, Discriminator: discriminator, key: typeKey[B]{}, abstract: true, shape: shape}
	s := polySerializer[B]{reg: r, shape: shape}
	e.describe = func(ctx *SerializationContext) (*Description, bool) {
		return Describe[B](ctx, s, nil)
	}
	e.decode = func(data *value.Value, ctx *DeserializationContext) (any, bool) {
		var out B
		if !Deserialize(ctx, s, data, &out, nil) {
			return nil, false
		}
		return out, true
	}
	e.encode = func(v any, ctx *SerializationContext) (*value.Value, bool) {
		b, ok := v.(B)
		if !ok {
			ctx.Errors.AddCode(CodeInvalidType, "cannot encode %T as %s", v, e.Name)
			return nil, false
		}
		return Serialize(ctx, s, b, nil)
	}
	if err := r.add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// RegisterExtends registers D as a subtype of the abstract type B. *D must
// implement B. v's String() is the discriminator literal.
func RegisterExtends[D, B any, E fmt.Stringer](r *Registry, name string, v E) (*TypeEntry, error) {
	return RegisterExtendsWith[D, B](r, name, v, For[D]())
}

// RegisterExtendsWith is RegisterExtends with an explicit serializer for D.
func RegisterExtendsWith[D, B any, E fmt.Stringer](r *Registry, name string, v E, s Serializer[D]) (*TypeEntry, error) {
	r = orDefault(r)
	base := Lookup[B](r)
	if base == nil || !base.abstract {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBase, name)
	}
	if _, ok := any(new(D)).(B); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSubtype, name)
	}
	e := &TypeEntry{Name: name, Base: base, key: typeKey[D]{}, value: v.String}
	bindConcrete(e, s)
	e.owns = func(x any) bool {
		_, ok := x.(*D)
		return ok
	}
	e.alloc = func() any { return new(D) }
	e.decodeInto = func(data *value.Value, target any, ctx *DeserializationContext) bool {
		return s.Deserialize(data, target.(*D), ctx)
	}
	e.encodeDirect = func(x any, ctx *SerializationContext) (*value.Value, bool) {
		return s.Serialize(*x.(*D), ctx)
	}
	e.supportsRef = func() bool {
		rr, ok := s.(RefResolver[D])
		return ok && rr.SupportsRef()
	}
	e.resolveRef = func(x any) (*value.Value, bool) {
		rr, ok := s.(RefResolver[D])
		if !ok {
			return nil, false
		}
		return rr.Resolve(*x.(*D))
	}
	if err := r.add(e); err != nil {
		return nil, err
	}
	return e, nil
}
