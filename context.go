package vulfield

import "github.com/vaeryn-uk/vulfield/value"

// Memory is the per-call reference table.
type Memory struct {
	store  map[string]any
	owners map[string]string

	// Refs collects (serialization) or supplies (deserialization) the
	// extracted reference table when extraction is enabled.
	Refs *value.Map
}

// Lookup returns what was remembered under token. During serialization it
// is the serialized tree (nil while that tree is still being produced);
// during deserialization it is a pointer to the materialised instance.
func (m *Memory) Lookup(token string) (any, bool) {
	v, ok := m.store[token]
	return v, ok
}

// remember stores v under token. An existing non-nil entry is kept so the
// first materialised instance stays the canonical one.
func (m *Memory) remember(token string, v any) {
	if m.store == nil {
		m.store = map[string]any{}
	}
	if cur, ok := m.store[token]; ok && cur != nil {
		return
	}
	m.store[token] = v
}

// claim records owner as the type serialized under token and returns the
// owner that claimed token first.
func (m *Memory) claim(token, owner string) string {
	if m.owners == nil {
		m.owners = map[string]string{}
	}
	if cur, ok := m.owners[token]; ok {
		return cur
	}
	m.owners[token] = owner
	return owner
}

// State is shared by serialization and deserialization contexts.
type State struct {
	Errors Errors
	Memory Memory

	// Registry resolves registered types. nil means DefaultRegistry().
	Registry *Registry

	descriptions map[string]*Description
}

func (s *State) registry() *Registry {
	if s.Registry == nil {
		return DefaultRegistry()
	}
	return s.Registry
}

// SerializationContext carries one serialize or describe call.
type SerializationContext struct {
	State
	Flags Flags

	// ExtractReferences moves every reference-capable value into a top-level
	// "refs" table, leaving tokens in place, and wraps the output as
	// {"refs": ..., "data": ...}.
	ExtractReferences bool

	// Precision rounds serialized floats to this many decimal places. Zero
	// keeps the shortest round-trip form.
	Precision int
}

func NewSerializationContext() *SerializationContext { return &SerializationContext{} }

func (c *SerializationContext) flag(name string) bool {
	return c.Flags.Enabled(name, c.Errors.path)
}

// Outer receives instances allocated by Owned serializers.
type Outer interface {
	Adopt(v any)
}

// DeserializationContext carries one deserialize call.
type DeserializationContext struct {
	State
	Flags Flags

	// Outer must be set before deserializing Owned values.
	Outer Outer

	// Assets loads values serialized by path under FlagAssetReferencing.
	Assets AssetLoader

	// ExtractedReferences expects the {"refs", "data"} envelope written by
	// SerializationContext.ExtractReferences.
	ExtractedReferences bool

	frames []func(token string)
}

func NewDeserializationContext() *DeserializationContext { return &DeserializationContext{} }

func (c *DeserializationContext) flag(name string) bool {
	return c.Flags.Enabled(name, c.Errors.path)
}

// announceRef registers the value currently being deserialized under token
// before its remaining members are read, so back references inside it
// resolve to the same instance.
func (c *DeserializationContext) announceRef(token string) {
	if n := len(c.frames); n > 0 && c.frames[n-1] != nil {
		c.frames[n-1](token)
	}
}
