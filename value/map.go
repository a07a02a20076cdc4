package value

// Map is an insertion-ordered string-keyed object.
type Map struct {
	keys []string
	vals map[string]*Value
}

func NewMap() *Map { return &Map{vals: map[string]*Value{}} }

// Set stores v under key. Re-setting an existing key keeps its original
// position. A nil v is stored as null.
func (m *Map) Set(key string, v *Value) {
	if v == nil {
		v = NewNull()
	}
	if m.vals == nil {
		m.vals = map[string]*Value{}
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *Map) Get(key string) (*Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	return v, ok
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each member in order until fn returns false.
func (m *Map) Range(fn func(key string, v *Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}
