// Package value implements the tree-shaped value model exchanged with the
// outside world: null, boolean, number, string, ordered array and an
// insertion-ordered object.
//
// Numbers keep their literal text so that integers outside the float64 range
// survive a round trip unchanged.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the tag of a Value.
type Kind int

const (
	// None is the kind of an absent (nil) value.
	None Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

// String returns the name used in diagnostics, e.g. "Number".
func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Bool:
		return "Boolean"
	case Number:
		return "Number"
	case String:
		return "String"
	case Array:
		return "Array"
	case Object:
		return "Object"
	}
	return "None"
}

// SchemaType returns the JSON Schema type keyword for the kind.
func (k Kind) SchemaType() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return ""
}

// Value is a node of the value tree. A nil *Value has kind None.
type Value struct {
	kind  Kind
	b     bool
	s     string // string contents or number literal
	items []*Value
	obj   *Map
}

func NewNull() *Value { return &Value{kind: Null} }

func NewBool(b bool) *Value { return &Value{kind: Bool, b: b} }

func NewString(s string) *Value { return &Value{kind: String, s: s} }

func NewInt(i int64) *Value { return &Value{kind: Number, s: strconv.FormatInt(i, 10)} }

func NewUint(u uint64) *Value { return &Value{kind: Number, s: strconv.FormatUint(u, 10)} }

// NewFloat renders f in its shortest round-trip form for the given bit size
// (32 or 64). NaN and infinities have no JSON form and become null.
func NewFloat(f float64, bits int) *Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NewNull()
	}
	return &Value{kind: Number, s: strconv.FormatFloat(f, 'g', -1, bits)}
}

// NewNumber wraps a number literal. It returns an error when lit is not a
// valid number.
func NewNumber(lit string) (*Value, error) {
	if _, err := strconv.ParseFloat(lit, 64); err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return nil, fmt.Errorf("value: invalid number literal %q", lit)
		}
	}
	return &Value{kind: Number, s: lit}, nil
}

// NewArray builds an array from items. Nil items are stored as null.
func NewArray(items ...*Value) *Value {
	out := make([]*Value, len(items))
	for i, it := range items {
		if it == nil {
			it = NewNull()
		}
		out[i] = it
	}
	return &Value{kind: Array, items: out}
}

// FromMap wraps o as an object Value. A nil o becomes an empty object.
func FromMap(o *Map) *Value {
	if o == nil {
		o = NewMap()
	}
	return &Value{kind: Object, obj: o}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return None
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == Null }

// Bool returns the boolean payload; false for any other kind.
func (v *Value) Bool() bool { return v.Kind() == Bool && v.b }

// Str returns the string payload; empty for any other kind.
func (v *Value) Str() string {
	if v.Kind() != String {
		return ""
	}
	return v.s
}

// Literal returns the number literal; empty for any other kind.
func (v *Value) Literal() string {
	if v.Kind() != Number {
		return ""
	}
	return v.s
}

// Int parses the number as a signed integer. Integral floats such as "3.0"
// or "1e3" are accepted.
func (v *Value) Int() (int64, error) {
	if v.Kind() != Number {
		return 0, fmt.Errorf("value: %s is not a number", v.Kind())
	}
	if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("value: %s is not an integer", v.s)
	}
	return int64(f), nil
}

// Uint parses the number as an unsigned integer.
func (v *Value) Uint() (uint64, error) {
	if v.Kind() != Number {
		return 0, fmt.Errorf("value: %s is not a number", v.Kind())
	}
	if u, err := strconv.ParseUint(v.s, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, fmt.Errorf("value: %s is not an unsigned integer", v.s)
	}
	return uint64(f), nil
}

// Float parses the number as a float64.
func (v *Value) Float() (float64, error) {
	if v.Kind() != Number {
		return 0, fmt.Errorf("value: %s is not a number", v.Kind())
	}
	return strconv.ParseFloat(v.s, 64)
}

// Items returns the array elements; nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != Array {
		return nil
	}
	return v.items
}

// Append adds items to an array value.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != Array {
		return
	}
	for _, it := range items {
		if it == nil {
			it = NewNull()
		}
		v.items = append(v.items, it)
	}
}

// Map returns the object payload; nil for any other kind.
func (v *Value) Map() *Map {
	if v.Kind() != Object {
		return nil
	}
	return v.obj
}

// Get is shorthand for Map().Get that tolerates non-objects.
func (v *Value) Get(key string) (*Value, bool) {
	if o := v.Map(); o != nil {
		return o.Get(key)
	}
	return nil, false
}

// String renders the value as compact JSON.
func (v *Value) String() string {
	b, err := Marshal(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}

// IsEmpty reports whether v is recursively empty: absent, null, an empty
// string, or an array/object whose every element is itself empty. Numbers and
// booleans are never empty.
func IsEmpty(v *Value) bool {
	switch v.Kind() {
	case None, Null:
		return true
	case String:
		return v.s == ""
	case Array:
		for _, it := range v.items {
			if !IsEmpty(it) {
				return false
			}
		}
		return true
	case Object:
		empty := true
		v.obj.Range(func(_ string, it *Value) bool {
			empty = IsEmpty(it)
			return empty
		})
		return empty
	}
	return false
}

// Equal compares two trees structurally. Object member order is ignored and
// numbers compare by numeric value.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case None, Null:
		return true
	case Bool:
		return a.b == b.b
	case String:
		return a.s == b.s
	case Number:
		if a.s == b.s {
			return true
		}
		fa, ea := strconv.ParseFloat(a.s, 64)
		fb, eb := strconv.ParseFloat(b.s, 64)
		return ea == nil && eb == nil && fa == fb
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		eq := true
		a.obj.Range(func(k string, av *Value) bool {
			bv, ok := b.obj.Get(k)
			eq = ok && Equal(av, bv)
			return eq
		})
		return eq
	}
	return false
}
