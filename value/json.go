package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Marshal renders v as compact JSON. An absent value renders as null.
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders v as indented JSON.
func MarshalIndent(v *Value, prefix, indent string) ([]byte, error) {
	raw, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) { return Marshal(v) }

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

func write(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case None, Null:
		buf.WriteString("null")
	case Bool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(v.s)
	case String:
		return writeString(buf, v.s)
	case Array:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		var err error
		first := true
		v.obj.Range(func(k string, it *Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err = writeString(buf, k); err != nil {
				return false
			}
			buf.WriteByte(':')
			err = write(buf, it)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: cannot marshal kind %d", v.Kind())
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Parse decodes a single JSON document, preserving object member order.
func Parse(data []byte) (*Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON document from r.
func Decode(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeNext(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("value: unexpected data after JSON document")
	}
	return v, nil
}

func decodeNext(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return fromToken(dec, tok)
}

func fromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("value: expected object key, got %v", kt)
				}
				member, err := decodeNext(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return FromMap(m), nil
		case '[':
			arr := NewArray()
			for dec.More() {
				it, err := decodeNext(dec)
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, it)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("value: unexpected delimiter %q", rune(t))
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return &Value{kind: Number, s: string(t)}, nil
	case float64:
		return NewFloat(t, 64), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("value: unexpected token %v", tok)
}
