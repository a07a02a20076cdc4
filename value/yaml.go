package value

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the first document of a YAML stream. Mapping order is
// preserved; mapping keys must be scalars.
func ParseYAML(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return NewNull(), nil
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a decoded yaml.v3 node tree.
func FromYAMLNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, errors.New("value: dangling YAML alias")
		}
		return FromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, c := range n.Content {
			it, err := FromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, it)
		}
		return arr, nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("value: line %d: mapping keys must be scalars", k.Line)
			}
			member, err := FromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, member)
		}
		return FromMap(m), nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	}
	return nil, fmt.Errorf("value: line %d: unsupported YAML node", n.Line)
}

func scalarFromYAML(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NewNull(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			var u uint64
			if uerr := n.Decode(&u); uerr != nil {
				return nil, err
			}
			return NewUint(u), nil
		}
		return NewInt(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return NewFloat(f, 64), nil
	}
	return NewString(n.Value), nil
}

// ToYAMLNode converts v into a yaml.v3 node tree.
func ToYAMLNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.s}
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.items {
			n.Content = append(n.Content, ToYAMLNode(it))
		}
		return n
	case Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.obj.Range(func(k string, it *Value) bool {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				ToYAMLNode(it),
			)
			return true
		})
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// MarshalYAML renders v as a YAML document.
func MarshalYAML(v *Value) ([]byte, error) {
	return yaml.Marshal(ToYAMLNode(v))
}

// UnmarshalYAML implements yaml.Unmarshaler so a Value can sit inside
// YAML-decoded configuration structs.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := FromYAMLNode(n)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
