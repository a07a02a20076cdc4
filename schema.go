package vulfield

import (
	"github.com/vaeryn-uk/vulfield/jsonschema"
	"github.com/vaeryn-uk/vulfield/value"
)

// RefDefinition names the definition describing reference tokens.
const RefDefinition = "Ref"

// JSONSchema renders d as a JSON Schema document. Registered types become
// $ref entries into the top-level definitions. With extract set, reference
// sites accept only tokens and the document describes the {"refs", "data"}
// envelope.
func (d *Description) JSONSchema(extract bool) *jsonschema.Schema {
	e := &schemaEmitter{extract: extract, defs: map[string]*jsonschema.Schema{}}
	root := e.site(d)
	if d.ContainsReference() {
		e.defs[RefDefinition] = &jsonschema.Schema{
			Type:        "string",
			Description: "A string reference to an existing object",
		}
	}
	if extract {
		root = &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"refs": {Type: "object"},
				"data": root,
			},
			Required: []string{"refs", "data"},
		}
	}
	if len(e.defs) > 0 {
		if root.Always {
			root = &jsonschema.Schema{}
		}
		root.Definitions = e.defs
	}
	return root
}

type schemaEmitter struct {
	extract bool
	defs    map[string]*jsonschema.Schema
}

func (e *schemaEmitter) site(d *Description) *jsonschema.Schema {
	if d == nil {
		return jsonschema.True()
	}
	root, nullable, canBeRef := d.resolve()
	var s *jsonschema.Schema
	if root.entry != nil {
		e.define(root)
		s = jsonschema.RefTo(root.entry.Name)
	} else {
		s = e.shape(root)
	}
	if canBeRef {
		if e.extract {
			s = jsonschema.RefTo(RefDefinition)
		} else {
			s = &jsonschema.Schema{OneOf: []*jsonschema.Schema{s, jsonschema.RefTo(RefDefinition)}}
		}
	}
	if nullable {
		s = orNull(s)
	}
	return s
}

// define emits the definition of a bound description once. The entry is
// reserved before its body is built so recursive types terminate.
func (e *schemaEmitter) define(d *Description) {
	name := d.entry.Name
	if _, ok := e.defs[name]; ok {
		return
	}
	placeholder := &jsonschema.Schema{}
	e.defs[name] = placeholder

	body := e.shape(d)
	if body.Always {
		body = &jsonschema.Schema{}
	}
	body.TypeName = name
	*placeholder = *body
}

func (e *schemaEmitter) shape(d *Description) *jsonschema.Schema {
	if d.anything || !d.Valid() {
		return jsonschema.True()
	}
	if d.target != nil {
		// A bound description whose shape is another node, e.g. a registered
		// alias of a pointer.
		return e.site(d.target)
	}
	s := &jsonschema.Schema{Description: d.doc}
	if d.constant != nil {
		s.Type = d.constant.Kind().SchemaType()
		s.Const = d.constant
		return s
	}
	if d.kind != value.None {
		s.Type = d.kind.SchemaType()
	}
	if len(d.enum) > 0 {
		s.Enum = append([]string(nil), d.enum...)
	}
	switch d.kind {
	case value.Object:
		if len(d.props) > 0 {
			s.Properties = make(map[string]*jsonschema.Schema, len(d.props))
		}
		for _, p := range d.props {
			s.Properties[p.name] = e.site(p.desc)
			if p.required {
				s.Required = append(s.Required, p.name)
			}
		}
		if d.additional != nil {
			s.AdditionalProperties = e.site(d.additional)
		}
	case value.Array:
		s.Items = e.site(d.items)
	}
	for _, alt := range d.union {
		s.OneOf = append(s.OneOf, e.site(alt))
	}
	return s
}

// orNull widens s to also accept null.
func orNull(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Always {
		return s
	}
	if t, ok := s.Type.(string); ok && s.Ref == "" && len(s.OneOf) == 0 && s.Const == nil && len(s.Enum) == 0 {
		s.Type = []string{t, "null"}
		return s
	}
	if s.Type == nil && s.Ref == "" && len(s.OneOf) > 0 {
		s.OneOf = append(s.OneOf, &jsonschema.Schema{Type: "null"})
		return s
	}
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{s, {Type: "null"}}}
}
