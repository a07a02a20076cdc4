// Package vulfield maps Go values onto a generic value tree (see package
// value) and describes their shape, from one declaration per type.
//
// A type declares its fields once, usually as a FieldSet:
//
//	func (u *Unit) VulFieldSet() *vulfield.FieldSet {
//		fs := vulfield.NewFieldSet()
//		fs.Add(vulfield.Create(&u.ID), "id").Ref()
//		fs.Add(vulfield.Create(&u.Name), "name")
//		return fs
//	}
//
// That declaration drives serialization, deserialization, JSON Schema
// output (Description.JSONSchema) and TypeScript declarations
// (Description.TypeScript). No reflection is involved: For picks a
// Serializer from the methods a type implements.
//
// Registered types (Register, RegisterAbstract, RegisterExtends) are
// described once and emitted as named definitions; abstract types
// serialize through their subtypes, selected by a discriminator property.
//
// Failures never panic. Each call reports success as a bool and collects
// issues, qualified by the path being visited, in its context's Errors.
package vulfield
