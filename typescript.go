package vulfield

import (
	"strings"
	"unicode"

	"github.com/vaeryn-uk/vulfield/value"
)

// TypeScriptOptions tunes declaration output.
type TypeScriptOptions struct {
	// ExtractReferences types reference sites as tokens only, matching
	// output written with SerializationContext.ExtractReferences.
	ExtractReferences bool
	// TypeGuards adds an isX function for every subtype whose base has a
	// discriminator.
	TypeGuards bool
}

const (
	tsIndent   = "\t"
	tsRefType  = "Ref"
	tsRefsType = "Refs"
)

// TypeScript renders declarations for every registered type reachable from
// d.
func (d *Description) TypeScript(opts TypeScriptOptions) string {
	return TypeScriptDefinitions(opts, d)
}

// TypeScriptDefinitions renders declarations for every registered type
// reachable from roots, each declared once, in discovery order.
func TypeScriptDefinitions(opts TypeScriptOptions, roots ...*Description) string {
	var named []*Description
	seen := map[*TypeEntry]bool{}
	refs := false
	for _, r := range roots {
		if r == nil {
			continue
		}
		refs = refs || r.ContainsReference()
		for _, n := range r.NamedTypes() {
			if !seen[n.entry] {
				seen[n.entry] = true
				named = append(named, n)
			}
		}
	}

	ts := tsWriter{opts: opts}
	if refs || opts.ExtractReferences {
		ts.line("// A string reference to an existing object of the given type")
		ts.line("// @ts-ignore")
		ts.line("export type " + tsRefType + "<T> = string;")
		ts.line("")
	}
	if opts.ExtractReferences {
		ts.line("export type " + tsRefsType + " = Record<" + tsRefType + "<any>, any>;")
		ts.line("")
	}
	for _, n := range named {
		ts.declare(n)
	}
	if opts.TypeGuards {
		for _, n := range named {
			ts.guard(n)
		}
	}
	return ts.b.String()
}

type tsWriter struct {
	opts TypeScriptOptions
	b    strings.Builder
}

func (w *tsWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *tsWriter) declare(d *Description) {
	name := d.entry.Name
	switch {
	case len(d.enum) > 0 && d.target == nil:
		w.line("export enum " + name + " {")
		for _, v := range d.enum {
			w.line(tsIndent + tsKey(v) + " = " + tsLiteral(value.NewString(v)) + ",")
		}
		w.line("}")
	case d.target == nil && d.kind == value.Object && (len(d.props) > 0 || len(d.union) > 0 || d.additional == nil):
		w.iface(d)
	default:
		w.line("export type " + name + " = " + w.shape(d) + ";")
	}
	w.line("")
}

func (w *tsWriter) iface(d *Description) {
	var base *Description
	if d.base != nil && d.base.entry != nil {
		base = d.base
		w.line("export interface " + d.entry.Name + " extends " + base.entry.Name + " {")
	} else {
		w.line("export interface " + d.entry.Name + " {")
	}
	for _, p := range d.props {
		if base != nil {
			if bp := base.Property(p.name); bp != nil && Equivalent(bp, p.desc) {
				continue
			}
		}
		opt := ""
		if !p.required {
			opt = "?"
		}
		w.line(tsIndent + tsKey(p.name) + opt + ": " + w.site(p.desc) + ";")
	}
	if d.additional != nil {
		w.line(tsIndent + "[key: string]: " + w.site(d.additional) + ";")
	}
	w.line("}")
}

// guard writes a type guard narrowing a subtype's base by its
// discriminator literal.
func (w *tsWriter) guard(d *Description) {
	if d.base == nil || d.base.entry == nil || d.base.entry.Discriminator == "" {
		return
	}
	disc := d.base.entry.Discriminator
	c := d.Property(disc)
	if c == nil {
		return
	}
	root, _, _ := c.resolve()
	if root.constant == nil {
		return
	}
	access := "v." + disc
	if !isIdent(disc) {
		access = "v[" + tsLiteral(value.NewString(disc)) + "]"
	}
	w.line("export function is" + d.entry.Name + "(v: " + d.base.entry.Name + "): v is " + d.entry.Name + " {")
	w.line(tsIndent + "return " + access + " === " + w.shape(root) + ";")
	w.line("}")
	w.line("")
}

// site renders a use of d, naming registered types. Nullable wrappers
// collapse to their inner type.
func (w *tsWriter) site(d *Description) string {
	if d == nil {
		return "any"
	}
	root, _, canBeRef := d.resolve()
	var t string
	if root.entry != nil {
		t = root.entry.Name
	} else {
		t = w.shape(root)
	}
	if canBeRef {
		if w.opts.ExtractReferences {
			t = tsRefType + "<" + t + ">"
		} else {
			t = "(" + t + " | " + tsRefType + "<" + t + ">)"
		}
	}
	return t
}

// shape renders d's structure inline.
func (w *tsWriter) shape(d *Description) string {
	switch {
	case d.target != nil:
		return w.site(d.target)
	case d.anything:
		return "any"
	case d.constant != nil:
		if of := d.constOf; of != nil && d.constant.Kind() == value.String {
			if r, _, _ := of.resolve(); r.entry != nil && r.HasEnumValue(d.constant.Str()) {
				if isIdent(d.constant.Str()) {
					return r.entry.Name + "." + d.constant.Str()
				}
				return r.entry.Name + "[" + tsLiteral(d.constant) + "]"
			}
		}
		return tsLiteral(d.constant)
	case len(d.enum) > 0:
		lits := make([]string, len(d.enum))
		for i, v := range d.enum {
			lits[i] = tsLiteral(value.NewString(v))
		}
		return strings.Join(lits, " | ")
	case d.kind == value.Object && len(d.union) > 0 && len(d.props) == 0:
		return w.union(d.union)
	case d.additional != nil:
		return "Record<string, " + w.site(d.additional) + ">"
	case d.kind == value.Object:
		if len(d.props) == 0 {
			return "Record<string, any>"
		}
		parts := make([]string, len(d.props))
		for i, p := range d.props {
			opt := ""
			if !p.required {
				opt = "?"
			}
			parts[i] = tsKey(p.name) + opt + ": " + w.site(p.desc)
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case d.kind == value.String:
		return "string"
	case d.kind == value.Number:
		return "number"
	case d.kind == value.Bool:
		return "boolean"
	case d.kind == value.Array:
		item := w.site(d.items)
		if strings.ContainsAny(item, " |") {
			item = "(" + item + ")"
		}
		return item + "[]"
	case len(d.union) > 0:
		return w.union(d.union)
	}
	return "any"
}

func (w *tsWriter) union(alts []*Description) string {
	parts := make([]string, len(alts))
	for i, a := range alts {
		parts[i] = w.site(a)
	}
	return strings.Join(parts, " | ")
}

func tsLiteral(v *value.Value) string {
	b, err := value.Marshal(v)
	if err != nil {
		return "any"
	}
	return string(b)
}

// tsKey renders a property or enum member name, quoting it when needed.
func tsKey(name string) string {
	if isIdent(name) {
		return name
	}
	return tsLiteral(value.NewString(name))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
