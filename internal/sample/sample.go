// Package sample holds game data types declared with vulfield. Tests and the
// CLI use them; RegisterTypes is the startup registration step.
package sample

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/value"
)

// Measure is a scalar quantity written as a plain number.
type Measure float32

func (Measure) VulSerializer() vulfield.Serializer[Measure] { return vulfield.Float[Measure]() }

// Flat exercises the built-in scalars and containers.
type Flat struct {
	Name    string
	Count   int
	Ratio   float32
	Enabled bool
	Tags    []string
	Scores  map[string]int
	Note    vulfield.Optional[string]
}

func (f *Flat) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&f.Name), "name").EvenIfEmpty(true)
	fs.Add(vulfield.Create(&f.Count), "count").EvenIfEmpty(true)
	fs.Add(vulfield.Create(&f.Ratio), "ratio").EvenIfEmpty(true)
	fs.Add(vulfield.Create(&f.Enabled), "enabled").EvenIfEmpty(true)
	fs.Add(vulfield.Create(&f.Tags), "tags")
	fs.Add(vulfield.Create(&f.Scores), "scores")
	fs.Add(vulfield.Create(&f.Note), "note")
	return fs
}

// Inner serializes as null unless it has a label.
type Inner struct {
	Label string
	Tags  []string
}

func (i *Inner) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&i.Label), "label")
	fs.Add(vulfield.Create(&i.Tags), "tags")
	fs.SetValidator(func() bool { return i.Label != "" })
	return fs
}

// Outer has a read-only id and a computed size.
type Outer struct {
	ID    string
	Inner Inner
	Items []Inner
}

func (o *Outer) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.CreateReadOnly(&o.ID), "id")
	fs.Add(vulfield.Create(&o.Inner), "inner")
	fs.Add(vulfield.CreateSlice(&o.Items), "items")
	vulfield.Virtual(fs, "size", func() int { return len(o.Items) })
	return fs
}

// NodeType discriminates tree nodes.
type NodeType int

const (
	NodeLeaf NodeType = iota
	NodeBranch
)

func (t NodeType) String() string {
	switch t {
	case NodeLeaf:
		return "Leaf"
	case NodeBranch:
		return "Branch"
	}
	return "NodeType(" + strconv.Itoa(int(t)) + ")"
}

func (NodeType) VulEnumValues() []NodeType { return []NodeType{NodeLeaf, NodeBranch} }

// TreeNode is the abstract base of Leaf and Branch.
type TreeNode interface {
	Node() *NodeBase
}

// NodeBase holds the members every node shares.
type NodeBase struct {
	Type NodeType
	Name string
}

func (b *NodeBase) Node() *NodeBase { return b }

func (b *NodeBase) addTo(fs *vulfield.FieldSet) {
	fs.Add(vulfield.Create(&b.Type), "type").EvenIfEmpty(true)
	fs.Add(vulfield.Create(&b.Name), "name")
}

type nodeShape struct{ NodeBase }

func (s *nodeShape) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	s.addTo(fs)
	return fs
}

type Leaf struct {
	NodeBase
	Value int
}

func (l *Leaf) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	l.addTo(fs)
	fs.Add(vulfield.Create(&l.Value), "value")
	return fs
}

type Branch struct {
	NodeBase
	Children []TreeNode
}

func (b *Branch) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	b.addTo(fs)
	fs.Add(vulfield.CreateSlice(&b.Children), "children")
	return fs
}

// Weapon is shared between units by id.
type Weapon struct {
	ID     string
	Damage int
}

func (w *Weapon) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&w.ID), "id").Ref()
	fs.Add(vulfield.Create(&w.Damage), "damage")
	return fs
}

// Unit refers to its weapon and its ally, which may refer back.
type Unit struct {
	ID     string
	Name   string
	Speed  Measure
	Weapon *Weapon
	Ally   *Unit
}

func (u *Unit) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&u.ID), "id").Ref()
	fs.Add(vulfield.Create(&u.Name), "name")
	fs.Add(vulfield.Create(&u.Speed), "speed")
	fs.Add(vulfield.CreateWith(&u.Weapon, vulfield.Ptr[Weapon]()), "weapon")
	fs.Add(vulfield.CreateWith(&u.Ally, vulfield.Ptr[Unit]()), "ally")
	return fs
}

type Army struct {
	Armory []*Weapon
	Units  []*Unit
}

func (a *Army) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.CreateWith(&a.Armory, vulfield.SliceOf(vulfield.Ptr[Weapon]())), "armory")
	fs.Add(vulfield.CreateWith(&a.Units, vulfield.SliceOf(vulfield.Ptr[Unit]())), "units")
	return fs
}

// Garrison owns its units through the deserialization Outer.
type Garrison struct {
	Units []*Unit
}

func (g *Garrison) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.CreateWith(&g.Units, vulfield.SliceOf(vulfield.Owned(vulfield.For[Unit]()))), "units")
	return fs
}

// Pool adopts owned allocations.
type Pool struct {
	Objects []any
}

func (p *Pool) Adopt(v any) { p.Objects = append(p.Objects, v) }

// Color is written as "#rrggbb".
type Color struct {
	R, G, B uint8
}

func (Color) VulSerializer() vulfield.Serializer[Color] { return colorSerializer{} }

type colorSerializer struct{}

func (colorSerializer) Serialize(c Color, _ *vulfield.SerializationContext) (*value.Value, bool) {
	return value.NewString(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), true
}

func (colorSerializer) Deserialize(data *value.Value, out *Color, ctx *vulfield.DeserializationContext) bool {
	if !ctx.Errors.RequireType(data, value.String) {
		return false
	}
	s := data.Str()
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if len(s) != 7 || !strings.HasPrefix(s, "#") || err != nil {
		ctx.Errors.Add("`%s` is not a #rrggbb color", s)
		return false
	}
	*out = Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}
	return true
}

func (colorSerializer) Describe(_ *vulfield.SerializationContext, d *vulfield.Description) bool {
	d.AsString()
	d.Document("A #rrggbb color")
	return true
}

// Texture is an asset referred to by path.
type Texture struct {
	Path   string
	Width  int
	Height int
}

func (t Texture) AssetPath() string { return t.Path }

func (t *Texture) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&t.Path), "path")
	fs.Add(vulfield.Create(&t.Width), "width")
	fs.Add(vulfield.Create(&t.Height), "height")
	return fs
}

type Sprite struct {
	Name    string
	Texture Texture
	Tint    Color
}

func (s *Sprite) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&s.Name), "name")
	fs.Add(vulfield.CreateWith(&s.Texture, vulfield.AssetOf(vulfield.For[Texture]())), "texture")
	fs.Add(vulfield.Create(&s.Tint), "tint")
	return fs
}

func ok(_ *vulfield.TypeEntry, err error) error { return err }

// RegisterTypes registers every sample type with r.
func RegisterTypes(r *vulfield.Registry) error {
	return errors.Join(
		ok(vulfield.Register[Measure](r, "Measure")),
		ok(vulfield.Register[Color](r, "Color")),
		ok(vulfield.Register[NodeType](r, "NodeType")),
		ok(vulfield.RegisterAbstract[TreeNode](r, "TreeNode", "type", vulfield.For[nodeShape]())),
		ok(vulfield.RegisterExtends[Leaf, TreeNode](r, "Leaf", NodeLeaf)),
		ok(vulfield.RegisterExtends[Branch, TreeNode](r, "Branch", NodeBranch)),
		ok(vulfield.Register[Weapon](r, "Weapon")),
		ok(vulfield.Register[Unit](r, "Unit")),
		ok(vulfield.Register[Army](r, "Army")),
		ok(vulfield.Register[Texture](r, "Texture")),
		ok(vulfield.Register[Sprite](r, "Sprite")),
		ok(vulfield.Register[Flat](r, "Flat")),
		ok(vulfield.Register[Inner](r, "Inner")),
		ok(vulfield.Register[Outer](r, "Outer")),
	)
}

var (
	defaultOnce sync.Once
	defaultErr  error
)

// RegisterDefault registers the sample types with the default registry, once.
func RegisterDefault() error {
	defaultOnce.Do(func() { defaultErr = RegisterTypes(vulfield.DefaultRegistry()) })
	return defaultErr
}
