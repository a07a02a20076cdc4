package vulfield

import (
	"fmt"
	"strconv"
	"strings"
)

// PathItem is one segment of a Path: a property name or an array index.
type PathItem struct {
	name    string
	index   int
	isIndex bool
}

// Prop returns a property segment.
func Prop(name string) PathItem { return PathItem{name: name} }

// Index returns an array index segment.
func Index(i int) PathItem { return PathItem{index: i, isIndex: true} }

func (p PathItem) IsIndex() bool { return p.isIndex }
func (p PathItem) Name() string  { return p.name }
func (p PathItem) Idx() int      { return p.index }

func (p PathItem) String() string {
	if p.isIndex {
		return "[" + strconv.Itoa(p.index) + "]"
	}
	return "." + p.name
}

// Path locates a node inside a value tree.
type Path []PathItem

func (p Path) String() string { return PathStr(p) }

// PathStr renders a path for diagnostics: "." for the root, ".name" for
// properties and "[n]" for indices. A path starting with an index is prefixed
// with "." so every rendering starts with a dot, e.g. ".[0].int".
func PathStr(path Path) string {
	if len(path) == 0 {
		return "."
	}
	var b strings.Builder
	if path[0].isIndex {
		b.WriteByte('.')
	}
	for _, it := range path {
		b.WriteString(it.String())
	}
	return b.String()
}

// PathMatch reports whether pattern matches the whole of path. Malformed
// patterns match nothing.
func PathMatch(path Path, pattern string) bool {
	p, err := ParsePattern(pattern)
	if err != nil {
		return false
	}
	return p.Match(path)
}

type patternSeg struct {
	index    bool
	wildcard bool
	name     string
	n        int
}

// Pattern is a pre-parsed path pattern.
//
// Grammar: "." is the root; ".name" a property; ".*" any single property;
// "[n]" a literal index; "[*]" any single index. A "." before "[" is
// optional. Patterns match full paths only.
type Pattern struct {
	raw  string
	segs []patternSeg
}

// ParsePattern validates and parses a path pattern.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern{raw: s}
	if s == "." {
		return p, nil
	}
	if s == "" {
		return p, fmt.Errorf("vulfield: empty path pattern")
	}
	for i := 0; i < len(s); {
		switch s[i] {
		case '.':
			i++
			if i < len(s) && s[i] == '[' {
				continue
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			name := s[i:j]
			if name == "" {
				return p, fmt.Errorf("vulfield: empty property in path pattern %q", s)
			}
			p.segs = append(p.segs, patternSeg{name: name, wildcard: name == "*"})
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return p, fmt.Errorf("vulfield: unterminated index in path pattern %q", s)
			}
			inner := s[i+1 : i+end]
			seg := patternSeg{index: true}
			if inner == "*" {
				seg.wildcard = true
			} else {
				n, err := strconv.Atoi(inner)
				if err != nil || n < 0 {
					return p, fmt.Errorf("vulfield: invalid index %q in path pattern %q", inner, s)
				}
				seg.n = n
			}
			p.segs = append(p.segs, seg)
			i += end + 1
		default:
			return p, fmt.Errorf("vulfield: path pattern %q must start segments with '.' or '['", s)
		}
	}
	return p, nil
}

// Match reports whether the pattern consumes path exactly.
func (p Pattern) Match(path Path) bool {
	if len(p.segs) != len(path) {
		return false
	}
	for i, seg := range p.segs {
		it := path[i]
		if seg.index != it.isIndex {
			return false
		}
		if seg.wildcard {
			continue
		}
		if seg.index && seg.n != it.index {
			return false
		}
		if !seg.index && seg.name != it.name {
			return false
		}
	}
	return true
}

// Literals counts the non-wildcard segments. Flags use it to rank
// overlapping patterns.
func (p Pattern) Literals() int {
	n := 0
	for _, s := range p.segs {
		if !s.wildcard {
			n++
		}
	}
	return n
}

func (p Pattern) String() string { return p.raw }
