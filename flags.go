package vulfield

import (
	"fmt"
	"sort"
	"sync"
)

// Flag names.
const (
	// FlagReferencing replaces repeat occurrences of reference-capable values
	// with their reference token, and resolves tokens when deserializing.
	FlagReferencing = "referencing"
	// FlagAssetReferencing represents assets by their path.
	FlagAssetReferencing = "asset-referencing"
	// FlagAnnotateTypes adds a "__type" member naming the registered type of
	// every serialized object.
	FlagAnnotateTypes = "annotate-types"
)

// TypeAnnotationKey is the member written when FlagAnnotateTypes is on.
const TypeAnnotationKey = "__type"

var defaults = struct {
	sync.RWMutex
	m map[string]bool
}{m: map[string]bool{
	FlagReferencing:      true,
	FlagAssetReferencing: true,
	FlagAnnotateTypes:    false,
}}

// RegisterDefault sets the process-wide default for a flag.
func RegisterDefault(flag string, enabled bool) {
	defaults.Lock()
	defaults.m[flag] = enabled
	defaults.Unlock()
}

// KnownFlag reports whether flag has a registered default.
func KnownFlag(flag string) bool {
	defaults.RLock()
	defer defaults.RUnlock()
	_, ok := defaults.m[flag]
	return ok
}

// KnownFlags lists flags with registered defaults, sorted.
func KnownFlags() []string {
	defaults.RLock()
	defer defaults.RUnlock()
	out := make([]string, 0, len(defaults.m))
	for k := range defaults.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type scopedFlag struct {
	pattern Pattern
	flag    string
	enabled bool
}

// Flags holds per-call flag overrides. The zero value uses defaults only.
//
// Resolution order: the most specific matching path override (most literal
// segments, later registration winning ties), then the path-agnostic
// override, then the registered default, then false.
type Flags struct {
	global map[string]bool
	scoped []scopedFlag
}

// Set overrides flag for every path.
func (f *Flags) Set(flag string, enabled bool) {
	if f.global == nil {
		f.global = map[string]bool{}
	}
	f.global[flag] = enabled
}

// SetAt overrides flag for paths matching pattern.
func (f *Flags) SetAt(pattern, flag string, enabled bool) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return fmt.Errorf("flag %s: %w", flag, err)
	}
	f.scoped = append(f.scoped, scopedFlag{pattern: p, flag: flag, enabled: enabled})
	return nil
}

// Enabled resolves flag at path.
func (f *Flags) Enabled(flag string, path Path) bool {
	best := -1
	enabled := false
	for _, s := range f.scoped {
		if s.flag != flag || !s.pattern.Match(path) {
			continue
		}
		if n := s.pattern.Literals(); n >= best {
			best = n
			enabled = s.enabled
		}
	}
	if best >= 0 {
		return enabled
	}
	if v, ok := f.global[flag]; ok {
		return v
	}
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.m[flag]
}
