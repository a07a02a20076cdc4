package vulfield

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Options is the file form of per-call settings, e.g.
//
//	flags:
//	  referencing: true
//	paths:
//	  - pattern: .units[*]
//	    flags:
//	      referencing: false
//	extract_references: true
//	max_depth: 50
//	precision: 3
type Options struct {
	Flags             map[string]bool `yaml:"flags,omitempty"`
	Paths             []PathOptions   `yaml:"paths,omitempty"`
	ExtractReferences bool            `yaml:"extract_references,omitempty"`
	MaxDepth          int             `yaml:"max_depth,omitempty"`
	Precision         int             `yaml:"precision,omitempty"`
}

// PathOptions overrides flags for paths matching Pattern.
type PathOptions struct {
	Pattern string          `yaml:"pattern"`
	Flags   map[string]bool `yaml:"flags"`
}

// ParseOptionsYAML decodes and validates options. Unknown keys are errors;
// an empty document yields zero options.
func ParseOptionsYAML(data []byte) (*Options, error) {
	var o Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("vulfield: options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate checks flag names, patterns and limits.
func (o *Options) Validate() error {
	var errs []error
	for _, name := range sortedFlags(o.Flags) {
		if !KnownFlag(name) {
			errs = append(errs, fmt.Errorf("unknown flag %q", name))
		}
	}
	for i, p := range o.Paths {
		if _, err := ParsePattern(p.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("paths[%d]: %w", i, err))
		}
		for _, name := range sortedFlags(p.Flags) {
			if !KnownFlag(name) {
				errs = append(errs, fmt.Errorf("paths[%d]: unknown flag %q", i, name))
			}
		}
	}
	if o.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", o.MaxDepth))
	}
	if o.Precision < 0 {
		errs = append(errs, fmt.Errorf("precision must not be negative, got %d", o.Precision))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("vulfield: options: %w", err)
	}
	return nil
}

func (o *Options) flags() (Flags, error) {
	if err := o.Validate(); err != nil {
		return Flags{}, err
	}
	var f Flags
	for _, name := range sortedFlags(o.Flags) {
		f.Set(name, o.Flags[name])
	}
	for _, p := range o.Paths {
		for _, name := range sortedFlags(p.Flags) {
			if err := f.SetAt(p.Pattern, name, p.Flags[name]); err != nil {
				return Flags{}, err
			}
		}
	}
	return f, nil
}

// ApplySerialization configures ctx from o.
func (o *Options) ApplySerialization(ctx *SerializationContext) error {
	f, err := o.flags()
	if err != nil {
		return err
	}
	ctx.Flags = f
	ctx.ExtractReferences = o.ExtractReferences
	ctx.Precision = o.Precision
	ctx.Errors.SetMaxDepth(o.MaxDepth)
	return nil
}

// ApplyDeserialization configures ctx from o. ExtractReferences means the
// input carries the extracted envelope.
func (o *Options) ApplyDeserialization(ctx *DeserializationContext) error {
	f, err := o.flags()
	if err != nil {
		return err
	}
	ctx.Flags = f
	ctx.ExtractedReferences = o.ExtractReferences
	ctx.Errors.SetMaxDepth(o.MaxDepth)
	return nil
}

func sortedFlags(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
