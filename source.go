package vulfield

import (
	"io"

	"github.com/vaeryn-uk/vulfield/value"
)

// Source abstracts over the input formats a document can be read from.
type Source interface {
	Value() (*value.Value, error)
	// Format names the input format, e.g. for diagnostics.
	Format() string
}

type jsonBytes []byte

// JSONBytes reads a single JSON document from b.
func JSONBytes(b []byte) Source { return jsonBytes(b) }

func (b jsonBytes) Value() (*value.Value, error) { return value.Parse(b) }
func (jsonBytes) Format() string                 { return "json" }

type jsonReader struct{ r io.Reader }

// JSONReader streams a single JSON document from r.
func JSONReader(r io.Reader) Source { return jsonReader{r: r} }

func (s jsonReader) Value() (*value.Value, error) { return value.Decode(s.r) }
func (jsonReader) Format() string                 { return "json" }

type yamlBytes []byte

// YAMLBytes reads a single YAML document from b. Mapping order is kept.
func YAMLBytes(b []byte) Source { return yamlBytes(b) }

func (b yamlBytes) Value() (*value.Value, error) { return value.ParseYAML(b) }
func (yamlBytes) Format() string                 { return "yaml" }

type treeSource struct{ v *value.Value }

// ValueSource wraps an already parsed tree.
func ValueSource(v *value.Value) Source { return treeSource{v: v} }

func (s treeSource) Value() (*value.Value, error) { return s.v, nil }
func (treeSource) Format() string                 { return "value" }
