package vulfield

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vaeryn-uk/vulfield/i18n"
	"github.com/vaeryn-uk/vulfield/value"
)

// Issue codes.
const (
	CodeCustom               = "custom"
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeMapKey               = "map_key"
	CodeUnregistered         = "unregistered"
	CodeUndescribable        = "undescribable"
	CodeRecursion            = "recursion"
	CodeRefUnresolved        = "ref_unresolved"
	CodeReadOnly             = "read_only"
	CodeParseError           = "parse_error"
	CodeInvalidEnum          = "invalid_enum"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeAllocation           = "allocation"
	CodeAsset                = "asset"
)

// DefaultMaxDepth bounds nested serialize/deserialize/describe calls.
const DefaultMaxDepth = 100

// Issue is a single accumulated failure.
type Issue struct {
	Path    string // rendered with PathStr, e.g. .[0].int
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: localized category label for Code.
}

// String renders the issue as "<path>: <message>".
func (i Issue) String() string { return i.Path + ": " + i.Message }

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Errors accumulates issues for one call. Every message is qualified by the
// path in effect when it was added.
type Errors struct {
	issues   Issues
	path     Path
	depth    int
	maxDepth int
}

// SetMaxDepth changes the recursion limit. Values below 1 restore the default.
func (e *Errors) SetMaxDepth(n int) { e.maxDepth = n }

func (e *Errors) limit() int {
	if e.maxDepth < 1 {
		return DefaultMaxDepth
	}
	return e.maxDepth
}

// Add records a free-form message at the current path.
func (e *Errors) Add(format string, args ...any) { e.AddCode(CodeCustom, format, args...) }

// AddCode records a categorised message at the current path.
func (e *Errors) AddCode(code, format string, args ...any) {
	e.issues = append(e.issues, Issue{
		Path:    PathStr(e.path),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Hint:    i18n.T(code, nil),
	})
}

// RequireType records a type mismatch unless v has the expected kind.
func (e *Errors) RequireType(v *value.Value, kind value.Kind) bool {
	if v.Kind() != kind {
		e.AddCode(CodeInvalidType, "Required JSON type %s, but got %s", kind, v.Kind())
		return false
	}
	return true
}

// RequireProperty fetches a member of an object value, recording an issue if
// v is not an object, the member is missing, or (when kind is given) the
// member has the wrong kind.
func (e *Errors) RequireProperty(v *value.Value, name string, kind ...value.Kind) (*value.Value, bool) {
	if !e.RequireType(v, value.Object) {
		return nil, false
	}
	member, ok := v.Get(name)
	if !ok {
		e.AddCode(CodeRequired, "Required JSON property `%s` is not defined", name)
		return nil, false
	}
	if len(kind) > 0 && !e.RequireType(member, kind[0]) {
		return nil, false
	}
	return member, true
}

// Push enters a path segment.
func (e *Errors) Push(id PathItem) { e.path = append(e.path, id) }

// Pop leaves the innermost path segment.
func (e *Errors) Pop() {
	if n := len(e.path); n > 0 {
		e.path = e.path[:n-1]
	}
}

// Path returns a copy of the current path.
func (e *Errors) Path() Path { return append(Path(nil), e.path...) }

// WithIdentifier runs fn one level deeper, under id when it is non-nil.
// Exceeding the depth limit records an issue and fails without calling fn.
func (e *Errors) WithIdentifier(id *PathItem, fn func() bool) bool {
	if e.depth >= e.limit() {
		e.AddCode(CodeRecursion, "maximum stack size (%d) exceeded: infinite recursion?", e.limit())
		return false
	}
	e.depth++
	if id != nil {
		e.Push(*id)
	}
	ok := fn()
	if id != nil {
		e.Pop()
	}
	e.depth--
	return ok
}

// Success reports whether no issues were recorded.
func (e *Errors) Success() bool { return len(e.issues) == 0 }

// Issues returns the recorded issues in order.
func (e *Errors) Issues() Issues { return append(Issues(nil), e.issues...) }

// Strings renders every issue as "<path>: <message>".
func (e *Errors) Strings() []string {
	out := make([]string, len(e.issues))
	for i, it := range e.issues {
		out[i] = it.String()
	}
	return out
}

// Err returns the issues as an error, or nil on success.
func (e *Errors) Err() error {
	if e.Success() {
		return nil
	}
	return e.Issues()
}

// Log writes every issue to l at warn level.
func (e *Errors) Log(l *slog.Logger) {
	if l == nil {
		l = logger()
	}
	for _, it := range e.issues {
		l.Warn(it.Message, "path", it.Path, "code", it.Code)
	}
}
