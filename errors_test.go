package vulfield_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaeryn-uk/vulfield"
	"github.com/vaeryn-uk/vulfield/value"
)

func TestErrorsQualifiesMessagesWithPath(t *testing.T) {
	var errs vulfield.Errors
	errs.Add("top level")

	list := vulfield.Prop("list")
	idx := vulfield.Index(2)
	ok := errs.WithIdentifier(&list, func() bool {
		return errs.WithIdentifier(&idx, func() bool {
			return errs.RequireType(value.NewString("x"), value.Number)
		})
	})
	require.False(t, ok)
	require.Equal(t, []string{
		".: top level",
		".list[2]: Required JSON type Number, but got String",
	}, errs.Strings())
	require.Equal(t, vulfield.CodeInvalidType, errs.Issues()[1].Code)
	require.Equal(t, "invalid type", errs.Issues()[1].Hint)
	require.Empty(t, errs.Path(), "path is restored after each identifier")
}

func TestRequireProperty(t *testing.T) {
	obj, err := value.Parse([]byte(`{"name": "a", "size": 2}`))
	require.NoError(t, err)

	var errs vulfield.Errors
	v, ok := errs.RequireProperty(obj, "name", value.String)
	require.True(t, ok)
	require.Equal(t, "a", v.Str())

	_, ok = errs.RequireProperty(obj, "type")
	require.False(t, ok)
	_, ok = errs.RequireProperty(obj, "size", value.String)
	require.False(t, ok)
	_, ok = errs.RequireProperty(value.NewArray(), "name")
	require.False(t, ok)

	require.Equal(t, []string{
		".: Required JSON property `type` is not defined",
		".: Required JSON type String, but got Number",
		".: Required JSON type Object, but got Array",
	}, errs.Strings())
}

func TestRecursionLimit(t *testing.T) {
	var errs vulfield.Errors
	errs.SetMaxDepth(5)

	calls := 0
	var recurse func() bool
	recurse = func() bool {
		calls++
		return errs.WithIdentifier(nil, recurse)
	}
	require.False(t, errs.WithIdentifier(nil, recurse))
	require.Equal(t, 5, calls)
	require.Equal(t, []string{".: maximum stack size (5) exceeded: infinite recursion?"}, errs.Strings())
	require.Equal(t, vulfield.CodeRecursion, errs.Issues()[0].Code)
}

type chain struct {
	Name string
	Next *chain
}

func (c *chain) VulFieldSet() *vulfield.FieldSet {
	fs := vulfield.NewFieldSet()
	fs.Add(vulfield.Create(&c.Name), "name")
	fs.Add(vulfield.CreateWith(&c.Next, vulfield.Ptr[chain]()), "next")
	return fs
}

func TestRecursiveTypeHitsDepthLimit(t *testing.T) {
	ctx := vulfield.NewSerializationContext()
	_, ok := vulfield.Describe(ctx, vulfield.For[chain](), nil)
	require.False(t, ok)
	issues := ctx.Errors.Issues()
	require.Len(t, issues, 1)
	require.Equal(t, vulfield.CodeRecursion, issues[0].Code)
	require.Equal(t, "maximum stack size (100) exceeded: infinite recursion?", issues[0].Message)
	require.True(t, strings.HasPrefix(issues[0].Path, ".next.next."), issues[0].Path)

	long := &chain{Name: "0"}
	for i := 1; i < 50; i++ {
		long = &chain{Name: strconv.Itoa(i), Next: long}
	}
	ctx = vulfield.NewSerializationContext()
	ctx.Errors.SetMaxDepth(20)
	_, ok = vulfield.Serialize(ctx, vulfield.For[chain](), *long, nil)
	require.False(t, ok)
	require.Len(t, ctx.Errors.Issues(), 1)
	require.Contains(t, ctx.Errors.Strings()[0], "maximum stack size (20) exceeded")

	short := chain{Name: "a", Next: &chain{Name: "b"}}
	require.Equal(t, `{"name":"a","next":{"name":"b"}}`, encode(t, vulfield.NewSerializationContext(), short))
}

func TestIssuesAsError(t *testing.T) {
	var errs vulfield.Errors
	require.NoError(t, errs.Err())
	require.True(t, errs.Success())

	for _, m := range []string{"one", "two", "three", "four"} {
		errs.Add("%s", m)
	}
	err := errs.Err()
	require.EqualError(t, err, ".: one; .: two; .: three; ... (total 4)")

	wrapped := errors.Join(errors.New("context"), err)
	iss, ok := vulfield.AsIssues(wrapped)
	require.True(t, ok)
	require.Len(t, iss, 4)

	_, ok = vulfield.AsIssues(errors.New("plain"))
	require.False(t, ok)
}

func TestErrorsLog(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	var errs vulfield.Errors
	name := vulfield.Prop("name")
	errs.WithIdentifier(&name, func() bool {
		errs.AddCode(vulfield.CodeRequired, "missing")
		return false
	})
	errs.Log(l)
	require.Contains(t, buf.String(), "level=WARN msg=missing path=.name code=required")
}
