package prettyprint_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/tproll/prettyprint"
)

type point struct {
	X, Y int
}

type named string

func (n named) String() string { return "named:" + string(n) }

type panicStringer struct{}

func (panicStringer) String() string { panic("boom") }

func TestAppendDefault(t *testing.T) {
	t.Parallel()

	var nilPtr *point

	tcs := map[string]struct {
		input any
		want  string
	}{
		"nil":                {input: nil, want: "null"},
		"typed nil":          {input: nilPtr, want: "null"},
		"string":             {input: "hello", want: "hello"},
		"bytes":              {input: []byte("raw"), want: "raw"},
		"int":                {input: 42, want: "42"},
		"negative int64":     {input: int64(-7), want: "-7"},
		"uint8":              {input: uint8(255), want: "255"},
		"float":              {input: 3.5, want: "3.5"},
		"float32":            {input: float32(0.25), want: "0.25"},
		"bool":               {input: true, want: "true"},
		"error":              {input: errors.New("disk full"), want: "disk full"},
		"stringer":           {input: named("x"), want: "named:x"},
		"duration":           {input: 1500 * time.Millisecond, want: "1.5s"},
		"struct":             {input: point{X: 1, Y: 2}, want: "{1 2}"},
		"slice":              {input: []int{1, 2, 3}, want: "[1, 2, 3]"},
		"empty slice":        {input: []string{}, want: "[]"},
		"array":              {input: [2]string{"a", "b"}, want: "[a, b]"},
		"nested":             {input: [][]int{{1}, {2, 3}}, want: "[[1], [2, 3]]"},
		"mixed any":          {input: []any{nil, "s", 1}, want: "[null, s, 1]"},
		"map sorted":         {input: map[string]int{"b": 2, "a": 1}, want: "{a=1, b=2}"},
		"map of slices":      {input: map[int][]int{1: {1}}, want: "{1=[1]}"},
		"panicking stringer": {input: panicStringer{}, want: "%!v(PANIC=String method: boom)"},
	}

	p := prettyprint.New()

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			p.Append(&buf, tc.input)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestMaxElements(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input any
		want  string
		max   int
	}{
		"slice under limit": {
			input: []int{1, 2},
			max:   3,
			want:  "[1, 2]",
		},
		"slice at limit": {
			input: []int{1, 2, 3},
			max:   3,
			want:  "[1, 2, 3]",
		},
		"slice over limit": {
			input: []int{1, 2, 3, 4, 5, 6, 7},
			max:   5,
			want:  "[1, 2, 3, 4, 5, ... (2 more)]",
		},
		"map over limit": {
			input: map[string]bool{"a": true, "b": true, "c": false},
			max:   2,
			want:  "{a=true, b=true, ... (1 more)}",
		},
		"clamped to one": {
			input: []string{"x", "y"},
			max:   0,
			want:  "[x, ... (1 more)]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := prettyprint.New(prettyprint.WithMaxElements(tc.max))
			assert.Equal(t, tc.want, p.Sprint(tc.input))
		})
	}
}

func TestDefaultMaxElements(t *testing.T) {
	t.Parallel()

	p := prettyprint.New()
	assert.Equal(t, prettyprint.DefaultMaxElements, p.MaxElements())

	in := make([]int, 25)
	got := p.Sprint(in)

	assert.True(t, strings.HasSuffix(got, "... (15 more)]"), got)
}

func TestSelfReferencingValue(t *testing.T) {
	t.Parallel()

	pair := []any{1, nil}
	pair[1] = pair

	wide := make([]any, 10)
	for i := range wide {
		wide[i] = wide
	}

	self := map[string]any{"a": 1}
	self["self"] = self

	shared := []int{1}

	prefix := []any{1, 2, nil}
	prefix[2] = prefix[:2]

	tcs := map[string]struct {
		v    any
		want string
	}{
		"slice containing itself": {
			v:    pair,
			want: "[1, [...]]",
		},
		"wide self reference": {
			v:    wide,
			want: "[" + strings.Repeat("[...], ", 9) + "[...]]",
		},
		"map containing itself": {
			v:    self,
			want: "{a=1, self={...}}",
		},
		"shared value is not a cycle": {
			v:    []any{shared, shared},
			want: "[[1], [1]]",
		},
		"subslice is not a cycle": {
			v:    prefix,
			want: "[1, 2, [1, 2]]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, prettyprint.New().Sprint(tc.v))
		})
	}
}

func TestDeepNestingIsBounded(t *testing.T) {
	t.Parallel()

	var v any = 1
	for range 20 {
		v = []any{v}
	}

	got := prettyprint.New().Sprint(v)
	assert.Equal(t, strings.Repeat("[", 8)+"[...]"+strings.Repeat("]", 8), got)
}

type upperModule struct{}

func (upperModule) Accepts(v any) bool {
	_, ok := v.(string)
	return ok
}

func (upperModule) Append(buf *bytes.Buffer, v any, _ int) {
	s, _ := v.(string)
	buf.WriteString(strings.ToUpper(s))
}

type starModule struct{}

func (starModule) Accepts(any) bool { return true }

func (starModule) Append(buf *bytes.Buffer, _ any, _ int) { buf.WriteString("*") }

type brokenModule struct{}

func (brokenModule) Accepts(v any) bool {
	_, ok := v.(int)
	return ok
}

func (brokenModule) Append(buf *bytes.Buffer, _ any, _ int) {
	buf.WriteString("partial")
	panic("module failure")
}

func TestModules(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   any
		want    string
		modules []prettyprint.Module
	}{
		"first acceptor wins": {
			modules: []prettyprint.Module{upperModule{}, starModule{}},
			input:   "abc",
			want:    "ABC",
		},
		"later module used when earlier declines": {
			modules: []prettyprint.Module{upperModule{}, starModule{}},
			input:   1,
			want:    "*",
		},
		"modules apply to collection items": {
			modules: []prettyprint.Module{upperModule{}},
			input:   []string{"a", "b"},
			want:    "[A, B]",
		},
		"panicking module falls back": {
			modules: []prettyprint.Module{brokenModule{}},
			input:   7,
			want:    "7",
		},
		"panicking module inside collection": {
			modules: []prettyprint.Module{brokenModule{}},
			input:   []any{"a", 7},
			want:    "[a, 7]",
		},
		"nil never reaches modules": {
			modules: []prettyprint.Module{starModule{}},
			input:   nil,
			want:    "null",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := prettyprint.New(prettyprint.WithModules(tc.modules...))
			assert.Equal(t, tc.want, p.Sprint(tc.input))
		})
	}
}

func TestPathModule(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(file, link))

	missing := filepath.Join(dir, "missing")

	f, err := os.Open(file)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, f.Close()) })

	tcs := map[string]struct {
		input any
		want  string
	}{
		"directory": {
			input: prettyprint.Path(dir),
			want:  dir + string(filepath.Separator),
		},
		"file": {
			input: prettyprint.Path(file),
			want:  file,
		},
		"symlink resolved": {
			input: prettyprint.Path(link),
			want:  file,
		},
		"missing": {
			input: prettyprint.Path(missing),
			want:  missing + prettyprint.MissingSuffix,
		},
		"unclean path": {
			input: prettyprint.Path(dir + "/./file.txt"),
			want:  file,
		},
		"os file": {
			input: f,
			want:  file,
		},
	}

	p := prettyprint.New(prettyprint.WithModules(prettyprint.PathModule{}))

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, p.Sprint(tc.input))
		})
	}
}

func TestPathModuleAccepts(t *testing.T) {
	t.Parallel()

	m := prettyprint.PathModule{}
	p := prettyprint.Path("x")

	assert.True(t, m.Accepts(p))
	assert.True(t, m.Accepts(&p))
	assert.True(t, m.Accepts(os.Stdout))
	assert.False(t, m.Accepts("x"))
	assert.False(t, m.Accepts(1))
}

func TestDefaultPrinter(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	got := prettyprint.Default().Sprint(prettyprint.Path(dir))
	assert.Equal(t, dir+string(filepath.Separator), got)
}
