package prettyprint

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

const (
	// DefaultMaxElements is the default number of collection elements
	// rendered before the rest are elided.
	DefaultMaxElements = 10

	// Null is the text rendered for nil values.
	Null = "null"

	maxDepth = 8
)

// Module renders the values it accepts.
type Module interface {
	// Accepts reports whether the module renders v. It is never called with
	// a nil v.
	Accepts(v any) bool
	// Append writes the text form of v to buf. Collections should render at
	// most maxElements items.
	Append(buf *bytes.Buffer, v any, maxElements int)
}

// Printer renders values through an ordered list of [Module]s, falling back
// to a default renderer. A Printer is immutable and safe for concurrent use.
//
// The default renderer writes errors as their Error text without the type
// name, and [fmt.Stringer] values as their String text. Slices, arrays and
// maps are bounded by [WithMaxElements]; a collection that contains itself is
// rendered as "[...]" or "{...}" where it recurs.
//
// Create instances with [New].
type Printer struct {
	modules     []Module
	maxElements int
}

// Option configures a [Printer].
type Option func(*Printer)

// WithModules appends modules to the dispatch list. Modules are consulted in
// the order given.
func WithModules(modules ...Module) Option {
	return func(p *Printer) {
		p.modules = append(p.modules, modules...)
	}
}

// WithMaxElements sets how many collection elements are rendered before the
// remainder is elided. Values less than 1 are clamped to 1.
func WithMaxElements(n int) Option {
	return func(p *Printer) {
		if n < 1 {
			n = 1
		}

		p.maxElements = n
	}
}

// New creates a [Printer] with the given options.
func New(opts ...Option) *Printer {
	p := &Printer{
		maxElements: DefaultMaxElements,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

var defaultPrinter = New(WithModules(PathModule{}))

// Default returns the shared [Printer] with [PathModule] installed.
func Default() *Printer {
	return defaultPrinter
}

// MaxElements returns the collection element bound.
func (p *Printer) MaxElements() int {
	return p.maxElements
}

// Append writes the text form of v to buf.
func (p *Printer) Append(buf *bytes.Buffer, v any) {
	p.append(buf, v, walk{})
}

// Sprint returns the text form of v.
func (p *Printer) Sprint(v any) string {
	var buf bytes.Buffer

	p.Append(&buf, v)

	return buf.String()
}

func (p *Printer) append(buf *bytes.Buffer, v any, w walk) {
	if isNil(v) {
		buf.WriteString(Null)
		return
	}

	start := buf.Len()

	defer func() {
		if r := recover(); r != nil {
			buf.Truncate(start)
			fallback(buf, v)
		}
	}()

	for _, m := range p.modules {
		if m.Accepts(v) {
			m.Append(buf, v, p.maxElements)
			return
		}
	}

	p.appendDefault(buf, v, w)
}

// fallback renders v with fmt, which recovers from panicking String and
// Error methods itself.
func fallback(buf *bytes.Buffer, v any) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(buf, "<%T>", v)
		}
	}()

	fmt.Fprintf(buf, "%v", v)
}

func (p *Printer) appendDefault(buf *bytes.Buffer, v any, w walk) {
	switch x := v.(type) {
	case string:
		buf.WriteString(x)
	case []byte:
		buf.Write(x)
	case error:
		buf.WriteString(x.Error())
	case fmt.Stringer:
		buf.WriteString(x.String())
	case bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), x))
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case int8:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case int16:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case int32:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(x), 10))
	case int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), x, 10))
	case uint:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(x), 10))
	case uint8:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(x), 10))
	case uint16:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(x), 10))
	case uint32:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(x), 10))
	case uint64:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), x, 10))
	case float32:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), float64(x), 'g', -1, 32))
	case float64:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), x, 'g', -1, 64))
	default:
		p.appendReflect(buf, v, w)
	}
}

// walk tracks the collections on the path from the root value, so that a
// collection containing itself is rendered once.
type walk struct {
	path  map[visit]struct{}
	depth int
}

// visit identifies a slice or map by its backing storage. Length and type are
// part of the key, so a subslice sharing its parent's array is not a cycle.
type visit struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

// enter reports whether rv may be rendered below w and returns the walk for
// its elements, with leave to call once they are done.
func (w walk) enter(rv reflect.Value) (walk, func(), bool) {
	if w.depth >= maxDepth {
		return w, nil, false
	}

	next := walk{path: w.path, depth: w.depth + 1}

	if rv.Kind() == reflect.Array || rv.Len() == 0 {
		return next, func() {}, true
	}

	key := visit{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}
	if _, ok := next.path[key]; ok {
		return w, nil, false
	}

	if next.path == nil {
		next.path = make(map[visit]struct{})
	}

	next.path[key] = struct{}{}

	return next, func() { delete(next.path, key) }, true
}

func (p *Printer) appendReflect(buf *bytes.Buffer, v any, w walk) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		next, leave, ok := w.enter(rv)
		if !ok {
			buf.WriteString("[...]")
			return
		}
		defer leave()

		p.appendList(buf, rv, next)

	case reflect.Map:
		next, leave, ok := w.enter(rv)
		if !ok {
			buf.WriteString("{...}")
			return
		}
		defer leave()

		p.appendMap(buf, rv, next)

	default:
		fmt.Fprintf(buf, "%v", v)
	}
}

func (p *Printer) appendList(buf *bytes.Buffer, rv reflect.Value, w walk) {
	n := rv.Len()
	shown := min(n, p.maxElements)

	buf.WriteByte('[')

	for i := range shown {
		if i > 0 {
			buf.WriteString(", ")
		}

		p.append(buf, elem(rv.Index(i)), w)
	}

	writeElision(buf, shown, n)
	buf.WriteByte(']')
}

func (p *Printer) appendMap(buf *bytes.Buffer, rv reflect.Value, w walk) {
	type entry struct {
		key   string
		value reflect.Value
	}

	entries := make([]entry, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		var kb bytes.Buffer

		p.append(&kb, elem(iter.Key()), w)
		entries = append(entries, entry{key: kb.String(), value: iter.Value()})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.key, b.key)
	})

	shown := min(len(entries), p.maxElements)

	buf.WriteByte('{')

	for i, e := range entries[:shown] {
		if i > 0 {
			buf.WriteString(", ")
		}

		buf.WriteString(e.key)
		buf.WriteByte('=')
		p.append(buf, elem(e.value), w)
	}

	writeElision(buf, shown, len(entries))
	buf.WriteByte('}')
}

func writeElision(buf *bytes.Buffer, shown, total int) {
	if shown >= total {
		return
	}

	if shown > 0 {
		buf.WriteString(", ")
	}

	buf.WriteString("... (")
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(total-shown), 10))
	buf.WriteString(" more)")
}

// elem returns the dynamic value held by rv, or nil when it cannot be
// retrieved (unexported struct fields).
func elem(rv reflect.Value) any {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}

	return rv.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface,
		reflect.UnsafePointer:
		return rv.IsNil()
	}

	return false
}
