package marker

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrCycle indicates that a marker reference graph contains a cycle.
var ErrCycle = errors.New("marker reference cycle")

// CycleError reports a cycle found while traversing from Root.
type CycleError struct {
	// Root is the name of the marker the traversal started from.
	Root string
	// At is the name of the marker whose reference closed the cycle.
	At string
}

// Error implements [error].
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: marker %q contains a cycle through %q", ErrCycle, e.Root, e.At)
}

// Unwrap returns [ErrCycle].
func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// Marker is a named tag which may reference other markers.
//
// Markers are compared by identity. All methods are safe for concurrent use.
//
// Create instances with [New] or [NewValue].
type Marker struct {
	value any
	name  string
	// refs is replaced, never mutated in place, so snapshots taken under mu
	// stay valid after the lock is released.
	refs []*Marker
	mu   sync.RWMutex
}

// New creates a [Marker] with the given name and initial references.
func New(name string, refs ...*Marker) *Marker {
	return NewValue(name, nil, refs...)
}

// NewValue creates a [Marker] carrying value, which can be located with
// [FindByType].
func NewValue(name string, value any, refs ...*Marker) *Marker {
	m := &Marker{name: name, value: value}
	for _, ref := range refs {
		m.Add(ref)
	}

	return m
}

// Name returns the marker name.
func (m *Marker) Name() string {
	return m.name
}

// Value returns the payload given to [NewValue], or nil.
func (m *Marker) Value() any {
	return m.value
}

// Add appends other to the references of m. Adding nil, m itself, or a
// marker that is already referenced does nothing.
func (m *Marker) Add(other *Marker) {
	if other == nil || other == m {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.refs, other) {
		return
	}

	refs := make([]*Marker, len(m.refs), len(m.refs)+1)
	copy(refs, m.refs)
	m.refs = append(refs, other)
}

// Remove removes other from the references of m and reports whether it was
// present.
func (m *Marker) Remove(other *Marker) bool {
	if other == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.Index(m.refs, other)
	if i < 0 {
		return false
	}

	m.refs = slices.Delete(slices.Clone(m.refs), i, i+1)

	return true
}

// Clear removes all references.
func (m *Marker) Clear() {
	m.mu.Lock()
	m.refs = nil
	m.mu.Unlock()
}

// HasReferences reports whether m references any marker.
func (m *Marker) HasReferences() bool {
	return len(m.snapshot()) > 0
}

// References returns a copy of the references of m in insertion order.
func (m *Marker) References() []*Marker {
	return slices.Clone(m.snapshot())
}

func (m *Marker) snapshot() []*Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.refs
}

// Contains reports whether other is m or is reachable from m.
func (m *Marker) Contains(other *Marker) bool {
	if other == nil {
		return false
	}

	return m.any(func(n *Marker) bool { return n == other })
}

// ContainsName reports whether m, or any marker reachable from m, is named
// name.
func (m *Marker) ContainsName(name string) bool {
	return m.any(func(n *Marker) bool { return n.name == name })
}

func (m *Marker) any(match func(*Marker) bool) bool {
	visited := map[*Marker]struct{}{}
	stack := []*Marker{m}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[n]; ok {
			continue
		}

		visited[n] = struct{}{}

		if match(n) {
			return true
		}

		stack = append(stack, n.snapshot()...)
	}

	return false
}

// String renders the marker as its name, followed by its references in
// brackets when it has any, e.g. "audit [security, billing [finance]]".
func (m *Marker) String() string {
	var sb strings.Builder

	m.writeTo(&sb, map[*Marker]struct{}{})

	return sb.String()
}

func (m *Marker) writeTo(sb *strings.Builder, path map[*Marker]struct{}) {
	sb.WriteString(m.name)

	refs := m.snapshot()
	if len(refs) == 0 {
		return
	}

	if _, ok := path[m]; ok {
		sb.WriteString(" [...]")
		return
	}

	path[m] = struct{}{}

	sb.WriteString(" [")

	for i, ref := range refs {
		if i > 0 {
			sb.WriteString(", ")
		}

		ref.writeTo(sb, path)
	}

	sb.WriteByte(']')

	delete(path, m)
}

// Walk visits root and every marker reachable from it depth-first, calling
// visit for each marker for which match returns true. A nil match matches
// every marker. A nil root is a no-op.
//
// Markers reachable through several paths are visited once per path. If a
// reference leads back to a marker on the current path, Walk stops and
// returns a [*CycleError].
func Walk(root *Marker, match func(*Marker) bool, visit func(*Marker)) error {
	if root == nil {
		return nil
	}

	w := walker{
		root:  root,
		match: match,
		visit: visit,
		path:  map[*Marker]struct{}{},
	}

	return w.walk(root)
}

type walker struct {
	root  *Marker
	match func(*Marker) bool
	visit func(*Marker)
	path  map[*Marker]struct{}
}

func (w *walker) walk(m *Marker) error {
	if _, ok := w.path[m]; ok {
		return &CycleError{Root: w.root.name, At: m.name}
	}

	if w.match == nil || w.match(m) {
		w.visit(m)
	}

	refs := m.snapshot()
	if len(refs) == 0 {
		return nil
	}

	w.path[m] = struct{}{}
	defer delete(w.path, m)

	for _, ref := range refs {
		err := w.walk(ref)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindByType calls visit for every marker reachable from root whose
// [Marker.Value] is of type T. It returns a [*CycleError] if the graph
// contains a cycle.
func FindByType[T any](root *Marker, visit func(*Marker, T)) error {
	return Walk(root,
		func(m *Marker) bool {
			_, ok := m.value.(T)
			return ok
		},
		func(m *Marker) {
			v, _ := m.value.(T)
			visit(m, v)
		},
	)
}
