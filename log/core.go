package log

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.jacobcolvin.com/tproll/prettyprint"
)

// InternalLoggerName is the name of the logger a [Core] uses to report its
// own events.
const InternalLoggerName = "tproll"

// ErrNilCollaborator indicates that a required sink, time source, listener
// or printer was nil.
var ErrNilCollaborator = errors.New("nil collaborator")

// Core is the configuration shared by a set of [Logger]s: the active level,
// [Sink], [TimeSource], [LevelChangeListener] and [prettyprint.Printer].
//
// Reads are lock-free, so every log call observes one consistent snapshot of
// the collaborators. Reconfiguration is expected to be rare. All methods are
// safe for concurrent use.
//
// Create instances with [NewCore], or use the process-wide [Default].
type Core struct {
	state    atomic.Pointer[coreState]
	internal *Logger
	mu       sync.Mutex // Serializes reconfiguration.
	level    atomic.Int32
}

type coreState struct {
	sink     Sink
	clock    TimeSource
	listener LevelChangeListener
	printer  *prettyprint.Printer
}

// CoreOption configures a [Core]. Options given nil values are ignored.
type CoreOption func(*Core, *coreState)

// WithSink sets the [Sink]. The default writes to [os.Stderr] through a
// [WriterSink].
func WithSink(s Sink) CoreOption {
	return func(_ *Core, st *coreState) {
		if s != nil {
			st.sink = s
		}
	}
}

// WithTimeSource sets the [TimeSource]. The default is [SystemClock].
func WithTimeSource(ts TimeSource) CoreOption {
	return func(_ *Core, st *coreState) {
		if ts != nil {
			st.clock = ts
		}
	}
}

// WithLevelChangeListener sets the [LevelChangeListener]. The default logs
// the change at [LevelLog].
func WithLevelChangeListener(fn LevelChangeListener) CoreOption {
	return func(_ *Core, st *coreState) {
		if fn != nil {
			st.listener = fn
		}
	}
}

// WithPrinter sets the [prettyprint.Printer] used to render arguments. The
// default is [prettyprint.Default].
func WithPrinter(p *prettyprint.Printer) CoreOption {
	return func(_ *Core, st *coreState) {
		if p != nil {
			st.printer = p
		}
	}
}

// WithLevel sets the initial level without notifying the listener. The
// default is [LevelInfo]. Invalid levels are ignored.
func WithLevel(level Level) CoreOption {
	return func(c *Core, _ *coreState) {
		if level.valid() {
			c.level.Store(int32(level))
		}
	}
}

// NewCore creates a [Core] with the given options.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{}
	c.level.Store(int32(LevelInfo))
	c.internal = c.Logger(InternalLoggerName)

	st := &coreState{
		clock:    SystemClock,
		listener: c.logLevelChange,
		printer:  prettyprint.Default(),
	}
	for _, opt := range opts {
		opt(c, st)
	}

	if st.sink == nil {
		st.sink = NewWriterSink(os.Stderr)
	}

	c.state.Store(st)

	return c
}

var defaultCore = NewCore()

// Default returns the process-wide [Core] used by [New].
func Default() *Core {
	return defaultCore
}

// Logger creates a [Logger] named name that uses c.
func (c *Core) Logger(name string) *Logger {
	return &Logger{core: c, name: name}
}

// Level returns the current level.
func (c *Core) Level() Level {
	return Level(c.level.Load())
}

// Enabled reports whether calls at level are rendered. [LevelLog] is always
// enabled.
func (c *Core) Enabled(level Level) bool {
	return level == LevelLog || int32(level) >= c.level.Load()
}

// SetLevel sets the level and then notifies the [LevelChangeListener].
func (c *Core) SetLevel(level Level) error {
	if !level.valid() {
		return fmt.Errorf("%w: %w: %v", ErrInvalidArgument, ErrUnknownLogLevel, level)
	}

	c.mu.Lock()
	c.level.Store(int32(level))
	listener := c.state.Load().listener
	c.mu.Unlock()

	listener(level)

	return nil
}

// Sink returns the current [Sink].
func (c *Core) Sink() Sink {
	return c.state.Load().sink
}

// SetSink replaces the [Sink]. A nil sink is rejected and the current one
// is kept.
func (c *Core) SetSink(s Sink) error {
	if s == nil {
		return fmt.Errorf("%w: sink: %w", ErrInvalidArgument, ErrNilCollaborator)
	}

	c.update(func(st *coreState) { st.sink = s })

	return nil
}

// TimeSource returns the current [TimeSource].
func (c *Core) TimeSource() TimeSource {
	return c.state.Load().clock
}

// SetTimeSource replaces the [TimeSource]. A nil time source is rejected
// and the current one is kept.
func (c *Core) SetTimeSource(ts TimeSource) error {
	if ts == nil {
		return fmt.Errorf("%w: time source: %w", ErrInvalidArgument, ErrNilCollaborator)
	}

	c.update(func(st *coreState) { st.clock = ts })

	return nil
}

// LevelChangeListener returns the current [LevelChangeListener].
func (c *Core) LevelChangeListener() LevelChangeListener {
	return c.state.Load().listener
}

// SetLevelChangeListener replaces the [LevelChangeListener]. A nil listener
// is rejected and the current one is kept.
func (c *Core) SetLevelChangeListener(fn LevelChangeListener) error {
	if fn == nil {
		return fmt.Errorf("%w: level change listener: %w", ErrInvalidArgument, ErrNilCollaborator)
	}

	c.update(func(st *coreState) { st.listener = fn })

	return nil
}

// Printer returns the current [prettyprint.Printer].
func (c *Core) Printer() *prettyprint.Printer {
	return c.state.Load().printer
}

// SetPrinter replaces the [prettyprint.Printer]. A nil printer is rejected
// and the current one is kept.
func (c *Core) SetPrinter(p *prettyprint.Printer) error {
	if p == nil {
		return fmt.Errorf("%w: printer: %w", ErrInvalidArgument, ErrNilCollaborator)
	}

	c.update(func(st *coreState) { st.printer = p })

	return nil
}

// update publishes a modified copy of the current state.
func (c *Core) update(fn func(*coreState)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := *c.state.Load()
	fn(&st)
	c.state.Store(&st)
}

func (c *Core) logLevelChange(level Level) {
	c.internal.Log("Log level changed to {}", level)
}
