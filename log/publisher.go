package log

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Entry is a copy of a [Record] that is safe to retain.
type Entry struct {
	Time    time.Time
	Err     error
	Logger  string
	Marker  string
	Message string
	Level   Level
}

// NewEntry copies r into an [Entry].
func NewEntry(r *Record) Entry {
	e := Entry{
		Time:    r.Timestamp(),
		Err:     r.Err,
		Logger:  r.Logger,
		Message: string(r.Message),
		Level:   r.Level,
	}
	if r.Marker != nil {
		e.Marker = r.Marker.String()
	}

	return e
}

// Publisher is a [Sink] that fans out records to subscribers.
//
// Each call to [Publisher.Deliver] copies the record once into an [Entry]
// and delivers it to every active [Subscription] via a buffered channel
// with ring-buffer semantics: when a subscriber's channel is full the oldest
// entry is dropped so Deliver never blocks. Safe for concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subscribers []*Subscription
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// NewPublisher creates a [Publisher] with the given options.
// The default buffer size is 64.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		bufSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n < 1 {
			n = 1
		}

		p.bufSize = n
	}
}

// Deliver copies r and sends the copy to all active subscribers. When a
// subscriber's channel is full the oldest entry is dropped to make room.
// Closed subscriptions are compacted out of the subscriber list.
func (p *Publisher) Deliver(r *Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || len(p.subscribers) == 0 {
		return
	}

	entry := NewEntry(r)

	// Compact closed subscriptions and deliver in one pass.
	alive := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if sub.closed.Load() {
			close(sub.ch)
			continue
		}
		// Ring-buffer: drop oldest if full. Subscribers only ever receive,
		// so after one receive there is room.
		select {
		case sub.ch <- entry:
		default:
			select {
			case <-sub.ch:
			default:
			}

			sub.ch <- entry
		}

		alive = append(alive, sub)
	}
	// Clear trailing references for GC.
	for i := len(alive); i < len(p.subscribers); i++ {
		p.subscribers[i] = nil
	}

	p.subscribers = alive
}

// Subscribe creates and registers a new [Subscription]. If the Publisher is
// already closed the returned subscription's channel is immediately closed.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{
		ch: make(chan Entry, p.bufSize),
	}

	if p.closed {
		close(sub.ch)
		return sub
	}

	p.subscribers = append(p.subscribers, sub)

	return sub
}

// Close marks the Publisher as closed, closes all subscription channels,
// and releases the subscriber list. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	for _, sub := range p.subscribers {
		close(sub.ch)
	}

	p.subscribers = nil

	return nil
}

// Subscription receives log entries from a [Publisher].
type Subscription struct {
	ch     chan Entry
	closed atomic.Bool
}

// C returns the read-only channel that delivers log entries.
func (s *Subscription) C() <-chan Entry {
	return s.ch
}

// Close marks the subscription as closed. The Publisher will close the
// underlying channel on its next Deliver or Close call. Idempotent.
func (s *Subscription) Close() {
	s.closed.Store(true)
}
