package log

import (
	"time"

	"go.jacobcolvin.com/tproll/marker"
)

// Record is a single rendered log call.
//
// A Record and its Message are only valid for the duration of
// [Sink.Deliver]; sinks that keep any part of it must copy it.
type Record struct {
	// Err is the error extracted from the arguments, if any. It is not part
	// of Message.
	Err error
	// Marker is the marker the call was tagged with, or nil.
	Marker *marker.Marker
	// Logger is the name of the logger.
	Logger string
	// Message is the rendered template.
	Message []byte
	// Time is the Unix time of the call in milliseconds.
	Time int64
	// Level is the severity of the call.
	Level Level
}

// Timestamp returns Time as a [time.Time].
func (r *Record) Timestamp() time.Time {
	return time.UnixMilli(r.Time)
}

// Text returns a copy of Message as a string.
func (r *Record) Text() string {
	return string(r.Message)
}

// Sink receives rendered records. Deliver is called once per enabled log
// call, while the calling logger holds its lock, so implementations should
// not log through the same logger.
type Sink interface {
	Deliver(r *Record)
}

// SinkFunc adapts a function to a [Sink].
type SinkFunc func(r *Record)

// Deliver calls f(r).
func (f SinkFunc) Deliver(r *Record) {
	f(r)
}

// Discard is a [Sink] that drops every record.
var Discard Sink = SinkFunc(func(*Record) {})

type multiSink []Sink

func (m multiSink) Deliver(r *Record) {
	for _, s := range m {
		s.Deliver(r)
	}
}

// MultiSink returns a [Sink] that delivers each record to every sink in
// order. Nil sinks are skipped.
func MultiSink(sinks ...Sink) Sink {
	m := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}

	return m
}

// TimeSource provides record timestamps.
type TimeSource interface {
	// NowMillis returns the current Unix time in milliseconds.
	NowMillis() int64
}

// TimeSourceFunc adapts a function to a [TimeSource].
type TimeSourceFunc func() int64

// NowMillis calls f.
func (f TimeSourceFunc) NowMillis() int64 {
	return f()
}

// SystemClock is a [TimeSource] backed by [time.Now].
var SystemClock TimeSource = TimeSourceFunc(func() int64 {
	return time.Now().UnixMilli()
})

// LevelChangeListener is notified after the level of a [Core] changes.
type LevelChangeListener func(level Level)
