// Package metricsink counts log records with Prometheus.
//
// [Sink] wraps another [log.Sink] and increments a counter per level before
// passing each record on:
//
//	sink, err := metricsink.New(log.NewWriterSink(os.Stderr), prometheus.DefaultRegisterer)
//	core := log.NewCore(log.WithSink(sink))
package metricsink

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"go.jacobcolvin.com/tproll/log"
)

const namespace = "tproll"

var levels = []log.Level{
	log.LevelTrace,
	log.LevelDebug,
	log.LevelInfo,
	log.LevelWarn,
	log.LevelError,
	log.LevelLog,
}

// Sink is a [log.Sink] that counts records and forwards them to another
// sink. It exports:
//
//   - tproll_records_total{level}: records delivered, by lower-case level.
//   - tproll_records_with_error_total: records carrying an extracted error.
//
// Create instances with [New].
type Sink struct {
	next     log.Sink
	records  *prometheus.CounterVec
	errors   prometheus.Counter
	byLevel  map[log.Level]prometheus.Counter
	fallback prometheus.Counter
}

// New creates a [Sink] forwarding to next and registers its collectors with
// reg. A nil next drops records after counting them.
func New(next log.Sink, reg prometheus.Registerer) (*Sink, error) {
	if next == nil {
		next = log.Discard
	}

	s := &Sink{
		next: next,
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total log records delivered, by level.",
			},
			[]string{"level"},
		),
		errors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_with_error_total",
				Help:      "Total log records that carried an error.",
			},
		),
		byLevel: make(map[log.Level]prometheus.Counter, len(levels)),
	}

	collectors := []prometheus.Collector{s.records, s.errors}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}

			return nil, fmt.Errorf("registering log metrics: %w", err)
		}
	}

	for _, l := range levels {
		s.byLevel[l] = s.records.WithLabelValues(LevelLabel(l))
	}

	s.fallback = s.records.WithLabelValues("unknown")

	return s, nil
}

// Deliver implements [log.Sink].
func (s *Sink) Deliver(r *log.Record) {
	c, ok := s.byLevel[r.Level]
	if !ok {
		c = s.fallback
	}

	c.Inc()

	if r.Err != nil {
		s.errors.Inc()
	}

	s.next.Deliver(r)
}

// LevelLabel returns the "level" label value used for l.
func LevelLabel(l log.Level) string {
	return strings.ToLower(l.String())
}
