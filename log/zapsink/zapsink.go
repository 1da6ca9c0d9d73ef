// Package zapsink delivers log records to a [zap.Logger].
//
// Use it to route [log.Logger] output into an application that is already
// configured around zap:
//
//	z, _ := zap.NewProduction()
//	core := log.NewCore(log.WithSink(zapsink.New(z)))
package zapsink

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.jacobcolvin.com/tproll/log"
)

// Sink is a [log.Sink] writing to a [zap.Logger]. The record time and
// logger name replace zap's own; the marker and extracted error are added as
// "marker" and "error" fields.
//
// Create instances with [New].
type Sink struct {
	z *zap.Logger
}

// New creates a [Sink] writing to z.
func New(z *zap.Logger) *Sink {
	return &Sink{z: z}
}

// Deliver implements [log.Sink].
func (s *Sink) Deliver(r *log.Record) {
	ce := s.z.Check(Level(r.Level), string(r.Message))
	if ce == nil {
		return
	}

	ce.Time = r.Timestamp()
	ce.LoggerName = r.Logger

	fields := make([]zap.Field, 0, 2)
	if r.Marker != nil {
		fields = append(fields, zap.String("marker", r.Marker.String()))
	}

	if r.Err != nil {
		fields = append(fields, zap.Error(r.Err))
	}

	ce.Write(fields...)
}

// Level maps a [log.Level] to the closest [zapcore.Level]. Trace maps to
// debug and [log.LevelLog] to info, since zap has neither.
func Level(l log.Level) zapcore.Level {
	switch l {
	case log.LevelTrace, log.LevelDebug:
		return zapcore.DebugLevel
	case log.LevelWarn:
		return zapcore.WarnLevel
	case log.LevelError:
		return zapcore.ErrorLevel
	case log.LevelInfo, log.LevelLog:
	}

	return zapcore.InfoLevel
}
