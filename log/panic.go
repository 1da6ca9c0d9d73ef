package log

import (
	"fmt"
)

// RecoverPanic logs a panic in progress at [LevelError] and then re-panics
// with the same value. It must be deferred directly:
//
//	func worker(logger *log.Logger) {
//	    defer logger.RecoverPanic()
//	    ...
//	}
//
// A panic value that is an error becomes the extracted error of the record.
func (l *Logger) RecoverPanic() {
	r := recover()
	if r == nil {
		return
	}

	what := "goroutine"
	if l.name != "" {
		what = l.name
	}

	switch v := r.(type) {
	case error:
		l.Error("{} has crashed with panic", what, v)
	default:
		l.Error("{} has crashed with panic: {}", what, fmt.Sprint(v))
	}

	panic(r)
}
