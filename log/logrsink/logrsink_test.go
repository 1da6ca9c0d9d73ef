package logrsink_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/log/logrsink"
)

type captureSink struct {
	entries []log.Entry
	mu      sync.Mutex
}

func (s *captureSink) Deliver(r *log.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, log.NewEntry(r))
}

type secret string

func (secret) MarshalLog() any { return "***" }

func newLogger(t *testing.T, level log.Level) (*log.Logger, *captureSink) {
	t.Helper()

	sink := &captureSink{}
	core := log.NewCore(log.WithSink(sink), log.WithLevel(level))

	return core.Logger("ctrl"), sink
}

func TestInfo(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		kv        []any
		want      string
		verbosity int
		wantLevel log.Level
	}{
		"no values": {
			want:      "reconciled",
			wantLevel: log.LevelInfo,
		},
		"key values": {
			kv:        []any{"name", "web", "replicas", 3},
			want:      "reconciled {name=web, replicas=3}",
			wantLevel: log.LevelInfo,
		},
		"missing value": {
			kv:        []any{"name"},
			want:      "reconciled {name=<no-value>}",
			wantLevel: log.LevelInfo,
		},
		"non-string key": {
			kv:        []any{7, "x"},
			want:      "reconciled {7=x}",
			wantLevel: log.LevelInfo,
		},
		"marshaler": {
			kv:        []any{"token", secret("hunter2")},
			want:      "reconciled {token=***}",
			wantLevel: log.LevelInfo,
		},
		"verbosity one": {
			verbosity: 1,
			want:      "reconciled",
			wantLevel: log.LevelDebug,
		},
		"verbosity five": {
			verbosity: 5,
			want:      "reconciled",
			wantLevel: log.LevelTrace,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l, sink := newLogger(t, log.LevelTrace)
			logrsink.New(l).V(tc.verbosity).Info("reconciled", tc.kv...)

			require.Len(t, sink.entries, 1)
			assert.Equal(t, tc.want, sink.entries[0].Message)
			assert.Equal(t, tc.wantLevel, sink.entries[0].Level)
			assert.Equal(t, "ctrl", sink.entries[0].Logger)
			assert.Equal(t, "logr", sink.entries[0].Marker)
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	l, sink := newLogger(t, log.LevelInfo)
	errBoom := errors.New("boom")

	logrsink.New(l).Error(errBoom, "sync {} failed", "id", 1)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, `sync {} failed {id=1}`, sink.entries[0].Message)
	assert.Equal(t, log.LevelError, sink.entries[0].Level)
	require.ErrorIs(t, sink.entries[0].Err, errBoom)
}

func TestWithNameAndValues(t *testing.T) {
	t.Parallel()

	l, sink := newLogger(t, log.LevelInfo)

	base := logrsink.New(l)
	child := base.WithName("cache").WithName("lru").WithValues("shard", 2)

	child.Info("evicted", "n", 10)
	base.Info("untouched")

	require.Len(t, sink.entries, 2)
	assert.Equal(t, "ctrl/cache/lru", sink.entries[0].Logger)
	assert.Equal(t, "evicted {shard=2, n=10}", sink.entries[0].Message)
	assert.Equal(t, "ctrl", sink.entries[1].Logger)
	assert.Equal(t, "untouched", sink.entries[1].Message)
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	l, sink := newLogger(t, log.LevelInfo)
	logger := logrsink.New(l)

	assert.True(t, logger.Enabled())
	assert.False(t, logger.V(1).Enabled())

	logger.V(1).Info("hidden")
	logger.V(2).Info("hidden")

	assert.Empty(t, sink.entries)
}

func TestLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, log.LevelInfo, logrsink.Level(-1))
	assert.Equal(t, log.LevelInfo, logrsink.Level(0))
	assert.Equal(t, log.LevelDebug, logrsink.Level(1))
	assert.Equal(t, log.LevelTrace, logrsink.Level(2))
}
