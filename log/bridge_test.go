package log_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/tproll/log"
)

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		logFunc   func(*slog.Logger)
		wantErr   error
		want      string
		wantLevel log.Level
	}{
		"message only": {
			logFunc:   func(l *slog.Logger) { l.Info("hello") },
			want:      "hello",
			wantLevel: log.LevelInfo,
		},
		"message is literal": {
			logFunc:   func(l *slog.Logger) { l.Warn(`a {} b \ c`) },
			want:      `a {} b \ c`,
			wantLevel: log.LevelWarn,
		},
		"attributes": {
			logFunc:   func(l *slog.Logger) { l.Info("request", "method", "GET", slog.Int("status", 200)) },
			want:      "request {method=GET, status=200}",
			wantLevel: log.LevelInfo,
		},
		"error attribute is extracted": {
			logFunc:   func(l *slog.Logger) { l.Error("failed", "id", 7, "err", errBoom) },
			want:      "failed {id=7}",
			wantErr:   errBoom,
			wantLevel: log.LevelError,
		},
		"groups are flattened": {
			logFunc: func(l *slog.Logger) {
				l.Info("nested", slog.Group("http", slog.String("method", "PUT"), slog.Group("req", "id", 1)))
			},
			want:      "nested {http.method=PUT, http.req.id=1}",
			wantLevel: log.LevelInfo,
		},
		"with attrs and group": {
			logFunc: func(l *slog.Logger) {
				l.With("svc", "api", "cause", errBoom).WithGroup("g").Info("call", "n", 1)
			},
			want:      "call {svc=api, cause=boom, g.n=1}",
			wantLevel: log.LevelInfo,
		},
		"empty attributes are skipped": {
			logFunc:   func(l *slog.Logger) { l.Info("x", slog.Attr{}, slog.Group("empty")) },
			want:      "x",
			wantLevel: log.LevelInfo,
		},
		"debug below level": {
			logFunc: func(l *slog.Logger) { l.Debug("hidden") },
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			core, sink := newTestCore(t)
			logger := slog.New(log.NewSlogHandler(core.Logger("bridge")))

			tc.logFunc(logger)

			entries := sink.Entries()
			if tc.want == "" {
				assert.Empty(t, entries)
				return
			}

			require.Len(t, entries, 1)
			assert.Equal(t, tc.want, entries[0].Message)
			assert.Equal(t, tc.wantLevel, entries[0].Level)
			assert.Equal(t, "bridge", entries[0].Logger)
			assert.Equal(t, "slog", entries[0].Marker)

			if tc.wantErr != nil {
				require.ErrorIs(t, entries[0].Err, tc.wantErr)
			} else {
				require.NoError(t, entries[0].Err)
			}
		})
	}
}

func TestSlogHandlerTime(t *testing.T) {
	t.Parallel()

	core, sink := newTestCore(t)
	h := log.NewSlogHandler(core.Logger("bridge"))

	when := time.UnixMilli(5_000)

	require.NoError(t, h.Handle(t.Context(), slog.NewRecord(when, slog.LevelWarn, "timed", 0)))
	require.NoError(t, h.Handle(t.Context(), slog.NewRecord(time.Time{}, slog.LevelWarn, "untimed", 0)))

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5_000), entries[0].Time.UnixMilli())
	assert.Equal(t, int64(1234), entries[1].Time.UnixMilli())
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	core, _ := newTestCore(t, log.WithLevel(log.LevelWarn))
	h := log.NewSlogHandler(core.Logger("bridge"))

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError+8))
}

func TestAttrString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "k=v", log.Attr{Key: "k", Value: "v"}.String())
	assert.Equal(t, "ids=[1, 2]", log.Attr{Key: "ids", Value: []int{1, 2}}.String())
	assert.Equal(t, "none=null", log.Attr{Key: "none"}.String())
}
