package log_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/marker"
)

func record(msg string) *log.Record {
	return &log.Record{
		Logger:  "test",
		Message: []byte(msg),
		Time:    1000,
		Level:   log.LevelInfo,
	}
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts    []log.PublisherOption
		wantCap int
	}{
		"default buffer size": {
			opts:    nil,
			wantCap: 64,
		},
		"custom buffer size": {
			opts:    []log.PublisherOption{log.WithBufferSize(128)},
			wantCap: 128,
		},
		"clamp zero to one": {
			opts:    []log.PublisherOption{log.WithBufferSize(0)},
			wantCap: 1,
		},
		"clamp negative to one": {
			opts:    []log.PublisherOption{log.WithBufferSize(-5)},
			wantCap: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher(tc.opts...)

			sub := pub.Subscribe()
			defer sub.Close()

			assert.Equal(t, tc.wantCap, cap(sub.C()))
		})
	}
}

func TestPublisherDeliver(t *testing.T) {
	t.Parallel()

	for name, n := range map[string]int{
		"single subscriber":    1,
		"multiple subscribers": 3,
		"no subscribers":       0,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher()

			subs := make([]*log.Subscription, n)
			for i := range subs {
				subs[i] = pub.Subscribe()
			}

			pub.Deliver(record("hello"))

			for _, sub := range subs {
				got := <-sub.C()
				assert.Equal(t, "hello", got.Message)
				assert.Equal(t, "test", got.Logger)
				assert.Equal(t, log.LevelInfo, got.Level)
				assert.Equal(t, int64(1000), got.Time.UnixMilli())
			}
		})
	}

	t.Run("deliver copies record", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		rec := record("original")
		pub.Deliver(rec)

		// Loggers reuse the message buffer after Deliver returns.
		rec.Message[0] = 'X'

		got := <-sub.C()
		assert.Equal(t, "original", got.Message)
	})

	t.Run("marker and error", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		errBoom := errors.New("boom")
		rec := record("failed")
		rec.Marker = marker.New("audit", marker.New("security"))
		rec.Err = errBoom

		pub.Deliver(rec)

		got := <-sub.C()
		assert.Equal(t, "audit [security]", got.Marker)
		require.ErrorIs(t, got.Err, errBoom)
	})
}

func TestPublisherRingBuffer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		bufSize int
		writes  []string
		want    []string
	}{
		"drops oldest on full": {
			bufSize: 2,
			writes:  []string{"a", "b", "c", "d"},
			want:    []string{"c", "d"},
		},
		"preserves newest entries": {
			bufSize: 3,
			writes:  []string{"1", "2", "3", "4", "5"},
			want:    []string{"3", "4", "5"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := log.NewPublisher(log.WithBufferSize(tc.bufSize))
			sub := pub.Subscribe()

			for _, w := range tc.writes {
				pub.Deliver(record(w))
			}

			var got []string
			for range tc.want {
				got = append(got, (<-sub.C()).Message)
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()

	t.Run("stops delivery", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		pub.Deliver(record("before"))

		sub.Close()

		// Trigger compaction.
		pub.Deliver(record("after"))

		got := <-sub.C()
		assert.Equal(t, "before", got.Message)

		_, open := <-sub.C()
		assert.False(t, open, "channel should be closed after subscription close + compaction")
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		sub.Close()
		sub.Close()

		pub.Deliver(record("x"))

		_, open := <-sub.C()
		assert.False(t, open)
	})
}

func TestPublisherClose(t *testing.T) {
	t.Parallel()

	t.Run("closes all subscriptions", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub1 := pub.Subscribe()
		sub2 := pub.Subscribe()

		require.NoError(t, pub.Close())

		_, open1 := <-sub1.C()
		_, open2 := <-sub2.C()

		assert.False(t, open1)
		assert.False(t, open2)
	})

	t.Run("deliver after close is no-op", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		sub := pub.Subscribe()

		require.NoError(t, pub.Close())

		pub.Deliver(record("ignored"))

		_, open := <-sub.C()
		assert.False(t, open)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		require.NoError(t, pub.Close())
		require.NoError(t, pub.Close())
	})

	t.Run("subscribe after close", func(t *testing.T) {
		t.Parallel()

		pub := log.NewPublisher()
		require.NoError(t, pub.Close())

		sub := pub.Subscribe()
		_, open := <-sub.C()
		assert.False(t, open, "subscription from closed publisher should have closed channel")
	})
}

func TestPublisherConcurrency(t *testing.T) {
	t.Parallel()

	pub := log.NewPublisher(log.WithBufferSize(8))
	core := log.NewCore(log.WithSink(pub))

	var wg sync.WaitGroup

	for range 5 {
		wg.Go(func() {
			logger := core.Logger("writer")
			for i := range 100 {
				logger.Info("entry {}", i)
			}
		})
	}

	for range 5 {
		wg.Go(func() {
			sub := pub.Subscribe()
			for range 20 {
				select {
				case <-sub.C():
				default:
				}
			}

			sub.Close()
		})
	}

	wg.Wait()
	require.NoError(t, pub.Close())
}

func TestPublisherWithLogger(t *testing.T) {
	t.Parallel()

	pub := log.NewPublisher()
	t.Cleanup(func() { require.NoError(t, pub.Close()) })

	sub := pub.Subscribe()

	core := log.NewCore(log.WithSink(pub), log.WithTimeSource(log.TimeSourceFunc(func() int64 { return 42 })))
	core.Logger("pub").Warn("hello from {}", "publisher", log.Attr{Key: "key", Value: "value"})

	entry := <-sub.C()
	assert.Equal(t, "hello from publisher {key=value}", entry.Message)
	assert.Equal(t, "pub", entry.Logger)
	assert.Equal(t, log.LevelWarn, entry.Level)
	assert.Equal(t, int64(42), entry.Time.UnixMilli())
}
