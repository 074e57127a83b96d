package frameloop_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delaneyj/framesignal/frameloop"
	"github.com/delaneyj/framesignal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func start(t *testing.T, opts ...frameloop.Option) (*frameloop.Loop, context.Context) {
	t.Helper()
	loop := frameloop.New(append([]frameloop.Option{frameloop.WithInterval(time.Millisecond)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
	return loop, ctx
}

func TestLoopDrivesReactiveSystem(t *testing.T) {
	loop, ctx := start(t)

	var (
		rs       *reactive.ReactiveSystem
		count    *reactive.WriteableSignal[int]
		observed atomic.Int64
	)
	require.NoError(t, loop.Do(ctx, func() error {
		rs = reactive.CreateReactiveSystem(reactive.WithFrameHost(loop))
		count = reactive.Signal(rs, 1)
		reactive.Effect(rs, func() error {
			observed.Store(int64(count.Value()))
			return nil
		}, reactive.WithPriority(reactive.PriorityLow))
		return nil
	}))
	assert.EqualValues(t, 1, observed.Load())

	require.NoError(t, loop.Do(ctx, func() error {
		count.SetValue(7)
		return nil
	}))
	require.Eventually(t, func() bool {
		return observed.Load() == 7
	}, time.Second, time.Millisecond)
	assert.NotZero(t, loop.Frames())
}

func TestDispatchRunsInlineOnLoop(t *testing.T) {
	loop, ctx := start(t)
	err := loop.Do(ctx, func() error {
		ran := false
		loop.Dispatch(func() { ran = true })
		if !ran {
			return errors.New("dispatch was queued")
		}
		return loop.Do(ctx, func() error { return nil })
	})
	require.NoError(t, err)
}

func TestLoopRecoversPanics(t *testing.T) {
	var logs syncBuffer
	loop, ctx := start(t, frameloop.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	loop.Dispatch(func() { panic("boom") })
	require.NoError(t, loop.Do(ctx, func() error { return nil }))
	assert.EqualValues(t, 1, loop.Panics())
	assert.Contains(t, logs.String(), "boom")

	err := loop.Do(ctx, func() error { panic("again") })
	assert.ErrorContains(t, err, "again")

	ran := make(chan struct{})
	require.NoError(t, loop.Do(ctx, func() error {
		loop.RequestFrame(func() {
			defer close(ran)
			panic("frame")
		})
		return nil
	}))
	<-ran
	require.NoError(t, loop.Do(ctx, func() error { return nil }))
	assert.EqualValues(t, 2, loop.Panics())
}

func TestCancelledFrameNeverRuns(t *testing.T) {
	loop, ctx := start(t)
	var calls atomic.Int32
	require.NoError(t, loop.Do(ctx, func() error {
		cancel := loop.RequestFrame(func() { calls.Add(1) })
		cancel()
		return nil
	}))
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Zero(t, loop.Frames())

	// a stale cancel must not clear a newer request
	require.NoError(t, loop.Do(ctx, func() error {
		stale := loop.RequestFrame(func() { calls.Add(1) })
		loop.RequestFrame(func() { calls.Add(10) })
		stale()
		return nil
	}))
	require.Eventually(t, func() bool { return calls.Load() == 10 }, time.Second, time.Millisecond)
}

func TestRunOnce(t *testing.T) {
	loop, ctx := start(t)
	require.NoError(t, loop.Do(ctx, func() error { return nil }))
	assert.ErrorIs(t, loop.Run(ctx), frameloop.ErrRunning)
}
