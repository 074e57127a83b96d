// Package frameloop runs a ReactiveSystem on a dedicated goroutine and
// delivers its frames at a fixed refresh interval.
package frameloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// DefaultInterval is one 60 Hz refresh.
const DefaultInterval = time.Second / 60

var ErrRunning = errors.New("frameloop: already running")

// Loop owns the goroutine that calls Run. Frame callbacks and dispatched
// tasks all execute there, so a ReactiveSystem created and used only from
// inside them needs no locking. A timer is armed only while a frame is
// requested.
type Loop struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	tasks   []func()
	frame   func()
	seq     uint64
	wake    chan struct{}
	loopGID atomic.Int64

	lastFrame time.Time
	frames    atomic.Uint64
	panics    atomic.Uint64
}

type Option func(*Loop)

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func New(opts ...Option) *Loop {
	l := &Loop{
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestFrame schedules fn for the next refresh. A later request replaces
// an earlier one; the returned cancel only clears its own request.
func (l *Loop) RequestFrame(fn func()) func() {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.frame = fn
	l.mu.Unlock()
	l.notify()

	return func() {
		l.mu.Lock()
		if l.seq == seq {
			l.frame = nil
		}
		l.mu.Unlock()
	}
}

// Dispatch runs fn on the loop goroutine. Called from the loop goroutine it
// runs fn inline; otherwise fn is queued and Dispatch returns immediately.
func (l *Loop) Dispatch(fn func()) {
	if l.onLoop() {
		l.safeExecute("task", fn)
		return
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.notify()
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	if l.onLoop() {
		return call(fn)
	}
	done := make(chan error, 1)
	l.Dispatch(func() {
		done <- call(fn)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run services tasks and frames until ctx is done. Only one Run may be
// active at a time.
func (l *Loop) Run(ctx context.Context) error {
	if !l.loopGID.CompareAndSwap(0, goid.Get()) {
		return ErrRunning
	}
	defer l.loopGID.Store(0)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var tick <-chan time.Time

	for {
		l.runTasks()

		if tick == nil && l.framePending() {
			timer.Reset(l.untilNextFrame())
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case now := <-tick:
			tick = nil
			l.runFrame(now)
		}
	}
}

// Frames reports how many frame callbacks have run.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Panics reports how many tasks or frames panicked.
func (l *Loop) Panics() uint64 {
	return l.panics.Load()
}

func (l *Loop) onLoop() bool {
	id := l.loopGID.Load()
	return id != 0 && id == goid.Get()
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) runTasks() {
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			l.safeExecute("task", fn)
		}
	}
}

func (l *Loop) framePending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame != nil
}

func (l *Loop) untilNextFrame() time.Duration {
	if l.lastFrame.IsZero() {
		return 0
	}
	return max(0, l.interval-time.Since(l.lastFrame))
}

func (l *Loop) runFrame(now time.Time) {
	l.mu.Lock()
	fn := l.frame
	l.frame = nil
	l.mu.Unlock()
	if fn == nil {
		return
	}
	l.lastFrame = now
	l.frames.Add(1)
	l.safeExecute("frame", fn)
}

func (l *Loop) safeExecute(kind string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("frameloop: recovered panic", "kind", kind, "panic", r)
		}
	}()
	fn()
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frameloop: task panicked: %v", r)
		}
	}()
	return fn()
}
