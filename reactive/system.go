package reactive

import (
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// ReactiveSystem owns one dependency graph and the scheduler that drives its
// effects. It is not safe for concurrent use; confine it to one goroutine.
type ReactiveSystem struct {
	arena  arena
	active target

	batch mapset.Set[*EffectRunner]
	sched scheduler

	hydrate hydration

	onError      OnErrorFunc
	onCommit     func()
	logger       *slog.Logger
	host         FrameHost
	now          func() time.Time
	telemetry    Telemetry
	cfg          SchedulerConfig
	maxFlushRuns int
}

func CreateReactiveSystem(opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		arena:        newArena(),
		logger:       discardLogger(),
		now:          time.Now,
		cfg:          DefaultSchedulerConfig(),
		maxFlushRuns: 100_000,
		hydrate:      newHydration(),
	}
	for _, opt := range opts {
		opt(rs)
	}
	if rs.host == nil {
		rs.host = NewManualFrameHost()
	}
	if err := rs.cfg.Validate(); err != nil {
		rs.logger.Error("invalid scheduler config, using defaults", "err", err)
		rs.cfg = DefaultSchedulerConfig()
	}
	rs.sched = newScheduler(rs.cfg)
	return rs
}

// OnError replaces the error hook.
func (rs *ReactiveSystem) OnError(fn OnErrorFunc) {
	rs.onError = fn
}

func (rs *ReactiveSystem) Logger() *slog.Logger {
	return rs.logger
}

// track runs fn with t as the tracking context and restores the previous
// context afterwards, even if fn panics.
func (rs *ReactiveSystem) track(t target, fn func() error) error {
	prev := rs.active
	rs.active = t
	defer func() { rs.active = prev }()
	return fn()
}

// Untracked runs fn without recording any reads as dependencies.
func (rs *ReactiveSystem) Untracked(fn func()) {
	rs.track(nil, func() error {
		fn()
		return nil
	})
}

// UntrackedValue evaluates fn outside the current tracking context.
func UntrackedValue[T any](rs *ReactiveSystem, fn func() T) (v T) {
	rs.track(nil, func() error {
		v = fn()
		return nil
	})
	return v
}

func (rs *ReactiveSystem) trackRead(s source) {
	if rs.active != nil {
		rs.link(s, rs.active)
	}
}
