package reactive

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"
)

// Option configures a ReactiveSystem.
type Option func(*ReactiveSystem)

func WithErrorHook(fn OnErrorFunc) Option {
	return func(rs *ReactiveSystem) { rs.onError = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(rs *ReactiveSystem) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

// WithFrameHost sets what drives RunFrame. The default is a ManualFrameHost.
func WithFrameHost(host FrameHost) Option {
	return func(rs *ReactiveSystem) {
		if host != nil {
			rs.host = host
		}
	}
}

// WithClock replaces time.Now for budget accounting.
func WithClock(now func() time.Time) Option {
	return func(rs *ReactiveSystem) {
		if now != nil {
			rs.now = now
		}
	}
}

// WithSchedulerConfig replaces the scheduler tuning. A config that fails
// Validate is logged and replaced by DefaultSchedulerConfig.
func WithSchedulerConfig(cfg SchedulerConfig) Option {
	return func(rs *ReactiveSystem) { rs.cfg = cfg }
}

func WithTelemetry(t Telemetry) Option {
	return func(rs *ReactiveSystem) { rs.telemetry = t }
}

// WithCommitHook runs fn at the commit checkpoint of every frame.
func WithCommitHook(fn func()) Option {
	return func(rs *ReactiveSystem) { rs.onCommit = fn }
}

// WithMaxFlushRuns bounds how many effect runs one FlushSync may perform.
// Zero or less disables the bound.
func WithMaxFlushRuns(n int) Option {
	return func(rs *ReactiveSystem) { rs.maxFlushRuns = n }
}

// WithHydrationSnapshot puts the system on the consuming side of hydration.
// Hydrated signals take their initial value from snapshot, once.
func WithHydrationSnapshot(snapshot map[string]json.RawMessage) Option {
	return func(rs *ReactiveSystem) {
		rs.hydrate.consumer = true
		rs.hydrate.snapshot = snapshot
		if rs.hydrate.snapshot == nil {
			rs.hydrate.snapshot = map[string]json.RawMessage{}
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
