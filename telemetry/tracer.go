package telemetry

import (
	"context"

	"github.com/delaneyj/framesignal/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "framesignal"

type TracerConfig struct {
	// TracerName is the instrumentation name (default: "framesignal").
	TracerName string

	// Provider defaults to the global OpenTelemetry provider.
	Provider trace.TracerProvider

	// Parent is the context frame spans are started under.
	Parent context.Context
}

type TracerOption func(*TracerConfig)

func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) { c.TracerName = name }
}

func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) { c.Provider = provider }
}

func WithParent(ctx context.Context) TracerOption {
	return func(c *TracerConfig) { c.Parent = ctx }
}

// Tracer is a reactive.Telemetry that opens one span per frame, marks the
// commit checkpoint with an event and closes the span with the frame's
// stats as attributes.
type Tracer struct {
	tracer trace.Tracer
	parent context.Context
	span   trace.Span
}

func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{
		TracerName: defaultTracerName,
		Parent:     context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	t := &Tracer{parent: config.Parent}
	if config.Provider != nil {
		t.tracer = config.Provider.Tracer(config.TracerName)
	} else {
		t.tracer = otel.Tracer(config.TracerName)
	}
	return t
}

func (t *Tracer) Record(s reactive.Stats) {
	switch s.Checkpoint {
	case reactive.CheckpointStart:
		if t.span != nil {
			t.span.End()
		}
		_, t.span = t.tracer.Start(t.parent, "framesignal.frame",
			trace.WithAttributes(
				attribute.Int64("frame.number", int64(s.Frame)),
				attribute.Int("queue.high", s.Queues.High),
				attribute.Int("queue.normal", s.Queues.Normal),
				attribute.Int("queue.low", s.Queues.Low),
			),
		)

	case reactive.CheckpointCommit:
		if t.span == nil {
			return
		}
		t.span.AddEvent("commit", trace.WithAttributes(
			attribute.Float64("frame.budgeted_ms", s.BudgetedMs),
			attribute.Float64("frame.total_ms", s.TotalMs),
		))

	case reactive.CheckpointEnd:
		if t.span == nil {
			return
		}
		t.span.SetAttributes(
			attribute.Float64("frame.budgeted_ms", s.BudgetedMs),
			attribute.Float64("frame.total_ms", s.TotalMs),
			attribute.Int("frame.high_bursts", s.HighBursts),
			attribute.Bool("frame.forced_low", s.ForcedLow),
			attribute.Float64("budget.normal_ms", s.NormalBudgetMs),
			attribute.Float64("budget.low_ms", s.LowBudgetMs),
			attribute.Float64("frame.ewma_ms", s.EWMAFrameMs),
			attribute.Int("queue.remaining", s.Queues.Total()),
		)
		t.span.End()
		t.span = nil
	}
}
