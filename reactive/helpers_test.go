package reactive_test

import (
	"testing"
	"time"

	"github.com/delaneyj/framesignal/reactive"
)

// newSystem fails the test on any failure that reaches the error hook.
func newSystem(t *testing.T, opts ...reactive.Option) *reactive.ReactiveSystem {
	t.Helper()
	base := []reactive.Option{
		reactive.WithErrorHook(func(err error, where reactive.ErrorWhere) error {
			t.Errorf("unexpected %s failure: %v", where, err)
			return err
		}),
	}
	return reactive.CreateReactiveSystem(append(base, opts...)...)
}

// stepClock advances by step on every read.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{t: time.Unix(0, 0), step: step}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}
