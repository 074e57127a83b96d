package reactive_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/delaneyj/framesignal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should not compute until read, and only once per change
func TestComputedIsLazy(t *testing.T) {
	rs := newSystem(t)
	a := reactive.Signal(rs, 1)
	calls := 0
	c := reactive.Computed(rs, func() int {
		calls++
		return a.Value() + 1
	})
	assert.Equal(t, 0, calls)

	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 2, c.Value())
	assert.Equal(t, 1, calls)

	a.SetValue(5)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Dirty())
	assert.Equal(t, 6, c.Value())
	assert.Equal(t, 2, calls)
}

// should stay dirty when a source changes while the getter runs
func TestComputedSourceWrittenDuringCompute(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, 0)
	calls := 0
	c := reactive.Computed(rs, func() int {
		calls++
		v := s.Value()
		if v == 0 {
			s.SetValue(1)
		}
		return v
	})

	assert.Equal(t, 0, c.Value())
	assert.True(t, c.Dirty())
	assert.Equal(t, 1, c.Value())
	assert.False(t, c.Dirty())
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, 2, calls)
}

func TestTopologyDropAbaUpdates(t *testing.T) {
	rs := newSystem(t)

	//     A
	//   / |
	//  B  |
	//   \ |
	//     C
	//     |
	//     D
	a := reactive.Signal(rs, 2)
	b := reactive.Computed(rs, func() int {
		return a.Value() - 1
	})
	c := reactive.Computed(rs, func() int {
		return a.Value() + b.Value()
	})
	callCount := 0
	d := reactive.Computed(rs, func() string {
		callCount++
		return fmt.Sprintf("d: %d", c.Value())
	})

	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(4)
	assert.Equal(t, "d: 7", d.Value())
	assert.Equal(t, 2, callCount)
}

func TestShouldOnlyUpdateEverySignalOnceDiamond(t *testing.T) {
	rs := newSystem(t)

	// D should only update once when A changes.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	a := reactive.Signal(rs, "a")
	b := reactive.Computed(rs, func() string {
		return a.Value()
	})
	c := reactive.Computed(rs, func() string {
		return a.Value()
	})
	callCount := 0
	d := reactive.Computed(rs, func() string {
		callCount++
		return b.Value() + " " + c.Value()
	})

	assert.Equal(t, "a a", d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue("aa")
	assert.Equal(t, "aa aa", d.Value())
	assert.Equal(t, 2, callCount)
}

// should only follow the branch that was read last
func TestComputedDynamicDependencies(t *testing.T) {
	rs := newSystem(t)
	useX := reactive.Signal(rs, true)
	x := reactive.Signal(rs, 1)
	y := reactive.Signal(rs, 10)
	calls := 0
	c := reactive.Computed(rs, func() int {
		calls++
		if useX.Value() {
			return x.Value()
		}
		return y.Value()
	})

	assert.Equal(t, 1, c.Value())
	y.SetValue(11)
	assert.False(t, c.Dirty())
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, 1, calls)

	useX.SetValue(false)
	assert.Equal(t, 11, c.Value())
	assert.Equal(t, 2, calls)

	x.SetValue(2)
	assert.False(t, c.Dirty())
	assert.Equal(t, 0, x.Targets())
	assert.Equal(t, 2, c.Sources())

	y.SetValue(12)
	assert.Equal(t, 12, c.Value())
	assert.Equal(t, 3, calls)
}

// should report a cycle instead of recursing
func TestComputedSelfCycle(t *testing.T) {
	rs := reactive.CreateReactiveSystem()
	var c *reactive.ReadonlySignal[int]
	c = reactive.Computed(rs, func() int {
		return c.Value() + 1
	})

	_, err := c.TryValue()
	require.ErrorIs(t, err, reactive.ErrCycle)
	var nerr *reactive.NodeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, reactive.ErrorWhereComputed, nerr.Where)
	assert.Panics(t, func() { c.Value() })
}

func TestComputedTransitiveCycle(t *testing.T) {
	rs := reactive.CreateReactiveSystem()
	var a, b *reactive.ReadonlySignal[int]
	a = reactive.Computed(rs, func() int { return b.Value() })
	b = reactive.Computed(rs, func() int { return a.Value() })

	_, err := a.TryValue()
	assert.ErrorIs(t, err, reactive.ErrCycle)
	assert.True(t, a.Dirty())
}

// should fail loudly when read before any successful compute
func TestComputedErrorWithoutHook(t *testing.T) {
	rs := reactive.CreateReactiveSystem()
	boom := errors.New("boom")
	c := reactive.ComputedErr(rs, func() (int, error) {
		return 0, boom
	})

	_, err := c.TryValue()
	assert.ErrorIs(t, err, boom)
	assert.True(t, c.Dirty())
	assert.Panics(t, func() { c.Value() })
}

// should keep the stale value when a hook absorbs the failure
func TestComputedHandledFailureKeepsStaleValue(t *testing.T) {
	boom := errors.New("boom")
	var hooked []reactive.ErrorWhere
	rs := reactive.CreateReactiveSystem(reactive.WithErrorHook(func(err error, where reactive.ErrorWhere) error {
		assert.ErrorIs(t, err, boom)
		hooked = append(hooked, where)
		return nil
	}))
	fail := reactive.Signal(rs, true)
	c := reactive.ComputedErr(rs, func() (int, error) {
		if fail.Value() {
			return 0, boom
		}
		return 42, nil
	})

	_, err := c.TryValue()
	require.ErrorIs(t, err, reactive.ErrNoValue)

	fail.SetValue(false)
	v, err := c.TryValue()
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	fail.SetValue(true)
	v, err = c.TryValue()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, c.Dirty())
	assert.Equal(t, []reactive.ErrorWhere{reactive.ErrorWhereComputed, reactive.ErrorWhereComputed}, hooked)
}

// should let the original failure through when the hook rejects it
func TestComputedHookRejects(t *testing.T) {
	boom := errors.New("boom")
	rs := reactive.CreateReactiveSystem(reactive.WithErrorHook(func(err error, where reactive.ErrorWhere) error {
		panic("hook broke")
	}))
	c := reactive.ComputedErr(rs, func() (int, error) { return 0, boom })
	_, err := c.TryValue()
	assert.ErrorIs(t, err, boom)
}

// should recover panics raised by the derivation
func TestComputedPanicBecomesError(t *testing.T) {
	rs := reactive.CreateReactiveSystem()
	c := reactive.Computed(rs, func() int {
		var m map[string]int
		m["x"] = 1
		return 0
	})
	_, err := c.TryValue()
	var nerr *reactive.NodeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, reactive.ErrorWhereComputed, nerr.Where)
}

// should pause tracking
func TestShouldPauseTracking(t *testing.T) {
	rs := newSystem(t)
	src := reactive.Signal(rs, 0)
	c := reactive.Computed(rs, func() int {
		return reactive.UntrackedValue(rs, src.Value)
	})
	assert.Equal(t, 0, c.Value())

	src.SetValue(1)
	assert.Equal(t, 0, c.Value())
	assert.Equal(t, 0, src.Targets())
}

func TestComputedDispose(t *testing.T) {
	rs := newSystem(t)
	a := reactive.Signal(rs, 1)
	c := reactive.Computed(rs, func() int { return a.Value() })
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, 1, a.Targets())

	c.Dispose()
	assert.Equal(t, 0, a.Targets())
	_, err := c.TryValue()
	assert.ErrorIs(t, err, reactive.ErrDisposed)
}

func TestShouldOnlySubscribeToSignalsListenedTo(t *testing.T) {
	rs := newSystem(t)

	//    *A
	//   /   \
	// *B     C <- never read
	a := reactive.Signal(rs, "a")
	b := reactive.Computed(rs, func() string {
		return a.Value()
	})
	callCount := 0
	reactive.Computed(rs, func() string {
		callCount++
		return a.Value()
	})

	assert.Equal(t, "a", b.Value())
	assert.Equal(t, 0, callCount)

	a.SetValue("aa")
	assert.Equal(t, "aa", b.Value())
	assert.Equal(t, 0, callCount)
	assert.Equal(t, 1, a.Targets())
}

func TestShouldOnlySubscribeToSignalsListenedToII(t *testing.T) {
	rs := newSystem(t)

	// B and C start out active and go quiet once the effect reading C is
	// disposed.
	//    *A
	//   /   \
	// *B     D
	//  |
	// *C
	a := reactive.Signal(rs, "a")
	bCallCount := 0
	b := reactive.Computed(rs, func() string {
		bCallCount++
		return a.Value()
	})
	cCallCount := 0
	c := reactive.Computed(rs, func() string {
		cCallCount++
		return b.Value()
	})
	d := reactive.Computed(rs, func() string {
		return a.Value()
	})

	result := ""
	e := reactive.Effect(rs, func() error {
		result = c.Value()
		return nil
	})
	assert.Equal(t, "a", result)
	assert.Equal(t, "a", d.Value())

	bCallCount, cCallCount = 0, 0
	e.Dispose()

	a.SetValue("aa")
	require.NoError(t, rs.FlushSync())
	assert.Equal(t, 0, bCallCount)
	assert.Equal(t, 0, cCallCount)
	assert.Equal(t, "aa", d.Value())
	assert.Equal(t, "a", result)
}

func TestShouldEnsureSubsUpdate(t *testing.T) {
	rs := newSystem(t)

	// C returns the same value every time; D must still update because B
	// changed.
	//     A
	//   /   \
	//  B     *C
	//   \   /
	//     D
	a := reactive.Signal(rs, "a")
	b := reactive.Computed(rs, func() string {
		return a.Value()
	})
	c := reactive.Computed(rs, func() string {
		a.Value()
		return "c"
	})
	dCallCount := 0
	d := reactive.Computed(rs, func() string {
		dCallCount++
		return b.Value() + " " + c.Value()
	})

	assert.Equal(t, "a c", d.Value())
	assert.Equal(t, 1, dCallCount)

	a.SetValue("aa")
	assert.Equal(t, "aa c", d.Value())
	assert.Equal(t, 2, dCallCount)
}
