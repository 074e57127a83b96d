package reactive

// ReadonlySignal is a lazily recomputed derivation over other nodes.
type ReadonlySignal[T any] struct {
	rs     *ReactiveSystem
	value  T
	getter func() (T, error)

	dirty     bool
	hasValue  bool
	computing bool
	disposed  bool

	deps sourceList
	subs targetList
}

func (c *ReadonlySignal[T]) isSignalAware()        {}
func (c *ReadonlySignal[T]) targets() *targetList { return &c.subs }
func (c *ReadonlySignal[T]) sources() *sourceList { return &c.deps }

func Computed[T any](rs *ReactiveSystem, getter func() T) *ReadonlySignal[T] {
	return ComputedErr(rs, func() (T, error) {
		return getter(), nil
	})
}

// ComputedErr builds a computed whose derivation may fail. A failed
// derivation leaves the node dirty so the next read retries.
func ComputedErr[T any](rs *ReactiveSystem, getter func() (T, error)) *ReadonlySignal[T] {
	return &ReadonlySignal[T]{
		rs:     rs,
		getter: getter,
		dirty:  true,
		deps:   newSourceList(),
		subs:   newTargetList(),
	}
}

// Value returns the derived value, recomputing first if needed. It panics
// with the failure if the value cannot be produced.
func (c *ReadonlySignal[T]) Value() T {
	v, err := c.TryValue()
	if err != nil {
		panic(err)
	}
	return v
}

// TryValue is Value with the failure returned instead of raised.
func (c *ReadonlySignal[T]) TryValue() (T, error) {
	var zero T
	if c.disposed {
		return zero, ErrDisposed
	}
	if c.computing {
		return zero, ErrCycle
	}
	var err error
	if c.dirty {
		err = c.recompute()
	}
	c.rs.trackRead(c)
	if err != nil {
		return zero, err
	}
	if !c.hasValue {
		return zero, ErrNoValue
	}
	return c.value, nil
}

// Peek returns the last successfully computed value without recomputing or
// tracking.
func (c *ReadonlySignal[T]) Peek() (T, bool) {
	return c.value, c.hasValue
}

func (c *ReadonlySignal[T]) recompute() error {
	c.computing = true
	defer func() { c.computing = false }()

	c.rs.unlinkSources(c)
	// Cleared first so a source written during the getter marks c again.
	c.dirty = false
	var v T
	err := c.rs.track(c, func() error {
		return capture(func() (err error) {
			v, err = c.getter()
			return err
		})
	})
	if c.disposed {
		c.rs.unlinkSources(c)
	}
	if err != nil {
		c.dirty = true
		return c.rs.handle(err, ErrorWhereComputed)
	}
	c.value = v
	c.hasValue = true
	return nil
}

func (c *ReadonlySignal[T]) markDirty() {
	if c.dirty || c.disposed {
		return
	}
	c.dirty = true
	c.rs.Batch(func() {
		c.rs.notifyTargets(c)
	})
}

// Dispose detaches c from its sources. Later reads fail with ErrDisposed.
func (c *ReadonlySignal[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.rs.unlinkSources(c)
}

// Targets reports how many nodes currently depend on c.
func (c *ReadonlySignal[T]) Targets() int {
	return countLinks(c.rs, c.subs.head, false)
}

func (c *ReadonlySignal[T]) Dirty() bool {
	return c.dirty
}

// Sources reports how many nodes c read during its last run.
func (c *ReadonlySignal[T]) Sources() int {
	return countLinks(c.rs, c.deps.head, true)
}
