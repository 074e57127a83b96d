package reactive

type WriteableSignal[T any] struct {
	rs      *ReactiveSystem
	value   T
	version uint64
	equal   EqualFunc[T]
	subs    targetList

	// onWrite mirrors accepted writes, used by hydration.
	onWrite func(T)
}

func (s *WriteableSignal[T]) isSignalAware()        {}
func (s *WriteableSignal[T]) targets() *targetList { return &s.subs }

func Signal[T any](rs *ReactiveSystem, initialValue T) *WriteableSignal[T] {
	return &WriteableSignal[T]{
		rs:    rs,
		value: initialValue,
		equal: Identical[T],
		subs:  newTargetList(),
	}
}

// WithEquals replaces the write-suppression test.
func (s *WriteableSignal[T]) WithEquals(eq EqualFunc[T]) *WriteableSignal[T] {
	if eq != nil {
		s.equal = eq
	}
	return s
}

// Value returns the current value and records a dependency when read
// inside a computed or effect.
func (s *WriteableSignal[T]) Value() T {
	s.rs.trackRead(s)
	return s.value
}

// Peek returns the current value without tracking.
func (s *WriteableSignal[T]) Peek() T {
	return s.value
}

// SetValue stores v and notifies dependents unless v equals the current
// value.
func (s *WriteableSignal[T]) SetValue(v T) {
	if s.equal(s.value, v) {
		return
	}
	s.value = v
	s.version++
	if s.onWrite != nil {
		s.onWrite(v)
	}
	s.rs.notifyTargets(s)
}

func (s *WriteableSignal[T]) Update(fn func(T) T) {
	s.SetValue(fn(s.value))
}

// Version increments once per accepted write.
func (s *WriteableSignal[T]) Version() uint64 {
	return s.version
}

// Targets reports how many nodes currently depend on s.
func (s *WriteableSignal[T]) Targets() int {
	return countLinks(s.rs, s.subs.head, false)
}
