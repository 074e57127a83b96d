package signalmap

import "slices"

func (m *SignalMap[T]) current() []Node {
	return m.Peek()
}

func (m *SignalMap[T]) assign(next []Node) {
	m.SetValue(next)
}

// Push appends items and returns the new length.
func (m *SignalMap[T]) Push(items ...T) int {
	arr := m.current()
	if len(items) == 0 {
		return len(arr)
	}
	next := slices.Clone(arr)
	for _, item := range items {
		next = append(next, m.wrap(item))
	}
	m.assign(next)
	return len(next)
}

// Unshift prepends items, keeping their order, and returns the new length.
func (m *SignalMap[T]) Unshift(items ...T) int {
	arr := m.current()
	if len(items) == 0 {
		return len(arr)
	}
	next := make([]Node, 0, len(arr)+len(items))
	for _, item := range items {
		next = append(next, m.wrap(item))
	}
	next = append(next, arr...)
	m.assign(next)
	return len(next)
}

func (m *SignalMap[T]) Pop() (Node, bool) {
	arr := m.current()
	if len(arr) == 0 {
		return nil, false
	}
	last := arr[len(arr)-1]
	m.assign(slices.Clone(arr[:len(arr)-1]))
	return last, true
}

func (m *SignalMap[T]) Shift() (Node, bool) {
	arr := m.current()
	if len(arr) == 0 {
		return nil, false
	}
	first := arr[0]
	m.assign(slices.Clone(arr[1:]))
	return first, true
}

// Splice removes deleteCount nodes at start, inserts items in their place
// and returns the removed nodes. A negative start counts from the end; both
// arguments are clamped to the list.
func (m *SignalMap[T]) Splice(start, deleteCount int, items ...T) []Node {
	arr := m.current()
	n := len(arr)
	from := start
	if from < 0 {
		from = max(n+from, 0)
	} else {
		from = min(from, n)
	}
	dc := max(0, min(deleteCount, n-from))

	removed := slices.Clone(arr[from : from+dc])
	wrapped := make([]Node, len(items))
	for i, item := range items {
		wrapped[i] = m.wrap(item)
	}

	next := make([]Node, 0, n-dc+len(wrapped))
	next = append(next, arr[:from]...)
	next = append(next, wrapped...)
	next = append(next, arr[from+dc:]...)
	m.assign(next)
	return removed
}

// Sort orders the list stably by cmp. Nothing is published if the order is
// unchanged.
func (m *SignalMap[T]) Sort(cmp func(a, b Node) int) *SignalMap[T] {
	arr := m.current()
	next := slices.Clone(arr)
	slices.SortStableFunc(next, cmp)
	if sameNodes(arr, next) {
		return m
	}
	m.assign(next)
	return m
}

func (m *SignalMap[T]) Reverse() *SignalMap[T] {
	next := slices.Clone(m.current())
	slices.Reverse(next)
	m.assign(next)
	return m
}

// SetAt lets update change the element's inner signals in place, then
// publishes a new list so list readers rerun too.
func (m *SignalMap[T]) SetAt(index int, update func(item Node)) {
	arr := m.current()
	if index < 0 || index >= len(arr) {
		return
	}
	update(arr[index])
	m.assign(slices.Clone(arr))
}

// ReplaceAt wraps value into a new node at index.
func (m *SignalMap[T]) ReplaceAt(index int, value T) {
	m.replace(index, value)
}

// With is ReplaceAt returning the list for chaining.
func (m *SignalMap[T]) With(index int, value T) *SignalMap[T] {
	m.replace(index, value)
	return m
}

func (m *SignalMap[T]) replace(index int, value T) {
	arr := m.current()
	if index < 0 || index >= len(arr) {
		return
	}
	wrapped := m.wrap(value)
	if arr[index] == wrapped {
		return
	}
	next := slices.Clone(arr)
	next[index] = wrapped
	m.assign(next)
}

// InsertAt clamps index to [0, Len].
func (m *SignalMap[T]) InsertAt(index int, value T) {
	arr := m.current()
	index = max(0, min(index, len(arr)))
	next := slices.Insert(slices.Clone(arr), index, m.wrap(value))
	m.assign(next)
}

func (m *SignalMap[T]) RemoveAt(index int) (Node, bool) {
	arr := m.current()
	if index < 0 || index >= len(arr) {
		return nil, false
	}
	removed := arr[index]
	m.assign(slices.Delete(slices.Clone(arr), index, index+1))
	return removed, true
}

// FilterInPlace keeps the elements pred accepts. Nothing is published when
// every element is kept.
func (m *SignalMap[T]) FilterInPlace(pred func(item Node, index int) bool) {
	arr := m.current()
	next := make([]Node, 0, len(arr))
	for i, n := range arr {
		if pred(n, i) {
			next = append(next, n)
		}
	}
	if len(next) != len(arr) {
		m.assign(next)
	}
}

func (m *SignalMap[T]) Clear() {
	if len(m.current()) == 0 {
		return
	}
	m.assign([]Node{})
}

// ReplaceAll rewraps the whole list. With a shared WrapCache, values that
// were wrapped before keep their nodes, and nothing is published if every
// node comes back identical.
func (m *SignalMap[T]) ReplaceAll(items []T) {
	arr := m.current()
	next := make([]Node, len(items))
	for i, item := range items {
		next[i] = m.wrap(item)
	}
	if sameNodes(arr, next) {
		return
	}
	m.assign(next)
}

func sameNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
