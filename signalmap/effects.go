package signalmap

import (
	"github.com/delaneyj/framesignal/reactive"
)

// EffectMap runs fn over every element whenever the list, or anything fn
// reads, changes. Elements have no lifecycle of their own; see EffectEach.
func (m *SignalMap[T]) EffectMap(fn func(item Node, index int), opts ...reactive.EffectOption) *reactive.EffectRunner {
	return reactive.Effect(m.rs, func() error {
		for i, n := range m.Value() {
			fn(n, i)
		}
		return nil
	}, opts...)
}

type keyedChild struct {
	effect *reactive.EffectRunner
	item   Node
}

// EffectEach runs one child effect per key. A child is created when its key
// appears, recreated when the node under its key is replaced and disposed
// when its key disappears. The index handed to fn follows reorders.
// Duplicate keys are logged and skipped. Disposing the returned effect
// disposes every child.
func EffectEach[T any, K comparable](
	m *SignalMap[T],
	key func(item Node, index int) K,
	fn func(item Node, index int) reactive.Cleanup,
	opts ...reactive.EffectOption,
) *reactive.EffectRunner {
	rs := m.rs
	children := map[K]*keyedChild{}

	indexByRef := reactive.Computed(rs, func() map[Node]int {
		arr := m.Value()
		idx := make(map[Node]int, len(arr))
		for i, n := range arr {
			idx[n] = i
		}
		return idx
	})
	indexOf := func(n Node) int {
		if i, ok := indexByRef.Value()[n]; ok {
			return i
		}
		return -1
	}

	outer := reactive.Effect(rs, func() error {
		arr := m.Value()
		next := make(map[K]struct{}, len(arr))

		for i, item := range arr {
			k := key(item, i)
			if _, dup := next[k]; dup {
				rs.Logger().Warn("signalmap: duplicate key", "key", k, "index", i)
				continue
			}
			next[k] = struct{}{}

			if c, ok := children[k]; ok {
				if c.item == item {
					continue
				}
				c.effect.Dispose()
			}
			current := item
			child := reactive.EffectWithCleanup(rs, func() (reactive.Cleanup, error) {
				idx := indexOf(current)
				if idx < 0 {
					// Removed from the list; the outer effect disposes it next.
					return nil, nil
				}
				return fn(current, idx), nil
			}, opts...)
			children[k] = &keyedChild{effect: child, item: current}
		}

		for k, c := range children {
			if _, ok := next[k]; !ok {
				c.effect.Dispose()
				delete(children, k)
			}
		}
		return nil
	}, opts...)

	outer.OnDispose(func() {
		for k, c := range children {
			c.effect.Dispose()
			delete(children, k)
		}
		indexByRef.Dispose()
	})
	return outer
}
