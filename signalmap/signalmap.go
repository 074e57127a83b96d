package signalmap

import (
	"encoding/json"
	"iter"

	"github.com/delaneyj/framesignal/reactive"
)

// SignalMap is a reactive list of deeply wrapped values. Every mutation
// installs a new backing slice and keeps the nodes of untouched elements, so
// subscriptions on those elements survive.
type SignalMap[T any] struct {
	*reactive.WriteableSignal[[]Node]

	rs     *reactive.ReactiveSystem
	onLeaf func(*Leaf)
	cache  *WrapCache
}

type Option func(*config)

type config struct {
	cache *WrapCache
}

// WithWrapCache keeps node identity across operations: wrapping a container
// that was wrapped before returns the earlier node.
func WithWrapCache(cache *WrapCache) Option {
	return func(c *config) { c.cache = cache }
}

// New wraps initial into a SignalMap. onLeaf may be nil.
func New[T any](rs *reactive.ReactiveSystem, initial []T, onLeaf func(*Leaf), opts ...Option) *SignalMap[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &SignalMap[T]{
		rs:     rs,
		onLeaf: onLeaf,
		cache:  cfg.cache,
	}
	nodes := make([]Node, len(initial))
	for i, item := range initial {
		nodes[i] = m.wrap(item)
	}
	m.WriteableSignal = reactive.Signal(rs, nodes)
	return m
}

func (m *SignalMap[T]) wrap(v T) Node {
	return Wrap(m.rs, v, m.onLeaf, m.cache)
}

// Len is tracked.
func (m *SignalMap[T]) Len() int {
	return len(m.Value())
}

// At accepts negative indexes counted from the end.
func (m *SignalMap[T]) At(index int) (Node, bool) {
	arr := m.Value()
	if index < 0 {
		index += len(arr)
	}
	if index < 0 || index >= len(arr) {
		return nil, false
	}
	return arr[index], true
}

// Items returns a copy of the current nodes.
func (m *SignalMap[T]) Items() []Node {
	return append([]Node(nil), m.Value()...)
}

func (m *SignalMap[T]) All() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		for i, n := range m.Value() {
			if !yield(i, n) {
				return
			}
		}
	}
}

func (m *SignalMap[T]) ForEach(fn func(item Node, index int)) {
	for i, n := range m.Value() {
		fn(n, i)
	}
}

func (m *SignalMap[T]) Some(pred func(item Node, index int) bool) bool {
	for i, n := range m.Value() {
		if pred(n, i) {
			return true
		}
	}
	return false
}

func (m *SignalMap[T]) Every(pred func(item Node, index int) bool) bool {
	for i, n := range m.Value() {
		if !pred(n, i) {
			return false
		}
	}
	return true
}

func (m *SignalMap[T]) Find(pred func(item Node, index int) bool) (Node, bool) {
	for i, n := range m.Value() {
		if pred(n, i) {
			return n, true
		}
	}
	return nil, false
}

// FindIndex returns -1 when nothing matches.
func (m *SignalMap[T]) FindIndex(pred func(item Node, index int) bool) int {
	for i, n := range m.Value() {
		if pred(n, i) {
			return i
		}
	}
	return -1
}

// MapItems applies fn to every current node. It is tracked.
func MapItems[T, U any](m *SignalMap[T], fn func(item Node, index int) U) []U {
	arr := m.Value()
	out := make([]U, len(arr))
	for i, n := range arr {
		out[i] = fn(n, i)
	}
	return out
}

// Unwrap returns the plain data behind every element.
func (m *SignalMap[T]) Unwrap() []any {
	arr := m.Value()
	seen := map[Node]any{}
	out := make([]any, len(arr))
	for i, n := range arr {
		out[i] = unwrap(n, seen)
	}
	return out
}

func (m *SignalMap[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Unwrap())
}
