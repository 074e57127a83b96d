package signalmap

import (
	"reflect"
	"slices"
	"unsafe"

	"github.com/delaneyj/framesignal/reactive"
)

type cacheKey struct {
	typ reflect.Type
	ptr unsafe.Pointer
	len int
}

// WrapCache remembers which container produced which node so that shared
// and cyclic values wrap once. Share one across operations to keep node
// identity when the same container is wrapped again.
type WrapCache struct {
	nodes map[cacheKey]Node
}

func NewWrapCache() *WrapCache {
	return &WrapCache{nodes: map[cacheKey]Node{}}
}

// Len reports how many containers are cached.
func (c *WrapCache) Len() int {
	return len(c.nodes)
}

func identityOf(rv reflect.Value) (cacheKey, bool) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return cacheKey{}, false
		}
		return cacheKey{typ: rv.Type(), ptr: rv.UnsafePointer()}, true
	case reflect.Slice:
		if rv.Len() == 0 {
			return cacheKey{}, false
		}
		return cacheKey{typ: rv.Type(), ptr: rv.UnsafePointer(), len: rv.Len()}, true
	}
	return cacheKey{}, false
}

type wrapper struct {
	rs     *reactive.ReactiveSystem
	onLeaf func(*Leaf)
	cache  *WrapCache
}

// Wrap converts v into nodes. String-keyed maps become Objects, slices and
// arrays other than []byte become Arrays, everything else becomes a Leaf.
// onLeaf, if set, sees every leaf created. A nil cache wraps with a fresh
// one.
func Wrap(rs *reactive.ReactiveSystem, v any, onLeaf func(*Leaf), cache *WrapCache) Node {
	if cache == nil {
		cache = NewWrapCache()
	}
	w := wrapper{rs: rs, onLeaf: onLeaf, cache: cache}
	return w.wrap(reflect.ValueOf(v))
}

func (w wrapper) wrap(rv reflect.Value) Node {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return w.leaf(nil)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return w.leaf(nil)
	}

	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		return w.object(rv)
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8,
		rv.Kind() == reflect.Array && rv.Type().Elem().Kind() != reflect.Uint8:
		return w.array(rv)
	}
	return w.leaf(rv.Interface())
}

func (w wrapper) leaf(v any) Node {
	l := &Leaf{WriteableSignal: reactive.Signal(w.rs, v)}
	if w.onLeaf != nil {
		w.onLeaf(l)
	}
	return l
}

func (w wrapper) object(rv reflect.Value) Node {
	key, cacheable := identityOf(rv)
	if cacheable {
		if n, ok := w.cache.nodes[key]; ok {
			return n
		}
	}
	o := &Object{fields: make(map[string]Node, rv.Len())}
	if cacheable {
		w.cache.nodes[key] = o
	}

	iter := rv.MapRange()
	for iter.Next() {
		o.keys = append(o.keys, iter.Key().String())
	}
	slices.Sort(o.keys)
	for _, k := range o.keys {
		o.fields[k] = w.wrap(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
	}
	return o
}

func (w wrapper) array(rv reflect.Value) Node {
	key, cacheable := identityOf(rv)
	if cacheable {
		if n, ok := w.cache.nodes[key]; ok {
			return n
		}
	}
	a := &Array{items: make([]Node, rv.Len())}
	if cacheable {
		w.cache.nodes[key] = a
	}
	for i := range a.items {
		a.items[i] = w.wrap(rv.Index(i))
	}
	return a
}

// Unwrap rebuilds plain data from nodes: Objects become map[string]any,
// Arrays become []any and leaves yield their value. Leaf reads are tracked.
func Unwrap(n Node) any {
	return unwrap(n, map[Node]any{})
}

func unwrap(n Node, seen map[Node]any) any {
	switch n := n.(type) {
	case *Leaf:
		return n.Value()
	case *Object:
		if out, ok := seen[n]; ok {
			return out
		}
		out := make(map[string]any, len(n.keys))
		seen[n] = out
		for _, k := range n.keys {
			out[k] = unwrap(n.fields[k], seen)
		}
		return out
	case *Array:
		if out, ok := seen[n]; ok {
			return out
		}
		out := make([]any, len(n.items))
		seen[n] = out
		for i, item := range n.items {
			out[i] = unwrap(item, seen)
		}
		return out
	}
	return nil
}
