package signalmap

import (
	"encoding/json"

	"github.com/delaneyj/framesignal/reactive"
)

// Node is one wrapped value: a *Leaf, an *Object or an *Array.
type Node interface {
	isNode()
}

// Leaf holds a value that is not taken apart further.
type Leaf struct {
	*reactive.WriteableSignal[any]
}

// Object is a string-keyed map whose values are wrapped one by one.
type Object struct {
	keys   []string
	fields map[string]Node
}

// Array is a slice whose elements are wrapped one by one.
type Array struct {
	items []Node
}

func (*Leaf) isNode()   {}
func (*Object) isNode() {}
func (*Array) isNode()  {}

// Keys returns the field names in sorted order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Get(key string) (Node, bool) {
	n, ok := o.fields[key]
	return n, ok
}

// Leaf returns the field at key when it is a leaf.
func (o *Object) Leaf(key string) *Leaf {
	l, _ := o.fields[key].(*Leaf)
	return l
}

func (o *Object) Len() int {
	return len(o.keys)
}

func (a *Array) Len() int {
	return len(a.items)
}

func (a *Array) At(i int) (Node, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

func (a *Array) Items() []Node {
	return append([]Node(nil), a.items...)
}

// LeafValue reads n as a leaf holding a V. The read is tracked.
func LeafValue[V any](n Node) (V, bool) {
	var zero V
	l, ok := n.(*Leaf)
	if !ok {
		return zero, false
	}
	v, ok := l.Value().(V)
	return v, ok
}

func (l *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(Unwrap(l))
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(Unwrap(o))
}

func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(Unwrap(a))
}
