package signalmap_test

import (
	"cmp"
	"encoding/json"
	"testing"

	"github.com/delaneyj/framesignal/reactive"
	"github.com/delaneyj/framesignal/signalmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todos() []map[string]any {
	return []map[string]any{
		{"id": 1, "title": "write", "tags": []any{"a"}},
		{"id": 2, "title": "test", "tags": []any{}},
		{"id": 3, "title": "ship", "tags": []any{"b", "c"}},
	}
}

func idOf(n signalmap.Node) int {
	id, _ := signalmap.LeafValue[int](n.(*signalmap.Object).Leaf("id"))
	return id
}

func ids[T any](m *signalmap.SignalMap[T]) []int {
	return signalmap.MapItems(m, func(n signalmap.Node, _ int) int { return idOf(n) })
}

func TestSignalMapReads(t *testing.T) {
	rs := newSystem(t)
	leaves := 0
	m := signalmap.New(rs, todos(), func(*signalmap.Leaf) { leaves++ })
	assert.Equal(t, 9, leaves)

	assert.Equal(t, 3, m.Len())
	last, ok := m.At(-1)
	require.True(t, ok)
	assert.Equal(t, 3, idOf(last))
	_, ok = m.At(3)
	assert.False(t, ok)
	_, ok = m.At(-4)
	assert.False(t, ok)

	assert.Equal(t, []int{1, 2, 3}, ids(m))
	assert.Len(t, m.Items(), 3)

	var seen []int
	for i, n := range m.All() {
		seen = append(seen, i*10+idOf(n))
	}
	assert.Equal(t, []int{1, 12, 23}, seen)

	count := 0
	m.ForEach(func(signalmap.Node, int) { count++ })
	assert.Equal(t, 3, count)

	assert.True(t, m.Some(func(n signalmap.Node, _ int) bool { return idOf(n) == 2 }))
	assert.False(t, m.Every(func(n signalmap.Node, _ int) bool { return idOf(n) < 3 }))
	found, ok := m.Find(func(n signalmap.Node, _ int) bool { return idOf(n) > 1 })
	require.True(t, ok)
	assert.Equal(t, 2, idOf(found))
	assert.Equal(t, 2, m.FindIndex(func(n signalmap.Node, _ int) bool { return idOf(n) == 3 }))
	assert.Equal(t, -1, m.FindIndex(func(signalmap.Node, int) bool { return false }))

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"title":"write","tags":["a"]},
		{"id":2,"title":"test","tags":[]},
		{"id":3,"title":"ship","tags":["b","c"]}
	]`, string(b))
}

func TestSignalMapMutations(t *testing.T) {
	rs := newSystem(t)
	m := signalmap.New(rs, []int{1, 2, 3}, nil)
	val := func(n signalmap.Node) int {
		v, _ := signalmap.LeafValue[int](n)
		return v
	}
	values := func() []int {
		return signalmap.MapItems(m, func(n signalmap.Node, _ int) int { return val(n) })
	}

	assert.Equal(t, 5, m.Push(4, 5))
	assert.Equal(t, 6, m.Unshift(0))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, values())

	popped, ok := m.Pop()
	require.True(t, ok)
	assert.Equal(t, 5, val(popped))
	shifted, ok := m.Shift()
	require.True(t, ok)
	assert.Equal(t, 0, val(shifted))
	assert.Equal(t, []int{1, 2, 3, 4}, values())

	removed := m.Splice(1, 2, 20, 30, 40)
	assert.Equal(t, []int{2, 3}, []int{val(removed[0]), val(removed[1])})
	assert.Equal(t, []int{1, 20, 30, 40, 4}, values())

	removed = m.Splice(-2, 10)
	assert.Len(t, removed, 2)
	assert.Equal(t, []int{1, 20, 30}, values())

	m.Reverse()
	assert.Equal(t, []int{30, 20, 1}, values())
	m.Sort(func(a, b signalmap.Node) int { return cmp.Compare(val(a), val(b)) })
	assert.Equal(t, []int{1, 20, 30}, values())

	m.InsertAt(99, 31)
	m.InsertAt(-5, 0)
	assert.Equal(t, []int{0, 1, 20, 30, 31}, values())

	gone, ok := m.RemoveAt(1)
	require.True(t, ok)
	assert.Equal(t, 1, val(gone))
	_, ok = m.RemoveAt(10)
	assert.False(t, ok)

	m.With(0, 7).With(1, 8)
	m.ReplaceAt(9, 100)
	assert.Equal(t, []int{7, 8, 30, 31}, values())

	m.SetAt(2, func(n signalmap.Node) {
		n.(*signalmap.Leaf).SetValue(33)
	})
	assert.Equal(t, []int{7, 8, 33, 31}, values())

	m.FilterInPlace(func(n signalmap.Node, _ int) bool { return val(n)%2 == 1 })
	assert.Equal(t, []int{7, 33, 31}, values())

	m.ReplaceAll([]int{5, 6})
	assert.Equal(t, []int{5, 6}, values())
	m.Clear()
	assert.Equal(t, 0, m.Len())
	_, ok = m.Pop()
	assert.False(t, ok)
	_, ok = m.Shift()
	assert.False(t, ok)
}

// should not publish when nothing changed
func TestSignalMapNoOpMutations(t *testing.T) {
	rs := newSystem(t)
	cache := signalmap.NewWrapCache()
	items := todos()
	m := signalmap.New(rs, items, nil, signalmap.WithWrapCache(cache))
	v := m.Version()

	m.Sort(func(a, b signalmap.Node) int { return cmp.Compare(idOf(a), idOf(b)) })
	m.FilterInPlace(func(signalmap.Node, int) bool { return true })
	m.ReplaceAll(items)
	m.ReplaceAt(1, items[1])
	assert.Equal(t, 3, m.Push())
	assert.Equal(t, v, m.Version())

	m.ReplaceAll(items[:2])
	assert.Equal(t, v+1, m.Version())

	empty := signalmap.New[int](rs, nil, nil)
	empty.Clear()
	assert.Zero(t, empty.Version())
}

// should only replace the node at the replaced index
func TestSignalMapReplaceKeepsOtherNodes(t *testing.T) {
	rs := newSystem(t)
	m := signalmap.New(rs, todos(), nil)
	first, _ := m.At(0)
	second, _ := m.At(1)
	title := second.(*signalmap.Object).Leaf("title")

	runs := 0
	reactive.Effect(rs, func() error {
		title.Value()
		runs++
		return nil
	})

	m.ReplaceAt(0, map[string]any{"id": 1, "title": "rewrite"})
	nowFirst, _ := m.At(0)
	nowSecond, _ := m.At(1)
	assert.NotSame(t, first, nowFirst)
	assert.Same(t, second, nowSecond)
	assert.Equal(t, 1, title.Targets())

	require.NoError(t, rs.FlushSync())
	assert.Equal(t, 1, runs)

	title.SetValue("tested")
	require.NoError(t, rs.FlushSync())
	assert.Equal(t, 2, runs)
}

// should rerun list readers on every published change
func TestSignalMapTracksList(t *testing.T) {
	rs := newSystem(t)
	m := signalmap.New(rs, []string{"a"}, nil)
	var lengths []int
	reactive.Effect(rs, func() error {
		lengths = append(lengths, m.Len())
		return nil
	})

	m.Push("b")
	require.NoError(t, rs.FlushSync())
	m.SetAt(0, func(n signalmap.Node) { n.(*signalmap.Leaf).SetValue("A") })
	require.NoError(t, rs.FlushSync())
	assert.Equal(t, []int{1, 2, 2}, lengths)
}
