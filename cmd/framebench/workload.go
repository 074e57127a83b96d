package main

import (
	"fmt"

	"github.com/delaneyj/framesignal/reactive"
)

type workload struct {
	width, height  int
	frames, writes int
}

func (w workload) String() string {
	return fmt.Sprintf("%d * %d, %d writes/frame", w.width, w.height, w.writes)
}

// graph is width chains of height computeds hanging off one source. The
// chain ending in column i gets an effect of priority i%3, so every frame
// has high, normal and low work.
type graph struct {
	src  *reactive.WriteableSignal[int]
	runs [3]int
}

func addOne(v int) int {
	return v + 1
}

func (w workload) build(rs *reactive.ReactiveSystem) *graph {
	g := &graph{src: reactive.Signal(rs, 1)}
	priorities := []reactive.Priority{reactive.PriorityHigh, reactive.PriorityNormal, reactive.PriorityLow}

	for i := range w.width {
		last := g.src.Value
		for range w.height {
			prev := last
			last = reactive.Computed(rs, func() int {
				return prev() + 1
			}).Value
		}

		p := priorities[i%len(priorities)]
		reactive.Effect(rs, func() error {
			last()
			g.runs[p]++
			return nil
		}, reactive.WithPriority(p))
	}
	return g
}

func (g *graph) write(rs *reactive.ReactiveSystem, n int) {
	rs.Batch(func() {
		for range n {
			g.src.Update(addOne)
		}
	})
}

// frameSummary folds end-of-frame snapshots.
type frameSummary struct {
	frames     int
	forcedLow  int
	highBursts int
	last       reactive.Stats
}

func (s *frameSummary) Record(st reactive.Stats) {
	if st.Checkpoint != reactive.CheckpointEnd {
		return
	}
	s.frames++
	s.highBursts += st.HighBursts
	if st.ForcedLow {
		s.forcedLow++
	}
	s.last = st
}
