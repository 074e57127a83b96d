package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Batch runs fn and schedules every effect it dirtied once, after fn
// returns. Nested calls join the outermost batch.
func (rs *ReactiveSystem) Batch(fn func()) {
	if rs.batch != nil {
		fn()
		return
	}
	rs.batch = mapset.NewThreadUnsafeSet[*EffectRunner]()
	defer rs.closeBatch()
	fn()
}

// InBatch reports whether a batch is open.
func (rs *ReactiveSystem) InBatch() bool {
	return rs.batch != nil
}

func (rs *ReactiveSystem) closeBatch() {
	if rs.drainBatch() {
		rs.requestFrame()
	}
}

// drainBatch moves the open batch into the queues and reports whether
// anything was moved.
func (rs *ReactiveSystem) drainBatch() bool {
	pending := rs.batch
	rs.batch = nil
	if pending == nil || pending.Cardinality() == 0 {
		return false
	}
	pending.Each(func(e *EffectRunner) bool {
		if !e.disposed {
			rs.sched.add(e)
		}
		return false
	})
	return true
}

func (rs *ReactiveSystem) enqueueOrBatch(e *EffectRunner) {
	if rs.batch != nil {
		rs.batch.Add(e)
		return
	}
	rs.enqueue(e)
}

func (rs *ReactiveSystem) enqueue(e *EffectRunner) {
	rs.sched.add(e)
	rs.requestFrame()
}
