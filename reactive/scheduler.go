package reactive

import (
	"errors"
	"fmt"
	"math"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

type scheduler struct {
	cfg SchedulerConfig

	high, normal, low mapset.Set[*EffectRunner]

	phase          Phase
	normalBudgetMs float64
	lowBudgetMs    float64
	ewmaFrameMs    float64
	framesSinceLow int
	frame          uint64

	// parked holds effects that failed during the current pass. They wait
	// for the next pass instead of spinning.
	parked mapset.Set[*EffectRunner]

	cancel   func()
	flushing bool
	last     Stats
}

func newScheduler(cfg SchedulerConfig) scheduler {
	return scheduler{
		cfg:            cfg,
		high:           mapset.NewThreadUnsafeSet[*EffectRunner](),
		normal:         mapset.NewThreadUnsafeSet[*EffectRunner](),
		low:            mapset.NewThreadUnsafeSet[*EffectRunner](),
		parked:         mapset.NewThreadUnsafeSet[*EffectRunner](),
		normalBudgetMs: cfg.NormalBudgetMs,
		lowBudgetMs:    cfg.LowBudgetMs,
		ewmaFrameMs:    cfg.TargetFrameMs,
	}
}

func (s *scheduler) queue(p Priority) mapset.Set[*EffectRunner] {
	switch p {
	case PriorityHigh:
		return s.high
	case PriorityLow:
		return s.low
	default:
		return s.normal
	}
}

func (s *scheduler) add(e *EffectRunner) {
	s.queue(e.priority).Add(e)
}

func (s *scheduler) remove(e *EffectRunner) {
	s.high.Remove(e)
	s.normal.Remove(e)
	s.low.Remove(e)
	s.parked.Remove(e)
}

func (s *scheduler) unpark() {
	s.parked.Each(func(e *EffectRunner) bool {
		if e.dirty && !e.disposed {
			s.add(e)
		}
		return false
	})
	s.parked.Clear()
}

func (s *scheduler) sizes() QueueSizes {
	return QueueSizes{
		High:   s.high.Cardinality(),
		Normal: s.normal.Cardinality(),
		Low:    s.low.Cardinality(),
	}
}

func (s *scheduler) empty() bool {
	return s.high.Cardinality() == 0 && s.normal.Cardinality() == 0 && s.low.Cardinality() == 0
}

// adapt folds a frame duration into the average and nudges the budgets
// toward whatever keeps the average near the target.
func (s *scheduler) adapt(frameMs float64) {
	c := s.cfg
	s.ewmaFrameMs = s.ewmaFrameMs*(1-c.EWMAAlpha) + frameMs*c.EWMAAlpha
	over := s.ewmaFrameMs - c.TargetFrameMs
	switch {
	case over > c.ToleranceMs:
		s.normalBudgetMs = math.Max(c.NormalMinMs, s.normalBudgetMs-c.NormalStepMs)
		s.lowBudgetMs = math.Max(c.LowMinMs, s.lowBudgetMs-c.LowStepMs)
	case over < -c.ToleranceMs:
		s.normalBudgetMs = math.Min(c.NormalMaxMs, s.normalBudgetMs+c.NormalStepMs)
		s.lowBudgetMs = math.Min(c.LowMaxMs, s.lowBudgetMs+c.LowStepMs)
	}
}

func (rs *ReactiveSystem) requestFrame() {
	if rs.sched.cancel != nil || rs.sched.flushing {
		return
	}
	rs.sched.cancel = rs.host.RequestFrame(rs.frameCallback)
}

func (rs *ReactiveSystem) frameCallback() {
	rs.sched.cancel = nil
	rs.RunFrame()
}

func (rs *ReactiveSystem) cancelFrame() {
	if rs.sched.cancel == nil {
		return
	}
	cancel := rs.sched.cancel
	rs.sched.cancel = nil
	cancel()
}

func (rs *ReactiveSystem) sinceMs(start time.Time) float64 {
	return float64(rs.now().Sub(start)) / float64(time.Millisecond)
}

// runOne pops an effect and runs it. It reports whether a run happened.
func (rs *ReactiveSystem) runOne(q mapset.Set[*EffectRunner]) (bool, error) {
	e, ok := q.Pop()
	if !ok {
		return false, nil
	}
	return rs.runEffect(e)
}

func (rs *ReactiveSystem) runEffect(e *EffectRunner) (bool, error) {
	if e.disposed || e.running || !e.dirty || rs.sched.parked.Contains(e) {
		return false, nil
	}
	err := e.run()
	if e.failed {
		rs.sched.parked.Add(e)
	}
	return true, err
}

// drainHigh runs the high effects queued when it starts. Effects that queue
// again while it runs wait for the burst or a later frame.
func (rs *ReactiveSystem) drainHigh() {
	high := rs.sched.high
	for _, e := range high.ToSlice() {
		if !high.Contains(e) {
			continue
		}
		high.Remove(e)
		if _, err := rs.runEffect(e); err != nil {
			rs.logEffectError(err, PriorityHigh)
		}
	}
}

func (rs *ReactiveSystem) runHigh(limit int) int {
	handled := 0
	for rs.sched.high.Cardinality() > 0 && handled < limit {
		if _, err := rs.runOne(rs.sched.high); err != nil {
			rs.logEffectError(err, PriorityHigh)
		}
		handled++
	}
	return handled
}

func (rs *ReactiveSystem) runPhase(q mapset.Set[*EffectRunner], p Priority, haveBudget func() bool) {
	chunk := rs.sched.cfg.ChunkSize
	for q.Cardinality() > 0 && haveBudget() {
		for i := 0; i < chunk && q.Cardinality() > 0 && haveBudget(); i++ {
			if _, err := rs.runOne(q); err != nil {
				rs.logEffectError(err, p)
			}
		}
	}
}

func (rs *ReactiveSystem) logEffectError(err error, p Priority) {
	rs.logger.Error("effect failed",
		"priority", p.String(),
		"frame", rs.sched.frame,
		"err", err,
	)
}

// RunFrame runs one frame: the high work queued at its start, normal work within
// budget, a commit checkpoint, a bounded high top-up, then low work within
// budget or to completion when low work has waited too many frames.
func (rs *ReactiveSystem) RunFrame() {
	s := &rs.sched
	rs.cancelFrame()
	frameStart := rs.now()

	s.phase = PhaseUpdate
	rs.record(CheckpointStart, 0, 0, 0, false)
	rs.drainHigh()

	// Budgets are measured after the leading high drain.
	budgetStart := rs.now()
	haveNormal := func() bool { return rs.sinceMs(budgetStart) < s.normalBudgetMs }
	haveLow := func() bool { return rs.sinceMs(budgetStart) < s.normalBudgetMs+s.lowBudgetMs }

	if s.normal.Cardinality() > 0 {
		rs.runPhase(s.normal, PriorityNormal, haveNormal)
	}

	s.phase = PhaseCommit
	rs.record(CheckpointCommit, rs.sinceMs(budgetStart), rs.sinceMs(frameStart), 0, false)
	if rs.onCommit != nil {
		rs.onCommit()
	}

	bursts := 0
	if s.high.Cardinality() > 0 {
		rs.runHigh(s.cfg.HighBurstLimit)
		bursts = 1
		budgetStart = rs.now()
	}

	s.phase = PhaseIdle
	forced := false
	if s.low.Cardinality() > 0 {
		forced = s.framesSinceLow >= s.cfg.LowForceEveryNFrames
		if forced || haveLow() {
			check := haveLow
			if forced {
				check = func() bool { return true }
			}
			rs.runPhase(s.low, PriorityLow, check)
			s.framesSinceLow = 0
		} else {
			s.framesSinceLow++
		}
	}

	s.unpark()
	totalMs := rs.sinceMs(frameStart)
	budgetedMs := rs.sinceMs(budgetStart)
	s.frame++
	s.adapt(totalMs)
	rs.record(CheckpointEnd, budgetedMs, totalMs, bursts, forced)

	if !s.empty() {
		rs.requestFrame()
	}
}

func (rs *ReactiveSystem) record(cp Checkpoint, budgetedMs, totalMs float64, bursts int, forced bool) {
	s := &rs.sched
	s.last = Stats{
		Checkpoint:     cp,
		Phase:          s.phase,
		Frame:          s.frame,
		BudgetedMs:     budgetedMs,
		TotalMs:        totalMs,
		HighBursts:     bursts,
		ForcedLow:      forced,
		Queues:         s.sizes(),
		NormalBudgetMs: s.normalBudgetMs,
		LowBudgetMs:    s.lowBudgetMs,
		EWMAFrameMs:    s.ewmaFrameMs,
		FramesSinceLow: s.framesSinceLow,
	}
	if rs.telemetry != nil {
		rs.telemetry.Record(s.last)
	}
}

// Stats returns the most recent scheduler snapshot with live queue sizes.
func (rs *ReactiveSystem) Stats() Stats {
	st := rs.sched.last
	st.Phase = rs.sched.phase
	st.Queues = rs.sched.sizes()
	return st
}

// FramePending reports whether a frame has been requested from the host.
func (rs *ReactiveSystem) FramePending() bool {
	return rs.sched.cancel != nil
}

// FlushSync cancels any pending frame and runs every queued effect, high
// then normal then low, ignoring budgets, until nothing is dirty. It returns
// the unhandled effect failures. An effect that fails runs at most once per
// flush and is left queued for the next frame.
func (rs *ReactiveSystem) FlushSync() error {
	rs.cancelFrame()
	rs.drainBatch()

	s := &rs.sched
	s.flushing = true
	defer func() { s.flushing = false }()

	var errs []error
	runs := 0
	stormed := false
drain:
	for !s.empty() {
		for _, q := range []mapset.Set[*EffectRunner]{s.high, s.normal, s.low} {
			for q.Cardinality() > 0 {
				if rs.maxFlushRuns > 0 && runs >= rs.maxFlushRuns {
					stormed = true
					break drain
				}
				ran, err := rs.runOne(q)
				if ran {
					runs++
				}
				if err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	s.unpark()
	if !s.empty() {
		s.flushing = false
		rs.requestFrame()
	}
	if stormed {
		rs.logger.Warn("flush storm",
			"runs", runs,
			"queued", s.sizes().Total(),
		)
		errs = append(errs, fmt.Errorf("%w: %d runs", ErrFlushStorm, runs))
	}
	return errors.Join(errs...)
}
