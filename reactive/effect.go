package reactive

// Priority selects which scheduler queue an effect waits in.
type Priority uint8

const (
	PriorityNormal Priority = iota
	PriorityHigh
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "normal"
	}
}

// Cleanup runs before an effect's next run and when it is disposed.
type Cleanup func()

type ErrFn func() error

type EffectOption func(*EffectRunner)

func WithPriority(p Priority) EffectOption {
	return func(e *EffectRunner) { e.priority = p }
}

// Lazy defers the first run to the scheduler instead of running during
// construction.
func Lazy() EffectOption {
	return func(e *EffectRunner) { e.lazy = true }
}

type EffectRunner struct {
	rs       *ReactiveSystem
	fn       func() (Cleanup, error)
	cleanup  Cleanup
	priority Priority
	lazy     bool

	dirty    bool
	disposed bool
	running  bool
	failed   bool

	deps      sourceList
	onDispose []func()
}

func (e *EffectRunner) isSignalAware()        {}
func (e *EffectRunner) sources() *sourceList { return &e.deps }

// Effect runs fn now and again whenever something it read changes. If the
// first run fails and no error hook absorbs the failure, the effect is
// disposed and Effect panics with the failure.
func Effect(rs *ReactiveSystem, fn ErrFn, opts ...EffectOption) *EffectRunner {
	return EffectWithCleanup(rs, func() (Cleanup, error) {
		return nil, fn()
	}, opts...)
}

// EffectWithCleanup is Effect for bodies that hand back a Cleanup.
func EffectWithCleanup(rs *ReactiveSystem, fn func() (Cleanup, error), opts ...EffectOption) *EffectRunner {
	e := &EffectRunner{
		rs:    rs,
		fn:    fn,
		dirty: true,
		deps:  newSourceList(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lazy {
		rs.enqueueOrBatch(e)
		return e
	}
	if err := e.run(); err != nil {
		e.Dispose()
		if rs.sched.empty() && rs.sched.parked.Cardinality() == 0 {
			rs.cancelFrame()
		}
		panic(err)
	}
	return e
}

func (e *EffectRunner) run() error {
	if e.disposed || e.running || !e.dirty {
		return nil
	}
	e.running = true
	e.dirty = false
	defer func() {
		e.running = false
		if e.dirty && !e.disposed {
			e.rs.enqueueOrBatch(e)
		}
	}()

	e.runCleanup()
	e.rs.unlinkSources(e)

	var cleanup Cleanup
	err := e.rs.track(e, func() error {
		return capture(func() (err error) {
			cleanup, err = e.fn()
			return err
		})
	})
	if e.disposed {
		// Disposed by its own body: drop what it read afterwards and
		// release the cleanup it just returned.
		e.rs.unlinkSources(e)
		if cleanup != nil {
			e.rs.Untracked(cleanup)
		}
		if err != nil {
			return e.rs.handle(err, ErrorWhereEffect)
		}
		return nil
	}
	e.failed = err != nil
	if err != nil {
		e.dirty = true
		return e.rs.handle(err, ErrorWhereEffect)
	}
	e.cleanup = cleanup
	return nil
}

func (e *EffectRunner) runCleanup() {
	if e.cleanup == nil {
		return
	}
	cleanup := e.cleanup
	e.cleanup = nil
	e.rs.Untracked(cleanup)
}

func (e *EffectRunner) markDirty() {
	if e.disposed || e.dirty {
		return
	}
	e.dirty = true
	e.rs.enqueueOrBatch(e)
}

// Dispose runs the last cleanup, drops e from every queue and severs its
// dependencies. It is safe to call more than once.
func (e *EffectRunner) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.runCleanup()
	if e.rs.batch != nil {
		e.rs.batch.Remove(e)
	}
	e.rs.sched.remove(e)
	e.rs.unlinkSources(e)

	callbacks := e.onDispose
	e.onDispose = nil
	for _, fn := range callbacks {
		fn()
	}
}

// OnDispose registers fn to run once when e is disposed.
func (e *EffectRunner) OnDispose(fn func()) {
	if e.disposed {
		fn()
		return
	}
	e.onDispose = append(e.onDispose, fn)
}

// SetPriority moves e to another queue, keeping its dirty state.
func (e *EffectRunner) SetPriority(p Priority) {
	if e.priority == p {
		return
	}
	e.rs.sched.remove(e)
	e.priority = p
	if e.dirty && !e.disposed && !e.running {
		if e.rs.batch != nil && e.rs.batch.Contains(e) {
			return
		}
		e.rs.enqueue(e)
	}
}

func (e *EffectRunner) Priority() Priority {
	return e.priority
}

func (e *EffectRunner) Disposed() bool {
	return e.disposed
}

func (e *EffectRunner) Dirty() bool {
	return e.dirty
}

// Sources reports how many nodes e read during its last run.
func (e *EffectRunner) Sources() int {
	return countLinks(e.rs, e.deps.head, true)
}
