package reactive

// FrameHost delivers frame callbacks, the way a display refresh would. A
// host must call fn on the goroutine that owns the ReactiveSystem.
type FrameHost interface {
	RequestFrame(fn func()) (cancel func())
}

// ManualFrameHost only runs frames when told to. It is the default host and
// the one tests drive.
type ManualFrameHost struct {
	pending func()
	seq     uint64
}

func NewManualFrameHost() *ManualFrameHost {
	return &ManualFrameHost{}
}

func (h *ManualFrameHost) RequestFrame(fn func()) func() {
	h.seq++
	seq := h.seq
	h.pending = fn
	return func() {
		if h.seq == seq {
			h.pending = nil
		}
	}
}

// Pending reports whether a frame has been requested and not yet run.
func (h *ManualFrameHost) Pending() bool {
	return h.pending != nil
}

// Advance runs the pending frame, if any, and reports whether one ran.
func (h *ManualFrameHost) Advance() bool {
	fn := h.pending
	if fn == nil {
		return false
	}
	h.pending = nil
	fn()
	return true
}

// AdvanceUntilIdle runs frames until none is pending or max frames ran.
func (h *ManualFrameHost) AdvanceUntilIdle(max int) int {
	n := 0
	for n < max && h.Advance() {
		n++
	}
	return n
}
