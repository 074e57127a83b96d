package reactive

import (
	"encoding/json"
	"fmt"
	"slices"
)

type hydration struct {
	consumer bool
	snapshot map[string]json.RawMessage
	state    map[string]any
	nextID   int
}

func newHydration() hydration {
	return hydration{state: map[string]any{}}
}

// Hydrated builds a signal bound to a stable id. On the producing side the
// initial value and every later write are recorded for HydrationState. On
// the consuming side a snapshot entry for id, if present, replaces initial
// and is removed so it is applied once. An empty id gets the next automatic
// one, counting from ssr_1.
func Hydrated[T any](rs *ReactiveSystem, id string, initial T) *WriteableSignal[T] {
	h := &rs.hydrate
	if id == "" {
		h.nextID++
		id = fmt.Sprintf("ssr_%d", h.nextID)
	}

	if h.consumer {
		if raw, ok := h.snapshot[id]; ok {
			delete(h.snapshot, id)
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				rs.logger.Warn("hydration entry ignored", "id", id, "err", err)
			} else {
				initial = v
			}
		}
		return Signal(rs, initial)
	}

	s := Signal(rs, initial)
	h.state[id] = initial
	s.onWrite = func(v T) {
		h.state[id] = v
	}
	return s
}

// IsHydrationConsumer reports whether rs reads from a snapshot rather than
// producing one.
func (rs *ReactiveSystem) IsHydrationConsumer() bool {
	return rs.hydrate.consumer
}

// HydrationState encodes every hydrated signal's latest value as a JSON
// object keyed by id.
func (rs *ReactiveSystem) HydrationState() ([]byte, error) {
	b, err := json.Marshal(rs.hydrate.state)
	if err != nil {
		return nil, fmt.Errorf("encoding hydration state: %w", err)
	}
	return b, nil
}

// PendingHydration lists snapshot ids that no signal has consumed yet.
func (rs *ReactiveSystem) PendingHydration() []string {
	ids := make([]string, 0, len(rs.hydrate.snapshot))
	for id := range rs.hydrate.snapshot {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
