package telemetry

import "github.com/delaneyj/framesignal/reactive"

// Multi fans a snapshot out to every sink in order. Nil sinks are skipped.
type Multi []reactive.Telemetry

func (m Multi) Record(s reactive.Stats) {
	for _, t := range m {
		if t != nil {
			t.Record(s)
		}
	}
}
