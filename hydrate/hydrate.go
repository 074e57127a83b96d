// Package hydrate moves hydration state between a producing and a consuming
// ReactiveSystem, either as the script payload a page evaluates or as a
// checksummed envelope.
package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/framesignal/reactive"
)

var (
	ErrMalformedPayload = errors.New("hydrate: malformed payload")
	ErrChecksum         = errors.New("hydrate: checksum mismatch")
)

const (
	payloadPrefix = "window['__SSR_STATE__'] ="
	payloadSuffix = ";"
)

// Render returns the payload script for rs's current hydration state.
func Render(rs *reactive.ReactiveSystem) (string, error) {
	state, err := rs.HydrationState()
	if err != nil {
		return "", err
	}
	return Payload(state), nil
}

// WriteTo streams the payload wrapped in a script element.
func WriteTo(w io.Writer, rs *reactive.ReactiveSystem) error {
	state, err := rs.HydrationState()
	if err != nil {
		return err
	}
	WriteScriptTag(w, state)
	return nil
}

// Parse reads a payload produced by Payload or Render back into a snapshot.
// A surrounding script element is accepted.
func Parse(payload string) (map[string]json.RawMessage, error) {
	s := strings.TrimSpace(payload)
	s = strings.TrimPrefix(s, "<script>")
	s = strings.TrimSuffix(s, "</script>")
	s = strings.TrimSpace(s)

	rest, ok := strings.CutPrefix(s, payloadPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing state assignment", ErrMalformedPayload)
	}
	rest, ok = strings.CutSuffix(strings.TrimSpace(rest), payloadSuffix)
	if !ok {
		return nil, fmt.Errorf("%w: missing terminator", ErrMalformedPayload)
	}
	return decodeState([]byte(rest))
}

// Consume parses payload into an option that makes a new system consume it.
func Consume(payload string) (reactive.Option, error) {
	snapshot, err := Parse(payload)
	if err != nil {
		return nil, err
	}
	return reactive.WithHydrationSnapshot(snapshot), nil
}

type envelope struct {
	Sum   string          `json:"sum"`
	State json.RawMessage `json:"state"`
}

// Seal wraps a hydration state in an envelope carrying its xxhash so Open
// can reject truncated or altered handoffs.
func Seal(state []byte) ([]byte, error) {
	compact, err := compactJSON(state)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(envelope{
		Sum:   checksum(compact),
		State: compact,
	})
	if err != nil {
		return nil, fmt.Errorf("sealing hydration state: %w", err)
	}
	return b, nil
}

// SealSystem seals rs's current hydration state.
func SealSystem(rs *reactive.ReactiveSystem) ([]byte, error) {
	state, err := rs.HydrationState()
	if err != nil {
		return nil, err
	}
	return Seal(state)
}

// Open verifies a sealed envelope and returns its snapshot.
func Open(sealed []byte) (map[string]json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if len(env.State) == 0 {
		return nil, fmt.Errorf("%w: empty state", ErrMalformedPayload)
	}
	compact, err := compactJSON(env.State)
	if err != nil {
		return nil, err
	}
	if got := checksum(compact); got != env.Sum {
		return nil, fmt.Errorf("%w: got %s want %s", ErrChecksum, got, env.Sum)
	}
	return decodeState(compact)
}

func checksum(b []byte) string {
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

func compactJSON(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return buf.Bytes(), nil
}

func decodeState(b []byte) (map[string]json.RawMessage, error) {
	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if snapshot == nil {
		snapshot = map[string]json.RawMessage{}
	}
	return snapshot, nil
}
