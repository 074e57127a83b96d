package reactive

import (
	"errors"
	"fmt"
)

var (
	ErrCycle      = errors.New("reactive: cycle detected while computing")
	ErrNoValue    = errors.New("reactive: computed accessed before first successful compute")
	ErrFlushStorm = errors.New("reactive: flush exceeded max effect runs")
	ErrDisposed   = errors.New("reactive: node disposed")
)

// ErrorWhere names the kind of node a failure came from.
type ErrorWhere string

const (
	ErrorWhereEffect   ErrorWhere = "effect"
	ErrorWhereComputed ErrorWhere = "computed"
)

// OnErrorFunc receives failures raised by computed derivations and effect
// bodies. Returning nil marks the failure as handled; returning an error (or
// panicking) lets the original failure propagate.
type OnErrorFunc func(err error, where ErrorWhere) error

// NodeError wraps a failure raised inside a node.
type NodeError struct {
	Where ErrorWhere
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("reactive: %s failed: %v", e.Where, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// capture runs fn, converting a panic into an error.
func capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// handle routes err through the error hook. It returns nil when the hook
// absorbed the failure.
func (rs *ReactiveSystem) handle(err error, where ErrorWhere) error {
	nerr := &NodeError{Where: where, Err: err}
	if rs.onError == nil {
		return nerr
	}
	hookErr := capture(func() error {
		return rs.onError(err, where)
	})
	if hookErr != nil {
		return nerr
	}
	return nil
}
