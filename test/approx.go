package test

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/outofforest/quadrant"
)

// ErrInjected is returned by failing capability.
var ErrInjected = errors.New("injected failure")

// NewRecorder creates observer recording capability calls.
func NewRecorder() *Recorder {
	return &Recorder{
		calls:  map[quadrant.Operation]uint64{},
		errors: map[quadrant.Operation]uint64{},
	}
}

// Recorder records capability calls. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	calls  map[quadrant.Operation]uint64
	errors map[quadrant.Operation]uint64
}

// Observe records the call.
func (r *Recorder) Observe(op quadrant.Operation, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[op]++
	if err != nil {
		r.errors[op]++
	}
}

// Calls returns the number of calls of the operation and resets the counter.
func (r *Recorder) Calls(op quadrant.Operation) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.calls[op]
	delete(r.calls, op)
	return n
}

// Errors returns the number of failed calls of the operation and resets the counter.
func (r *Recorder) Errors(op quadrant.Operation) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.errors[op]
	delete(r.errors, op)
	return n
}

// Failing wraps capability and fails the operation once it has been called Budget times.
type Failing[A, B quadrant.Embeddable, S any] struct {
	Approx    quadrant.Approx[A, B, S]
	Operation quadrant.Operation
	Budget    uint64
}

// ColorBase forwards the call unless it must fail.
func (f *Failing[A, B, S]) ColorBase(state *S, base A) (quadrant.Color, error) {
	if err := f.check(quadrant.OperationColorBase); err != nil {
		return quadrant.Color{}, err
	}
	return f.Approx.ColorBase(state, base)
}

// CompressBase forwards the call unless it must fail.
func (f *Failing[A, B, S]) CompressBase(state *S, base A) (B, error) {
	if err := f.check(quadrant.OperationCompressBase); err != nil {
		var b B
		return b, err
	}
	return f.Approx.CompressBase(state, base)
}

// ExpandBase forwards the call unless it must fail.
func (f *Failing[A, B, S]) ExpandBase(state *S, embedding B) (A, error) {
	if err := f.check(quadrant.OperationExpandBase); err != nil {
		var a A
		return a, err
	}
	return f.Approx.ExpandBase(state, embedding)
}

// CompressNode forwards the call unless it must fail.
func (f *Failing[A, B, S]) CompressNode(state *S, children [4]B) (B, error) {
	if err := f.check(quadrant.OperationCompressNode); err != nil {
		var b B
		return b, err
	}
	return f.Approx.CompressNode(state, children)
}

// ExpandNode forwards the call unless it must fail.
func (f *Failing[A, B, S]) ExpandNode(state *S, embedding B) ([4]B, error) {
	if err := f.check(quadrant.OperationExpandNode); err != nil {
		return [4]B{}, err
	}
	return f.Approx.ExpandNode(state, embedding)
}

func (f *Failing[A, B, S]) check(op quadrant.Operation) error {
	if op != f.Operation {
		return nil
	}
	if f.Budget == 0 {
		return errors.Wrapf(ErrInjected, "operation %s", op)
	}
	f.Budget--
	return nil
}
