// Package window cuts an id stream into truncated-backprop windows: batchSize
// position-aligned streams read numSteps ids at a time, with targets shifted
// one position ahead of inputs.
package window

import (
	"context"

	"github.com/samcharles93/textgen/internal/errs"
)

// Window is one step of an epoch. Inputs and Targets are batchSize rows of
// numSteps ids; Targets[b][t] == Inputs[b][t+1] within a stream.
type Window struct {
	Index   int
	Inputs  [][]int
	Targets [][]int
}

// Iterator yields the windows of a single epoch in order.
type Iterator struct {
	streams  [][]int
	numSteps int
	epoch    int
	next     int
}

// Iterate partitions data into batchSize streams of len(data)/batchSize ids.
// Trailing ids that do not fill a stream are discarded.
func Iterate(data []int, batchSize, numSteps int) (*Iterator, error) {
	if batchSize < 1 || numSteps < 1 {
		return nil, errs.Configf("batch size and num steps must be positive, got %d and %d", batchSize, numSteps)
	}
	streamLen := len(data) / batchSize
	epoch := (streamLen - 1) / numSteps
	if streamLen == 0 || epoch <= 0 {
		return nil, errs.Configf("epoch size is zero: %d ids cannot fill %d streams of %d steps", len(data), batchSize, numSteps)
	}

	streams := make([][]int, batchSize)
	for b := range streams {
		streams[b] = data[b*streamLen : (b+1)*streamLen]
	}
	return &Iterator{streams: streams, numSteps: numSteps, epoch: epoch}, nil
}

// EpochSize is the number of windows in one pass.
func (it *Iterator) EpochSize() int { return it.epoch }

// BatchSize is the number of parallel streams.
func (it *Iterator) BatchSize() int { return len(it.streams) }

// Rewind restarts the pass from the first window.
func (it *Iterator) Rewind() { it.next = 0 }

// Next returns the next window, or false once the epoch is exhausted.
func (it *Iterator) Next() (Window, bool) {
	if it.next >= it.epoch {
		return Window{}, false
	}
	off := it.next * it.numSteps
	w := Window{
		Index:   it.next,
		Inputs:  make([][]int, len(it.streams)),
		Targets: make([][]int, len(it.streams)),
	}
	for b, s := range it.streams {
		w.Inputs[b] = append([]int(nil), s[off:off+it.numSteps]...)
		w.Targets[b] = append([]int(nil), s[off+1:off+it.numSteps+1]...)
	}
	it.next++
	return w, true
}

// StreamStates holds the recurrent state carried between windows, one per
// stream.
type StreamStates[S any] struct {
	init   func() S
	states []S
}

// NewStreamStates allocates n states produced by init.
func NewStreamStates[S any](n int, init func() S) *StreamStates[S] {
	ss := &StreamStates[S]{init: init, states: make([]S, n)}
	ss.Reset()
	return ss
}

// Reset returns every stream to its initial state.
func (ss *StreamStates[S]) Reset() {
	for i := range ss.states {
		ss.states[i] = ss.init()
	}
}

// Get returns the state carried into the next window for stream.
func (ss *StreamStates[S]) Get(stream int) S { return ss.states[stream] }

// Carry stores s as the state for stream's next window.
func (ss *StreamStates[S]) Carry(stream int, s S) { ss.states[stream] = s }

// Len is the number of streams.
func (ss *StreamStates[S]) Len() int { return len(ss.states) }

// StepFunc consumes one window with the carried states and returns the
// states to carry forward.
type StepFunc[S any] func(ctx context.Context, w Window, states []S) ([]S, error)

// RunEpoch rewinds it, resets states once and feeds every window to fn,
// carrying the returned states to the following window.
func RunEpoch[S any](ctx context.Context, it *Iterator, states *StreamStates[S], fn StepFunc[S]) error {
	if states.Len() != it.BatchSize() {
		return errs.Configf("have %d stream states for %d streams", states.Len(), it.BatchSize())
	}
	it.Rewind()
	states.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, ok := it.Next()
		if !ok {
			return nil
		}
		in := append([]S(nil), states.states...)
		out, err := fn(ctx, w, in)
		if err != nil {
			return err
		}
		if len(out) != states.Len() {
			return errs.Configf("window %d returned %d states, want %d", w.Index, len(out), states.Len())
		}
		for b, s := range out {
			states.Carry(b, s)
		}
	}
}
