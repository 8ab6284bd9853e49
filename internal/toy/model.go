// Package toy provides a small deterministic recurrent language model used
// by tests and the generate demo. Its weights are random; it is not trained.
package toy

import (
	"fmt"

	"github.com/samcharles93/textgen/internal/inference"
	"github.com/samcharles93/textgen/internal/tensor"
)

// RNN is a single-layer Elman network:
//
//	h' = tanh(Emb[id] + Wh*h)
//	p  = softmax(Wo*h' + Bias)
//
// Weights are read-only after construction, so Step may run concurrently
// for distinct states.
type RNN struct {
	Vocab  int
	Hidden int

	Emb  tensor.Mat // [Vocab x Hidden]
	Wh   tensor.Mat // [Hidden x Hidden]
	Wo   tensor.Mat // [Vocab x Hidden]
	Bias []float32  // [Vocab]
}

var _ inference.Model = (*RNN)(nil)

// Config sizes the network. Scale bounds the initial weights.
type Config struct {
	Vocab  int
	Hidden int
	Seed   int64
	Scale  float32
}

// DefaultHidden is the hidden width used when Config.Hidden is zero.
const DefaultHidden = 32

// New builds a network whose weights are a pure function of cfg.
func New(cfg Config) (*RNN, error) {
	if cfg.Vocab < 1 {
		return nil, fmt.Errorf("toy: vocab must be positive, got %d", cfg.Vocab)
	}
	if cfg.Hidden == 0 {
		cfg.Hidden = DefaultHidden
	}
	if cfg.Hidden < 1 {
		return nil, fmt.Errorf("toy: hidden must be positive, got %d", cfg.Hidden)
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	m := &RNN{
		Vocab:  cfg.Vocab,
		Hidden: cfg.Hidden,
		Emb:    tensor.NewMat(cfg.Vocab, cfg.Hidden),
		Wh:     tensor.NewMat(cfg.Hidden, cfg.Hidden),
		Wo:     tensor.NewMat(cfg.Vocab, cfg.Hidden),
		Bias:   make([]float32, cfg.Vocab),
	}
	tensor.FillRand(&m.Emb, cfg.Seed+11, cfg.Scale)
	tensor.FillRand(&m.Wh, cfg.Seed+17, cfg.Scale/2)
	tensor.FillRand(&m.Wo, cfg.Seed+23, cfg.Scale*2)
	return m, nil
}

// Reset returns a zero hidden state.
func (m *RNN) Reset() inference.State {
	return make([]float32, m.Hidden)
}

// Step advances state by id and returns the distribution over the next id.
// The input state is not modified.
func (m *RNN) Step(state inference.State, id int) (inference.State, []float32, error) {
	h, ok := state.([]float32)
	if !ok || len(h) != m.Hidden {
		return nil, nil, fmt.Errorf("toy: invalid state %T", state)
	}
	if id < 0 || id >= m.Vocab {
		return nil, nil, fmt.Errorf("toy: id %d out of range [0,%d)", id, m.Vocab)
	}

	next := make([]float32, m.Hidden)
	tensor.MatVec(next, &m.Wh, h)
	tensor.Add(next, m.Emb.Row(id))
	tensor.Tanh(next)

	probs := make([]float32, m.Vocab)
	tensor.MatVec(probs, &m.Wo, next)
	tensor.Add(probs, m.Bias)
	tensor.Softmax(probs)
	return next, probs, nil
}
