package logits

import (
	"math"
	"math/rand"
)

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	Seed int64
	// Source overrides the seeded source when set.
	Source rand.Source
}

// Sampler draws ids from categorical distributions reshaped by a temperature.
// A Sampler is not safe for concurrent use; give each generation run its own.
type Sampler struct {
	rng  *rand.Rand
	prob []float64
}

// NewSampler returns a new sampler with the provided configuration.
func NewSampler(cfg SamplerConfig) *Sampler {
	src := cfg.Source
	if src == nil {
		src = rand.NewSource(cfg.Seed)
	}
	return &Sampler{rng: rand.New(src)}
}

// Sample draws a single index from the probability vector probs.  The sample
// process involves the following steps:
//
//  1. If temperature <= 0, or so small that 1/temperature overflows, the
//     argmax is returned (greedy).
//  2. Otherwise each probability is mapped to log(p)/temperature.
//  3. A softmax over the scaled values renormalises them, subtracting the
//     maximum for numerical stability.
//  4. A random value is drawn from [0,1) and used to select an index from the
//     cumulative distribution.
//
// Zero probabilities stay at zero for every positive temperature.
func (s *Sampler) Sample(probs []float32, temperature float64) int {
	if temperature <= 0 || math.IsInf(1/temperature, 0) {
		return argmax(probs)
	}

	prob := s.scale(probs, temperature)
	if prob == nil {
		return argmax(probs)
	}

	r := s.rng.Float64()
	var c float64
	last := 0
	for i, p := range prob {
		if p == 0 {
			continue
		}
		last = i
		c += p
		if r < c {
			return i
		}
	}
	return last
}

// Scale returns the temperature-adjusted distribution for probs without
// sampling from it. It returns nil when probs holds no positive mass or the
// temperature is too small to scale by.
func Scale(probs []float32, temperature float64) []float64 {
	var s Sampler
	out := s.scale(probs, temperature)
	if out == nil {
		return nil
	}
	return append([]float64(nil), out...)
}

func (s *Sampler) scale(probs []float32, temperature float64) []float64 {
	if cap(s.prob) < len(probs) {
		s.prob = make([]float64, len(probs))
	}
	prob := s.prob[:len(probs)]

	invTemp := 1.0 / temperature
	maxv := math.Inf(-1)
	for i, p := range probs {
		if p <= 0 {
			prob[i] = math.Inf(-1)
			continue
		}
		v := math.Log(float64(p)) * invTemp
		prob[i] = v
		maxv = max(maxv, v)
	}
	if math.IsInf(maxv, -1) || math.IsNaN(maxv) {
		return nil
	}

	var sum float64
	for i, v := range prob {
		e := math.Exp(v - maxv)
		prob[i] = e
		sum += e
	}
	invSum := 1.0 / sum
	for i := range prob {
		prob[i] *= invSum
	}
	return prob
}

// argmax returns the index of the maximum value in the slice. If the slice is empty it panics.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
