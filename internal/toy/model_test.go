package toy

import (
	"math"
	"sync"
	"testing"
)

func mustNew(t *testing.T, cfg Config) *RNN {
	t.Helper()
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// TestStepMatchesNaive compares Step against a hand-computed reference.
func TestStepMatchesNaive(t *testing.T) {
	m := mustNew(t, Config{Vocab: 8, Hidden: 6, Seed: 5})
	h0 := m.Reset().([]float32)
	for i := range h0 {
		h0[i] = float32(i) * 0.1
	}

	st, probs, err := m.Step(h0, 3)
	if err != nil {
		t.Fatal(err)
	}
	h1 := st.([]float32)

	ref := make([]float32, m.Hidden)
	for i := 0; i < m.Hidden; i++ {
		var sum float32
		for j := 0; j < m.Hidden; j++ {
			sum += m.Wh.Row(i)[j] * h0[j]
		}
		ref[i] = float32(math.Tanh(float64(sum + m.Emb.Row(3)[i])))
	}
	for i := range ref {
		if math.Abs(float64(h1[i]-ref[i])) > 1e-5 {
			t.Fatalf("hidden %d: got %f want %f", i, h1[i], ref[i])
		}
	}

	logits := make([]float64, m.Vocab)
	var z float64
	for v := 0; v < m.Vocab; v++ {
		var sum float32
		for i := 0; i < m.Hidden; i++ {
			sum += m.Wo.Row(v)[i] * ref[i]
		}
		logits[v] = math.Exp(float64(sum + m.Bias[v]))
		z += logits[v]
	}
	for v := range logits {
		if math.Abs(logits[v]/z-float64(probs[v])) > 1e-5 {
			t.Fatalf("prob %d: got %f want %f", v, probs[v], logits[v]/z)
		}
	}
}

func TestStepDoesNotMutateState(t *testing.T) {
	m := mustNew(t, Config{Vocab: 4, Hidden: 3, Seed: 1})
	h := m.Reset().([]float32)
	if _, _, err := m.Step(h, 2); err != nil {
		t.Fatal(err)
	}
	for i, v := range h {
		if v != 0 {
			t.Fatalf("state element %d mutated to %f", i, v)
		}
	}
}

func TestDeterministicWeights(t *testing.T) {
	a := mustNew(t, Config{Vocab: 10, Seed: 42})
	b := mustNew(t, Config{Vocab: 10, Seed: 42})
	_, pa, _ := a.Step(a.Reset(), 7)
	_, pb, _ := b.Step(b.Reset(), 7)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("prob %d differs: %f vs %f", i, pa[i], pb[i])
		}
	}
	if a.Hidden != DefaultHidden {
		t.Fatalf("hidden = %d, want default %d", a.Hidden, DefaultHidden)
	}
}

func TestStepRejectsBadInput(t *testing.T) {
	m := mustNew(t, Config{Vocab: 4, Hidden: 3})
	if _, _, err := m.Step(m.Reset(), 4); err == nil {
		t.Fatal("expected out-of-range id error")
	}
	if _, _, err := m.Step([]float32{1}, 0); err == nil {
		t.Fatal("expected state size error")
	}
	if _, _, err := m.Step("nope", 0); err == nil {
		t.Fatal("expected state type error")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Vocab: 0}); err == nil {
		t.Fatal("expected vocab error")
	}
	if _, err := New(Config{Vocab: 3, Hidden: -1}); err == nil {
		t.Fatal("expected hidden error")
	}
}

func TestConcurrentSteps(t *testing.T) {
	m := mustNew(t, Config{Vocab: 16, Hidden: 8, Seed: 9})
	_, want, err := m.Step(m.Reset(), 5)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, got, err := m.Step(m.Reset(), 5)
			if err != nil {
				t.Error(err)
				return
			}
			for i := range got {
				if got[i] != want[i] {
					t.Errorf("prob %d differs under concurrency", i)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkStep(b *testing.B) {
	m, _ := New(Config{Vocab: 5000, Hidden: 128, Seed: 1})
	st := m.Reset()
	for b.Loop() {
		st, _, _ = m.Step(st, 1)
	}
}
