package inference

import "time"

// State is an opaque recurrent state handle produced by a Model. A run owns
// its state exclusively; it is never shared between runs.
type State any

// Model is the sequence model driven by the generation loop. Step must not
// retain or mutate state after returning a new one.
type Model interface {
	// Reset returns a fresh initial state.
	Reset() State
	// Step feeds id with state and returns the next state together with a
	// probability distribution over the vocabulary.
	Step(state State, id int) (State, []float32, error)
}

// Sampler draws an id from a probability vector reshaped by temperature.
type Sampler interface {
	Sample(probs []float32, temperature float64) int
}

// Phase is the position of a run in its lifecycle.
type Phase int

const (
	PhasePriming Phase = iota
	PhaseGenerating
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhasePriming:
		return "priming"
	case PhaseGenerating:
		return "generating"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

type Stats struct {
	PrimingSteps    int
	TokensGenerated int
	Duration        time.Duration
	TPS             float64
}

// Result is the outcome of one (seed, temperature) run.
type Result struct {
	ID          string
	Temperature float64
	IDs         []int
	Tokens      []string
	Text        string
	Stats       Stats
}
