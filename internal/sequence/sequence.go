// Package sequence prepares pre-encoded integer sequences for classification
// style training: seeded shuffle, index shifting, length filtering,
// rare/frequent index thresholding and a train/test split.
package sequence

import (
	"math/rand"

	"github.com/samcharles93/textgen/internal/errs"
)

// Config controls Process. Pointer fields distinguish "not configured" from zero.
type Config struct {
	// NbWords caps the index range; 0 defaults to the largest index present
	// after shifting.
	NbWords int
	// SkipTop treats indices below it as out of range too.
	SkipTop int
	// MaxLen keeps only sequences strictly shorter than it; 0 disables the filter.
	MaxLen int
	// StartChar is prepended to every sequence after shifting.
	StartChar *int
	// OOVChar replaces out-of-range indices; nil drops them instead.
	OOVChar *int
	// IndexFrom shifts every index, reserving [0, IndexFrom) for markers.
	IndexFrom int
	// TestSplit is the trailing fraction assigned to the test portion.
	TestSplit float64
	// Seed drives the shuffle.
	Seed int64
}

// DefaultConfig mirrors the conventional layout: 0 padding, 1 start, 2 OOV,
// real indices from 3.
func DefaultConfig() Config {
	start, oov := 1, 2
	return Config{
		StartChar: &start,
		OOVChar:   &oov,
		IndexFrom: 3,
		TestSplit: 0.2,
		Seed:      113,
	}
}

// Stats summarises what Process discarded or rewrote.
type Stats struct {
	Input       int `json:"input"`
	DroppedLong int `json:"dropped_long"`
	Replaced    int `json:"replaced"`
	Removed     int `json:"removed"`
	NbWords     int `json:"nb_words"`
}

// Result is the shuffled, filtered and thresholded dataset.
type Result struct {
	TrainX [][]int `json:"train_x"`
	TrainY []int   `json:"train_y"`
	TestX  [][]int `json:"test_x"`
	TestY  []int   `json:"test_y"`
	Stats  Stats   `json:"stats"`
}

// Process applies cfg to seqs and their parallel labels. Inputs are not modified.
func Process(seqs [][]int, labels []int, cfg Config) (*Result, error) {
	if len(seqs) != len(labels) {
		return nil, errs.Configf("%d sequences but %d labels", len(seqs), len(labels))
	}
	if cfg.TestSplit < 0 || cfg.TestSplit > 1 {
		return nil, errs.Configf("test split %v outside [0,1]", cfg.TestSplit)
	}
	if cfg.MaxLen < 0 || cfg.NbWords < 0 || cfg.SkipTop < 0 || cfg.IndexFrom < 0 {
		return nil, errs.Configf("negative limits: maxlen=%d nb_words=%d skip_top=%d index_from=%d",
			cfg.MaxLen, cfg.NbWords, cfg.SkipTop, cfg.IndexFrom)
	}

	stats := Stats{Input: len(seqs)}

	xs := make([][]int, len(seqs))
	copy(xs, seqs)
	ys := append([]int(nil), labels...)
	shuffle(cfg.Seed, len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
	shuffle(cfg.Seed, len(ys), func(i, j int) { ys[i], ys[j] = ys[j], ys[i] })

	for i, x := range xs {
		xs[i] = shift(x, cfg.IndexFrom, cfg.StartChar)
	}

	if cfg.MaxLen > 0 {
		keptX := xs[:0:0]
		keptY := ys[:0:0]
		for i, x := range xs {
			// Strictly shorter than MaxLen; longer sequences are dropped, not truncated.
			if len(x) < cfg.MaxLen {
				keptX = append(keptX, x)
				keptY = append(keptY, ys[i])
			}
		}
		stats.DroppedLong = len(xs) - len(keptX)
		if len(keptX) == 0 {
			return nil, errs.Configf("after filtering for sequences shorter than maxlen=%d no sequence was kept; increase maxlen", cfg.MaxLen)
		}
		xs, ys = keptX, keptY
	}

	nbWords := cfg.NbWords
	if nbWords == 0 {
		nbWords = maxIndex(xs)
	}
	stats.NbWords = nbWords

	for i, x := range xs {
		xs[i] = threshold(x, nbWords, cfg.SkipTop, cfg.OOVChar, &stats)
	}

	cut := int(float64(len(xs)) * (1 - cfg.TestSplit))
	return &Result{
		TrainX: xs[:cut],
		TrainY: ys[:cut],
		TestX:  xs[cut:],
		TestY:  ys[cut:],
		Stats:  stats,
	}, nil
}

// shuffle permutes n elements with a source freshly seeded from seed, so two
// calls with the same seed and length apply the same permutation.
func shuffle(seed int64, n int, swap func(i, j int)) {
	rand.New(rand.NewSource(seed)).Shuffle(n, swap)
}

func shift(x []int, by int, start *int) []int {
	out := make([]int, 0, len(x)+1)
	if start != nil {
		out = append(out, *start)
	}
	for _, w := range x {
		out = append(out, w+by)
	}
	return out
}

func maxIndex(xs [][]int) int {
	m := 0
	for _, x := range xs {
		for _, w := range x {
			m = max(m, w)
		}
	}
	return m
}

func threshold(x []int, nbWords, skipTop int, oov *int, stats *Stats) []int {
	out := x[:0]
	for _, w := range x {
		if w < nbWords && w >= skipTop {
			out = append(out, w)
			continue
		}
		if oov != nil {
			out = append(out, *oov)
			stats.Replaced++
		} else {
			stats.Removed++
		}
	}
	return out
}
