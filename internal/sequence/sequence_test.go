package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/textgen/internal/errs"
)

func intp(v int) *int { return &v }

func TestMaxLenKeepsStrictlyShorter(t *testing.T) {
	t.Parallel()

	cfg := Config{NbWords: 10, MaxLen: 3, Seed: 1}
	res, err := Process([][]int{{1, 2, 50}, {3}}, []int{0, 1}, cfg)
	require.NoError(t, err)

	if diff := cmp.Diff([][]int{{3}}, res.TrainX); diff != "" {
		t.Fatalf("train mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1}, res.TrainY)
	assert.Empty(t, res.TestX)
	assert.Equal(t, 1, res.Stats.DroppedLong)
}

func TestMaxLenEmptiesDataset(t *testing.T) {
	t.Parallel()

	_, err := Process([][]int{{1, 2}, {3, 4, 5}}, []int{0, 1}, Config{MaxLen: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestShuffleKeepsLabelsAligned(t *testing.T) {
	t.Parallel()

	n := 50
	seqs := make([][]int, n)
	labels := make([]int, n)
	for i := range n {
		seqs[i] = []int{i}
		labels[i] = i
	}

	res, err := Process(seqs, labels, Config{NbWords: n, Seed: 113})
	require.NoError(t, err)

	all := append(append([][]int(nil), res.TrainX...), res.TestX...)
	ys := append(append([]int(nil), res.TrainY...), res.TestY...)
	require.Len(t, all, n)

	moved := false
	for i := range all {
		require.Len(t, all[i], 1)
		assert.Equal(t, ys[i], all[i][0], "example %d lost its label", i)
		if all[i][0] != i {
			moved = true
		}
	}
	assert.True(t, moved, "shuffle left the order unchanged")
}

func TestDeterministicForSeed(t *testing.T) {
	t.Parallel()

	seqs := [][]int{{1}, {2, 2}, {3, 3, 3}, {4}, {5}, {6}}
	labels := []int{1, 2, 3, 4, 5, 6}
	cfg := DefaultConfig()

	a, err := Process(seqs, labels, cfg)
	require.NoError(t, err)
	b, err := Process(seqs, labels, cfg)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different results (-a +b):\n%s", diff)
	}
}

func TestDefaultConfigShiftsAndMarksStart(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.NbWords = 100
	cfg.TestSplit = 0
	res, err := Process([][]int{{1, 2, 3}}, []int{7}, cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 4, 5, 6}}, res.TrainX)
	assert.Equal(t, []int{7}, res.TrainY)
}

func TestThresholdReplacesWithOOV(t *testing.T) {
	t.Parallel()

	cfg := Config{NbWords: 10, SkipTop: 2, OOVChar: intp(2), TestSplit: 0}
	res, err := Process([][]int{{0, 1, 2, 9, 10, 42}}, []int{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 2, 2, 9, 2, 2}}, res.TrainX)
	assert.Equal(t, 4, res.Stats.Replaced)
}

func TestThresholdDropsWithoutOOV(t *testing.T) {
	t.Parallel()

	cfg := Config{NbWords: 10, SkipTop: 2, TestSplit: 0}
	res, err := Process([][]int{{0, 1, 2, 9, 10, 42}}, []int{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 9}}, res.TrainX)
	assert.Equal(t, 4, res.Stats.Removed)
}

func TestDefaultNbWordsIsMaxIndex(t *testing.T) {
	t.Parallel()

	// The cap is exclusive, so the largest index itself becomes OOV.
	cfg := Config{OOVChar: intp(0), TestSplit: 0}
	res, err := Process([][]int{{1, 5}, {3}}, []int{0, 0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stats.NbWords)
	assert.Equal(t, 1, res.Stats.Replaced)
}

func TestSplitFraction(t *testing.T) {
	t.Parallel()

	seqs := make([][]int, 10)
	labels := make([]int, 10)
	for i := range seqs {
		seqs[i] = []int{1}
	}
	res, err := Process(seqs, labels, Config{NbWords: 5, TestSplit: 0.2})
	require.NoError(t, err)
	assert.Len(t, res.TrainX, 8)
	assert.Len(t, res.TrainY, 8)
	assert.Len(t, res.TestX, 2)
	assert.Len(t, res.TestY, 2)
}

func TestInputsNotModified(t *testing.T) {
	t.Parallel()

	seqs := [][]int{{1, 2}, {3, 4}, {5}}
	labels := []int{0, 1, 2}
	_, err := Process(seqs, labels, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, seqs)
	assert.Equal(t, []int{0, 1, 2}, labels)
}

func TestInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		seqs   [][]int
		labels []int
		cfg    Config
	}{
		"label mismatch": {[][]int{{1}}, nil, Config{}},
		"split too big":  {[][]int{{1}}, []int{0}, Config{TestSplit: 1.5}},
		"negative max":   {[][]int{{1}}, []int{0}, Config{MaxLen: -1}},
	}
	for name, tc := range cases {
		_, err := Process(tc.seqs, tc.labels, tc.cfg)
		assert.True(t, errors.Is(err, errs.ErrConfiguration), name)
	}
}

func TestLoadDataset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ds.json")
	body := `{"sequences":[[1,2],[3]],"labels":[1,0]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ds, err := LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3}}, ds.Sequences)
	assert.Equal(t, []int{1, 0}, ds.Labels)
}
