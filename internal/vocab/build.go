package vocab

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/samcharles93/textgen/internal/errs"
)

// BuildRanked builds a RankLexical vocabulary over every distinct token in
// corpus. An empty corpus yields an empty vocabulary.
func BuildRanked(corpus []string) *Vocabulary {
	return RankedFromCounts(Count(corpus))
}

// RankedFromCounts ranks a frequency table by (-count, token).
func RankedFromCounts(ft *FrequencyTable) *Vocabulary {
	entries := make([]TokenCount, 0, len(ft.order))
	for _, tok := range ft.order {
		entries = append(entries, TokenCount{Token: tok, Count: ft.counts[tok]})
	}
	slices.SortFunc(entries, func(a, b TokenCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Token, b.Token)
	})

	// Distinct tokens cannot collide, so construction cannot fail.
	v, _ := newVocabulary(RankLexical, "", entries)
	return v
}

// BuildCapped builds a RankFirstOccurrence vocabulary of at most size entries
// and returns it together with corpus encoded against it. Tokens outside the
// selected size-1 are encoded as SentinelID and counted toward the sentinel.
// An empty sentinel selects DefaultSentinel.
func BuildCapped(corpus []string, size int, sentinel string) (*Vocabulary, []int, error) {
	return CappedFromCounts(Count(corpus), corpus, size, sentinel)
}

// CappedFromCounts is BuildCapped over a precomputed frequency table of corpus.
func CappedFromCounts(ft *FrequencyTable, corpus []string, size int, sentinel string) (*Vocabulary, []int, error) {
	if size < 1 {
		return nil, nil, errs.Configf("vocabulary size must be >= 1, got %d", size)
	}
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	ranked := make([]TokenCount, 0, len(ft.order))
	for _, tok := range ft.order {
		// A literal sentinel in the corpus would alias id 0; it folds into it instead.
		if tok == sentinel {
			continue
		}
		ranked = append(ranked, TokenCount{Token: tok, Count: ft.counts[tok]})
	}
	// Stable sort keeps first-occurrence order among equal counts.
	slices.SortStableFunc(ranked, func(a, b TokenCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(ranked) > size-1 {
		ranked = ranked[:size-1]
	}

	entries := make([]TokenCount, 0, len(ranked)+1)
	entries = append(entries, TokenCount{Token: sentinel})
	entries = append(entries, ranked...)

	v, err := newVocabulary(RankFirstOccurrence, sentinel, entries)
	if err != nil {
		return nil, nil, err
	}

	data := make([]int, len(corpus))
	unknown := 0
	for i, tok := range corpus {
		id, ok := v.ids[tok]
		if !ok || id == SentinelID {
			unknown++
			id = SentinelID
		}
		data[i] = id
	}
	v.entries[SentinelID].Count = unknown
	return v, data, nil
}

// Options selects a construction mode for Build.
type Options struct {
	Mode     Mode
	Size     int
	Sentinel string
	// Shards > 1 counts the corpus concurrently.
	Shards int
}

// Build constructs a vocabulary with the configured mode and returns the
// corpus encoded against it.
func Build(ctx context.Context, corpus []string, opts Options) (*Vocabulary, []int, error) {
	ft, err := CountParallel(ctx, corpus, opts.Shards)
	if err != nil {
		return nil, nil, err
	}

	switch opts.Mode {
	case RankLexical:
		v := RankedFromCounts(ft)
		data := make([]int, len(corpus))
		for i, tok := range corpus {
			data[i] = v.ids[tok]
		}
		return v, data, nil
	case RankFirstOccurrence:
		return CappedFromCounts(ft, corpus, opts.Size, opts.Sentinel)
	default:
		return nil, nil, errs.Configf("unknown vocabulary mode %v", opts.Mode)
	}
}
