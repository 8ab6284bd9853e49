package vocab

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FrequencyTable holds token counts and the order in which distinct tokens
// were first seen.
type FrequencyTable struct {
	counts map[string]int
	order  []string
	total  int
}

// Count tallies corpus in a single pass.
func Count(corpus []string) *FrequencyTable {
	ft := &FrequencyTable{counts: make(map[string]int)}
	ft.add(corpus)
	return ft
}

func (ft *FrequencyTable) add(tokens []string) {
	for _, tok := range tokens {
		if _, seen := ft.counts[tok]; !seen {
			ft.order = append(ft.order, tok)
		}
		ft.counts[tok]++
	}
	ft.total += len(tokens)
}

// merge folds other into ft. Shards must be merged in corpus order for the
// first-occurrence order to stay global.
func (ft *FrequencyTable) merge(other *FrequencyTable) {
	for _, tok := range other.order {
		if _, seen := ft.counts[tok]; !seen {
			ft.order = append(ft.order, tok)
		}
		ft.counts[tok] += other.counts[tok]
	}
	ft.total += other.total
}

// CountParallel tallies corpus in shards concurrently. The result is identical
// to Count(corpus).
func CountParallel(ctx context.Context, corpus []string, shards int) (*FrequencyTable, error) {
	if shards <= 1 || len(corpus) < shards {
		return Count(corpus), nil
	}

	parts := make([]*FrequencyTable, shards)
	chunk := (len(corpus) + shards - 1) / shards

	g, ctx := errgroup.WithContext(ctx)
	for i := range shards {
		lo := min(i*chunk, len(corpus))
		hi := min(lo+chunk, len(corpus))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts[i] = Count(corpus[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &FrequencyTable{counts: make(map[string]int, len(parts[0].counts))}
	for _, p := range parts {
		out.merge(p)
	}
	return out, nil
}

// Get returns the count for token.
func (ft *FrequencyTable) Get(token string) int { return ft.counts[token] }

// Distinct is the number of distinct tokens.
func (ft *FrequencyTable) Distinct() int { return len(ft.order) }

// Total is the number of tokens counted.
func (ft *FrequencyTable) Total() int { return ft.total }

// Order returns distinct tokens in first-occurrence order.
func (ft *FrequencyTable) Order() []string {
	return append([]string(nil), ft.order...)
}
