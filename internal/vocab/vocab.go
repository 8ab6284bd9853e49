// Package vocab builds deterministic token <-> id vocabularies from an ordered
// token corpus.
//
// Two construction modes exist and are intentionally kept apart:
//
//   - RankLexical ranks every distinct token by descending count and breaks
//     ties by ascending lexical order. It has no unknown sentinel.
//   - RankFirstOccurrence keeps the size-1 most frequent tokens, breaks ties by
//     first occurrence in the corpus and reserves id 0 for an unknown sentinel
//     that absorbs every token left out.
//
// A built Vocabulary is immutable.
package vocab

import (
	"fmt"
	"strings"

	"github.com/samcharles93/textgen/internal/errs"
)

// DefaultSentinel is the placeholder token stored at SentinelID.
const DefaultSentinel = "UNK"

// SentinelID is the id reserved for the unknown sentinel in RankFirstOccurrence
// vocabularies.
const SentinelID = 0

// Mode selects the ranking and coverage policy of a vocabulary.
type Mode int

const (
	// RankLexical orders by (-count, token) and covers exactly the tokens seen.
	RankLexical Mode = iota + 1
	// RankFirstOccurrence orders by -count with first-occurrence tie-break,
	// caps the size and folds the remainder into a sentinel at id 0.
	RankFirstOccurrence
)

func (m Mode) String() string {
	switch m {
	case RankLexical:
		return "rank-lexical"
	case RankFirstOccurrence:
		return "rank-first-occurrence"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the canonical mode names and the short CLI aliases
// "lexical" and "capped".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rank-lexical", "lexical", "ranked":
		return RankLexical, nil
	case "rank-first-occurrence", "first-occurrence", "capped":
		return RankFirstOccurrence, nil
	default:
		return 0, errs.Configf("unknown vocabulary mode %q", s)
	}
}

// TokenCount is one ranked vocabulary entry.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Vocabulary is a bijection between tokens and the contiguous id range [0, Size).
type Vocabulary struct {
	mode     Mode
	sentinel string
	entries  []TokenCount
	ids      map[string]int
}

func newVocabulary(mode Mode, sentinel string, entries []TokenCount) (*Vocabulary, error) {
	v := &Vocabulary{
		mode:     mode,
		sentinel: sentinel,
		entries:  entries,
		ids:      make(map[string]int, len(entries)),
	}
	for id, e := range entries {
		if prev, dup := v.ids[e.Token]; dup {
			return nil, errs.Malformedf("token %q assigned to ids %d and %d", e.Token, prev, id)
		}
		v.ids[e.Token] = id
	}
	if mode == RankFirstOccurrence {
		if len(entries) == 0 || entries[SentinelID].Token != sentinel {
			return nil, errs.Malformedf("capped vocabulary must start with sentinel %q", sentinel)
		}
	}
	return v, nil
}

// Mode reports how the vocabulary was constructed.
func (v *Vocabulary) Mode() Mode { return v.mode }

// Size is the number of ids, sentinel included.
func (v *Vocabulary) Size() int { return len(v.entries) }

// Sentinel returns the unknown placeholder token, if the vocabulary has one.
func (v *Vocabulary) Sentinel() (string, bool) {
	if v.mode != RankFirstOccurrence {
		return "", false
	}
	return v.sentinel, true
}

// ID returns the id assigned to token. The sentinel is reported like any other
// token; unknown tokens are not mapped to it here.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Token returns the token stored at id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.entries) {
		return "", false
	}
	return v.entries[id].Token, true
}

// Count returns the corpus frequency recorded for id, or 0 for an invalid id.
func (v *Vocabulary) Count(id int) int {
	if id < 0 || id >= len(v.entries) {
		return 0
	}
	return v.entries[id].Count
}

// Counts returns a copy of the frequency-ranked entries in id order,
// including the sentinel entry when present.
func (v *Vocabulary) Counts() []TokenCount {
	out := make([]TokenCount, len(v.entries))
	copy(out, v.entries)
	return out
}

// TokenToID returns a copy of the token -> id map.
func (v *Vocabulary) TokenToID() map[string]int {
	out := make(map[string]int, len(v.ids))
	for k, id := range v.ids {
		out[k] = id
	}
	return out
}

// IDToToken returns a copy of the id -> token map.
func (v *Vocabulary) IDToToken() map[int]string {
	out := make(map[int]string, len(v.entries))
	for id, e := range v.entries {
		out[id] = e.Token
	}
	return out
}
