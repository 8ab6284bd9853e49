package tokenizer

import (
	"strings"

	"github.com/samcharles93/textgen/internal/errs"
	"github.com/samcharles93/textgen/internal/vocab"
)

// Tokenizer defines the minimal interface used by the generation loop and
// the HTTP layer.
type Tokenizer interface {
	Encode(tokens []string) ([]int, error)
	Decode(ids []int) ([]string, error)
}

// Codec maps tokens to ids and back through a built vocabulary. Its
// fallback behaviour follows the vocabulary mode: RankLexical vocabularies
// reject unknown tokens, RankFirstOccurrence vocabularies map them to the
// sentinel id.
type Codec struct {
	v *vocab.Vocabulary
}

// New returns a codec over v.
func New(v *vocab.Vocabulary) *Codec {
	return &Codec{v: v}
}

// Vocabulary returns the vocabulary backing the codec.
func (c *Codec) Vocabulary() *vocab.Vocabulary { return c.v }

// Size is the number of ids the codec can produce.
func (c *Codec) Size() int { return c.v.Size() }

// Lookup reports the id for token without applying any fallback.
func (c *Codec) Lookup(token string) (int, bool) {
	return c.v.ID(token)
}

// EncodeToken returns the id for token. Under a capped vocabulary unknown
// tokens encode to the sentinel and never fail.
func (c *Codec) EncodeToken(token string) (int, error) {
	if id, ok := c.v.ID(token); ok {
		return id, nil
	}
	if _, ok := c.v.Sentinel(); ok {
		return vocab.SentinelID, nil
	}
	return 0, errs.Lookupf("token %q not in vocabulary", token)
}

// DecodeID returns the token stored at id.
func (c *Codec) DecodeID(id int) (string, error) {
	tok, ok := c.v.Token(id)
	if !ok {
		return "", errs.Lookupf("id %d out of range [0,%d)", id, c.v.Size())
	}
	return tok, nil
}

// Encode maps every token, failing on the first lookup error.
func (c *Codec) Encode(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := c.EncodeToken(tok)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// Decode maps every id, failing on the first out-of-range id.
func (c *Codec) Decode(ids []int) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		tok, err := c.DecodeID(id)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

// DecodeString decodes ids and joins the tokens with single spaces.
func (c *Codec) DecodeString(ids []int) (string, error) {
	toks, err := c.Decode(ids)
	if err != nil {
		return "", err
	}
	return strings.Join(toks, " "), nil
}
