package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/textgen/internal/errs"
)

// WriteCounts writes one "<token> <count>" line per entry in id order.
func (v *Vocabulary) WriteCounts(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range v.entries {
		if _, err := fmt.Fprintf(bw, "%s %d\n", e.Token, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCounts restores a vocabulary written by WriteCounts. Ids follow line
// order. For RankFirstOccurrence the first line is the sentinel.
func ReadCounts(r io.Reader, mode Mode) (*Vocabulary, error) {
	var entries []TokenCount
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		sp := strings.LastIndexByte(text, ' ')
		if sp <= 0 {
			return nil, errs.Malformedf("vocab line %d: expected \"<token> <count>\"", line)
		}
		n, err := strconv.Atoi(text[sp+1:])
		if err != nil {
			return nil, errs.Malformedf("vocab line %d: bad count: %v", line, err)
		}
		entries = append(entries, TokenCount{Token: text[:sp], Count: n})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	switch mode {
	case RankLexical:
		return newVocabulary(mode, "", entries)
	case RankFirstOccurrence:
		if len(entries) == 0 {
			return nil, errs.Malformedf("capped vocabulary has no sentinel entry")
		}
		return newVocabulary(mode, entries[SentinelID].Token, entries)
	default:
		return nil, errs.Configf("unknown vocabulary mode %v", mode)
	}
}

type vocabJSON struct {
	Mode     string       `json:"mode"`
	Sentinel string       `json:"sentinel,omitempty"`
	Entries  []TokenCount `json:"entries"`
}

// MarshalJSON encodes the mode, sentinel and ranked entries. The token/id
// maps are derived on load.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabJSON{
		Mode:     v.mode.String(),
		Sentinel: v.sentinel,
		Entries:  v.entries,
	})
}

// UnmarshalJSON restores a vocabulary written by MarshalJSON.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var raw vocabJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mode, err := ParseMode(raw.Mode)
	if err != nil {
		return err
	}
	if raw.Entries == nil {
		raw.Entries = []TokenCount{}
	}
	built, err := newVocabulary(mode, raw.Sentinel, raw.Entries)
	if err != nil {
		return err
	}
	*v = *built
	return nil
}

// SaveFile writes the vocabulary to path. A ".json" extension selects JSON,
// anything else the plain counts format.
func (v *Vocabulary) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	} else {
		err = v.WriteCounts(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// LoadFile reads a vocabulary written by SaveFile. mode is only consulted for
// the plain counts format, which does not record it.
func LoadFile(path string, mode Mode) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var v Vocabulary
		if err := json.NewDecoder(f).Decode(&v); err != nil {
			return nil, fmt.Errorf("decode vocabulary %s: %w", path, err)
		}
		return &v, nil
	}
	return ReadCounts(f, mode)
}
