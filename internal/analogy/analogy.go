// Package analogy parses word-analogy question files ("a is to b as c is to
// d") into id quadruples against a vocabulary.
package analogy

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// CommentPrefix marks section headers such as ": capital-common-countries".
const CommentPrefix = ":"

// Question holds the ids of a, b, c and d.
type Question [4]int

// Result lists the parsed questions in file order and how many non-comment
// lines were discarded.
type Result struct {
	Questions []Question
	Skipped   int
}

// Total is the number of non-comment lines seen.
func (r Result) Total() int { return len(r.Questions) + r.Skipped }

// LookupFunc resolves a token to its id.
type LookupFunc func(token string) (int, bool)

// Read parses questions from r. Lines that do not split into exactly four
// known tokens are counted in Skipped; only I/O errors are returned.
func Read(r io.Reader, lookup LookupFunc) (Result, error) {
	res := Result{Questions: []Question{}}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			res.add(line, lookup)
		}
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
	}
}

func (r *Result) add(line []byte, lookup LookupFunc) {
	if bytes.HasPrefix(line, []byte(CommentPrefix)) {
		return
	}
	fields := strings.Fields(strings.ToLower(string(line)))
	if len(fields) != len(Question{}) {
		r.Skipped++
		return
	}
	var q Question
	for i, f := range fields {
		id, ok := lookup(f)
		if !ok {
			r.Skipped++
			return
		}
		q[i] = id
	}
	r.Questions = append(r.Questions, q)
}

// ReadFile parses the question file at path.
func ReadFile(path string, lookup LookupFunc) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = f.Close() }()
	return Read(f, lookup)
}
