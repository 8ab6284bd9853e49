// Package corpus loads whitespace-delimited token streams from disk.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

var ErrTooLarge = errors.New("corpus: file too large to index")

// Options controls tokenisation.
type Options struct {
	// EOS, when non-empty, is emitted as a token in place of every newline.
	EOS string
}

// ReadFile maps path read-only and splits its contents on whitespace. If mmap
// is unavailable it falls back to ReadAt-based loading. Pipes and other
// non-regular files are read to EOF.
func ReadFile(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("corpus: read %s: %w", path, err)
		}
		return Split(data, opts), nil
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)
	if size == 0 {
		return []string{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		// Split copies every token out of the mapping before it is released.
		tokens := Split(data, opts)
		if err := unix.Munmap(data); err != nil {
			return nil, fmt.Errorf("corpus: munmap %s: %w", path, err)
		}
		return tokens, nil
	}

	return ReadAt(f, size64, opts)
}

// ReadAt loads size bytes from r and splits them like ReadFile.
func ReadAt(r io.ReaderAt, size int64, opts Options) ([]string, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	out := make([]byte, size)
	var off int64
	for off < size {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == size {
			break
		}
		return nil, err
	}
	return Split(out, opts), nil
}

// Split tokenises data on whitespace. No case folding or punctuation
// handling is applied.
func Split(data []byte, opts Options) []string {
	if opts.EOS != "" {
		data = bytes.ReplaceAll(data, []byte{'\n'}, []byte(" "+opts.EOS+" "))
	}
	return strings.Fields(string(data))
}
