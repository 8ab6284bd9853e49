// Package errs holds the error taxonomy shared by the encoding pipeline and
// the generation loop. Every error produced here unwraps to exactly one of
// the sentinels so callers can branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup reports a token or id that is absent where presence is required.
	ErrLookup = errors.New("lookup")
	// ErrConfiguration reports inconsistent parameters or an emptied result set.
	ErrConfiguration = errors.New("configuration")
	// ErrMalformedInput reports a structurally invalid input record.
	ErrMalformedInput = errors.New("malformed input")
)

type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string {
	return e.kind.Error() + ": " + e.msg
}

func (e kindError) Unwrap() error {
	return e.kind
}

// Lookupf returns an error that unwraps to ErrLookup.
func Lookupf(format string, args ...any) error {
	return kindError{kind: ErrLookup, msg: fmt.Sprintf(format, args...)}
}

// Configf returns an error that unwraps to ErrConfiguration.
func Configf(format string, args ...any) error {
	return kindError{kind: ErrConfiguration, msg: fmt.Sprintf(format, args...)}
}

// Malformedf returns an error that unwraps to ErrMalformedInput.
func Malformedf(format string, args ...any) error {
	return kindError{kind: ErrMalformedInput, msg: fmt.Sprintf(format, args...)}
}
