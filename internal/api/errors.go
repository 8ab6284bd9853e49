package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/textgen/internal/errs"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps a domain error to an HTTP status and error type.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error", ""
	case errors.Is(err, errs.ErrLookup):
		return http.StatusBadRequest, "invalid_request_error", "lookup_error"
	case errors.Is(err, errs.ErrConfiguration):
		return http.StatusBadRequest, "invalid_request_error", "configuration_error"
	case errors.Is(err, errs.ErrMalformedInput):
		return http.StatusBadRequest, "invalid_request_error", "malformed_input"
	default:
		return http.StatusInternalServerError, "server_error", ""
	}
}
