package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsUnwrap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"lookup", Lookupf("token %q", "x"), ErrLookup},
		{"config", Configf("maxlen=%d", 3), ErrConfiguration},
		{"malformed", Malformedf("line %d", 7), ErrMalformedInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tc.err, tc.want) {
				t.Fatalf("errors.Is(%v, %v) = false", tc.err, tc.want)
			}
			wrapped := fmt.Errorf("outer: %w", tc.err)
			if !errors.Is(wrapped, tc.want) {
				t.Fatalf("wrapped error lost its kind: %v", wrapped)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()
	err := Lookupf("id %d out of range [0,%d)", 9, 4)
	if got, want := err.Error(), "lookup: id 9 out of range [0,4)"; got != want {
		t.Fatalf("message got %q want %q", got, want)
	}
	if errors.Is(err, ErrConfiguration) {
		t.Fatal("lookup error must not match configuration")
	}
}
