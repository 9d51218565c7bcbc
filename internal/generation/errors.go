package generation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoUsableOutput marks a prediction that succeeded without an extractable
// media URL. Within a chain it is handled like any other candidate failure.
var ErrNoUsableOutput = errors.New("generation: no usable output in prediction")

// InvalidInputError reports a malformed or missing source payload. It is
// never retried and aborts a chain immediately without consuming the
// remaining candidates.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("generation: invalid %s: %s", e.Field, e.Reason)
}

// ChainExhaustedError reports that every candidate in a fallback chain
// failed. It carries the full attempt log so callers can diagnose systemic
// provider outages per candidate.
type ChainExhaustedError struct {
	Attempts []Attempt
}

func (e *ChainExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Candidate, a.Err))
	}
	return fmt.Sprintf("generation: all %d candidates failed (%s)", len(e.Attempts), strings.Join(parts, "; "))
}
