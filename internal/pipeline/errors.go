package pipeline

import (
	"errors"
	"strings"
)

// ErrFetchFailed is returned when the top-level detail fetch fails.
var ErrFetchFailed = errors.New("fetch failed")

// ValidationError reports descriptor fields that must not be empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "descriptor missing required field: " + strings.Join(e.Missing, ", ")
}
