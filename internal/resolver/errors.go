package resolver

import "errors"

// ErrNoCandidateFound indicates every resolution strategy came up empty.
var ErrNoCandidateFound = errors.New("no candidate found")
