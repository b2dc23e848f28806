package batch

import "errors"

var (
	// ErrLocked indicates another batch run holds the root lock.
	ErrLocked = errors.New("batch root is locked by another run")

	// ErrNoVideos indicates a unit holds no video files.
	ErrNoVideos = errors.New("no video files")

	// ErrUnknownMode indicates an unsupported batch mode.
	ErrUnknownMode = errors.New("unknown batch mode")
)
