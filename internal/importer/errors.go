package importer

import "errors"

var (
	// ErrNoEpisodeMatch indicates no season/episode could be parsed from a file name.
	ErrNoEpisodeMatch = errors.New("no episode pattern in file name")

	// ErrNoEpisodeMetadata indicates the parsed episode is missing from the episode map.
	ErrNoEpisodeMetadata = errors.New("no metadata for episode")

	// ErrCopyFailed indicates the file copy operation failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrMoveFailed indicates the file move operation failed.
	ErrMoveFailed = errors.New("failed to move file")

	// ErrDestinationExists indicates the destination file already exists.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrPathTraversal indicates a computed path would escape the media directory.
	ErrPathTraversal = errors.New("path traversal detected")
)
