// Package release parses media filenames into episode identifiers, show names
// and search queries.
package release

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EpisodeKey identifies one episode of a show.
type EpisodeKey struct {
	Season  int
	Episode int
}

func (k EpisodeKey) String() string {
	return fmt.Sprintf("S%02dE%02d", k.Season, k.Episode)
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".rmvb": true, ".rm": true, ".asf": true,
	".mpg": true, ".mpeg": true, ".m4v": true, ".3gp": true, ".m2ts": true,
	".mts": true, ".vob": true, ".ogv": true, ".divx": true, ".xvid": true,
	".f4v": true, ".mxf": true, ".r3d": true, ".braw": true, ".dng": true,
	".m2v": true, ".ts": true,
}

var subtitleExtensions = map[string]bool{
	".ass": true, ".srt": true, ".ssa": true, ".sub": true, ".vtt": true,
}

// IsVideoFile reports whether path has a known video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSubtitleFile reports whether path has a known subtitle extension.
func IsSubtitleFile(path string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(path))]
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
