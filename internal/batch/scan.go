package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/vmunix/arrnfo/pkg/release"
)

// Kind classifies a direct child of the batch root.
type Kind int

const (
	KindExcluded Kind = iota
	KindOrganized
	KindScatteredVideo
	KindScatteredSubtitle
)

func (k Kind) String() string {
	switch k {
	case KindOrganized:
		return "organized"
	case KindScatteredVideo:
		return "scattered-video"
	case KindScatteredSubtitle:
		return "scattered-subtitle"
	default:
		return "excluded"
	}
}

// excludedDirs are library folder names never treated as shows.
var excludedDirs = map[string]bool{
	"tv": true, "movies": true, "shows": true, "films": true, "series": true, "output": true,
}

// outputNames are folder names a generated library uses.
var outputNames = map[string]bool{
	"tv": true, "movies": true, "shows": true, "films": true, "series": true,
}

var seasonDirPattern = regexp.MustCompile(`(?i)^season\s*\d+`)

// ScanResult holds the classified children of a batch root.
type ScanResult struct {
	Root      string
	Organized []string
	Scattered []string // videos and subtitles directly under the root
	Excluded  []string
}

// Scan classifies every direct child of root exactly once.
func Scan(root string) (*ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	res := &ScanResult{Root: root}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		switch Classify(path, e.IsDir()) {
		case KindOrganized:
			res.Organized = append(res.Organized, path)
		case KindScatteredVideo, KindScatteredSubtitle:
			res.Scattered = append(res.Scattered, path)
		default:
			res.Excluded = append(res.Excluded, path)
		}
	}
	slices.Sort(res.Organized)
	slices.Sort(res.Scattered)
	return res, nil
}

// Classify decides what a root child is.
func Classify(path string, isDir bool) Kind {
	name := filepath.Base(path)
	if !isDir {
		switch {
		case strings.HasPrefix(name, "."):
			return KindExcluded
		case release.IsVideoFile(name):
			return KindScatteredVideo
		case release.IsSubtitleFile(name):
			return KindScatteredSubtitle
		}
		return KindExcluded
	}

	if isExcludedDir(name) || IsOutputDir(path) {
		return KindExcluded
	}
	if isOrganized(path) {
		return KindOrganized
	}
	return KindExcluded
}

func isExcludedDir(name string) bool {
	return strings.HasPrefix(name, ".") || excludedDirs[strings.ToLower(name)]
}

// IsOutputDir reports whether dir looks like a generated library: it has a
// TV/Movies/Shows child, or it holds NFO files and carries a library name.
func IsOutputDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	hasLibrary, hasNFO := false, false
	for _, e := range entries {
		lower := strings.ToLower(e.Name())
		if e.IsDir() && (lower == "tv" || lower == "movies" || lower == "shows") {
			hasLibrary = true
		}
		if !e.IsDir() && strings.HasSuffix(lower, ".nfo") {
			hasNFO = true
		}
	}
	return hasLibrary || (hasNFO && outputNames[strings.ToLower(filepath.Base(dir))])
}

// isOrganized: more than one direct video, a "Season N" folder, or any
// nested video.
func isOrganized(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	videos := 0
	for _, e := range entries {
		if e.IsDir() {
			if seasonDirPattern.MatchString(e.Name()) {
				return true
			}
			continue
		}
		if release.IsVideoFile(e.Name()) {
			videos++
		}
	}
	if videos > 1 {
		return true
	}
	return hasVideo(dir)
}

func hasVideo(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && release.IsVideoFile(path) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
