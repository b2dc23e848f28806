package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// illegalChars are characters not allowed in file and directory names on
// common filesystems.
var illegalChars = regexp.MustCompile(`[\\/:"*?<>|\x00]`)

// multiSpace matches runs of whitespace.
var multiSpace = regexp.MustCompile(`\s+`)

// SafeTitle strips filesystem-illegal characters from a show or movie title
// so it can be used as a directory or file name component.
func SafeTitle(title string) string {
	title = illegalChars.ReplaceAllString(title, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(title, " "))
}

// EpisodeTitle prepares an episode title for use in a file name. A title
// containing '/' is a multi-part title and is cut at the first slash. Illegal
// characters are removed, and a title left empty becomes "Episode N".
func EpisodeTitle(title string, episode int) string {
	if before, _, found := strings.Cut(title, "/"); found {
		title = before
	}
	if safe := SafeTitle(title); safe != "" {
		return safe
	}
	return fmt.Sprintf("Episode %d", episode)
}

// MediaDirName returns the "{Title} ({Year})" directory name for a title.
func MediaDirName(title string, year int) string {
	return applyTemplate(DefaultMediaDirTemplate, map[string]any{
		"title": SafeTitle(title),
		"year":  year,
	})
}

// ValidatePath ensures the path is within the expected root directory.
// Returns ErrPathTraversal if the path would escape the root.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	if cleanPath == cleanRoot {
		return nil
	}
	if !strings.HasSuffix(cleanRoot, string(filepath.Separator)) {
		cleanRoot += string(filepath.Separator)
	}
	if !strings.HasPrefix(cleanPath, cleanRoot) {
		return ErrPathTraversal
	}
	return nil
}
