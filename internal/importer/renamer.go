package importer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vmunix/arrnfo/pkg/release"
)

// Default naming templates.
const (
	DefaultEpisodeTemplate  = "{show} - S{season:02}E{episode:02} - {title}"
	DefaultSeasonTemplate   = "Season {season:02}"
	DefaultMediaDirTemplate = "{title} ({year})"
)

// Renamer applies naming templates to generate episode file names.
type Renamer struct {
	episodeTemplate string
	seasonTemplate  string
}

// NewRenamer creates a new Renamer with the given episode template.
// An empty string uses the default template.
func NewRenamer(episodeTemplate string) *Renamer {
	if episodeTemplate == "" {
		episodeTemplate = DefaultEpisodeTemplate
	}
	return &Renamer{
		episodeTemplate: episodeTemplate,
		seasonTemplate:  DefaultSeasonTemplate,
	}
}

// EpisodeBase returns the episode file name without extension, e.g.
// "Show - S01E02 - Title".
func (r *Renamer) EpisodeBase(show string, key release.EpisodeKey, title string) string {
	vars := map[string]any{
		"show":    SafeTitle(show),
		"season":  key.Season,
		"episode": key.Episode,
		"title":   EpisodeTitle(title, key.Episode),
	}
	return applyTemplate(r.episodeTemplate, vars)
}

// SeasonDir returns the season directory name, e.g. "Season 01".
func (r *Renamer) SeasonDir(season int) string {
	return applyTemplate(r.seasonTemplate, map[string]any{"season": season})
}

// formatPattern matches {name} or {name:02} style placeholders.
var formatPattern = regexp.MustCompile(`\{(\w+)(?::(\d+))?\}`)

// applyTemplate substitutes variables into a template string.
// Supports {name} for simple substitution and {name:02} for zero-padded integers.
func applyTemplate(template string, vars map[string]any) string {
	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := formatPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		val, ok := vars[parts[1]]
		if !ok {
			return match
		}

		if len(parts) >= 3 && parts[2] != "" {
			if width, err := strconv.Atoi(parts[2]); err == nil {
				if v, ok := val.(int); ok {
					return fmt.Sprintf("%0*d", width, v)
				}
			}
		}
		return fmt.Sprintf("%v", val)
	})
}
