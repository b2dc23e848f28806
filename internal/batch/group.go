package batch

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vmunix/arrnfo/pkg/release"
)

// Group is the set of scattered files believed to belong to one show.
type Group struct {
	Show  string
	Files []string
}

// HasVideo reports whether the group holds at least one video.
func (g Group) HasVideo() bool {
	return slices.ContainsFunc(g.Files, release.IsVideoFile)
}

// GroupByShow groups files by the show name guessed from each file stem.
// Groups are ordered by show name; files keep their input order.
func GroupByShow(files []string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, f := range files {
		show := release.ExtractShowName(release.Stem(f))
		i, ok := index[show]
		if !ok {
			i = len(groups)
			index[show] = i
			groups = append(groups, Group{Show: show})
		}
		groups[i].Files = append(groups[i].Files, f)
	}
	slices.SortFunc(groups, func(a, b Group) int { return strings.Compare(a.Show, b.Show) })
	return groups
}

var tmdbIDPattern = regexp.MustCompile(`(?i)<tmdbid>\s*(\d+)\s*</tmdbid>`)

// ExtractTMDBID reads a catalog id from the NFO files in dir, trying
// tvshow.nfo before any other *.nfo.
func ExtractTMDBID(dir string) (int64, bool) {
	candidates := []string{filepath.Join(dir, "tvshow.nfo")}
	others, _ := filepath.Glob(filepath.Join(dir, "*.nfo"))
	slices.Sort(others)
	candidates = append(candidates, others...)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		m := tmdbIDPattern.FindSubmatch(data)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(string(m[1]), 10, 64)
		if err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// companions returns the subtitles sharing the stem of video, either exactly
// ("Show.S01E01.srt") or followed by a language tag ("Show.S01E01.zh.srt").
func companions(video string, subtitles []string) []string {
	stem := release.Stem(video)
	var out []string
	for _, sub := range subtitles {
		s := release.Stem(sub)
		if s == stem || strings.HasPrefix(s, stem+".") {
			out = append(out, sub)
		}
	}
	return out
}
