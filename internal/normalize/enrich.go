package normalize

import (
	"slices"

	"github.com/vmunix/arrnfo/internal/omdb"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

var writerJobs = []string{"Writer", "Screenplay", "Story", "Series Composition"}

// IsDirector reports whether a crew credit counts as directing.
func IsDirector(c tmdb.CrewMember) bool {
	return c.Job == "Director" || c.Department == "Directing"
}

// IsWriter reports whether a crew credit counts as writing. Episode-level
// credits do not count "Series Composition".
func IsWriter(c tmdb.CrewMember, episodeLevel bool) bool {
	if c.Department == "Writing" {
		return true
	}
	jobs := writerJobs
	if episodeLevel {
		jobs = writerJobs[:3]
	}
	return slices.Contains(jobs, c.Job)
}

// EpisodeCrew returns the directors and writers credited on one episode, in
// credit order.
func EpisodeCrew(ep Episode) (directors, writers []string) {
	for _, c := range ep.Crew {
		switch {
		case c.Name == "":
		case IsDirector(c):
			directors = append(directors, c.Name)
		case IsWriter(c, true):
			writers = append(writers, c.Name)
		}
	}
	return directors, writers
}

// WithCredits adds the top cast and the director/writer union of show-level
// and (for TV) episode-level crew. Episodes must already be on the record.
func WithCredits(rec *Record, credits *tmdb.Credits) {
	if credits == nil {
		return
	}

	cast := credits.Cast
	if len(cast) > MaxCast {
		cast = cast[:MaxCast]
	}
	if len(rec.Cast) == 0 {
		for _, p := range cast {
			rec.Cast = append(rec.Cast, CastMember{
				Name:         p.Name,
				Role:         p.Character,
				OriginalName: p.OriginalName,
				ProfilePath:  p.ProfilePath,
				Popularity:   p.Popularity,
			})
		}
	}

	var directors, writers []string
	for _, c := range credits.Crew {
		switch {
		case c.Name == "":
		case IsDirector(c):
			directors = append(directors, c.Name)
		case IsWriter(c, false):
			writers = append(writers, c.Name)
		}
	}
	if rec.MediaType == tmdb.MediaTV {
		for _, ep := range rec.Episodes {
			d, w := EpisodeCrew(ep)
			directors = append(directors, d...)
			writers = append(writers, w...)
		}
	}

	rec.Directors = union(rec.Directors, directors)
	rec.Writers = union(rec.Writers, writers)
}

// KeywordNames flattens either keyword response shape into names.
func KeywordNames(kw *tmdb.Keywords) []string {
	if kw == nil {
		return nil
	}
	list := kw.Keywords
	if len(list) == 0 {
		list = kw.Results
	}
	var out []string
	for _, k := range list {
		if k.Name != "" {
			out = append(out, k.Name)
		}
	}
	return out
}

// WithKeywords records the provider keywords. The source list is always kept;
// the active list is the translated one only when translation was requested
// and translated keywords exist.
func WithKeywords(rec *Record, kw *tmdb.Keywords, translate bool) {
	names := KeywordNames(kw)
	if len(names) == 0 {
		return
	}
	rec.SourceKeywords = names
	if translate && len(rec.LocalKeywords) > 0 {
		rec.Keywords = rec.LocalKeywords
		return
	}
	rec.Keywords = names
}

// WithSecondary overlays OMDb data where it adds value: actor names by
// position, plot and genres when no localized value exists yet, and the
// director/writer union.
func WithSecondary(rec *Record, t *omdb.Title) {
	if t == nil {
		return
	}
	if rec.IMDBID == "" {
		rec.IMDBID = omdb.Value(t.IMDBID)
	}

	OverlayActorNamesPositionally(rec.Cast, omdb.SplitList(t.Actors))

	if plot := omdb.Value(t.Plot); plot != "" && rec.LocalPlot == "" {
		rec.LocalPlot = plot
	}
	if genres := omdb.SplitList(t.Genre); len(genres) > 0 && len(rec.LocalGenres) == 0 {
		rec.LocalGenres = genres
	}
	rec.Directors = union(rec.Directors, omdb.SplitList(t.Director))
	rec.Writers = union(rec.Writers, omdb.SplitList(t.Writer))
}

// OverlayActorNamesPositionally assigns names[i] as the local name of cast[i].
// Names are aligned by index only; there is no name matching. Cast members
// that already have a local name keep it.
func OverlayActorNamesPositionally(cast []CastMember, names []string) {
	for i, name := range names {
		if i >= len(cast) {
			return
		}
		if name == "" || cast[i].LocalName != "" {
			continue
		}
		cast[i].LocalName = name
	}
}

// union merges two name lists into a sorted set.
func union(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	for _, s := range b {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
