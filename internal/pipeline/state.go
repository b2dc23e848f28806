package pipeline

import (
	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/nfo"
	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/omdb"
	"github.com/vmunix/arrnfo/internal/resolver"
	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

// StatusCompleted is the terminal status of a successful run.
const StatusCompleted = "completed"

// Input holds the caller parameters of one run.
type Input struct {
	Query string
	// MediaType restricts resolution to one type when set.
	MediaType tmdb.MediaType
	TMDBID    int64
	IMDBID    string

	// OutputDir receives "TV/{Title} ({Year})" or "Movies/{Title} ({Year})".
	OutputDir string
	// InPlaceDir, when set, is used as the media directory as is.
	InPlaceDir string

	Language       string
	Translate      bool
	TranslateTags  bool
	AllowWebSearch bool
	SkipImages     bool
	ExtraImages    bool
}

func (in *Input) request() resolver.Request {
	return resolver.Request{
		Query:          in.Query,
		MediaType:      in.MediaType,
		Forced:         in.MediaType != "",
		TMDBID:         in.TMDBID,
		IMDBID:         in.IMDBID,
		AllowWebSearch: in.AllowWebSearch,
	}
}

// EpisodeFetch is the outcome of fetching one episode. Key.Episode is 0 when
// the whole season failed.
type EpisodeFetch struct {
	Key     release.EpisodeKey
	Episode *tmdb.Episode
	Err     error
}

// Source is the raw provider data of a run.
type Source struct {
	Movie    *tmdb.Movie
	Show     *tmdb.TVShow
	Credits  *tmdb.Credits
	Keywords *tmdb.Keywords
	Seasons  []tmdb.Season
	Episodes []EpisodeFetch
	Fetched  int
	Failed   int

	Secondary          *omdb.Title
	TranslatedEpisodes []normalize.Episode
}

// FetchedEpisodes returns the successfully fetched episodes in fetch order.
func (s *Source) FetchedEpisodes() []tmdb.Episode {
	var out []tmdb.Episode
	for _, f := range s.Episodes {
		if f.Err == nil && f.Episode != nil {
			out = append(out, *f.Episode)
		}
	}
	return out
}

// Artwork is the planned and downloaded artwork.
type Artwork struct {
	Images *tmdb.Images
	Plan   *artwork.Plan
	Result *artwork.Result
}

// Descriptor is the NFO projection of the record.
type Descriptor struct {
	NFO       nfo.Descriptor
	Validated bool
	XML       []byte
}

// Output describes what a run wrote.
type Output struct {
	Status      string
	MediaDir    string
	NFOPath     string
	Files       []string
	EpisodeNFOs int
}

// State is the accumulated result of the stages run so far. A nil field has
// not been produced yet.
type State struct {
	Input      *Input
	Search     *resolver.SearchOutcome
	Candidate  *resolver.Candidate
	Source     *Source
	Record     *normalize.Record
	Artwork    *Artwork
	Descriptor *Descriptor
	Output     *Output
}

// EpisodeMap indexes the record's episodes, preferring translated entries.
func (s State) EpisodeMap() normalize.EpisodeMap {
	if s.Record == nil {
		return nil
	}
	var translated []normalize.Episode
	if s.Source != nil {
		translated = s.Source.TranslatedEpisodes
	}
	return normalize.BuildEpisodeMap(s.Record.Episodes, translated)
}

// StageResult is the partial update a stage returns.
type StageResult State

// Apply merges a stage result into state. Every non-nil field of r replaces
// the field of the same name; nothing is merged below the top level.
func Apply(s State, r StageResult) State {
	if r.Input != nil {
		s.Input = r.Input
	}
	if r.Search != nil {
		s.Search = r.Search
	}
	if r.Candidate != nil {
		s.Candidate = r.Candidate
	}
	if r.Source != nil {
		s.Source = r.Source
	}
	if r.Record != nil {
		s.Record = r.Record
	}
	if r.Artwork != nil {
		s.Artwork = r.Artwork
	}
	if r.Descriptor != nil {
		s.Descriptor = r.Descriptor
	}
	if r.Output != nil {
		s.Output = r.Output
	}
	return s
}
