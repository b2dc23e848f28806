// Package normalize maps catalog payloads into the canonical Record and merges
// secondary sources into it.
//
// Every merge step only adds data or fills a field an earlier step left empty;
// no step clears a populated field.
package normalize

import (
	"fmt"
	"slices"

	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

// MaxCast is the number of cast members kept from the credits.
const MaxCast = 10

// Record is the merged metadata for one title. Local* fields hold the
// target-language variants of their source fields.
type Record struct {
	MediaType tmdb.MediaType
	TMDBID    int64
	IMDBID    string

	Title         string
	LocalTitle    string
	OriginalTitle string
	Year          int
	ReleaseDate   string

	Plot         string
	LocalPlot    string
	Tagline      string
	LocalTagline string

	Runtime     int
	Rating      float64
	RatingCount int

	Genres      []string
	LocalGenres []string
	Countries   []string
	Languages   []string
	Studios     []string

	// Keywords is the active keyword list; SourceKeywords always keeps the
	// provider's list.
	Keywords       []string
	SourceKeywords []string
	LocalKeywords  []string

	Cast      []CastMember
	Directors []string
	Writers   []string

	// TV only
	Network          string
	Networks         []string
	Status           string
	Homepage         string
	NumberOfSeasons  int
	NumberOfEpisodes int
	Seasons          []tmdb.SeasonSummary
	Episodes         []Episode
}

// CastMember is an actor credit.
type CastMember struct {
	Name         string
	LocalName    string
	Role         string
	OriginalName string
	ProfilePath  string
	Popularity   float64
}

// Episode is one episode entry of a TV record.
type Episode struct {
	Season        int
	Number        int
	Name          string
	LocalName     string
	Overview      string
	LocalOverview string
	AirDate       string
	Runtime       int
	Rating        float64
	RatingCount   int
	StillPath     string
	Crew          []tmdb.CrewMember
}

// Key returns the episode's map key.
func (e Episode) Key() release.EpisodeKey {
	return release.EpisodeKey{Season: e.Season, Episode: e.Number}
}

// DisplayName returns the localized name, the source name, or "Episode N".
func (e Episode) DisplayName() string {
	switch {
	case e.LocalName != "":
		return e.LocalName
	case e.Name != "":
		return e.Name
	default:
		return fmt.Sprintf("Episode %d", e.Number)
	}
}

// DisplayOverview returns the localized overview or the source overview.
func (e Episode) DisplayOverview() string {
	return firstNonEmpty(e.LocalOverview, e.Overview)
}

// DisplayName returns the actor's name as shown in descriptors:
// "Local / Source" when a distinct local name exists.
func (c CastMember) DisplayName() string {
	if c.LocalName != "" && c.LocalName != c.Name {
		return c.LocalName + " / " + c.Name
	}
	return c.Name
}

// DisplayTitle returns the localized title, falling back to the source title.
func (r *Record) DisplayTitle() string { return firstNonEmpty(r.LocalTitle, r.Title) }

// DisplayPlot returns the localized plot, falling back to the source plot.
func (r *Record) DisplayPlot() string { return firstNonEmpty(r.LocalPlot, r.Plot) }

// DisplayTagline returns the localized tagline, falling back to the source.
func (r *Record) DisplayTagline() string { return firstNonEmpty(r.LocalTagline, r.Tagline) }

// DisplayGenres returns the localized genres, falling back to the source list.
func (r *Record) DisplayGenres() []string { return firstNonEmptyList(r.LocalGenres, r.Genres) }

// DisplayKeywords returns the translated tags, falling back to the active list.
func (r *Record) DisplayKeywords() []string { return firstNonEmptyList(r.LocalKeywords, r.Keywords) }

// Clone returns a deep copy so stages can extend a record without mutating
// the one held by earlier state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Genres = slices.Clone(r.Genres)
	out.LocalGenres = slices.Clone(r.LocalGenres)
	out.Countries = slices.Clone(r.Countries)
	out.Languages = slices.Clone(r.Languages)
	out.Studios = slices.Clone(r.Studios)
	out.Keywords = slices.Clone(r.Keywords)
	out.SourceKeywords = slices.Clone(r.SourceKeywords)
	out.LocalKeywords = slices.Clone(r.LocalKeywords)
	out.Cast = slices.Clone(r.Cast)
	out.Directors = slices.Clone(r.Directors)
	out.Writers = slices.Clone(r.Writers)
	out.Networks = slices.Clone(r.Networks)
	out.Seasons = slices.Clone(r.Seasons)
	out.Episodes = slices.Clone(r.Episodes)
	return &out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyList(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
