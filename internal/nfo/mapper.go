package nfo

import (
	"math"
	"strconv"
	"strings"

	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

// Episode runtime used when neither the episode nor the show has one.
const defaultEpisodeRuntime = 25

// Actor thumb locations relative to the descriptor.
const (
	rootActorsPrefix    = "./" + artwork.ActorsDir
	episodeActorsPrefix = "../" + artwork.ActorsDir
)

// MapMovie builds a movie descriptor from a record.
func MapMovie(rec *normalize.Record) *Movie {
	return &Movie{
		Details: details(rec),
		Artwork: showArtwork(rec),
	}
}

// MapTVShow builds a show descriptor from a record.
func MapTVShow(rec *normalize.Record) *TVShow {
	networks := rec.Networks
	if len(networks) == 0 && rec.Network != "" {
		networks = []string{rec.Network}
	}
	return &TVShow{
		Details:  details(rec),
		Networks: networks,
		Status:   rec.Status,
		Homepage: rec.Homepage,
		Artwork:  showArtwork(rec),
	}
}

// Map builds the show or movie descriptor matching the record's media type.
func Map(rec *normalize.Record) Descriptor {
	if rec.MediaType == tmdb.MediaMovie {
		return MapMovie(rec)
	}
	return MapTVShow(rec)
}

// MapEpisode builds an episode descriptor. fileBase is the episode's file
// name without extension and names the episode's thumb and fanart images.
func MapEpisode(rec *normalize.Record, ep normalize.Episode, fileBase string) *Episode {
	title := ep.DisplayName()
	plot := ep.DisplayOverview()

	year := tmdb.ParseYear(ep.AirDate)
	if year == 0 {
		year = rec.Year
	}
	runtime := ep.Runtime
	if runtime == 0 {
		runtime = rec.Runtime
	}
	if runtime == 0 {
		runtime = defaultEpisodeRuntime
	}

	directors, writers := normalize.EpisodeCrew(ep)
	if len(directors) == 0 {
		directors = rec.Directors
	}
	if len(writers) == 0 {
		writers = rec.Writers
	}

	out := &Episode{
		Title:         title,
		OriginalTitle: ep.Name,
		SortTitle:     title,
		Season:        ep.Season,
		Episode:       ep.Number,
		Year:          year,
		Premiered:     ep.AirDate,
		Aired:         ep.AirDate,
		Runtime:       runtime,
		Plot:          cdata(plot),
		Outline:       cdata(plot),
		Rating:        formatRating(ep.Rating),
		Votes:         ep.RatingCount,
		Genres:        rec.DisplayGenres(),
		Countries:     rec.Countries,
		Studios:       rec.Studios,
		Credits:       writers,
		Directors:     directors,
		Actors:        actors(rec.Cast, episodeActorsPrefix),
		LockedFields:  "Name",
		Tags:          rec.DisplayKeywords(),
		Fanart:        "../" + artwork.FanartFile,
	}
	if fileBase != "" {
		out.Thumb = fileBase + "-thumb.jpg"
		out.Fanart = fileBase + "-fanart.jpg"
	}
	if rec.NumberOfSeasons > 1 || rec.NumberOfEpisodes > 1 {
		out.Set = &Set{Name: rec.DisplayTitle(), Overview: cdata(rec.DisplayPlot())}
	}
	return out
}

func details(rec *normalize.Record) Details {
	return Details{
		Title:         rec.DisplayTitle(),
		OriginalTitle: rec.OriginalTitle,
		Year:          rec.Year,
		Premiered:     rec.ReleaseDate,
		Plot:          cdata(rec.DisplayPlot()),
		Tagline:       rec.DisplayTagline(),
		Runtime:       rec.Runtime,
		Rating:        formatRating(rec.Rating),
		Votes:         rec.RatingCount,
		TMDBID:        rec.TMDBID,
		Genres:        rec.DisplayGenres(),
		Countries:     rec.Countries,
		Studios:       rec.Studios,
		Credits:       strings.Join(rec.Writers, ", "),
		Directors:     rec.Directors,
		Actors:        actors(rec.Cast, rootActorsPrefix),
	}
}

func showArtwork(rec *normalize.Record) Artwork {
	a := Artwork{
		Thumb:  artwork.PosterFile,
		Fanart: artwork.FanartFile,
		Tags:   rec.DisplayKeywords(),
	}
	if rec.TMDBID != 0 {
		a.UniqueID = &UniqueID{Type: "tmdb", Default: true, Value: strconv.FormatInt(rec.TMDBID, 10)}
	}
	return a
}

func actors(cast []normalize.CastMember, thumbPrefix string) []Actor {
	if len(cast) > normalize.MaxCast {
		cast = cast[:normalize.MaxCast]
	}
	out := make([]Actor, 0, len(cast))
	for _, c := range cast {
		a := Actor{
			Name: c.DisplayName(),
			Role: c.Role,
			Type: "Actor",
		}
		if c.OriginalName != "" && c.OriginalName != c.Name && c.OriginalName != c.LocalName {
			a.OriginalName = c.OriginalName
		}
		if c.ProfilePath != "" {
			a.Thumb = thumbPrefix + "/" + artwork.ActorFileName(c.Name)
		}
		out = append(out, a)
	}
	return out
}

// formatRating renders a rating with one decimal, or "" when unrated.
func formatRating(r float64) string {
	if r <= 0 {
		return ""
	}
	return strconv.FormatFloat(math.Round(r*10)/10, 'f', 1, 64)
}
