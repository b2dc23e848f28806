// Package tmdb provides a client for The Movie Database API.
package tmdb

import (
	"fmt"
	"strconv"
)

// MediaType is the kind of catalog entry.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType validates a media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaMovie, MediaTV:
		return MediaType(s), nil
	default:
		return "", fmt.Errorf("invalid media type %q: must be movie or tv", s)
	}
}

// SearchResult is one entry of a /search or /find response. Movies fill Title,
// shows fill Name.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title,omitempty"`
	Name          string  `json:"name,omitempty"`
	OriginalTitle string  `json:"original_title,omitempty"`
	OriginalName  string  `json:"original_name,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	Overview      string  `json:"overview"`
	Popularity    float64 `json:"popularity"`
	PosterPath    string  `json:"poster_path,omitempty"`
}

// DisplayName returns the title for movies or the name for shows.
func (r SearchResult) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// FindResult is the response of /find/{external_id}.
type FindResult struct {
	MovieResults []SearchResult `json:"movie_results"`
	TVResults    []SearchResult `json:"tv_results"`
}

// For returns the results matching a media type.
func (f *FindResult) For(mt MediaType) []SearchResult {
	if mt == MediaMovie {
		return f.MovieResults
	}
	return f.TVResults
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Company is a production company or TV network.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country is a production country.
type Country struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

// SpokenLanguage is a language spoken in a title.
type SpokenLanguage struct {
	ISO6391     string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// Translations is the appended translations block of a detail response.
type Translations struct {
	Translations []Translation `json:"translations"`
}

// Translation is one localized variant of a title.
type Translation struct {
	ISO31661 string          `json:"iso_3166_1"`
	ISO6391  string          `json:"iso_639_1"`
	Name     string          `json:"name"`
	Data     TranslationData `json:"data"`
}

// TranslationData holds the localized fields. Movies use Title, shows Name.
type TranslationData struct {
	Title    string `json:"title,omitempty"`
	Name     string `json:"name,omitempty"`
	Overview string `json:"overview"`
	Tagline  string `json:"tagline,omitempty"`
}

// ExternalIDs links a show to other catalogs.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Movie represents TMDB movie details.
type Movie struct {
	ID                  int64            `json:"id"`
	IMDBID              string           `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title               string           `json:"title"`
	OriginalTitle       string           `json:"original_title"`
	OriginalLanguage    string           `json:"original_language"`
	Overview            string           `json:"overview"`
	Tagline             string           `json:"tagline"`
	ReleaseDate         string           `json:"release_date"` // "2024-03-01"
	Runtime             int              `json:"runtime"`      // minutes
	VoteAverage         float64          `json:"vote_average"`
	VoteCount           int              `json:"vote_count"`
	PosterPath          string           `json:"poster_path"`
	BackdropPath        string           `json:"backdrop_path"`
	Genres              []Genre          `json:"genres"`
	ProductionCountries []Country        `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage `json:"spoken_languages"`
	ProductionCompanies []Company        `json:"production_companies"`
	Translations        *Translations    `json:"translations,omitempty"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return ParseYear(m.ReleaseDate)
}

// SeasonSummary is a season entry of a show's details.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	AirDate      string `json:"air_date"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path"`
}

// TVShow represents TMDB show details.
type TVShow struct {
	ID                  int64            `json:"id"`
	Name                string           `json:"name"`
	OriginalName        string           `json:"original_name"`
	OriginalLanguage    string           `json:"original_language"`
	Overview            string           `json:"overview"`
	Tagline             string           `json:"tagline"`
	FirstAirDate        string           `json:"first_air_date"`
	EpisodeRunTime      []int            `json:"episode_run_time"`
	OriginCountry       []string         `json:"origin_country"`
	SpokenLanguages     []SpokenLanguage `json:"spoken_languages"`
	Networks            []Company        `json:"networks"`
	ProductionCompanies []Company        `json:"production_companies"`
	Genres              []Genre          `json:"genres"`
	Status              string           `json:"status"`
	Homepage            string           `json:"homepage"`
	VoteAverage         float64          `json:"vote_average"`
	VoteCount           int              `json:"vote_count"`
	NumberOfSeasons     int              `json:"number_of_seasons"`
	NumberOfEpisodes    int              `json:"number_of_episodes"`
	PosterPath          string           `json:"poster_path"`
	BackdropPath        string           `json:"backdrop_path"`
	Seasons             []SeasonSummary  `json:"seasons"`
	ExternalIDs         *ExternalIDs     `json:"external_ids,omitempty"`
	Translations        *Translations    `json:"translations,omitempty"`
}

// Year extracts the year from FirstAirDate.
func (s *TVShow) Year() int {
	return ParseYear(s.FirstAirDate)
}

// Season is the response of /tv/{id}/season/{n}.
type Season struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is an episode entry, either inside a season or from
// /tv/{id}/season/{n}/episode/{m}.
type Episode struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Overview      string       `json:"overview"`
	AirDate       string       `json:"air_date"`
	SeasonNumber  int          `json:"season_number"`
	EpisodeNumber int          `json:"episode_number"`
	Runtime       int          `json:"runtime"`
	VoteAverage   float64      `json:"vote_average"`
	VoteCount     int          `json:"vote_count"`
	StillPath     string       `json:"still_path"`
	Crew          []CrewMember `json:"crew"`
	GuestStars    []CastMember `json:"guest_stars"`
}

// CastMember is an actor credit.
type CastMember struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Character    string  `json:"character"`
	ProfilePath  string  `json:"profile_path"`
	Popularity   float64 `json:"popularity"`
	Order        int     `json:"order"`
}

// CrewMember is a crew credit.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits is the response of /{type}/{id}/credits.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Keyword is a TMDB keyword.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keywords is the response of /{type}/{id}/keywords. Movies return the list
// under "keywords", shows under "results".
type Keywords struct {
	ID       int64     `json:"id"`
	Keywords []Keyword `json:"keywords,omitempty"`
	Results  []Keyword `json:"results,omitempty"`
}

// Image is one artwork entry.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ISO6391     string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// Images is the response of /{type}/{id}/images and the episode images
// endpoint.
type Images struct {
	ID        int64   `json:"id"`
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
	Logos     []Image `json:"logos"`
	Stills    []Image `json:"stills"`
}

// ParseYear returns the year prefix of a "YYYY-MM-DD" date, or 0 when the
// date is absent or malformed.
func ParseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 0 {
		return 0
	}
	return year
}
