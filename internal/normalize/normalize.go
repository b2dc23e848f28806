package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/vmunix/arrnfo/internal/tmdb"
)

// scriptTables lists the scripts that mark text as already written in a
// target language, by base language.
var scriptTables = map[string][]*unicode.RangeTable{
	"zh": {unicode.Han},
	"ja": {unicode.Hiragana, unicode.Katakana, unicode.Han},
	"ko": {unicode.Hangul},
	"ru": {unicode.Cyrillic},
	"uk": {unicode.Cyrillic},
	"el": {unicode.Greek},
	"ar": {unicode.Arabic},
	"he": {unicode.Hebrew},
	"th": {unicode.Thai},
}

func baseLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}

// InTargetScript reports whether s contains characters of the target
// language's script. Languages written in Latin script never match, so their
// native text is treated as source text.
func InTargetScript(s, lang string) bool {
	tables := scriptTables[baseLanguage(lang)]
	if len(tables) == 0 {
		return false
	}
	for _, r := range s {
		if unicode.IsOneOf(tables, r) {
			return true
		}
	}
	return false
}

// Movie maps movie details into a Record for the target language.
func Movie(m *tmdb.Movie, lang string) *Record {
	rec := &Record{
		MediaType:     tmdb.MediaMovie,
		TMDBID:        m.ID,
		IMDBID:        m.IMDBID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Year:          m.Year(),
		ReleaseDate:   m.ReleaseDate,
		Plot:          m.Overview,
		Tagline:       m.Tagline,
		Runtime:       m.Runtime,
		Rating:        m.VoteAverage,
		RatingCount:   m.VoteCount,
		Genres:        genreNames(m.Genres),
		Studios:       companyNames(m.ProductionCompanies),
	}
	for _, c := range m.ProductionCountries {
		rec.Countries = append(rec.Countries, c.Name)
	}
	for _, l := range m.SpokenLanguages {
		rec.Languages = append(rec.Languages, l.EnglishName)
	}

	detectLocal(rec, lang)
	if t := pickTranslation(m.Translations, lang); t != nil {
		overrideLocal(rec, t.Data.Title, t.Data.Overview, t.Data.Tagline)
	}
	return rec
}

// TV maps show details into a Record for the target language.
func TV(s *tmdb.TVShow, lang string) *Record {
	rec := &Record{
		MediaType:        tmdb.MediaTV,
		TMDBID:           s.ID,
		Title:            s.Name,
		OriginalTitle:    s.OriginalName,
		Year:             s.Year(),
		ReleaseDate:      s.FirstAirDate,
		Plot:             s.Overview,
		Tagline:          s.Tagline,
		Rating:           s.VoteAverage,
		RatingCount:      s.VoteCount,
		Genres:           genreNames(s.Genres),
		Countries:        append([]string(nil), s.OriginCountry...),
		Studios:          companyNames(s.ProductionCompanies),
		Networks:         companyNames(s.Networks),
		Status:           s.Status,
		Homepage:         s.Homepage,
		NumberOfSeasons:  s.NumberOfSeasons,
		NumberOfEpisodes: s.NumberOfEpisodes,
		Seasons:          append([]tmdb.SeasonSummary(nil), s.Seasons...),
	}
	if len(s.EpisodeRunTime) > 0 {
		rec.Runtime = s.EpisodeRunTime[0]
	}
	if len(rec.Networks) > 0 {
		rec.Network = rec.Networks[0]
	}
	for _, l := range s.SpokenLanguages {
		rec.Languages = append(rec.Languages, l.EnglishName)
	}
	if s.ExternalIDs != nil {
		rec.IMDBID = s.ExternalIDs.IMDBID
	}

	detectLocal(rec, lang)
	if t := pickTranslation(s.Translations, lang); t != nil {
		overrideLocal(rec, t.Data.Name, t.Data.Overview, t.Data.Tagline)
	}
	return rec
}

// detectLocal treats native text already in the target script as localized.
func detectLocal(rec *Record, lang string) {
	if InTargetScript(rec.Title, lang) {
		rec.LocalTitle = rec.Title
	}
	if InTargetScript(rec.Plot, lang) {
		rec.LocalPlot = rec.Plot
	}
	if InTargetScript(rec.Tagline, lang) {
		rec.LocalTagline = rec.Tagline
	}
}

func overrideLocal(rec *Record, title, plot, tagline string) {
	if title != "" {
		rec.LocalTitle = title
	}
	if plot != "" {
		rec.LocalPlot = plot
	}
	if tagline != "" {
		rec.LocalTagline = tagline
	}
}

// pickTranslation returns the provider translation for lang, preferring an
// exact region match over any translation of the same base language.
func pickTranslation(ts *tmdb.Translations, lang string) *tmdb.Translation {
	if ts == nil {
		return nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil
	}
	base, _ := tag.Base()
	region, _ := tag.Region()

	var fallback *tmdb.Translation
	for i := range ts.Translations {
		t := &ts.Translations[i]
		if t.ISO6391 != base.String() {
			continue
		}
		if t.ISO31661 == region.String() {
			return t
		}
		if fallback == nil {
			fallback = t
		}
	}
	return fallback
}

func genreNames(genres []tmdb.Genre) []string {
	var out []string
	for _, g := range genres {
		out = append(out, g.Name)
	}
	return out
}

func companyNames(companies []tmdb.Company) []string {
	var out []string
	for _, c := range companies {
		if c.Name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}
