package normalize

import (
	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

// EpisodeMap indexes episodes by season and episode number.
type EpisodeMap map[release.EpisodeKey]Episode

// FromTMDB converts a catalog episode.
func FromTMDB(ep tmdb.Episode) Episode {
	return Episode{
		Season:      ep.SeasonNumber,
		Number:      ep.EpisodeNumber,
		Name:        ep.Name,
		Overview:    ep.Overview,
		AirDate:     ep.AirDate,
		Runtime:     ep.Runtime,
		Rating:      ep.VoteAverage,
		RatingCount: ep.VoteCount,
		StillPath:   ep.StillPath,
		Crew:        append([]tmdb.CrewMember(nil), ep.Crew...),
	}
}

// Episodes sets the record's raw episode list. Specials (season 0) are
// skipped.
func Episodes(rec *Record, episodes []tmdb.Episode) {
	for _, ep := range episodes {
		if ep.SeasonNumber <= 0 {
			continue
		}
		rec.Episodes = append(rec.Episodes, FromTMDB(ep))
	}
}

// BuildEpisodeMap indexes raw episodes, then overwrites entries with
// translated ones sharing the same key. Later entries win.
func BuildEpisodeMap(raw, translated []Episode) EpisodeMap {
	m := make(EpisodeMap, len(raw))
	for _, ep := range raw {
		m[ep.Key()] = ep
	}
	for _, ep := range translated {
		m[ep.Key()] = ep
	}
	return m
}
