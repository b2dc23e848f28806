package nfo

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

func showRecord() *normalize.Record {
	return &normalize.Record{
		MediaType:        tmdb.MediaTV,
		TMDBID:           1399,
		Title:            "Game of Thrones",
		LocalTitle:       "权力的游戏",
		OriginalTitle:    "Game of Thrones",
		Year:             2011,
		ReleaseDate:      "2011-04-17",
		Plot:             "Seven noble families fight for control.",
		Runtime:          60,
		Rating:           8.456,
		RatingCount:      21000,
		Genres:           []string{"Drama"},
		Countries:        []string{"US"},
		Studios:          []string{"HBO"},
		Networks:         []string{"HBO"},
		Status:           "Ended",
		Keywords:         []string{"dragon"},
		LocalKeywords:    []string{"龙"},
		Directors:        []string{"Alan Taylor"},
		Writers:          []string{"David Benioff", "D. B. Weiss"},
		NumberOfSeasons:  8,
		NumberOfEpisodes: 73,
		Cast: []normalize.CastMember{
			{Name: "Emilia Clarke", LocalName: "艾米莉亚·克拉克", Role: "Daenerys", ProfilePath: "/e.jpg"},
			{Name: "Sean Bean", Role: "Ned", OriginalName: "Shaun Mark Bean"},
		},
	}
}

func TestMapTVShow(t *testing.T) {
	show := MapTVShow(showRecord())

	assert.Equal(t, "权力的游戏", show.Title)
	assert.Equal(t, "Seven noble families fight for control.", show.Plot.Text)
	assert.Equal(t, "8.5", show.Rating)
	assert.Equal(t, "David Benioff, D. B. Weiss", show.Credits)
	assert.Equal(t, []string{"HBO"}, show.Networks)
	assert.Equal(t, []string{"龙"}, show.Tags)
	assert.Equal(t, &UniqueID{Type: "tmdb", Default: true, Value: "1399"}, show.UniqueID)
	assert.Equal(t, "poster.jpg", show.Thumb)

	require.Len(t, show.Actors, 2)
	assert.Equal(t, Actor{
		Name:  "艾米莉亚·克拉克 / Emilia Clarke",
		Role:  "Daenerys",
		Type:  "Actor",
		Thumb: "./actors/Emilia_Clarke.jpg",
	}, show.Actors[0])
	assert.Equal(t, "Shaun Mark Bean", show.Actors[1].OriginalName)
	assert.Empty(t, show.Actors[1].Thumb)
}

func TestMapTVShow_SingleNetworkFallback(t *testing.T) {
	rec := showRecord()
	rec.Networks = nil
	rec.Network = "BBC One"
	assert.Equal(t, []string{"BBC One"}, MapTVShow(rec).Networks)
}

func TestMap_SelectsByMediaType(t *testing.T) {
	rec := showRecord()
	assert.IsType(t, &TVShow{}, Map(rec))
	rec.MediaType = tmdb.MediaMovie
	assert.IsType(t, &Movie{}, Map(rec))
}

func TestMapEpisode(t *testing.T) {
	rec := showRecord()
	ep := normalize.Episode{
		Season:    1,
		Number:    2,
		Name:      "The Kingsroad",
		LocalName: "国王大道",
		Overview:  "The Lannisters plot.",
		AirDate:   "2011-04-24",
		Crew: []tmdb.CrewMember{
			{Name: "Tim Van Patten", Job: "Director"},
			{Name: "George R. R. Martin", Job: "Series Composition"},
		},
	}

	out := MapEpisode(rec, ep, "权力的游戏 - S01E02 - 国王大道")

	assert.Equal(t, "国王大道", out.Title)
	assert.Equal(t, "The Kingsroad", out.OriginalTitle)
	assert.Equal(t, 2011, out.Year)
	assert.Equal(t, "2011-04-24", out.Aired)
	assert.Equal(t, 60, out.Runtime)
	assert.Equal(t, "The Lannisters plot.", out.Outline.Text)
	assert.Equal(t, []string{"Tim Van Patten"}, out.Directors)
	assert.Equal(t, rec.Writers, out.Credits)
	assert.Equal(t, "Name", out.LockedFields)
	assert.Equal(t, "权力的游戏 - S01E02 - 国王大道-thumb.jpg", out.Thumb)
	assert.Equal(t, "权力的游戏 - S01E02 - 国王大道-fanart.jpg", out.Fanart)
	assert.Equal(t, "../actors/Emilia_Clarke.jpg", out.Actors[0].Thumb)
	require.NotNil(t, out.Set)
	assert.Equal(t, "权力的游戏", out.Set.Name)
}

func TestMapEpisode_Fallbacks(t *testing.T) {
	rec := &normalize.Record{Title: "Mini", Year: 2020, NumberOfSeasons: 1, NumberOfEpisodes: 1}

	out := MapEpisode(rec, normalize.Episode{Season: 1, Number: 1}, "")

	assert.Equal(t, "Episode 1", out.Title)
	assert.Equal(t, 2020, out.Year)
	assert.Equal(t, 25, out.Runtime)
	assert.Nil(t, out.Set)
	assert.Empty(t, out.Thumb)
	assert.Equal(t, "../fanart.jpg", out.Fanart)
}

func TestRender_Movie(t *testing.T) {
	rec := &normalize.Record{
		MediaType: tmdb.MediaMovie,
		TMDBID:    603,
		Title:     "The Matrix",
		Year:      1999,
		Plot:      "A hacker learns <the truth> & more.",
		Genres:    []string{"Action", "Science Fiction"},
	}

	data, err := Render(MapMovie(rec))
	require.NoError(t, err)
	doc := string(data)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<plot><![CDATA[A hacker learns <the truth> & more.]]></plot>")
	assert.Contains(t, doc, `<uniqueid type="tmdb" default="true">603</uniqueid>`)
	assert.Contains(t, doc, "  <genre>Science Fiction</genre>")
	assert.NotContains(t, doc, "<tagline>")
	assert.Less(t, strings.Index(doc, "<title>"), strings.Index(doc, "<year>"))
	assert.Less(t, strings.Index(doc, "<uniqueid"), strings.Index(doc, "<thumb>"))
}

func TestRender_TVShowElementOrder(t *testing.T) {
	data, err := Render(MapTVShow(showRecord()))
	require.NoError(t, err)
	doc := string(data)

	order := []string{"<title>", "<tmdbid>", "<genre>", "<credits>", "<director>", "<actor>", "<network>", "<status>", "<uniqueid", "<thumb>", "<fanart>", "<tag>"}
	last := -1
	for _, el := range order {
		idx := strings.Index(doc, el)
		require.NotEqual(t, -1, idx, el)
		assert.Greater(t, idx, last, el)
		last = idx
	}
}

func TestRender_RoundTripKeepsText(t *testing.T) {
	rec := showRecord()
	data, err := Render(MapTVShow(rec))
	require.NoError(t, err)

	var parsed struct {
		XMLName xml.Name `xml:"tvshow"`
		Title   string   `xml:"title"`
		Plot    string   `xml:"plot"`
		Actors  []Actor  `xml:"actor"`
	}
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, rec.LocalTitle, parsed.Title)
	assert.Equal(t, rec.Plot, parsed.Plot)
	assert.Len(t, parsed.Actors, 2)
}

func TestIdentity(t *testing.T) {
	title, year := MapMovie(&normalize.Record{Title: "Up", Year: 2009}).Identity()
	assert.Equal(t, "Up", title)
	assert.Equal(t, 2009, year)
}
