// Package nfo maps metadata records into Kodi/Jellyfin/Emby NFO descriptors
// and renders them as XML.
package nfo

import "encoding/xml"

// Descriptor is a renderable NFO document.
type Descriptor interface {
	// Identity returns the descriptor's title and year.
	Identity() (title string, year int)
}

// CDATA wraps text that is written as a CDATA section.
type CDATA struct {
	Text string `xml:",cdata"`
}

func cdata(s string) *CDATA {
	if s == "" {
		return nil
	}
	return &CDATA{Text: s}
}

// Actor is an <actor> entry.
type Actor struct {
	Name         string `xml:"name"`
	Role         string `xml:"role"`
	Type         string `xml:"type"`
	OriginalName string `xml:"originalname,omitempty"`
	Thumb        string `xml:"thumb,omitempty"`
}

// UniqueID is a <uniqueid type="..." default="..."> entry.
type UniqueID struct {
	Type    string `xml:"type,attr"`
	Default bool   `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

// Set groups episodes of a multi-episode show.
type Set struct {
	Name     string `xml:"name,omitempty"`
	Overview *CDATA `xml:"overview,omitempty"`
}

// Details holds the leading elements shared by movie and show descriptors.
type Details struct {
	Title         string   `xml:"title"`
	OriginalTitle string   `xml:"originaltitle,omitempty"`
	Year          int      `xml:"year"`
	Premiered     string   `xml:"premiered,omitempty"`
	Plot          *CDATA   `xml:"plot,omitempty"`
	Tagline       string   `xml:"tagline,omitempty"`
	Runtime       int      `xml:"runtime,omitempty"`
	Rating        string   `xml:"rating,omitempty"`
	Votes         int      `xml:"votes,omitempty"`
	TMDBID        int64    `xml:"tmdbid,omitempty"`
	Genres        []string `xml:"genre"`
	Countries     []string `xml:"country"`
	Studios       []string `xml:"studio"`
	Credits       string   `xml:"credits,omitempty"`
	Directors     []string `xml:"director"`
	Actors        []Actor  `xml:"actor"`
}

// Artwork holds the trailing identity, image and tag elements.
type Artwork struct {
	UniqueID *UniqueID `xml:"uniqueid,omitempty"`
	Thumb    string    `xml:"thumb"`
	Fanart   string    `xml:"fanart"`
	Tags     []string  `xml:"tag"`
}

// Movie is a <movie> descriptor.
type Movie struct {
	XMLName xml.Name `xml:"movie"`
	Details
	Artwork
}

// TVShow is a <tvshow> descriptor.
type TVShow struct {
	XMLName xml.Name `xml:"tvshow"`
	Details
	Networks []string `xml:"network"`
	Status   string   `xml:"status,omitempty"`
	Homepage string   `xml:"homepage,omitempty"`
	Artwork
}

// Episode is an <episodedetails> descriptor.
type Episode struct {
	XMLName       xml.Name `xml:"episodedetails"`
	Title         string   `xml:"title"`
	OriginalTitle string   `xml:"originaltitle,omitempty"`
	SortTitle     string   `xml:"sorttitle,omitempty"`
	Season        int      `xml:"season"`
	Episode       int      `xml:"episode"`
	Year          int      `xml:"year"`
	Premiered     string   `xml:"premiered,omitempty"`
	Aired         string   `xml:"aired,omitempty"`
	Runtime       int      `xml:"runtime,omitempty"`
	Plot          *CDATA   `xml:"plot,omitempty"`
	Outline       *CDATA   `xml:"outline,omitempty"`
	Rating        string   `xml:"rating,omitempty"`
	Votes         int      `xml:"votes,omitempty"`
	Genres        []string `xml:"genre"`
	Countries     []string `xml:"country"`
	Studios       []string `xml:"studio"`
	Credits       []string `xml:"credits"`
	Directors     []string `xml:"director"`
	Actors        []Actor  `xml:"actor"`
	LockedFields  string   `xml:"lockedfields"`
	Set           *Set     `xml:"set,omitempty"`
	Tags          []string `xml:"tag"`
	Thumb         string   `xml:"thumb,omitempty"`
	Fanart        string   `xml:"fanart"`
}

func (m *Movie) Identity() (string, int)   { return m.Title, m.Year }
func (s *TVShow) Identity() (string, int)  { return s.Title, s.Year }
func (e *Episode) Identity() (string, int) { return e.Title, e.Year }
