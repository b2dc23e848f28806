// Package artwork plans and downloads poster, fanart, logo, still and actor
// images into a media directory using Kodi/Emby file names.
package artwork

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

// Well-known file names relative to the media directory.
const (
	PosterFile    = "poster.jpg"
	FanartFile    = "fanart.jpg"
	BannerFile    = "banner.jpg"
	ClearLogoFile = "clearlogo.png"
	ClearArtFile  = "clearart.png"
	ActorsDir     = "actors"
	ExtrasDir     = "images"
)

// Plan limits
const (
	maxPosters   = 3
	maxBackdrops = 3
	maxLogos     = 2
	maxStills    = 5
)

// Item is one remote image and the media-relative paths it is saved to. The
// first target is downloaded; the rest are copies.
type Item struct {
	Source  string // catalog file path, e.g. "/abc.jpg"
	Targets []string
}

// Plan is the set of images to fetch for one title.
type Plan struct {
	Items []Item
}

// Targets lists every planned destination path.
func (p *Plan) Targets() []string {
	var out []string
	for _, it := range p.Items {
		out = append(out, it.Targets...)
	}
	return out
}

// Build plans artwork for a record. Extras (numbered posters, backdrops,
// logos and first-season stills) are only planned when extras is set.
func Build(rec *normalize.Record, images *tmdb.Images, extras bool) *Plan {
	p := &Plan{}
	if images != nil {
		p.addSet(images.Posters, maxPosters, extras, func(i int) []string {
			if i == 0 {
				return []string{PosterFile}
			}
			return nil
		}, "poster%d.jpg")

		p.addSet(images.Backdrops, maxBackdrops, extras, func(i int) []string {
			if i != 0 {
				return nil
			}
			if rec.MediaType == tmdb.MediaTV {
				return []string{FanartFile, BannerFile}
			}
			return []string{FanartFile}
		}, "fanart%d.jpg")

		p.addSet(images.Logos, maxLogos, extras, func(i int) []string {
			if i == 0 {
				return []string{ClearLogoFile, ClearArtFile}
			}
			return nil
		}, "logo%d.png")
	}

	if extras && rec.MediaType == tmdb.MediaTV {
		n := 0
		for _, ep := range rec.Episodes {
			if ep.Season != 1 || ep.StillPath == "" {
				continue
			}
			p.Items = append(p.Items, Item{
				Source:  ep.StillPath,
				Targets: []string{path.Join(ExtrasDir, "stills", fmt.Sprintf("S01E%02d.jpg", ep.Number))},
			})
			if n++; n == maxStills {
				break
			}
		}
	}

	for _, c := range rec.Cast {
		if c.ProfilePath == "" {
			continue
		}
		p.Items = append(p.Items, Item{
			Source:  c.ProfilePath,
			Targets: []string{ActorPath(c.Name)},
		})
	}
	return p
}

func (p *Plan) addSet(images []tmdb.Image, limit int, extras bool, primary func(int) []string, extraName string) {
	if len(images) > limit {
		images = images[:limit]
	}
	for i, img := range images {
		if img.FilePath == "" {
			continue
		}
		targets := primary(i)
		if extras {
			targets = append(targets, path.Join(ExtrasDir, fmt.Sprintf(extraName, i+1)))
		}
		if len(targets) == 0 {
			continue
		}
		p.Items = append(p.Items, Item{Source: img.FilePath, Targets: targets})
	}
}

// ActorFileName returns the portrait file name for an actor: letters,
// digits, spaces, '_' and '-' kept, spaces turned into underscores.
func ActorFileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return -1
	}, name)
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
	if clean == "" {
		clean = "unknown"
	}
	return clean + ".jpg"
}

// ActorPath returns the media-relative portrait path for an actor.
func ActorPath(name string) string {
	return path.Join(ActorsDir, ActorFileName(name))
}
