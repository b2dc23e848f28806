package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/importer"
	"github.com/vmunix/arrnfo/internal/nfo"
	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

// Library subdirectories of the output directory.
const (
	TVDir     = "TV"
	MoviesDir = "Movies"
)

// TVShowNFO is the show descriptor file name.
const TVShowNFO = "tvshow.nfo"

// MediaDir returns the directory a title is written to: the in-place root,
// or "{output}/TV|Movies/{Title} ({Year})".
func MediaDir(in *Input, rec *normalize.Record) string {
	if in.InPlaceDir != "" {
		return in.InPlaceDir
	}
	lib := TVDir
	if rec.MediaType == tmdb.MediaMovie {
		lib = MoviesDir
	}
	return filepath.Join(in.OutputDir, lib, importer.MediaDirName(rec.DisplayTitle(), rec.Year))
}

func (p *Pipeline) mediaDir(s State) string {
	return MediaDir(s.Input, s.Record)
}

// write creates the media directory with the title NFO and, for shows, the
// season directories with one NFO and thumb/fanart per episode.
func (p *Pipeline) write(ctx context.Context, s State) (StageResult, error) {
	rec := s.Record
	out := &Output{MediaDir: p.mediaDir(s)}
	if err := os.MkdirAll(out.MediaDir, 0755); err != nil {
		return StageResult{}, fmt.Errorf("create media directory: %w", err)
	}

	name := TVShowNFO
	if rec.MediaType == tmdb.MediaMovie {
		name = importer.MediaDirName(rec.DisplayTitle(), rec.Year) + ".nfo"
	}
	out.NFOPath = filepath.Join(out.MediaDir, name)
	if err := writeFile(out.NFOPath, s.Descriptor.XML); err != nil {
		return StageResult{}, err
	}
	out.Files = append(out.Files, out.NFOPath)

	if rec.MediaType == tmdb.MediaTV {
		if err := p.writeEpisodes(ctx, s, out); err != nil {
			return StageResult{}, err
		}
	}
	return StageResult{Output: out}, nil
}

func (p *Pipeline) writeEpisodes(ctx context.Context, s State, out *Output) error {
	rec := s.Record
	episodes := s.EpisodeMap()
	show := rec.DisplayTitle()

	bySeason := make(map[int][]normalize.Episode)
	for _, ep := range episodes {
		bySeason[ep.Season] = append(bySeason[ep.Season], ep)
	}

	for _, season := range rec.Seasons {
		n := season.SeasonNumber
		if n <= 0 {
			continue
		}
		eps := bySeason[n]
		if len(eps) == 0 {
			continue
		}
		slices.SortFunc(eps, func(a, b normalize.Episode) int { return a.Number - b.Number })

		seasonDir := filepath.Join(out.MediaDir, p.renamer.SeasonDir(n))
		if err := os.MkdirAll(seasonDir, 0755); err != nil {
			return fmt.Errorf("create season directory: %w", err)
		}

		for _, ep := range eps {
			if err := ctx.Err(); err != nil {
				return err
			}
			base := p.renamer.EpisodeBase(show, ep.Key(), ep.DisplayName())
			data, err := nfo.Render(nfo.MapEpisode(rec, ep, base))
			if err != nil {
				return fmt.Errorf("render episode %s: %w", ep.Key(), err)
			}
			path := filepath.Join(seasonDir, base+".nfo")
			if err := writeFile(path, data); err != nil {
				return err
			}
			out.Files = append(out.Files, path)
			out.EpisodeNFOs++

			if !s.Input.SkipImages {
				out.Files = append(out.Files, p.episodeImages(ctx, rec, ep, out.MediaDir, seasonDir, base)...)
			}
		}
	}
	return nil
}

// episodeImages writes "{base}-thumb.jpg" from the first episode still and
// copies it to "{base}-fanart.jpg". Missing images fall back to the show
// poster and fanart. Failures are logged only.
func (p *Pipeline) episodeImages(ctx context.Context, rec *normalize.Record, ep normalize.Episode, mediaDir, seasonDir, base string) []string {
	thumb := filepath.Join(seasonDir, base+"-thumb.jpg")
	fanart := filepath.Join(seasonDir, base+"-fanart.jpg")
	removeStale(thumb, fanart)

	var written []string
	haveThumb, haveFanart := false, false

	if p.images != nil {
		if still := p.stillPath(ctx, rec.TMDBID, ep); still != "" {
			if err := p.images.Fetch(ctx, still, thumb); err != nil {
				p.log.Warn("episode still download failed", "episode", ep.Key().String(), "error", err)
			} else {
				haveThumb = true
				written = append(written, thumb)
				if _, err := importer.CopyFile(thumb, fanart); err == nil {
					haveFanart = true
					written = append(written, fanart)
				}
			}
		}
	}

	if !haveThumb && copyIfExists(filepath.Join(mediaDir, artwork.PosterFile), thumb) {
		written = append(written, thumb)
	}
	if !haveFanart && copyIfExists(filepath.Join(mediaDir, artwork.FanartFile), fanart) {
		written = append(written, fanart)
	}
	return written
}

// stillPath asks the catalog for episode stills and falls back to the still
// on the episode record.
func (p *Pipeline) stillPath(ctx context.Context, tvID int64, ep normalize.Episode) string {
	images, err := p.catalog.EpisodeImages(ctx, tvID, ep.Season, ep.Number)
	if err != nil {
		p.log.Debug("episode images unavailable", "episode", ep.Key().String(), "error", err)
	} else if images != nil {
		for _, img := range images.Stills {
			if img.FilePath != "" {
				return img.FilePath
			}
		}
	}
	return ep.StillPath
}

func removeStale(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

func copyIfExists(src, dst string) bool {
	if _, err := os.Stat(src); err != nil {
		return false
	}
	_, err := importer.CopyFile(src, dst)
	return err == nil
}

// writeFile replaces path with data via a temporary sibling.
func writeFile(path string, data []byte) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
