package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/nfo"
	"github.com/vmunix/arrnfo/internal/normalize"
	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

func (p *Pipeline) parseInput(in Input) StageResult {
	in.Query = strings.TrimSpace(in.Query)
	in.IMDBID = strings.TrimSpace(in.IMDBID)
	if in.Language == "" {
		in.Language = p.catalog.Language()
	}
	return StageResult{Input: &in}
}

func (p *Pipeline) search(ctx context.Context, s State) (StageResult, error) {
	out := p.resolver.Search(ctx, s.Input.request())
	return StageResult{Search: &out}, nil
}

func (p *Pipeline) selectCandidate(ctx context.Context, s State) (StageResult, error) {
	c, err := p.resolver.Select(ctx, s.Input.request(), *s.Search)
	if err != nil {
		return StageResult{}, err
	}
	return StageResult{Candidate: &c}, nil
}

// fetch pulls details, credits and keywords, plus every regular season and
// episode for shows. Season and episode failures are recorded and skipped.
func (p *Pipeline) fetch(ctx context.Context, s State) (StageResult, error) {
	c := s.Candidate
	src := &Source{}

	if c.MediaType == tmdb.MediaMovie {
		m, err := p.catalog.MovieDetails(ctx, c.ID)
		if err != nil {
			return StageResult{}, fmt.Errorf("%w: movie %d: %w", ErrFetchFailed, c.ID, err)
		}
		src.Movie = m
	} else {
		show, err := p.catalog.TVDetails(ctx, c.ID)
		if err != nil {
			return StageResult{}, fmt.Errorf("%w: tv %d: %w", ErrFetchFailed, c.ID, err)
		}
		src.Show = show
	}

	credits, err := p.catalog.Credits(ctx, c.MediaType, c.ID)
	if err != nil {
		p.log.Warn("credits unavailable", "tmdb_id", c.ID, "error", err)
	}
	src.Credits = credits
	src.Keywords = p.catalog.Keywords(ctx, c.MediaType, c.ID)

	if src.Show != nil {
		if err := p.fetchEpisodes(ctx, c.ID, src); err != nil {
			return StageResult{}, err
		}
		p.log.Info("episodes fetched", "tmdb_id", c.ID, "fetched", src.Fetched, "failed", src.Failed)
	}
	return StageResult{Source: src}, nil
}

func (p *Pipeline) fetchEpisodes(ctx context.Context, id int64, src *Source) error {
	for _, summary := range src.Show.Seasons {
		n := summary.SeasonNumber
		if n <= 0 {
			continue
		}
		season, err := p.catalog.SeasonDetails(ctx, id, n)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.log.Warn("season unavailable", "tmdb_id", id, "season", n, "error", err)
			src.Episodes = append(src.Episodes, EpisodeFetch{Key: release.EpisodeKey{Season: n}, Err: err})
			src.Failed++
			continue
		}
		src.Seasons = append(src.Seasons, *season)

		for _, entry := range season.Episodes {
			key := release.EpisodeKey{Season: n, Episode: entry.EpisodeNumber}
			ep, err := p.catalog.EpisodeDetails(ctx, id, n, entry.EpisodeNumber)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.log.Debug("episode unavailable", "tmdb_id", id, "episode", key.String(), "error", err)
				src.Episodes = append(src.Episodes, EpisodeFetch{Key: key, Err: err})
				src.Failed++
				continue
			}
			src.Episodes = append(src.Episodes, EpisodeFetch{Key: key, Episode: ep})
			src.Fetched++
		}
	}
	return nil
}

func (p *Pipeline) normalize(_ context.Context, s State) (StageResult, error) {
	var rec *normalize.Record
	switch {
	case s.Source.Movie != nil:
		rec = normalize.Movie(s.Source.Movie, s.Input.Language)
	case s.Source.Show != nil:
		rec = normalize.TV(s.Source.Show, s.Input.Language)
		normalize.Episodes(rec, s.Source.FetchedEpisodes())
	default:
		return StageResult{}, errors.New("no details fetched")
	}
	if rec.TMDBID == 0 {
		return StageResult{}, errors.New("details carry no catalog id")
	}

	normalize.WithCredits(rec, s.Source.Credits)
	normalize.WithKeywords(rec, s.Source.Keywords, s.Input.Translate)
	return StageResult{Record: rec}, nil
}

// needsTranslation reports whether the target language differs from the
// catalog's English source text.
func needsTranslation(lang string) bool {
	base, _ := language.Make(lang).Base()
	return base.String() != "en"
}

// translate fills target-language fields that are still empty. Individual
// failures keep the source text.
func (p *Pipeline) translate(ctx context.Context, s State) (StageResult, error) {
	in := s.Input
	if !in.Translate || p.translator == nil || !needsTranslation(in.Language) {
		return StageResult{}, nil
	}

	rec := s.Record.Clone()
	if rec.LocalTitle == "" {
		rec.LocalTitle = p.translator.Text(ctx, rec.Title)
	}
	if rec.LocalPlot == "" {
		rec.LocalPlot = p.translator.Text(ctx, rec.Plot)
	}
	if rec.LocalTagline == "" {
		rec.LocalTagline = p.translator.Text(ctx, rec.Tagline)
	}
	if len(rec.LocalGenres) == 0 {
		for _, g := range rec.Genres {
			rec.LocalGenres = append(rec.LocalGenres, p.translator.Text(ctx, g))
		}
	}
	// Keyword tags go through the cached tag translator in enrich when enabled.
	tagsLater := in.TranslateTags && p.tags != nil
	if !tagsLater && len(rec.LocalKeywords) == 0 && len(rec.SourceKeywords) > 0 {
		if out := p.translator.Keywords(ctx, rec.SourceKeywords); localized(rec.SourceKeywords, out) {
			rec.LocalKeywords = out
			rec.Keywords = out
		}
	}
	for i := range rec.Cast {
		if rec.Cast[i].LocalName == "" {
			rec.Cast[i].LocalName = p.translator.Text(ctx, rec.Cast[i].Name)
		}
	}

	src := *s.Source
	src.TranslatedEpisodes = nil
	if rec.MediaType == tmdb.MediaTV {
		for _, ep := range rec.Episodes {
			if ep.LocalName == "" {
				ep.LocalName = p.translator.Text(ctx, ep.Name)
			}
			if ep.LocalOverview == "" {
				ep.LocalOverview = p.translator.Text(ctx, ep.Overview)
			}
			src.TranslatedEpisodes = append(src.TranslatedEpisodes, ep)
		}
	}
	p.log.Info("translated",
		"title", rec.LocalTitle,
		"keywords", len(rec.LocalKeywords),
		"episodes", len(src.TranslatedEpisodes))
	return StageResult{Record: rec, Source: &src}, nil
}

// enrich overlays the secondary catalog when the record has an IMDb ID and
// then translates keyword tags. Failures are logged and never abort.
func (p *Pipeline) enrich(ctx context.Context, s State) (StageResult, error) {
	rec := s.Record.Clone()
	src := *s.Source

	switch {
	case p.secondary == nil:
	case rec.IMDBID == "":
		p.log.Debug("secondary enrichment skipped, no imdb id", "tmdb_id", rec.TMDBID)
	default:
		t, err := p.secondary.ByIMDBID(ctx, rec.IMDBID)
		if err != nil {
			p.log.Warn("secondary enrichment failed", "imdb_id", rec.IMDBID, "error", err)
			break
		}
		src.Secondary = t
		normalize.WithSecondary(rec, t)
	}

	if s.Input.TranslateTags && p.tags != nil && len(rec.LocalKeywords) == 0 && len(rec.SourceKeywords) > 0 {
		out := p.tags.Tags(ctx, rec.SourceKeywords)
		changed := 0
		for i, tag := range out {
			if i < len(rec.SourceKeywords) && tag != rec.SourceKeywords[i] {
				changed++
			}
		}
		if changed > 0 {
			rec.LocalKeywords = out
			rec.Keywords = out
		}
		p.log.Info("tags translated", "translated", changed, "total", len(rec.SourceKeywords))
	}
	return StageResult{Record: rec, Source: &src}, nil
}

// localized reports whether a translation changed at least one entry of src.
// Translators hand back the source list when they fail.
func localized(src, out []string) bool {
	if len(out) != len(src) {
		return len(out) > 0
	}
	for i := range src {
		if out[i] != src[i] {
			return true
		}
	}
	return false
}

func (p *Pipeline) planArtwork(ctx context.Context, s State) (StageResult, error) {
	rec := s.Record
	images, err := p.catalog.Images(ctx, rec.MediaType, rec.TMDBID)
	if err != nil {
		p.log.Warn("images unavailable", "tmdb_id", rec.TMDBID, "error", err)
	}
	plan := artwork.Build(rec, images, s.Input.ExtraImages)
	return StageResult{Artwork: &Artwork{Images: images, Plan: plan}}, nil
}

func (p *Pipeline) downloadImages(ctx context.Context, s State) (StageResult, error) {
	if p.images == nil {
		return StageResult{}, nil
	}
	res, err := p.images.Download(ctx, s.Artwork.Plan, p.mediaDir(s))
	if err != nil {
		return StageResult{}, err
	}
	art := *s.Artwork
	art.Result = res
	return StageResult{Artwork: &art}, nil
}

func (p *Pipeline) mapToNFO(_ context.Context, s State) (StageResult, error) {
	return StageResult{Descriptor: &Descriptor{NFO: nfo.Map(s.Record)}}, nil
}

func (p *Pipeline) validate(_ context.Context, s State) (StageResult, error) {
	title, year := s.Descriptor.NFO.Identity()
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if year <= 0 {
		missing = append(missing, "year")
	}
	if len(missing) > 0 {
		return StageResult{}, &ValidationError{Missing: missing}
	}
	d := *s.Descriptor
	d.Validated = true
	return StageResult{Descriptor: &d}, nil
}

func (p *Pipeline) render(_ context.Context, s State) (StageResult, error) {
	data, err := nfo.Render(s.Descriptor.NFO)
	if err != nil {
		return StageResult{}, fmt.Errorf("render nfo: %w", err)
	}
	d := *s.Descriptor
	d.XML = data
	return StageResult{Descriptor: &d}, nil
}

func (p *Pipeline) report(_ context.Context, s State) (StageResult, error) {
	out := *s.Output
	out.Status = StatusCompleted
	p.log.Info("output written",
		"media_dir", out.MediaDir,
		"nfo", out.NFOPath,
		"files", len(out.Files),
		"episode_nfos", out.EpisodeNFOs)
	return StageResult{Output: &out}, nil
}
