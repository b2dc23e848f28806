// Package pipeline runs the metadata stages for one title: resolve, fetch,
// normalize, translate, enrich, artwork, NFO rendering and output.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/importer"
	"github.com/vmunix/arrnfo/internal/omdb"
	"github.com/vmunix/arrnfo/internal/resolver"
	"github.com/vmunix/arrnfo/internal/tmdb"
)

// Catalog is the primary catalog as the pipeline uses it.
type Catalog interface {
	resolver.Catalog
	Language() string
	MovieDetails(ctx context.Context, id int64) (*tmdb.Movie, error)
	TVDetails(ctx context.Context, id int64) (*tmdb.TVShow, error)
	SeasonDetails(ctx context.Context, tvID int64, season int) (*tmdb.Season, error)
	EpisodeDetails(ctx context.Context, tvID int64, season, episode int) (*tmdb.Episode, error)
	Credits(ctx context.Context, mt tmdb.MediaType, id int64) (*tmdb.Credits, error)
	Keywords(ctx context.Context, mt tmdb.MediaType, id int64) *tmdb.Keywords
	Images(ctx context.Context, mt tmdb.MediaType, id int64) (*tmdb.Images, error)
	EpisodeImages(ctx context.Context, tvID int64, season, episode int) (*tmdb.Images, error)
}

// Secondary is the secondary catalog.
type Secondary interface {
	ByIMDBID(ctx context.Context, imdbID string) (*omdb.Title, error)
}

// Translator translates free text. Failures return the input unchanged.
type Translator interface {
	Text(ctx context.Context, text string) string
	Keywords(ctx context.Context, keywords []string) []string
}

// TagTranslator translates keyword tags, one output per input.
type TagTranslator interface {
	Tags(ctx context.Context, tags []string) []string
}

// ImageFetcher downloads catalog images.
type ImageFetcher interface {
	Download(ctx context.Context, plan *artwork.Plan, mediaDir string) (*artwork.Result, error)
	Fetch(ctx context.Context, source, dest string) error
}

// Pipeline runs the stage sequence for one title.
type Pipeline struct {
	catalog    Catalog
	web        resolver.WebSearcher
	resolver   *resolver.Resolver
	secondary  Secondary
	translator Translator
	tags       TagTranslator
	images     ImageFetcher
	renamer    *importer.Renamer
	log        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWebSearch enables the web-search fallback of candidate selection.
func WithWebSearch(w resolver.WebSearcher) Option {
	return func(p *Pipeline) {
		p.web = w
	}
}

// WithSecondary sets the secondary catalog used by enrichment.
func WithSecondary(s Secondary) Option {
	return func(p *Pipeline) {
		p.secondary = s
	}
}

// WithTranslator sets the text translator.
func WithTranslator(t Translator) Option {
	return func(p *Pipeline) {
		p.translator = t
	}
}

// WithTagTranslator sets the keyword tag translator.
func WithTagTranslator(t TagTranslator) Option {
	return func(p *Pipeline) {
		p.tags = t
	}
}

// WithImages sets the image downloader. Without one, no images are fetched.
func WithImages(f ImageFetcher) Option {
	return func(p *Pipeline) {
		p.images = f
	}
}

// WithRenamer sets the episode naming templates.
func WithRenamer(r *importer.Renamer) Option {
	return func(p *Pipeline) {
		p.renamer = r
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New creates a pipeline over a primary catalog.
func New(catalog Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog: catalog,
		renamer: importer.NewRenamer(""),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = resolver.New(catalog, p.web, p.log)
	p.log = p.log.With("component", "pipeline")
	return p
}

type stage struct {
	name string
	run  func(ctx context.Context, s State) (StageResult, error)
}

func (p *Pipeline) stages(in Input) []stage {
	st := []stage{
		{"parse_input", func(context.Context, State) (StageResult, error) { return p.parseInput(in), nil }},
		{"search", p.search},
		{"select_candidate", p.selectCandidate},
		{"fetch", p.fetch},
		{"normalize", p.normalize},
		{"translate", p.translate},
		{"omdb_enrich", p.enrich},
	}
	if !in.SkipImages {
		st = append(st,
			stage{"plan_artwork", p.planArtwork},
			stage{"download_images", p.downloadImages},
		)
	}
	return append(st,
		stage{"map_to_nfo", p.mapToNFO},
		stage{"validate", p.validate},
		stage{"render", p.render},
		stage{"write", p.write},
		stage{"report", p.report},
	)
}

// Run executes every stage in order. The first failing stage aborts the run;
// the returned state holds everything produced up to that point.
func (p *Pipeline) Run(ctx context.Context, in Input) (State, error) {
	start := time.Now()
	var state State
	p.log.Info("pipeline started", "query", in.Query, "tmdb_id", in.TMDBID, "imdb_id", in.IMDBID)

	for _, st := range p.stages(in) {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		stageStart := time.Now()
		res, err := st.run(ctx, state)
		if err != nil {
			p.log.Error("stage failed",
				"stage", st.name,
				"error", err,
				"duration_ms", time.Since(stageStart).Milliseconds())
			return state, fmt.Errorf("%s: %w", st.name, err)
		}
		state = Apply(state, res)
		p.log.Debug("stage complete", "stage", st.name, "duration_ms", time.Since(stageStart).Milliseconds())
	}

	p.log.Info("pipeline complete",
		"title", state.Record.DisplayTitle(),
		"tmdb_id", state.Record.TMDBID,
		"media_dir", state.Output.MediaDir,
		"duration_ms", time.Since(start).Milliseconds())
	return state, nil
}
