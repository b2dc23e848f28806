package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/text/language"

	"github.com/vmunix/arrnfo/internal/ai"
	"github.com/vmunix/arrnfo/internal/artwork"
	"github.com/vmunix/arrnfo/internal/batch"
	"github.com/vmunix/arrnfo/internal/config"
	"github.com/vmunix/arrnfo/internal/importer"
	"github.com/vmunix/arrnfo/internal/logging"
	"github.com/vmunix/arrnfo/internal/metadata"
	"github.com/vmunix/arrnfo/internal/omdb"
	"github.com/vmunix/arrnfo/internal/pipeline"
	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/internal/translate"
	"github.com/vmunix/arrnfo/internal/websearch"
)

// app holds the wired collaborators of one command invocation.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	cache    *metadata.Cache
	pipeline *pipeline.Pipeline
	batch    *batch.Driver

	closeLog func() error
}

// loadConfig reads the --config file, or the discovered one.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, fmt.Errorf("%w (run 'arrnfo config init' to create one)", err)
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("%w\nrun 'arrnfo config test %s' for details", err, path)
		}
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from config and the global flags.
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Verbose:    verbose,
		Quiet:      quiet,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

// newHTTPClient returns the client shared by every provider, honouring the
// configured proxy and timeout.
func newHTTPClient(h config.HTTPConfig) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if h.Proxy != "" {
		u, err := url.Parse(h.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		tr.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Transport: tr, Timeout: h.Timeout}, nil
}

// overrideLanguage replaces the configured metadata language.
func overrideLanguage(cfg *config.Config, lang string) error {
	if lang == "" {
		return nil
	}
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	cfg.TMDB.Language = lang
	return nil
}

// newApp opens the cache and wires the providers into a pipeline and a batch
// driver. The caller must Close it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log, closeLog: closeLog}

	hc, err := newHTTPClient(cfg.HTTP)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.cache, err = metadata.OpenCache(ctx, cfg.Cache.Path)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	tmdbOpts := []tmdb.Option{
		tmdb.WithHTTPClient(hc),
		tmdb.WithLogger(log),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithRetry(cfg.HTTP.Retries, cfg.HTTP.RetryDelay),
	}
	if cfg.TMDB.BaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	catalog := metadata.NewCatalogService(tmdb.New(cfg.TMDB.APIKey, tmdbOpts...), a.cache, log)

	webOpts := []websearch.Option{
		websearch.WithHTTPClient(hc),
		websearch.WithLogger(log),
		websearch.WithRetry(cfg.HTTP.Retries, cfg.HTTP.RetryDelay),
	}
	if cfg.WebSearch.APIKey != "" {
		webOpts = append(webOpts, websearch.WithAPI(cfg.WebSearch.APIKey, cfg.WebSearch.EngineID))
	}

	opts := []pipeline.Option{
		pipeline.WithWebSearch(websearch.New(webOpts...)),
		pipeline.WithRenamer(importer.NewRenamer(cfg.Naming.Episode)),
		pipeline.WithLogger(log),
	}

	if cfg.OMDB.APIKey != "" {
		opts = append(opts, pipeline.WithSecondary(omdb.New(cfg.OMDB.APIKey,
			omdb.WithHTTPClient(hc),
			omdb.WithLogger(log),
			omdb.WithRetry(cfg.HTTP.Retries, cfg.HTTP.RetryDelay))))
	}

	if cfg.Translator.Enabled {
		provider := ai.NewOpenAIProvider(cfg.Translator.BaseURL, cfg.Translator.APIKey, cfg.Translator.Model,
			ai.WithHTTPClient(hc),
			ai.WithLogger(log))
		opts = append(opts,
			pipeline.WithTranslator(translate.New(provider, cfg.TMDB.Language, translate.WithLogger(log))),
			pipeline.WithTagTranslator(translate.NewTagTranslator(provider,
				metadata.NewTagCache(a.cache, log), cfg.TMDB.Language, translate.WithLogger(log))))
	}

	artOpts := []artwork.Option{
		artwork.WithHTTPClient(hc),
		artwork.WithLogger(log),
		artwork.WithRetry(cfg.HTTP.Retries, cfg.HTTP.RetryDelay),
	}
	if cfg.Images.BaseURL != "" {
		artOpts = append(artOpts, artwork.WithBaseURL(cfg.Images.BaseURL))
	}
	opts = append(opts, pipeline.WithImages(artwork.NewDownloader(artOpts...)))

	a.pipeline = pipeline.New(catalog, opts...)
	a.batch = batch.New(a.pipeline, importer.New(importer.NewRenamer(cfg.Naming.Episode), log), batch.WithLogger(log))
	return a, nil
}

// Close releases the cache and the log file.
func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}

// pipelineFlags are the per-run switches shared by scrape and batch.
type pipelineFlags struct {
	translate     bool
	translateTags bool
	aidSearch     bool
	skipImages    bool
	extraImages   bool
}

// baseInput merges the flags over the configured defaults.
func baseInput(cfg *config.Config, f pipelineFlags) (pipeline.Input, error) {
	if (f.translate || f.translateTags) && !cfg.Translator.Enabled {
		return pipeline.Input{}, errors.New("translation requested but [translator] is not enabled in config")
	}
	return pipeline.Input{
		Language:       cfg.TMDB.Language,
		Translate:      cfg.Translator.Enabled || f.translate,
		TranslateTags:  cfg.Translator.Tags || f.translateTags,
		AllowWebSearch: cfg.WebSearch.Enabled || f.aidSearch,
		SkipImages:     cfg.Images.Skip || f.skipImages,
		ExtraImages:    cfg.Images.Extra || f.extraImages,
	}, nil
}
