// Package resolver turns a show name or external identifier into a single
// catalog candidate.
package resolver

//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/arrnfo/internal/tmdb"
	"github.com/vmunix/arrnfo/pkg/release"
)

// Catalog is the subset of the primary catalog the resolver needs.
type Catalog interface {
	SearchTV(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	SearchMovie(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	FindByIMDBID(ctx context.Context, imdbID string) (*tmdb.FindResult, error)
}

// WebSearcher finds catalog IDs through a general web search.
type WebSearcher interface {
	SearchCatalogID(ctx context.Context, query string, mt tmdb.MediaType) (int64, bool)
}

// Source records which strategy produced a candidate.
type Source string

const (
	SourceDirect    Source = "direct"
	SourceIMDB      Source = "imdb"
	SourceSearch    Source = "search"
	SourceWebSearch Source = "websearch"
)

// Request describes what to resolve. MediaType is only binding when Forced.
type Request struct {
	Query          string
	MediaType      tmdb.MediaType
	Forced         bool
	TMDBID         int64
	IMDBID         string
	AllowWebSearch bool
}

func (r Request) hasDirectID() bool {
	return r.TMDBID != 0 || r.IMDBID != ""
}

// mediaTypeOrTV returns the requested type, defaulting to TV.
func (r Request) mediaTypeOrTV() tmdb.MediaType {
	if r.MediaType == "" {
		return tmdb.MediaTV
	}
	return r.MediaType
}

// Candidate is the resolved catalog entry.
type Candidate struct {
	ID        int64
	MediaType tmdb.MediaType
	Name      string
	Source    Source
	// Confidence grades the query against Name. Diagnostic only.
	Confidence release.MatchConfidence
}

// SearchOutcome is the result of the search sub-step.
type SearchOutcome struct {
	Results []tmdb.SearchResult
	// MediaType is the type of the search that produced Results.
	MediaType tmdb.MediaType
	// Skipped is set when a direct ID made searching unnecessary.
	Skipped bool
}

// Resolver runs the resolution cascade.
type Resolver struct {
	catalog Catalog
	web     WebSearcher
	log     *slog.Logger
}

// New creates a resolver. web may be nil to disable the web-search fallback.
func New(catalog Catalog, web WebSearcher, log *slog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		web:     web,
		log:     log.With("component", "resolver"),
	}
}

// Resolve runs Search then Select.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Candidate, error) {
	return r.Select(ctx, req, r.Search(ctx, req))
}

// Search queries the catalog by name. Without a forced type it searches TV
// first and falls back to movies only when TV returns nothing. Provider
// errors are logged and treated as empty results.
func (r *Resolver) Search(ctx context.Context, req Request) SearchOutcome {
	if strings.TrimSpace(req.Query) == "" {
		if req.hasDirectID() {
			r.log.Debug("search skipped, direct id supplied", "tmdb_id", req.TMDBID, "imdb_id", req.IMDBID)
			return SearchOutcome{Skipped: true}
		}
		r.log.Debug("search skipped, empty query")
		return SearchOutcome{}
	}

	start := time.Now()
	var out SearchOutcome
	if req.Forced {
		mt := req.mediaTypeOrTV()
		out = SearchOutcome{Results: r.search(ctx, mt, req.Query), MediaType: mt}
	} else {
		out = SearchOutcome{Results: r.search(ctx, tmdb.MediaTV, req.Query), MediaType: tmdb.MediaTV}
		if len(out.Results) == 0 {
			out = SearchOutcome{Results: r.search(ctx, tmdb.MediaMovie, req.Query), MediaType: tmdb.MediaMovie}
		}
	}
	if len(out.Results) == 0 {
		out.MediaType = ""
	}

	r.log.Info("search complete",
		"query", req.Query,
		"media_type", out.MediaType,
		"results", len(out.Results),
		"duration_ms", time.Since(start).Milliseconds())
	return out
}

func (r *Resolver) search(ctx context.Context, mt tmdb.MediaType, query string) []tmdb.SearchResult {
	var (
		results []tmdb.SearchResult
		err     error
	)
	if mt == tmdb.MediaMovie {
		results, err = r.catalog.SearchMovie(ctx, query)
	} else {
		results, err = r.catalog.SearchTV(ctx, query)
	}
	if err != nil {
		r.log.Warn("catalog search failed", "query", query, "media_type", mt, "error", err)
		return nil
	}
	return results
}

// Select picks the final candidate: direct ID, IMDb cross-reference, search
// results (exact ID match when an ID was also given), then the optional web
// search fallback.
func (r *Resolver) Select(ctx context.Context, req Request, out SearchOutcome) (Candidate, error) {
	if out.Skipped {
		return r.selectDirect(ctx, req)
	}

	if c, ok := r.selectFromResults(req, out); ok {
		return c, nil
	}

	if req.AllowWebSearch && strings.TrimSpace(req.Query) != "" && r.web != nil {
		// An unforced lookup that missed both catalogs is assumed to be a movie.
		mt := req.MediaType
		if mt == "" {
			mt = tmdb.MediaMovie
		}
		if id, ok := r.web.SearchCatalogID(ctx, req.Query, mt); ok {
			r.log.Info("candidate found by web search", "query", req.Query, "tmdb_id", id)
			return Candidate{ID: id, MediaType: mt, Source: SourceWebSearch}, nil
		}
		r.log.Info("web search found nothing", "query", req.Query)
	}

	return Candidate{}, fmt.Errorf("%w: %q", ErrNoCandidateFound, req.Query)
}

func (r *Resolver) selectDirect(ctx context.Context, req Request) (Candidate, error) {
	mt := req.mediaTypeOrTV()
	if req.TMDBID != 0 {
		return Candidate{ID: req.TMDBID, MediaType: mt, Source: SourceDirect}, nil
	}
	if req.IMDBID == "" {
		return Candidate{}, fmt.Errorf("%w: no query or id supplied", ErrNoCandidateFound)
	}

	found, err := r.catalog.FindByIMDBID(ctx, req.IMDBID)
	if err != nil {
		return Candidate{}, fmt.Errorf("resolve %s: %w", req.IMDBID, err)
	}
	results := found.For(mt)
	if len(results) == 0 {
		return Candidate{}, fmt.Errorf("%w: imdb id %s has no %s entry", ErrNoCandidateFound, req.IMDBID, mt)
	}
	return Candidate{
		ID:        results[0].ID,
		MediaType: mt,
		Name:      results[0].DisplayName(),
		Source:    SourceIMDB,
	}, nil
}

func (r *Resolver) selectFromResults(req Request, out SearchOutcome) (Candidate, bool) {
	if len(out.Results) == 0 {
		return Candidate{}, false
	}

	pick := -1
	if req.TMDBID != 0 {
		for i, res := range out.Results {
			if res.ID == req.TMDBID {
				pick = i
				break
			}
		}
	} else {
		pick = 0
	}
	if pick < 0 {
		return Candidate{}, false
	}

	res := out.Results[pick]
	match := release.MatchTitle(req.Query, res.DisplayName(), res.OriginalName, res.OriginalTitle)
	c := Candidate{
		ID:         res.ID,
		MediaType:  out.MediaType,
		Name:       res.DisplayName(),
		Source:     SourceSearch,
		Confidence: match.Confidence,
	}
	r.log.Info("candidate selected",
		"query", req.Query,
		"tmdb_id", c.ID,
		"name", c.Name,
		"media_type", c.MediaType,
		"confidence", c.Confidence.String(),
		"score", match.Score)
	return c, true
}
