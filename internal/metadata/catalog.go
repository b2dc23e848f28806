package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/vmunix/arrnfo/internal/tmdb"
)

// CatalogTTL is how long catalog responses stay cached.
const CatalogTTL = 24 * time.Hour

// Cache key prefixes
const (
	keyPrefixSearch   = "tmdb:search"
	keyPrefixFind     = "tmdb:find"
	keyPrefixDetails  = "tmdb:details"
	keyPrefixSeason   = "tmdb:season"
	keyPrefixEpisode  = "tmdb:episode"
	keyPrefixCredits  = "tmdb:credits"
	keyPrefixKeywords = "tmdb:keywords"
	keyPrefixImages   = "tmdb:images"
)

// CatalogService provides cached access to TMDB. Its method set mirrors
// *tmdb.Client so either can back the resolver and pipeline.
type CatalogService struct {
	client *tmdb.Client
	cache  *Cache
	log    *slog.Logger
}

// NewCatalogService creates a cached TMDB service.
func NewCatalogService(client *tmdb.Client, cache *Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  cache,
		log:    log.With("component", "catalog-cache"),
	}
}

// Language returns the client's preferred language.
func (s *CatalogService) Language() string {
	return s.client.Language()
}

// SearchTV searches shows by name (cached; empty results are not cached).
func (s *CatalogService) SearchTV(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	key := HashKey(keyPrefixSearch, string(tmdb.MediaTV), s.Language(), query)
	return cached(ctx, s, key, nonEmpty, func() ([]tmdb.SearchResult, error) {
		return s.client.SearchTV(ctx, query)
	})
}

// SearchMovie searches movies by title (cached; empty results are not cached).
func (s *CatalogService) SearchMovie(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	key := HashKey(keyPrefixSearch, string(tmdb.MediaMovie), s.Language(), query)
	return cached(ctx, s, key, nonEmpty, func() ([]tmdb.SearchResult, error) {
		return s.client.SearchMovie(ctx, query)
	})
}

// FindByIMDBID resolves an IMDb ID (cached).
func (s *CatalogService) FindByIMDBID(ctx context.Context, imdbID string) (*tmdb.FindResult, error) {
	key := HashKey(keyPrefixFind, s.Language(), imdbID)
	return cached(ctx, s, key, nil, func() (*tmdb.FindResult, error) {
		return s.client.FindByIMDBID(ctx, imdbID)
	})
}

// MovieDetails fetches movie details (cached).
func (s *CatalogService) MovieDetails(ctx context.Context, id int64) (*tmdb.Movie, error) {
	key := HashKey(keyPrefixDetails, string(tmdb.MediaMovie), s.Language(), itoa(id))
	return cached(ctx, s, key, nil, func() (*tmdb.Movie, error) {
		return s.client.MovieDetails(ctx, id)
	})
}

// TVDetails fetches show details (cached).
func (s *CatalogService) TVDetails(ctx context.Context, id int64) (*tmdb.TVShow, error) {
	key := HashKey(keyPrefixDetails, string(tmdb.MediaTV), s.Language(), itoa(id))
	return cached(ctx, s, key, nil, func() (*tmdb.TVShow, error) {
		return s.client.TVDetails(ctx, id)
	})
}

// SeasonDetails fetches a season (cached).
func (s *CatalogService) SeasonDetails(ctx context.Context, tvID int64, season int) (*tmdb.Season, error) {
	key := HashKey(keyPrefixSeason, s.Language(), itoa(tvID), strconv.Itoa(season))
	return cached(ctx, s, key, nil, func() (*tmdb.Season, error) {
		return s.client.SeasonDetails(ctx, tvID, season)
	})
}

// EpisodeDetails fetches an episode (cached).
func (s *CatalogService) EpisodeDetails(ctx context.Context, tvID int64, season, episode int) (*tmdb.Episode, error) {
	key := HashKey(keyPrefixEpisode, s.Language(), itoa(tvID), strconv.Itoa(season), strconv.Itoa(episode))
	return cached(ctx, s, key, nil, func() (*tmdb.Episode, error) {
		return s.client.EpisodeDetails(ctx, tvID, season, episode)
	})
}

// Credits fetches cast and crew (cached).
func (s *CatalogService) Credits(ctx context.Context, mt tmdb.MediaType, id int64) (*tmdb.Credits, error) {
	key := HashKey(keyPrefixCredits, string(mt), s.Language(), itoa(id))
	return cached(ctx, s, key, nil, func() (*tmdb.Credits, error) {
		return s.client.Credits(ctx, mt, id)
	})
}

// Keywords fetches keywords (cached when non-empty).
func (s *CatalogService) Keywords(ctx context.Context, mt tmdb.MediaType, id int64) *tmdb.Keywords {
	key := HashKey(keyPrefixKeywords, string(mt), itoa(id))
	kw, _ := cached(ctx, s, key, func(k *tmdb.Keywords) bool {
		return len(k.Keywords) > 0 || len(k.Results) > 0
	}, func() (*tmdb.Keywords, error) {
		return s.client.Keywords(ctx, mt, id), nil
	})
	return kw
}

// Images fetches title artwork (cached).
func (s *CatalogService) Images(ctx context.Context, mt tmdb.MediaType, id int64) (*tmdb.Images, error) {
	key := HashKey(keyPrefixImages, string(mt), s.Language(), itoa(id))
	return cached(ctx, s, key, nil, func() (*tmdb.Images, error) {
		return s.client.Images(ctx, mt, id)
	})
}

// EpisodeImages fetches episode stills (cached).
func (s *CatalogService) EpisodeImages(ctx context.Context, tvID int64, season, episode int) (*tmdb.Images, error) {
	key := HashKey(keyPrefixImages, "episode", itoa(tvID), strconv.Itoa(season), strconv.Itoa(episode))
	return cached(ctx, s, key, nil, func() (*tmdb.Images, error) {
		return s.client.EpisodeImages(ctx, tvID, season, episode)
	})
}

func nonEmpty(results []tmdb.SearchResult) bool {
	return len(results) > 0
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// cached returns the decoded cache entry for key, or calls fetch and stores
// its result when keep (if set) approves it. Cache failures never fail the
// lookup.
func cached[T any](ctx context.Context, s *CatalogService, key string, keep func(T) bool, fetch func() (T, error)) (T, error) {
	if data, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			s.log.Debug("cache hit", "key", key)
			return v, nil
		}
		// If unmarshal fails, treat as cache miss and fetch fresh data
		s.log.Warn("failed to unmarshal cached value", "key", key)
	}

	s.log.Debug("cache miss, calling API", "key", key)
	v, err := fetch()
	if err != nil {
		return v, fmt.Errorf("catalog lookup: %w", err)
	}
	if keep != nil && !keep(v) {
		return v, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to marshal value for cache", "key", key, "error", err)
		return v, nil
	}
	if err := s.cache.Set(ctx, key, data, CatalogTTL); err != nil {
		s.log.Warn("failed to cache value", "key", key, "error", err)
	}
	return v, nil
}
