package tmdb

import "errors"

// Sentinel errors for TMDB API responses.
var (
	ErrNotFound      = errors.New("not found on TMDB")
	ErrUnauthorized  = errors.New("unauthorized: invalid TMDB API key")
	ErrRateLimited   = errors.New("rate limited: too many requests")
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
)
