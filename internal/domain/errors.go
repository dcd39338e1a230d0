package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidProduct is returned when a catalog record cannot be normalized
	ErrInvalidProduct = errors.New("invalid catalog product")

	// ErrCatalogUnavailable is returned when the catalog source cannot be read
	ErrCatalogUnavailable = errors.New("catalog source unavailable")

	// ErrRemoteCatalog is returned when a remote catalog feed request fails
	ErrRemoteCatalog = errors.New("remote catalog request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when a session key is not in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the session store cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
