package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors mapped to HTTP statuses by the controllers
var (
	// ErrMissingCredential is returned when no API key is presented
	ErrMissingCredential = goerr.New("API key required")

	// ErrInvalidCredential is returned when the presented key matches no
	// configured role secret
	ErrInvalidCredential = goerr.New("invalid API key")

	// ErrRateLimitExceeded is returned when a caller's hourly quota is
	// exhausted
	ErrRateLimitExceeded = goerr.New("rate limit exceeded")

	// ErrInsufficientPermission is returned when the resolved role lacks a
	// required permission
	ErrInsufficientPermission = goerr.New("insufficient permission")

	// ErrNoValidSources is returned when the requested source selection
	// resolves to nothing
	ErrNoValidSources = goerr.New("no valid sources specified")
)
