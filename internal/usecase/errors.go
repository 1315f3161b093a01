package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrRemoteFetch marks network, HTTP and decode failures of outbound provider calls.
	ErrRemoteFetch = errors.New("remote fetch failed")
	// ErrUnsupportedLeague is returned for league slugs without a provider id mapping.
	ErrUnsupportedLeague = errors.New("unsupported league")
	// ErrPersistence wraps match store and sink write failures.
	ErrPersistence = errors.New("persistence failed")
)
