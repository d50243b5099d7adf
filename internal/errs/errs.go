// Package errs defines the error classes shared across the pipeline.
//
// Every failure surfaced by the ingestion or query pipeline wraps exactly
// one of these sentinels, so callers can classify with errors.Is without
// depending on the package that produced the error.
package errs

import "errors"

var (
	// ErrConfiguration marks bad or missing input: an empty question, an
	// empty index, invalid chunk/overlap sizing, missing credentials.
	// Fatal to the current operation and always surfaced to the caller.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider marks a failed remote embedding or model call (auth,
	// network, malformed response). Fatal to the current query turn.
	ErrProvider = errors.New("provider error")

	// ErrRateLimited marks a provider rate limit (HTTP 429) that survived
	// retry with backoff. Callers may retry the whole turn later.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout marks a remote call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)
