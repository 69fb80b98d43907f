package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrInvalidDelay is returned when the inter-cycle delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidLimit is returned when the per-cycle row limit is not positive.
	ErrInvalidLimit = errors.New("invalid limit: must be positive")

	// ErrNoOutputDir is returned when no output root directory is configured.
	ErrNoOutputDir = errors.New("no output directory configured")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingTransport is returned when both an external proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingTransport = errors.New("conflicting transports: --proxy and --tor cannot be used together")

	// ErrNoDBDir is returned when archiving is enabled without a directory.
	ErrNoDBDir = errors.New("archive enabled but no database directory configured")
)
