// Package hotel implements the client for the hotel PMS (OPERA Cloud style)
// REST API: OAuth token acquisition with caching, reservation and folio
// retrieval, and deposit/folio payment posting.
//
// This file centralizes the error values returned by the package so callers
// can distinguish authentication failures (which invalidate the cached token)
// from ordinary upstream failures.
package hotel

import (
	"errors"
	"fmt"
)

// ErrAuthentication indicates that the PMS rejected our credentials, either
// during the token exchange or on an API call (401). The cached token is
// cleared before this error is returned; the caller decides whether to retry.
var ErrAuthentication = errors.New("hotel api authentication failed")

// UpstreamError represents a non-authentication failure reported by the PMS.
// Message carries the upstream "detail" or "title" body field when present.
type UpstreamError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("hotel api error (status %d): %s", e.Status, e.Message)
}
