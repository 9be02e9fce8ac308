package doiorg

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the DOI is not registered.
	ErrNotFound = errors.New("DOI not found")

	// ErrInvalidDOI indicates the input does not look like a DOI.
	ErrInvalidDOI = errors.New("invalid DOI")

	// ErrRateLimited indicates the resolver refused the request rate.
	ErrRateLimited = errors.New("doi.org rate limit exceeded")

	// ErrNetworkError indicates the resolver could not be reached.
	ErrNetworkError = errors.New("network error communicating with doi.org")

	// ErrInvalidResponse indicates the resolver answered with something
	// other than a citation record.
	ErrInvalidResponse = errors.New("invalid response from doi.org")
)

// APIError is an unexpected HTTP status from the resolver.
type APIError struct {
	StatusCode int
	DOI        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("doi.org error (status %d) for %s", e.StatusCode, e.DOI)
}
