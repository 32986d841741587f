package ingest

import (
	"fmt"
	"net/http"
)

// MissingParameterError is returned when the owner or repository is absent.
type MissingParameterError struct {
	Name string
}

// Error implements the error interface.
func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Name)
}

// TransportError is returned when the archive could not be fetched or its
// body could not be read to completion.
type TransportError struct {
	// StatusCode is the upstream HTTP status, or 0 when no response arrived.
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch archive: upstream status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch archive: upstream status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch archive: %v", e.Err)
	default:
		return "fetch archive failed"
	}
}

// Unwrap returns the underlying cause.
func (e TransportError) Unwrap() error {
	return e.Err
}

// Status returns the status to surface to the caller: the upstream status
// if there was one, 502 otherwise.
func (e TransportError) Status() int {
	if e.StatusCode >= 400 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

// MalformedArchiveError is returned when the fetched bytes do not parse as
// a zip archive or an entry fails to decompress.
type MalformedArchiveError struct {
	Entry string
	Err   error
}

// Error implements the error interface.
func (e MalformedArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("malformed archive entry %q: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("malformed archive: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e MalformedArchiveError) Unwrap() error {
	return e.Err
}
