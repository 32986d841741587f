package ingest

import (
	"context"
	"io"
)

// ArchiveFetcher opens the zip archive of a repository branch.
// Implementations live in the adapters package (web download, REST API).
//
// A non-success upstream response must be reported as a TransportError.
// The caller closes the returned stream.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error)
}

// FetcherFunc adapts a plain function to ArchiveFetcher.
type FetcherFunc func(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error) {
	return f(ctx, owner, repo, branch)
}
