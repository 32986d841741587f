// Package adapters implements ingest.ArchiveFetcher against GitHub, either
// through the public branch download URL or through the REST API zipball
// endpoint. Neither sends credentials.
package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tilsley/repotext/pkg/ingest"
)

// DefaultArchiveURL is the host serving branch archive downloads.
const DefaultArchiveURL = "https://github.com"

// ArchiveClient downloads {base}/{owner}/{repo}/archive/refs/heads/{branch}.zip.
type ArchiveClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewArchiveClient creates an ArchiveClient. An empty baseURL selects
// DefaultArchiveURL; a nil httpClient selects a default client, which
// follows GitHub's redirect to its download host.
func NewArchiveClient(baseURL string, httpClient *http.Client) *ArchiveClient {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ArchiveClient{baseURL: baseURL, httpClient: httpClient}
}

// Fetch implements ingest.ArchiveFetcher.
func (c *ArchiveClient) Fetch(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error) {
	if err := checkSegments(owner, repo, branch); err != nil {
		return nil, err
	}
	archiveURL, err := url.JoinPath(c.baseURL, owner, repo, "archive", "refs", "heads", branch+".zip")
	if err != nil {
		return nil, fmt.Errorf("build archive url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ingest.TransportError{Err: fmt.Errorf("GET %s: %w", archiveURL, err)}
	}
	return checkResponse(resp, archiveURL)
}

// checkSegments rejects "." and ".." path segments, which url.JoinPath would
// resolve into a different upstream path.
func checkSegments(owner, repo, branch string) error {
	for _, seg := range append([]string{owner, repo}, strings.Split(branch, "/")...) {
		if seg == "." || seg == ".." {
			return fmt.Errorf("invalid path segment %q in %s/%s@%s", seg, owner, repo, branch)
		}
	}
	return nil
}

// checkResponse hands back the body of a 2xx response and closes anything else.
func checkResponse(resp *http.Response, target string) (io.ReadCloser, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close() //nolint:errcheck // body is discarded
		return nil, ingest.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("GET %s returned %d", target, resp.StatusCode),
		}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ingest.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("GET %s returned no body", target),
		}
	}
	return resp.Body, nil
}
