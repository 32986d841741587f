package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/repotext/pkg/ingest"
)

const (
	defaultAPIURL = "https://api.github.com"

	// maxArchiveRedirects bounds the 301 hops followed while resolving the
	// zipball link (renamed or transferred repositories).
	maxArchiveRedirects = 3
)

// APIClient resolves the zipball link through the GitHub REST API and then
// streams the archive from the returned location.
type APIClient struct {
	gh *gogithub.Client
}

// NewAPIClient wraps a go-github client.
func NewAPIClient(gh *gogithub.Client) *APIClient {
	return &APIClient{gh: gh}
}

// NewGitHubClient creates an unauthenticated *github.Client. Pass baseURL=""
// to use the real GitHub API, or a custom URL (e.g. "http://localhost:9090")
// for the mock server.
func NewGitHubClient(baseURL string, httpClient *http.Client) *gogithub.Client {
	c := gogithub.NewClient(httpClient)
	applyBaseURL(c, baseURL)
	return c
}

func applyBaseURL(c *gogithub.Client, baseURL string) {
	if baseURL == "" || baseURL == defaultAPIURL {
		return
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}

// Fetch implements ingest.ArchiveFetcher.
func (a *APIClient) Fetch(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error) {
	if err := checkSegments(owner, repo, branch); err != nil {
		return nil, err
	}
	link, resp, err := a.gh.Repositories.GetArchiveLink(ctx, owner, repo, gogithub.Zipball,
		&gogithub.RepositoryContentGetOptions{Ref: branch}, maxArchiveRedirects)
	if err != nil {
		te := ingest.TransportError{Err: fmt.Errorf("get archive link %s/%s@%s: %w", owner, repo, branch, err)}
		if resp != nil {
			te.StatusCode = resp.StatusCode
		}
		return nil, te
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}

	// The underlying client carries whatever transport the caller configured.
	dl, err := a.gh.Client().Do(req)
	if err != nil {
		return nil, ingest.TransportError{Err: fmt.Errorf("GET %s: %w", link.Redacted(), err)}
	}
	return checkResponse(dl, link.Redacted())
}
