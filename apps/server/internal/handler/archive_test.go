package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repotext/apps/server/internal/handler"
	"github.com/tilsley/repotext/pkg/ingest"
)

func siteArchive(t *testing.T) []byte {
	t.Helper()
	return zipOf(t,
		text("site-main/README.md", "# site"),
		text("site-main/index.js", "console.log(1)"),
		text("site-main/docs/guide.md", "guide"),
		zipEntry{name: "site-main/logo.png", content: []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe}},
		text("site-main/node_modules/x/y.js", "module.exports = {}"),
	)
}

// ─── Usage routes ─────────────────────────────────────────────────────────────

func TestUsage(t *testing.T) {
	t.Run("root explains the path shape", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do("/", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "You can use this API by going to /{owner}/{repository}/{branch}", w.Body.String())
	})

	t.Run("owner without repository", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do("/acme", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Please add your repository", w.Body.String())
		assert.Zero(t, ts.fetcher.calls)
	})

	t.Run("json clients get an error object", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do("/acme", "application/json")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Please add your repository"}`, w.Body.String())
	})
}

func TestOpenAPI(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do("/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc, "paths")
}

// ─── Redirect ─────────────────────────────────────────────────────────────────

func TestRedirectToDefaultBranch(t *testing.T) {
	t.Run("missing branch redirects to main", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do("/acme/site", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/acme/site/main", w.Header().Get("Location"))
		assert.Zero(t, ts.fetcher.calls)
	})

	t.Run("query string is kept", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do("/acme/site?include-ext=md", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/acme/site/main?include-ext=md", w.Header().Get("Location"))
	})

	t.Run("configured default branch", func(t *testing.T) {
		ts := newTestServerWithOptions(t, nil, handler.Options{DefaultBranch: "trunk"})
		w := ts.do("/acme/site", "")
		assert.Equal(t, "/acme/site/trunk", w.Header().Get("Location"))
	})
}

// ─── Repository files ─────────────────────────────────────────────────────────

func TestRepositoryFiles_Text(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/acme/site/main?include-ext=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t,
		"site-main/README.md:\n-----------------------\n\n# site"+
			"\n\n-----------------------\n\n"+
			"site-main/docs/guide.md:\n-----------------------\n\nguide",
		w.Body.String())

	assert.Equal(t, "acme", ts.fetcher.lastOwner)
	assert.Equal(t, "site", ts.fetcher.lastRepo)
	assert.Equal(t, "main", ts.fetcher.lastBranch)
}

func TestRepositoryFiles_JSONMarksBinaryFiles(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/acme/site/main?exclude-dir=node_modules&exclude-ext=md", "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, map[string]string{
		"site-main/index.js": "console.log(1)",
		"site-main/logo.png": ingest.BinarySentinel,
	}, doc)
}

func TestRepositoryFiles_EverythingExcluded(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/acme/site/main?include-ext=rs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = ts.do("/acme/site/main?include-ext=rs", "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestRepositoryFiles_EmptyIncludeMatchesNothing(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/acme/site/main?include-ext=", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRepositoryFiles_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    *stubFetcher
		accept     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "upstream not found",
			fetcher:    &stubFetcher{err: ingest.TransportError{StatusCode: http.StatusNotFound}},
			wantStatus: http.StatusNotFound,
			wantBody:   "Failed to fetch repository",
		},
		{
			name:       "connection failure",
			fetcher:    &stubFetcher{err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "Failed to fetch repository",
		},
		{
			name:       "not a zip",
			fetcher:    &stubFetcher{data: []byte("<html>oops</html>")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "Failed to decode repository archive",
		},
		{
			name:       "json client",
			fetcher:    &stubFetcher{err: ingest.TransportError{StatusCode: http.StatusForbidden}},
			accept:     "application/json",
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"Failed to fetch repository"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.fetcher)
			w := ts.do("/acme/site/main", tt.accept)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRepositoryFiles_InvalidOwnerRejectedBeforeFetch(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/-acme/site/main", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ts.fetcher.calls)
}

func TestRepositoryFiles_IgnoresSegmentsAfterBranch(t *testing.T) {
	ts := newTestServer(t, &stubFetcher{data: siteArchive(t)})

	w := ts.do("/acme/site/main/extra/segments?include-ext=md", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "main", ts.fetcher.lastBranch)
	assert.Contains(t, w.Body.String(), "site-main/README.md:")
}
