package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repotext/apps/server/internal/handler"
	"github.com/tilsley/repotext/apps/server/internal/platform/validation"
	"github.com/tilsley/repotext/pkg/ingest"
	"github.com/tilsley/repotext/schemas"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─── Fixtures ─────────────────────────────────────────────────────────────────

type zipEntry struct {
	name    string
	content []byte
}

func zipOf(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func text(name, content string) zipEntry { return zipEntry{name: name, content: []byte(content)} }

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubFetcher struct {
	data []byte
	err  error

	calls      int
	lastOwner  string
	lastRepo   string
	lastBranch string
}

func (f *stubFetcher) Fetch(_ context.Context, owner, repo, branch string) (io.ReadCloser, error) {
	f.calls++
	f.lastOwner, f.lastRepo, f.lastBranch = owner, repo, branch
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// ─── Test server ──────────────────────────────────────────────────────────────

type testServer struct {
	router  *gin.Engine
	fetcher *stubFetcher
}

func newTestServer(t *testing.T, fetcher *stubFetcher) *testServer {
	t.Helper()
	return newTestServerWithOptions(t, fetcher, handler.Options{})
}

func newTestServerWithOptions(t *testing.T, fetcher *stubFetcher, opts handler.Options) *testServer {
	t.Helper()
	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	validator, err := validation.New(schemas.OpenAPISpec)
	require.NoError(t, err)
	if opts.OpenAPIJSON == nil {
		opts.OpenAPIJSON, err = schemas.JSON()
		require.NoError(t, err)
	}

	r := gin.New()
	r.Use(validator)
	handler.RegisterRoutes(r, ingest.NewService(fetcher, log), log, opts)
	return &testServer{router: r, fetcher: fetcher}
}

func (ts *testServer) do(path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}
