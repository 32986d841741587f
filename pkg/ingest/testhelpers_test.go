package ingest_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// ─── Fixtures ─────────────────────────────────────────────────────────────────

type entry struct {
	name    string
	content []byte
	stored  bool
}

func file(name, content string) entry { return entry{name: name, content: []byte(content)} }

func rawFile(name string, content []byte) entry { return entry{name: name, content: content} }

func dir(name string) entry { return entry{name: name} }

// buildZip writes entries into an in-memory zip archive in the given order.
func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if e.stored {
			hdr.Method = zip.Store
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if len(e.content) > 0 {
			_, err = w.Write(e.content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubFetcher struct {
	data    []byte
	body    io.ReadCloser
	err     error
	nilBody bool

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
	if f.nilBody {
		return nil, nil
	}
	if f.body != nil {
		return f.body, nil
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type failingReader struct {
	prefix []byte
	err    error
	sent   bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, r.prefix), nil
	}
	return 0, r.err
}

func (r *failingReader) Close() error { return nil }
