package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/adapters/filesystem"
	"github.com/felixgeelhaar/provisioner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing.tar.gz" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetcher_Fetch_DownloadsAndCaches(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("z", ChunkSize*2+17)
	srv, hits := newCountingServer(t, body)
	dir := t.TempDir()
	f := NewFetcher(dir, filesystem.NewRealFileSystem(), NewHTTPSource(srv.Client()))

	res, err := f.Fetch(context.Background(), srv.URL+"/pkg-1.0.tar.gz", "")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "pkg-1.0.tar.gz", res.Name)
	assert.Equal(t, int64(len(body)), res.Bytes)

	data, err := os.ReadFile(filepath.Join(dir, "pkg-1.0.tar.gz"))
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	res, err = f.Fetch(context.Background(), srv.URL+"/pkg-1.0.tar.gz", "")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "second fetch must not touch the network")

	_, err = os.Stat(filepath.Join(dir, tempPrefix+"pkg-1.0.tar.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetcher_Fetch_PresentFileSkipsNetwork(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg-1.0.tar.gz"), []byte("stale but trusted"), 0o644))

	src := &stubSource{}
	f := NewFetcher(dir, filesystem.NewRealFileSystem(), src)

	for i := 0; i < 2; i++ {
		res, err := f.Fetch(context.Background(), "http://host/pkg-1.0.tar.gz", "")
		require.NoError(t, err)
		assert.True(t, res.Cached)
	}
	assert.Zero(t, src.opens)
}

func TestFetcher_Fetch_CustomName(t *testing.T) {
	t.Parallel()

	srv, _ := newCountingServer(t, "zip")
	dir := t.TempDir()
	f := NewFetcher(dir, filesystem.NewRealFileSystem(), NewHTTPSource(srv.Client()))

	res, err := f.Fetch(context.Background(), srv.URL+"/download?id=7", "libidn-1.28-win32.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "libidn-1.28-win32.zip"), res.Path)
	assert.FileExists(t, res.Path)
}

func TestFetcher_Fetch_HTTPErrorLeavesNothing(t *testing.T) {
	t.Parallel()

	srv, _ := newCountingServer(t, "")
	dir := t.TempDir()
	f := NewFetcher(dir, filesystem.NewRealFileSystem(), NewHTTPSource(srv.Client()))

	_, err := f.Fetch(context.Background(), srv.URL+"/missing.tar.gz", "")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetcher_Fetch_InterruptedTransfer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boom := errors.New("connection reset by peer")
	src := &stubSource{body: io.MultiReader(strings.NewReader(strings.Repeat("x", ChunkSize+5)), &failingReader{err: boom})}
	f := NewFetcher(dir, filesystem.NewRealFileSystem(), src)

	_, err := f.Fetch(context.Background(), "http://host/curl-7.34.0.tar.gz", "")
	require.ErrorIs(t, err, boom)

	assert.NoFileExists(t, filepath.Join(dir, "curl-7.34.0.tar.gz"))
	testutil.AssertNoTempFiles(t, dir)
	assert.True(t, src.closed)

	// A retry after the failure downloads again.
	src.body = strings.NewReader("ok")
	res, err := f.Fetch(context.Background(), "http://host/curl-7.34.0.tar.gz", "")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, src.opens)
}

func TestFetcher_Fetch_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := NewFetcher(t.TempDir(), filesystem.NewRealFileSystem(), NewHTTPSource(nil))
	_, err := f.Fetch(context.Background(), addr+"/zlib-1.2.8.tar.gz", "")
	assert.Error(t, err)
}

func TestFetcher_Fetch_UnsupportedURL(t *testing.T) {
	t.Parallel()

	f := NewFetcher(t.TempDir(), filesystem.NewRealFileSystem(), NewHTTPSource(nil))
	_, err := f.Fetch(context.Background(), "ftp://host/zlib-1.2.8.tar.gz", "")
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestFetcher_Fetch_NoName(t *testing.T) {
	t.Parallel()

	f := NewFetcher(t.TempDir(), filesystem.NewRealFileSystem(), NewHTTPSource(nil))
	_, err := f.Fetch(context.Background(), "http://host/", "")
	assert.ErrorIs(t, err, ErrNoArchiveName)
}

func TestFetcher_Fetch_RejectsNamesOutsideCache(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTempFile(t, filepath.Join(root, "state"), "build_curl", "")
	srv, hits := newCountingServer(t, "curl-source")
	f := NewFetcher(filepath.Join(root, "archives"), filesystem.NewRealFileSystem(), NewHTTPSource(nil))

	for _, name := range []string{"../state/build_curl", `..\state\build_curl`, "sub/curl.tgz", ".."} {
		_, err := f.Fetch(context.Background(), srv.URL+"/curl-7.34.0.tar.gz", name)
		assert.ErrorIs(t, err, ErrInvalidArchiveName, "name %q", name)
	}
	_, err := f.Fetch(context.Background(), srv.URL+"/..", "")
	assert.ErrorIs(t, err, ErrInvalidArchiveName)

	assert.Zero(t, atomic.LoadInt32(hits))
	assert.NoDirExists(t, filepath.Join(root, "archives"))
}

type stubSource struct {
	body   io.Reader
	opens  int
	closed bool
}

func (s *stubSource) Supports(string) bool { return true }

func (s *stubSource) Open(context.Context, string) (io.ReadCloser, error) {
	s.opens++
	return &closeTracker{Reader: s.body, onClose: func() { s.closed = true }}, nil
}

type closeTracker struct {
	io.Reader
	onClose func()
}

func (c *closeTracker) Close() error {
	c.onClose()
	return nil
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }
