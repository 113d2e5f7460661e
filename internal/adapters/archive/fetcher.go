// Package archive fetches source archives into the local archive cache and
// inspects what the cache holds.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// ChunkSize is the read size used when streaming a download to disk.
const ChunkSize = 64 * 1024

const tempPrefix = ".tmp."

// ErrUnsupportedURL is returned when no configured source accepts the URL.
var ErrUnsupportedURL = errors.New("no archive source supports URL")

// FetchError wraps a failed transfer.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchResult describes the outcome of Fetch.
type FetchResult = ports.FetchResult

// Fetcher downloads archives into a cache directory. A file already present
// under the expected name is trusted without verification.
type Fetcher struct {
	dir     string
	fs      ports.FileSystem
	sources []ports.ArchiveSource
	logger  ports.Logger
}

// NewFetcher creates a Fetcher writing into dir.
func NewFetcher(dir string, fs ports.FileSystem, sources ...ports.ArchiveSource) *Fetcher {
	return &Fetcher{
		dir:     dir,
		fs:      fs,
		sources: sources,
		logger:  ports.Discard(),
	}
}

// WithLogger returns a copy of the fetcher that logs through logger.
func (f *Fetcher) WithLogger(logger ports.Logger) *Fetcher {
	c := *f
	c.logger = logger
	return &c
}

// Dir returns the cache directory.
func (f *Fetcher) Dir() string {
	return f.dir
}

// Fetch makes sure the archive at rawURL is present in the cache as name
// (the URL's last path segment when name is empty). Nothing is requested
// when the file already exists. The body is streamed to a temporary file
// that is renamed into place only after the whole transfer succeeded.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, name string) (FetchResult, error) {
	if name == "" {
		derived, err := NameFromURL(rawURL)
		if err != nil {
			return FetchResult{}, &FetchError{URL: rawURL, Err: err}
		}
		name = derived
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return FetchResult{}, &FetchError{URL: rawURL, Err: fmt.Errorf("%w: %q", ErrInvalidArchiveName, name)}
	}

	dest := filepath.Join(f.dir, name)
	result := FetchResult{Name: name, Path: dest}

	if f.fs.Exists(dest) {
		result.Cached = true
		f.logger.Debug(ctx, "archive cached", ports.F(ports.FieldPath, dest))
		return result, nil
	}

	source := f.sourceFor(rawURL)
	if source == nil {
		return result, &FetchError{URL: rawURL, Err: ErrUnsupportedURL}
	}

	if err := f.fs.MkdirAll(f.dir, 0o755); err != nil {
		return result, fmt.Errorf("create archive cache: %w", err)
	}

	f.logger.Info(ctx, "fetching", ports.F(ports.FieldURL, rawURL))

	body, err := source.Open(ctx, rawURL)
	if err != nil {
		return result, &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = body.Close() }()

	tmp := filepath.Join(f.dir, tempPrefix+name)
	n, err := f.download(body, tmp)
	if err != nil {
		_ = f.fs.Remove(tmp)
		return result, &FetchError{URL: rawURL, Err: err}
	}

	if err := f.fs.Rename(tmp, dest); err != nil {
		_ = f.fs.Remove(tmp)
		return result, fmt.Errorf("move %s into place: %w", name, err)
	}

	result.Bytes = n
	return result, nil
}

func (f *Fetcher) download(body io.Reader, tmp string) (int64, error) {
	w, err := f.fs.Create(tmp)
	if err != nil {
		return 0, err
	}

	var total int64
	chunk := make([]byte, ChunkSize)
	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			if _, err := w.Write(chunk[:n]); err != nil {
				_ = w.Close()
				return total, err
			}
			total += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = w.Close()
			return total, readErr
		}
	}

	return total, w.Close()
}

func (f *Fetcher) sourceFor(rawURL string) ports.ArchiveSource {
	for _, s := range f.sources {
		if s.Supports(rawURL) {
			return s
		}
	}
	return nil
}
