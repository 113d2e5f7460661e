package ports

import (
	"context"
	"io"
)

// ArchiveSource opens a remote archive for streaming.
type ArchiveSource interface {
	// Supports reports whether the source can serve the URL.
	Supports(url string) bool

	// Open starts the transfer. The caller must close the returned reader.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchResult describes the outcome of fetching one archive.
type FetchResult struct {
	Name   string // file name inside the cache
	Path   string // full path of the cached file
	Cached bool   // true when the file was already present and nothing was requested
	Bytes  int64  // bytes transferred, zero when cached
}

// ArchiveFetcher makes sure an archive is present in the local cache.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url, name string) (FetchResult, error)
}
