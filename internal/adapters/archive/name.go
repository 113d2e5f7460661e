package archive

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// Format is the container format of an archive, derived from its file name.
type Format string

const (
	// FormatTar covers plain and compressed tarballs.
	FormatTar Format = "tar"
	// FormatZip is a zip archive.
	FormatZip Format = "zip"
	// FormatUnknown is anything else.
	FormatUnknown Format = ""
)

// ErrNoArchiveName is returned when a URL has no usable last path segment.
var ErrNoArchiveName = errors.New("cannot derive archive name from URL")

// ErrInvalidArchiveName is returned when a requested name would place the
// archive outside the cache directory.
var ErrInvalidArchiveName = errors.New("archive name must be a bare file name")

// extensions is ordered longest first so ".tar.gz" wins over ".gz".
var extensions = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTar},
	{".tar.bz2", FormatTar},
	{".tar.xz", FormatTar},
	{".tgz", FormatTar},
	{".tar", FormatTar},
	{".zip", FormatZip},
}

// NameFromURL returns the last path segment of rawURL, ignoring any query.
func NameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", ErrNoArchiveName
	}
	return name, nil
}

// FormatOf returns the archive format implied by the file name.
func FormatOf(name string) Format {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.format
		}
	}
	return FormatUnknown
}

// TrimExt strips a known archive extension: "zlib-1.2.8.tar.gz" -> "zlib-1.2.8".
func TrimExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext.suffix) {
			return name[:len(name)-len(ext.suffix)]
		}
	}
	return name
}

// SplitVersion splits "curl-7.34.0" into ("curl", "7.34.0"). The version
// starts at the first hyphen followed by a digit.
func SplitVersion(base string) (pkg, version string) {
	for i := 0; i+1 < len(base); i++ {
		if base[i] == '-' && base[i+1] >= '0' && base[i+1] <= '9' {
			return base[:i], base[i+1:]
		}
	}
	return base, ""
}
