package archive

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// CachedArchive describes one archive file in the cache.
type CachedArchive struct {
	Name    string
	Package string
	Version string
	Format  Format
	Size    int64
}

// ListCache returns the archives in dir ordered by package name and then by
// version, oldest first. Temporary download files and directories (extracted
// trees) are ignored.
func ListCache(dir string) ([]CachedArchive, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive cache: %w", err)
	}

	out := make([]CachedArchive, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		format := FormatOf(name)
		if format == FormatUnknown {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		pkg, version := SplitVersion(TrimExt(name))
		out = append(out, CachedArchive{
			Name:    name,
			Package: pkg,
			Version: version,
			Format:  format,
			Size:    info.Size(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		return CompareVersions(out[i].Version, out[j].Version) < 0
	})
	return out, nil
}

// CompareVersions orders two bare version strings ("1.2.8"). Semantic
// versions compare by precedence; anything else falls back to string order
// and sorts after valid semantic versions.
func CompareVersions(a, b string) int {
	va, vb := "v"+a, "v"+b
	okA, okB := semver.IsValid(va), semver.IsValid(vb)
	switch {
	case okA && okB:
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
