package ports

import (
	"io"
	"os"
	"time"
)

// FileInfo contains file metadata.
type FileInfo struct {
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
}

// FileSystem provides the file system operations provisioning steps need.
// Relative paths resolve against the process working directory.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Create(path string) (io.WriteCloser, error)
	Exists(path string) bool
	IsDir(path string) bool
	Remove(path string) error
	RemoveAll(path string) error
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldPath, newPath string) error
	CopyFile(src, dest string) error
	CopyTree(src, dest string) error
	GetFileInfo(path string) (FileInfo, error)
}
