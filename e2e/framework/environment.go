//go:build e2e

// Package framework provides the E2E test infrastructure for provisioner.
package framework

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// Layout of an environment, relative to its root directory.
const (
	ManifestFile = "provision.yaml"
	ToolsFile    = "tools.ini"
	WorkDir      = "work"
	ArchivesDir  = "work/archives"
	StateDir     = "work/state"
)

// Environment is an isolated directory holding a manifest, an optional
// tools overlay and the work tree the provisioner builds. The manifest
// sets root: work, so archives and markers land under WorkDir.
type Environment struct {
	t          *testing.T
	rootDir    string
	binaryPath string
	homeDir    string
}

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
)

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the provisioner binary once per test run.
func buildBinary(t *testing.T) (string, error) {
	buildOnce.Do(func() {
		projectRoot, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "provisioner-e2e-test")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/provisioner")
		cmd.Dir = projectRoot

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	rootDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp directory: %v", err)
	}
	homeDir := filepath.Join(rootDir, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("Failed to create home directory: %v", err)
	}

	return &Environment{
		t:          t,
		rootDir:    rootDir,
		binaryPath: binary,
		homeDir:    homeDir,
	}
}

// HomeDir returns the path to the simulated home directory.
func (e *Environment) HomeDir() string {
	return e.homeDir
}

// RootDir returns the path to the test root directory.
func (e *Environment) RootDir() string {
	return e.rootDir
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// WriteFile writes content to a file in the test environment.
func (e *Environment) WriteFile(path, content string) string {
	e.t.Helper()

	fullPath := filepath.Join(e.rootDir, path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

// WriteManifest writes the provision.yaml manifest.
func (e *Environment) WriteManifest(content string) string {
	e.t.Helper()
	return e.WriteFile(ManifestFile, content)
}

// WriteTools writes the tools.ini overlay.
func (e *Environment) WriteTools(content string) string {
	e.t.Helper()
	return e.WriteFile(ToolsFile, content)
}

// HasTools reports whether a tools overlay was written.
func (e *Environment) HasTools() bool {
	return e.FileExists(ToolsFile)
}

// FileExists checks if a file exists in the test environment.
func (e *Environment) FileExists(path string) bool {
	_, err := os.Stat(filepath.Join(e.rootDir, path))
	return err == nil
}

// ReadFile reads a file from the test environment.
func (e *Environment) ReadFile(path string) string {
	e.t.Helper()

	fullPath := filepath.Join(e.rootDir, path)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// ModTime returns the modification time of a file in the environment.
func (e *Environment) ModTime(path string) time.Time {
	e.t.Helper()

	info, err := os.Stat(filepath.Join(e.rootDir, path))
	if err != nil {
		e.t.Fatalf("Failed to stat %s: %v", path, err)
	}
	return info.ModTime()
}

// MarkerPath returns the environment-relative path of a step's marker.
func MarkerPath(stepID string) string {
	return filepath.Join(StateDir, stepID)
}
