package config

import (
	"errors"
	"os"
	"path/filepath"
)

// Loader loads configuration from the filesystem.
type Loader struct {
	toolsPath string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithToolsFile sets the tools overlay to apply on top of the manifest.
func WithToolsFile(path string) LoaderOption {
	return func(l *Loader) {
		l.toolsPath = path
	}
}

// NewLoader creates a new Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadManifest reads and decodes a YAML or TOML manifest.
func (l *Loader) LoadManifest(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, NewUnsupportedFormatError(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, err
	}

	manifest, err := ParseManifest(data, format)
	if err != nil {
		if format == FormatYAML {
			return nil, NewYAMLParseError(path, err)
		}
		return nil, NewConfigParseError(path, err)
	}
	return manifest, nil
}

// LoadTools reads an INI tools overlay.
func (l *Loader) LoadTools(path string) (*ToolsOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewConfigNotFoundError(path).WithSuggestion(
				"Create the tools file or drop the --tools flag to use tools from PATH.")
		}
		return nil, err
	}

	overlay, err := ParseTools(data)
	if err != nil {
		return nil, NewToolsParseError(path, err)
	}
	return overlay, nil
}

// Load reads the manifest at path, applies the tools overlay if one was
// configured and resolves the result. Relative paths in the manifest are
// taken relative to the manifest's directory.
func (l *Loader) Load(path string) (*Config, error) {
	manifest, err := l.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	var overlay *ToolsOverlay
	if l.toolsPath != "" {
		overlay, err = l.LoadTools(l.toolsPath)
		if err != nil {
			return nil, err
		}
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	cfg, err := Resolve(manifest, overlay, baseDir)
	if err != nil {
		return nil, err
	}
	cfg.source = path
	return cfg, nil
}
