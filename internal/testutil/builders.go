package testutil

import (
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ManifestBuilder builds test manifests.
type ManifestBuilder struct {
	manifest config.Manifest
}

// NewManifestBuilder creates a manifest builder rooted at root.
func NewManifestBuilder(root string) *ManifestBuilder {
	return &ManifestBuilder{manifest: config.Manifest{Root: root}}
}

// WithVar sets a variable.
func (b *ManifestBuilder) WithVar(name, value string) *ManifestBuilder {
	if b.manifest.Vars == nil {
		b.manifest.Vars = make(map[string]string)
	}
	b.manifest.Vars[name] = value
	return b
}

// WithTool maps a tool name to an executable.
func (b *ManifestBuilder) WithTool(name, path string) *ManifestBuilder {
	if b.manifest.Tools == nil {
		b.manifest.Tools = make(map[string]string)
	}
	b.manifest.Tools[name] = path
	return b
}

// WithPath appends executable search path entries.
func (b *ManifestBuilder) WithPath(dirs ...string) *ManifestBuilder {
	b.manifest.Path = append(b.manifest.Path, dirs...)
	return b
}

// WithStep adds a step with the given actions.
func (b *ManifestBuilder) WithStep(name string, actions ...config.ActionSpec) *ManifestBuilder {
	b.manifest.Steps = append(b.manifest.Steps, config.StepSpec{Name: name, Actions: actions})
	return b
}

// WithAlwaysStep adds a step that bypasses the completion ledger.
func (b *ManifestBuilder) WithAlwaysStep(name string, actions ...config.ActionSpec) *ManifestBuilder {
	b.manifest.Steps = append(b.manifest.Steps, config.StepSpec{Name: name, Always: true, Actions: actions})
	return b
}

// WithMatrixStep adds a step unrolled over matrix.
func (b *ManifestBuilder) WithMatrixStep(name string, matrix map[string][]string, actions ...config.ActionSpec) *ManifestBuilder {
	b.manifest.Steps = append(b.manifest.Steps, config.StepSpec{Name: name, Matrix: matrix, Actions: actions})
	return b
}

// Build returns the constructed manifest.
func (b *ManifestBuilder) Build() *config.Manifest {
	m := b.manifest
	return &m
}

// Resolve builds the manifest and resolves it against baseDir.
func (b *ManifestBuilder) Resolve(t testing.TB, baseDir string) *config.Config {
	t.Helper()

	cfg, err := config.Resolve(b.Build(), nil, baseDir)
	require.NoError(t, err)
	return cfg
}

// WriteYAML writes the manifest to dir/name as YAML and returns its path.
func (b *ManifestBuilder) WriteYAML(t testing.TB, dir, name string) string {
	t.Helper()

	data, err := yaml.Marshal(b.Build())
	require.NoError(t, err)
	return WriteTempFile(t, dir, name, string(data))
}

// WriteTOML writes the manifest to dir/name as TOML and returns its path.
func (b *ManifestBuilder) WriteTOML(t testing.TB, dir, name string) string {
	t.Helper()

	data, err := toml.Marshal(b.Build())
	require.NoError(t, err)
	return WriteTempFile(t, dir, name, string(data))
}

// Run is a run action.
func Run(line string) config.ActionSpec { return config.ActionSpec{Run: line} }

// Mkdir is a mkdir action.
func Mkdir(path string) config.ActionSpec { return config.ActionSpec{Mkdir: path} }

// Fetch is a fetch action.
func Fetch(url string) config.ActionSpec { return config.ActionSpec{Fetch: url} }

// Extract is an extract action.
func Extract(archive string) config.ActionSpec { return config.ActionSpec{Extract: archive} }

// Copy is a copy action.
func Copy(from, to string) config.ActionSpec {
	return config.ActionSpec{Copy: &config.PathPair{From: from, To: to}}
}

// InDir is a dir action around nested actions.
func InDir(path string, actions ...config.ActionSpec) config.ActionSpec {
	return config.ActionSpec{Dir: path, Actions: actions}
}
