package testutil

import (
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZlibBuilder() *ManifestBuilder {
	return NewManifestBuilder("work").
		WithVar("zlib", "1.2.8").
		WithTool("tar", "gtar").
		WithPath("/opt/build/bin").
		WithStep("fetch_zlib", Fetch("https://example.com/zlib-${zlib}.tar.gz")).
		WithStep("build_zlib",
			Extract("zlib-${zlib}.tar.gz"),
			InDir("zlib-${zlib}", Run("nmake /f win32/Makefile.msc")),
		).
		WithAlwaysStep("install", Copy("zlib-${zlib}/zlib.lib", "${root}/lib"))
}

func TestManifestBuilder_Build(t *testing.T) {
	t.Parallel()

	m := newZlibBuilder().Build()

	assert.Equal(t, "work", m.Root)
	assert.Equal(t, "1.2.8", m.Vars["zlib"])
	assert.Equal(t, "gtar", m.Tools["tar"])
	require.Len(t, m.Steps, 3)
	assert.True(t, m.Steps[2].Always)
	assert.Equal(t, "zlib-${zlib}", m.Steps[1].Actions[1].Dir)
}

func TestManifestBuilder_Resolve(t *testing.T) {
	t.Parallel()

	dir := TempDir(t)
	cfg := newZlibBuilder().
		WithMatrixStep("test_${python}", map[string][]string{"python": {"2.6", "2.7"}}, Run("python${python} -V")).
		Resolve(t, dir)

	assert.Equal(t, []string{"fetch_zlib", "build_zlib", "install", "test_2.6", "test_2.7"}, cfg.StepIDs())
	assert.Equal(t, "gtar", cfg.Tool("tar"))
}

func TestManifestBuilder_WriteLoadable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(b *ManifestBuilder, t *testing.T, dir string) string
	}{
		{"yaml", func(b *ManifestBuilder, t *testing.T, dir string) string { return b.WriteYAML(t, dir, "provision.yaml") }},
		{"toml", func(b *ManifestBuilder, t *testing.T, dir string) string { return b.WriteTOML(t, dir, "provision.toml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := TempDir(t)
			path := tt.write(newZlibBuilder(), t, dir)

			cfg, err := config.NewLoader().Load(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"fetch_zlib", "build_zlib", "install"}, cfg.StepIDs())
			assert.Equal(t, "https://example.com/zlib-1.2.8.tar.gz", mustStep(t, cfg, "fetch_zlib").Actions[0].URL)
		})
	}
}

func mustStep(t *testing.T, cfg *config.Config, id string) config.Step {
	t.Helper()

	step, ok := cfg.Step(id)
	require.True(t, ok, "step %q", id)
	return step
}
