package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/app"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/felixgeelhaar/provisioner/internal/testutil"
	"github.com/felixgeelhaar/provisioner/internal/testutil/mocks"
	"github.com/felixgeelhaar/provisioner/internal/ui"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Commands read package-level flags and runs change the working
// directory, so these tests are not parallel.

type cliFixture struct {
	dir    string
	runner *mocks.CommandRunner
	out    *bytes.Buffer
	cmd    *cobra.Command
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	dir := testutil.TempDir(t)
	manifest := testutil.NewManifestBuilder("work").
		WithVar("version", "1.0").
		WithStep("prepare", testutil.Mkdir("${archives}/pkg-${version}")).
		WithStep("build", testutil.InDir("pkg-${version}", testutil.Run("python setup.py build"))).
		WriteYAML(t, dir, "provision.yaml")

	f := &cliFixture{
		dir:    dir,
		runner: mocks.NewCommandRunner(),
		out:    &bytes.Buffer{},
		cmd:    &cobra.Command{},
	}
	f.runner.SucceedByDefault()
	f.cmd.SetOut(f.out)

	prevNew := newProvisioner
	newProvisioner = func(out io.Writer) *app.Provisioner {
		return app.New(out).WithRunner(f.runner).WithStyles(ui.PlainStyles())
	}
	prevCfg, prevTools := cfgFile, toolsFile
	cfgFile, toolsFile = manifest, ""
	prevDryRun, prevOnly, prevAll := runDryRun, runOnly, resetAll

	t.Cleanup(func() {
		newProvisioner = prevNew
		cfgFile, toolsFile = prevCfg, prevTools
		runDryRun, runOnly, resetAll = prevDryRun, prevOnly, prevAll
	})
	return f
}

func (f *cliFixture) state() string {
	return filepath.Join(f.dir, "work", "state")
}

func TestRunCommand_RunsAndResumes(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, runRun(f.cmd, nil))

	testutil.AssertMarker(t, f.state(), "prepare")
	testutil.AssertMarker(t, f.state(), "build")
	assert.DirExists(t, filepath.Join(f.dir, "work", "archives", "pkg-1.0"))

	calls := f.runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "python setup.py build", calls[0].String())
	assert.Equal(t, filepath.Join(f.dir, "work", "archives", "pkg-1.0"), calls[0].Dir)
	assert.Contains(t, f.out.String(), "Summary: 2 ran, 0 already complete, 0 failed, 0 not run")

	f.out.Reset()
	require.NoError(t, runRun(f.cmd, nil))
	assert.Len(t, f.runner.Calls(), 1, "complete steps must not run again")
	assert.Contains(t, f.out.String(), "Summary: 0 ran, 2 already complete, 0 failed, 0 not run")
}

func TestRunCommand_FailureKeepsEarlierMarkers(t *testing.T) {
	f := newCLIFixture(t)
	f.runner.AddResult("python", []string{"setup.py", "build"}, ports.CommandResult{ExitCode: 1, Stderr: "error: no compiler"})

	err := runRun(f.cmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrStepFailed)
	assert.Contains(t, formatError(err), "no compiler")

	testutil.AssertMarker(t, f.state(), "prepare")
	testutil.AssertNoMarker(t, f.state(), "build")
	assert.Contains(t, f.out.String(), "Re-run 'provisioner run' after fixing build")
}

func TestRunCommand_DryRun(t *testing.T) {
	f := newCLIFixture(t)
	runDryRun = true

	require.NoError(t, runRun(f.cmd, nil))

	assert.Empty(t, f.runner.Calls())
	assert.NoDirExists(t, filepath.Join(f.dir, "work"))
	assert.Contains(t, f.out.String(), "Provisioning Plan (dry run)")
	assert.Contains(t, f.out.String(), "2 pending")
}

func TestRunCommand_Only(t *testing.T) {
	f := newCLIFixture(t)
	runOnly = []string{"prepare"}

	require.NoError(t, runRun(f.cmd, nil))

	testutil.AssertMarker(t, f.state(), "prepare")
	testutil.AssertNoMarker(t, f.state(), "build")
	assert.Empty(t, f.runner.Calls())
}

func TestRunCommand_MissingManifest(t *testing.T) {
	f := newCLIFixture(t)
	cfgFile = filepath.Join(f.dir, "missing.yaml")

	err := runRun(f.cmd, nil)
	require.Error(t, err)
	assert.Contains(t, formatError(err), "Suggestion:")
}

func TestStatusAndResetCommands(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, runRun(f.cmd, nil))

	f.out.Reset()
	require.NoError(t, runStatus(f.cmd, nil))
	assert.Contains(t, f.out.String(), "2 of 2 steps complete")

	f.out.Reset()
	require.NoError(t, runReset(f.cmd, []string{"build"}))
	assert.Contains(t, f.out.String(), "1 step(s) will run again.")
	testutil.AssertMarker(t, f.state(), "prepare")
	testutil.AssertNoMarker(t, f.state(), "build")

	f.out.Reset()
	require.NoError(t, runStatus(f.cmd, nil))
	assert.Contains(t, f.out.String(), "1 of 2 steps complete")

	resetAll = true
	f.out.Reset()
	require.NoError(t, runReset(f.cmd, nil))
	testutil.AssertNoMarker(t, f.state(), "prepare")
}

func TestResetCommand_ArgumentErrors(t *testing.T) {
	f := newCLIFixture(t)

	err := runReset(f.cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")

	resetAll = true
	err = runReset(f.cmd, []string{"build"})
	require.Error(t, err)

	resetAll = false
	err = runReset(f.cmd, []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown step "nope"`)
}

func TestCacheCommand_Empty(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, runCache(f.cmd, nil))
	assert.Contains(t, f.out.String(), "Archive Cache")
	assert.Contains(t, f.out.String(), "(empty)")
}

func TestCompleteStepIDs(t *testing.T) {
	f := newCLIFixture(t)

	ids, directive := completeStepIDs(f.cmd, nil, "")
	assert.Equal(t, []string{"prepare", "build"}, ids)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}
