package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "provisioner", rootCmd.Use)
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		flag      string
		shorthand string
		def       string
	}{
		{"config", "c", "provision.yaml"},
		{"tools", "", ""},
		{"verbose", "v", "false"},
		{"log-json", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := flags.Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
			assert.Equal(t, tt.shorthand, f.Shorthand)
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "status", "reset", "fetch", "cache", "version"} {
		assert.True(t, names[want], "%s should be a subcommand of root", want)
	}
}

func TestSubcommandFlagDefaults(t *testing.T) {
	tests := []struct {
		name string
		flag string
		def  string
	}{
		{"run dry-run", "dry-run", "false"},
		{"run only", "only", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := runCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}

	f := resetCmd.Flags().Lookup("all")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)

	f = fetchCmd.Flags().Lookup("as")
	require.NotNil(t, f)
	assert.Empty(t, f.DefValue)
}

func TestFormatError(t *testing.T) {
	parseErr := config.NewConfigParseError("provision.yaml", errors.New("yaml: line 3: could not find expected ':'"))

	multi := &config.ErrorList{}
	multi.AddValidation("root", "is required", "Set root to the work directory.")
	multi.AddValidation("steps", "at least one step is required", "")

	single := &config.ErrorList{}
	single.AddValidation("steps[0].name", "is required", "Give every step a name.")

	stepErr := &pipeline.StepError{
		Code:       pipeline.ErrCodeStepFailed,
		Message:    "step failed",
		StepID:     "build_zlib",
		Suggestion: "Fix the cause and run again; completed steps will be skipped.",
		Underlying: errors.New("exit status 2"),
	}

	tests := []struct {
		name     string
		err      error
		verbose  bool
		contains []string
		absent   []string
	}{
		{
			name:     "user error with suggestion",
			err:      parseErr,
			contains: []string{"(at provision.yaml)", "\n\nSuggestion: Check your YAML syntax"},
			absent:   []string{"Technical details"},
		},
		{
			name:     "user error verbose shows cause",
			err:      parseErr,
			verbose:  true,
			contains: []string{"Technical details: yaml: line 3"},
		},
		{
			name:     "several validation errors",
			err:      multi,
			contains: []string{"Found 2 error(s)", "root: is required", "steps: at least one step is required"},
		},
		{
			name:     "single validation error",
			err:      single,
			contains: []string{"steps[0].name: is required", "Suggestion: Give every step a name."},
			absent:   []string{"Found 1 error(s)"},
		},
		{
			name:     "step error",
			err:      stepErr,
			contains: []string{`step "build_zlib": step failed`, "Suggestion: Fix the cause"},
			absent:   []string{"Code: STEP_FAILED"},
		},
		{
			name:     "step error verbose",
			err:      stepErr,
			verbose:  true,
			contains: []string{"Code: STEP_FAILED"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := verbose
			verbose = tt.verbose
			defer func() { verbose = prev }()

			got := formatError(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, buf.String(), "provisioner "+version)
	assert.Contains(t, buf.String(), "commit: "+commit)
}
