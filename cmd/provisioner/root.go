package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/adapters/logging"
	"github.com/felixgeelhaar/provisioner/internal/app"
	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	toolsFile string
	verbose   bool
	logJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "provisioner",
	Short: "An idempotent, resumable build provisioner",
	Long: `Provisioner runs an ordered list of build steps described in a manifest.

Each step fetches source archives, extracts them, runs native build tools
and copies the results into place. A step that finishes is recorded under
<root>/state and skipped on every later run, so a failed run can simply be
started again.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "provision.yaml", "manifest file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&toolsFile, "tools", "", "per-machine tools overlay (.ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write log lines as JSON")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// newProvisioner builds the application for a command. Tests replace it.
var newProvisioner = func(out io.Writer) *app.Provisioner {
	return app.New(out).WithLogger(newLogger(os.Stderr))
}

func newLogger(w io.Writer) ports.Logger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(logJSON),
	)
}

// loadConfig creates the application and loads the manifest named by the
// global flags.
func loadConfig(cmd *cobra.Command) (*app.Provisioner, *config.Config, error) {
	p := newProvisioner(cmd.OutOrStdout())
	cfg, err := p.LoadConfig(cfgFile, toolsFile)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) {
		if list.Len() != 1 {
			return strings.TrimRight(list.Format(), "\n")
		}
		err = list.Errors()[0]
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		msg := stepErr.Error()
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		if verbose {
			msg += fmt.Sprintf("\n\nCode: %s", stepErr.Code)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.RegisterFlagCompletionFunc("tools", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"ini"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
