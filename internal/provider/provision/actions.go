package provision

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/provisioner/internal/adapters/archive"
	"github.com/felixgeelhaar/provisioner/internal/adapters/process"
	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// Names of the tools used by extract. Both can be remapped under tools:.
const (
	ToolTar   = "tar"
	ToolUnzip = "unzip"
)

// Executor performs configured actions relative to the current working
// directory. Every action is fatal on error; nothing is retried.
type Executor struct {
	runner  ports.CommandRunner
	fs      ports.FileSystem
	fetcher ports.ArchiveFetcher
	tool    func(name string) string
	chdir   func(dir string, fn func() error) error
	logger  ports.Logger
}

// NewExecutor creates an Executor. tool maps a tool name to the executable
// to run; nil runs names as given.
func NewExecutor(runner ports.CommandRunner, fs ports.FileSystem, fetcher ports.ArchiveFetcher, tool func(string) string) *Executor {
	if tool == nil {
		tool = func(name string) string { return name }
	}
	return &Executor{
		runner:  runner,
		fs:      fs,
		fetcher: fetcher,
		tool:    tool,
		chdir:   process.WithinDir,
		logger:  ports.Discard(),
	}
}

// Run performs actions in order and stops at the first error.
func (e *Executor) Run(ctx context.Context, actions []config.Action) error {
	for i, a := range actions {
		if err := e.run(ctx, a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, a.Kind, err)
		}
	}
	return nil
}

func (e *Executor) run(ctx context.Context, a config.Action) error {
	logger := ports.LoggerFromContextOr(ctx, e.logger)

	switch a.Kind {
	case config.ActionFetch:
		res, err := e.fetcher.Fetch(ctx, a.URL, a.Name)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "archive ready", ports.F(ports.FieldPath, res.Path), ports.F("cached", res.Cached))
		return nil

	case config.ActionExtract:
		return e.extract(ctx, a.Archive, a.Into)

	case config.ActionRun:
		return e.invoke(ctx, a.Args[0], a.Args[1:]...)

	case config.ActionRemove:
		logger.Debug(ctx, "remove", ports.F(ports.FieldPath, a.Path))
		return e.fs.RemoveAll(a.Path)

	case config.ActionMkdir:
		return e.fs.MkdirAll(a.Path, 0o755)

	case config.ActionCopy:
		dest := a.To
		if e.fs.IsDir(dest) {
			dest = filepath.Join(dest, filepath.Base(a.From))
		}
		logger.Debug(ctx, "copy", ports.F("from", a.From), ports.F("to", dest))
		return e.fs.CopyFile(a.From, dest)

	case config.ActionCopyTree:
		logger.Debug(ctx, "copy tree", ports.F("from", a.From), ports.F("to", a.To))
		return e.fs.CopyTree(a.From, a.To)

	case config.ActionRename:
		return e.fs.Rename(a.From, a.To)

	case config.ActionDir:
		return e.chdir(a.Path, func() error {
			return e.Run(ctx, a.Actions)
		})
	}

	return fmt.Errorf("unknown action kind %q", a.Kind)
}

// extract unpacks an archive. A stale tree from an earlier attempt is
// removed first. Without into, the archive is unpacked in place and is
// expected to hold a single directory named after it.
func (e *Executor) extract(ctx context.Context, name, into string) error {
	format := archive.FormatOf(name)
	if format == archive.FormatUnknown {
		return fmt.Errorf("extract %s: unknown archive format", name)
	}

	target := into
	if target == "" {
		target = archive.TrimExt(filepath.Base(name))
	}
	if err := e.fs.RemoveAll(target); err != nil {
		return fmt.Errorf("remove stale %s: %w", target, err)
	}

	var args []string
	switch format {
	case archive.FormatTar:
		args = []string{"xf", name}
		if into != "" {
			args = append(args, "-C", into)
		}
	case archive.FormatZip:
		args = []string{"-q", name}
		if into != "" {
			args = append(args, "-d", into)
		}
	}

	if into != "" {
		if err := e.fs.MkdirAll(into, 0o755); err != nil {
			return err
		}
	}

	tool := ToolTar
	if format == archive.FormatZip {
		tool = ToolUnzip
	}
	return e.invoke(ctx, tool, args...)
}

// invoke runs a named tool through the tool map and turns a non-zero exit
// into a *ToolError.
func (e *Executor) invoke(ctx context.Context, name string, args ...string) error {
	exe := e.tool(name)
	call := ports.CommandCall{Command: exe, Args: args}
	ports.LoggerFromContextOr(ctx, e.logger).Info(ctx, "run", ports.F(ports.FieldCommand, call.String()))

	result, err := e.runner.Run(ctx, exe, args...)
	if err != nil {
		if isCommandNotFound(err) {
			return &ToolNotFoundError{Tool: name, Err: err}
		}
		return fmt.Errorf("run %s: %w", exe, err)
	}
	if !result.Success() {
		return &ToolError{Tool: exe, Args: args, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return nil
}
