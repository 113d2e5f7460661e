// Package app wires the provisioning pipeline to its real adapters and
// renders results for the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/felixgeelhaar/provisioner/internal/adapters/archive"
	"github.com/felixgeelhaar/provisioner/internal/adapters/command"
	"github.com/felixgeelhaar/provisioner/internal/adapters/filesystem"
	"github.com/felixgeelhaar/provisioner/internal/adapters/ledger"
	"github.com/felixgeelhaar/provisioner/internal/adapters/process"
	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/felixgeelhaar/provisioner/internal/provider/provision"
	"github.com/felixgeelhaar/provisioner/internal/ui"
)

// RunOptions tune a single run.
type RunOptions struct {
	DryRun bool
	Only   []string
}

// Provisioner is the main application orchestrator.
type Provisioner struct {
	runner    ports.CommandRunner
	fs        ports.FileSystem
	logger    ports.Logger
	sources   []ports.ArchiveSource
	newLedger func(stateDir string) ports.ResettableLedger
	styles    ui.Styles
	out       io.Writer
}

// New creates a new Provisioner writing human-readable output to out.
// Tool output is echoed to out as it is produced.
func New(out io.Writer) *Provisioner {
	return &Provisioner{
		runner: command.NewRealRunner().WithEcho(out, out),
		fs:     filesystem.NewRealFileSystem(),
		logger: ports.Discard(),
		newLedger: func(stateDir string) ports.ResettableLedger {
			return ledger.NewFileLedger(stateDir)
		},
		styles: ui.DefaultStyles(),
		out:    out,
	}
}

// WithLogger sets the logger.
func (p *Provisioner) WithLogger(logger ports.Logger) *Provisioner {
	p.logger = logger
	return p
}

// WithRunner replaces the external tool runner.
func (p *Provisioner) WithRunner(runner ports.CommandRunner) *Provisioner {
	p.runner = runner
	return p
}

// WithSources replaces the archive sources derived from configuration.
func (p *Provisioner) WithSources(sources ...ports.ArchiveSource) *Provisioner {
	p.sources = sources
	return p
}

// WithStyles sets the output styles.
func (p *Provisioner) WithStyles(styles ui.Styles) *Provisioner {
	p.styles = styles
	return p
}

// LoadConfig loads and resolves the manifest, applying the tools overlay
// when toolsPath is set.
func (p *Provisioner) LoadConfig(path, toolsPath string) (*config.Config, error) {
	var opts []config.LoaderOption
	if toolsPath != "" {
		opts = append(opts, config.WithToolsFile(toolsPath))
	}
	return config.NewLoader(opts...).Load(path)
}

// Run executes the configured steps in order, skipping the complete ones.
// PATH additions and env_file variables are in effect for the duration of
// the run and the working directory is the archive cache.
func (p *Provisioner) Run(ctx context.Context, cfg *config.Config, opts RunOptions) (pipeline.Report, error) {
	fetcher, err := p.fetcher(cfg)
	if err != nil {
		return pipeline.Report{}, err
	}

	exec := provision.NewExecutor(p.runner, p.fs, fetcher, cfg.Tool)
	pl, err := p.pipeline(cfg, exec, opts)
	if err != nil {
		return pipeline.Report{}, err
	}

	if opts.DryRun {
		return pl.Run(ctx)
	}

	env := process.NewEnvironment().AppendPath(cfg.Path()...)
	if cfg.EnvFile() != "" {
		if err := env.LoadFile(cfg.EnvFile()); err != nil {
			return pipeline.Report{}, err
		}
	}
	restore, err := env.Apply()
	if err != nil {
		return pipeline.Report{}, err
	}
	defer restore()

	for _, dir := range []string{cfg.ArchivesDir(), cfg.StateDir()} {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return pipeline.Report{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	var report pipeline.Report
	err = process.WithinDir(cfg.ArchivesDir(), func() error {
		var runErr error
		report, runErr = pl.Run(ctx)
		return runErr
	})
	return report, err
}

// Status reports which steps are complete and which would run.
func (p *Provisioner) Status(cfg *config.Config) ([]pipeline.StepResult, error) {
	pl, err := p.pipeline(cfg, nil, RunOptions{})
	if err != nil {
		return nil, err
	}
	return pl.Status()
}

// Reset removes completion markers so the steps run again. With all set,
// every marker in the state directory is removed, including markers of
// steps no longer in the manifest. It returns the IDs whose markers were
// removed.
func (p *Provisioner) Reset(cfg *config.Config, ids []string, all bool) ([]string, error) {
	l := p.newLedger(cfg.StateDir())

	recorded, err := l.List()
	if err != nil {
		return nil, err
	}
	complete := make(map[string]bool, len(recorded))
	for _, id := range recorded {
		complete[id] = true
	}

	targets := ids
	if all {
		targets = recorded
	}

	var cleared []string
	for _, id := range targets {
		if _, known := cfg.Step(id); !known && !complete[id] {
			return cleared, fmt.Errorf("unknown step %q", id)
		}
		if !complete[id] {
			continue
		}
		if err := l.Clear(id); err != nil {
			return cleared, err
		}
		cleared = append(cleared, id)
	}
	sort.Strings(cleared)
	return cleared, nil
}

// Fetch downloads a single archive into the cache.
func (p *Provisioner) Fetch(ctx context.Context, cfg *config.Config, url, name string) (ports.FetchResult, error) {
	fetcher, err := p.fetcher(cfg)
	if err != nil {
		return ports.FetchResult{}, err
	}
	return fetcher.Fetch(ctx, url, name)
}

// Cache lists the archives in the cache.
func (p *Provisioner) Cache(cfg *config.Config) ([]archive.CachedArchive, error) {
	return archive.ListCache(cfg.ArchivesDir())
}

func (p *Provisioner) pipeline(cfg *config.Config, exec *provision.Executor, opts RunOptions) (*pipeline.Pipeline, error) {
	steps, err := provision.NewProvider(exec).Compile(cfg, opts.Only...)
	if err != nil {
		return nil, err
	}

	pl := pipeline.New(p.newLedger(cfg.StateDir()),
		pipeline.WithLogger(p.logger),
		pipeline.WithDryRun(opts.DryRun),
	)
	for _, step := range steps {
		if err := pl.Add(step); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

func (p *Provisioner) fetcher(cfg *config.Config) (*archive.Fetcher, error) {
	sources := p.sources
	if sources == nil {
		sources = []ports.ArchiveSource{archive.NewHTTPSource(http.DefaultClient)}
		if m := cfg.Mirror(); m.Enabled() {
			s3, err := archive.NewS3Source(archive.S3Config{
				Endpoint: m.Endpoint,
				Region:   m.Region,
				UseSSL:   m.UseSSL,
			})
			if err != nil {
				return nil, err
			}
			sources = append(sources, s3)
		}
	}
	return archive.NewFetcher(cfg.ArchivesDir(), p.fs, sources...).WithLogger(p.logger), nil
}
