package app

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/felixgeelhaar/provisioner/internal/adapters/archive"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/felixgeelhaar/provisioner/internal/ui"
)

// PrintReport outputs the results of a run.
func (p *Provisioner) PrintReport(report pipeline.Report) {
	title := "Provisioning Results"
	if report.DryRun {
		title = "Provisioning Plan (dry run)"
	}
	p.printf("\n%s\n", p.styles.Title.Render(title))
	p.printf("%s\n\n", p.styles.Muted.Render("run "+report.RunID))

	for _, r := range report.Results {
		p.printResult(r)
	}

	summary := report.Summary()
	p.printf("\nSummary: %d ran, %d already complete, %d failed, %d not run",
		summary[pipeline.StatusSucceeded],
		summary[pipeline.StatusComplete],
		summary[pipeline.StatusFailed],
		summary[pipeline.StatusNotRun])
	if report.DryRun {
		p.printf(", %d pending", summary[pipeline.StatusPending])
	}
	p.printf("\n")

	if failed, ok := report.Failed(); ok {
		p.printf("\nRe-run 'provisioner run' after fixing %s; completed steps will be skipped.\n", failed.StepID())
	}
}

// PrintStatus outputs the ledger state of every step.
func (p *Provisioner) PrintStatus(results []pipeline.StepResult) {
	p.printf("\n%s\n\n", p.styles.Title.Render("Step Status"))
	var complete int
	for _, r := range results {
		if r.Status() == pipeline.StatusComplete {
			complete++
		}
		p.printResult(r)
	}
	p.printf("\n%d of %d steps complete\n", complete, len(results))
}

// PrintCache outputs the cached archives grouped by package.
func (p *Provisioner) PrintCache(archives []archive.CachedArchive) {
	p.printf("\n%s\n\n", p.styles.Title.Render("Archive Cache"))
	if len(archives) == 0 {
		p.printf("  %s\n", p.styles.Muted.Render("(empty)"))
		return
	}

	current := ""
	for _, a := range archives {
		if a.Package != current {
			current = a.Package
			p.printf("  %s\n", p.styles.Info.Render(a.Package))
		}
		version := a.Version
		if version == "" {
			version = "-"
		}
		p.printf("    %-12s %s %s\n", version, a.Name, p.styles.Muted.Render(formatSize(a.Size)))
	}
}

// PrintFetch outputs the result of a one-off fetch.
func (p *Provisioner) PrintFetch(res ports.FetchResult) {
	if res.Cached {
		p.printf("%s %s %s\n", p.styles.Muted.Render("="), res.Name, p.styles.Muted.Render("(already cached)"))
		return
	}
	p.printf("%s %s %s\n", p.styles.Success.Render("✓"), res.Name, p.styles.Muted.Render(formatSize(res.Bytes)))
}

// PrintReset outputs the steps whose markers were removed.
func (p *Provisioner) PrintReset(cleared []string) {
	if len(cleared) == 0 {
		p.printf("No completion markers removed.\n")
		return
	}
	for _, id := range cleared {
		p.printf("%s %s\n", p.styles.Warning.Render("↺"), id)
	}
	p.printf("\n%d step(s) will run again.\n", len(cleared))
}

func (p *Provisioner) printResult(r pipeline.StepResult) {
	id := r.StepID().String()
	label := ui.Label(r.Status().String())

	switch r.Status() {
	case pipeline.StatusSucceeded:
		p.printf("  %s %s %s\n", p.styles.Success.Render("✓"), id, p.styles.Muted.Render(r.Duration().Round(time.Millisecond).String()))
	case pipeline.StatusComplete:
		p.printf("  %s %s %s\n", p.styles.Muted.Render("="), id, p.styles.Muted.Render("("+label+")"))
	case pipeline.StatusPending:
		p.printf("  %s %s %s\n", p.styles.Info.Render("+"), id, p.styles.Info.Render("("+label+")"))
	case pipeline.StatusFailed:
		p.printf("  %s %s: %v\n", p.styles.Error.Render("✗"), id, r.Error())
	case pipeline.StatusNotRun:
		p.printf("  %s %s %s\n", p.styles.Muted.Render("-"), id, p.styles.Muted.Render("("+label+")"))
	}
}

// printf is a helper that writes to the output writer, ignoring errors.
func (p *Provisioner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func formatSize(n int64) string {
	return humanize.IBytes(uint64(n))
}
