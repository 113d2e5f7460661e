package main

import (
	"github.com/felixgeelhaar/provisioner/internal/app"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the provisioning steps",
	Long: `Run executes the manifest's steps in declaration order.

Steps recorded as complete are skipped. The first failing step stops the
run; steps completed before it keep their markers, so running again picks
up where the failure happened.

Use --dry-run to list which steps would run without changing anything.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runDryRun bool
	runOnly   []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Show which steps would run without running them")
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "Run only the named steps (repeatable)")
	_ = runCmd.RegisterFlagCompletionFunc("only", completeStepIDs)
}

func runRun(cmd *cobra.Command, _ []string) error {
	p, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	report, err := p.Run(commandContext(cmd), cfg, app.RunOptions{
		DryRun: runDryRun,
		Only:   runOnly,
	})
	if report.RunID != "" {
		p.PrintReport(report)
	}
	return err
}
