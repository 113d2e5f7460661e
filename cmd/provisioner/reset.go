package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [step...]",
	Short: "Remove completion markers so steps run again",
	Long: `Reset deletes the completion markers of the named steps. The next run
executes them again. Nothing else is touched: archives and build trees stay
where they are.

With --all every marker under <root>/state is removed, including markers
left behind by steps that are no longer in the manifest.`,
	RunE:              runReset,
	ValidArgsFunction: completeStepIDs,
}

var resetAll bool

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Remove every completion marker")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetAll && len(args) == 0 {
		return errors.New("name the steps to reset, or pass --all")
	}
	if resetAll && len(args) > 0 {
		return errors.New("--all cannot be combined with step names")
	}

	p, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cleared, err := p.Reset(cfg, args, resetAll)
	if err != nil && len(cleared) == 0 {
		return err
	}
	p.PrintReset(cleared)
	return err
}

// completeStepIDs offers the step IDs of the manifest named by --config.
func completeStepIDs(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cfg.StepIDs(), cobra.ShellCompDirectiveNoFileComp
}
