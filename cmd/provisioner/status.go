package main

import "github.com/spf13/cobra"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which steps are complete",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	p, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := p.Status(cfg)
	if err != nil {
		return err
	}
	p.PrintStatus(results)
	return nil
}
