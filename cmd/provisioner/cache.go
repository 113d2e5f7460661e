package main

import "github.com/spf13/cobra"

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List cached archives",
	Args:  cobra.NoArgs,
	RunE:  runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, _ []string) error {
	p, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	archives, err := p.Cache(cfg)
	if err != nil {
		return err
	}
	p.PrintCache(archives)
	return nil
}
