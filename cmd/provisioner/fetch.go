package main

import "github.com/spf13/cobra"

var fetchCmd = &cobra.Command{
	Use:   "fetch URL",
	Short: "Download an archive into the cache",
	Long: `Fetch downloads a single archive into <root>/archives.

An archive already in the cache is not downloaded again. URLs may use
http, https or, when the manifest configures a mirror, s3://bucket/key.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var fetchAs string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchAs, "as", "", "File name in the cache (default: last URL path segment)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	p, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := p.Fetch(commandContext(cmd), cfg, args[0], fetchAs)
	if err != nil {
		return err
	}
	p.PrintFetch(res)
	return nil
}
