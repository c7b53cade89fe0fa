package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"spaceledger/internal/ingestion/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered source parsers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadIngestConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		for _, p := range sources.DefaultRegistry(cfg.ParserConfig()).All() {
			fmt.Printf("%-14s %s\n", p.Source, p.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
