package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus size and vector index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.Stats(rootContext())
			if err != nil {
				return err
			}
			if format == "json" {
				return printJSON(stats)
			}
			fmt.Printf("documents:    %d\n", stats.DocumentCount)
			fmt.Printf("chunks:       %d\n", stats.ChunkCount)
			fmt.Printf("code blocks:  %d\n", stats.CodeBlockCount)
			fmt.Printf("keywords:     %d\n", stats.KeywordCount)
			fmt.Printf("schema:       v%d\n", stats.SchemaVersion)
			fmt.Printf("vector index: %d vectors\n", stats.VectorIndexSize)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	return cmd
}
