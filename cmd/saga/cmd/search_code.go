package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/internal/query"
)

func newSearchCodeCmd() *cobra.Command {
	var limit int
	var language string
	var format string

	cmd := &cobra.Command{
		Use:   "search-code <text>",
		Short: "Search extracted code blocks by vector similarity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			hits, err := a.engine.SearchCodeBlocks(rootContext(), strings.Join(args, " "), query.CodeBlockOptions{
				Limit:    limit,
				Language: language,
			})
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(hits)
			}
			if len(hits) == 0 {
				fmt.Println("no matching code blocks")
				return nil
			}
			for i, h := range hits {
				fmt.Printf("%d. %s  (score %.3f, %s)\n", i+1, h.Block.ID, h.Score, h.Block.Language)
				fmt.Printf("   document: %s\n", h.Block.DocumentID)
				snippet := h.Block.Content
				if len(snippet) > 200 {
					snippet = snippet[:200] + "..."
				}
				fmt.Printf("   %s\n", strings.ReplaceAll(snippet, "\n", " "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum code blocks to return")
	cmd.Flags().StringVarP(&language, "language", "l", "", "filter by detected language")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")

	return cmd
}
