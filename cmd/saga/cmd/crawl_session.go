package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/internal/ingest"
)

func newCrawlSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl-session",
		Short: "Generate a new crawl session id for tagging a batch of ingest calls",
		Long: `crawl-session prints a new id to pass as --crawl-id to repeated
saga ingest calls, so the batch can later be removed as a unit with
saga delete-crawl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(ingest.NewCrawlSessionID())
			return nil
		},
	}
}
