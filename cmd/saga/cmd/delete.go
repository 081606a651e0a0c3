package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and every dependent row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			ok, err := a.pipeline.DeleteDocument(rootContext(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("document %s not found\n", args[0])
				return nil
			}
			fmt.Printf("deleted document %s\n", args[0])
			return nil
		},
	}
}

func newDeleteCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-crawl <crawl-id>",
		Short: "Delete every document ingested under a crawl session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pipeline.DeleteCrawlSession(rootContext(), args[0])
			fmt.Printf("deleted %d documents from crawl %s\n", result.Deleted, args[0])
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}
}
