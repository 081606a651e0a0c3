package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Ingest every .txt, .md, and .pdf file in the configured uploads directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pipeline.ProcessUploadsFolder(rootContext())
			fmt.Printf("processed %d files from %s\n", result.Processed, a.cfg.Paths.UploadsDir)
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}
}
