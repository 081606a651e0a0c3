package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the store for orphaned rows and index drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.store.CheckConsistency(rootContext())
			if err != nil {
				return err
			}

			if report.OK {
				fmt.Println("consistency check passed")
				return nil
			}
			fmt.Println("consistency check found issues:")
			if !report.SchemaVersionOK {
				fmt.Println("  schema version mismatch")
			}
			if len(report.OrphanedChunks) > 0 {
				fmt.Printf("  %d orphaned chunks\n", len(report.OrphanedChunks))
			}
			if len(report.OrphanedCodeBlocks) > 0 {
				fmt.Printf("  %d orphaned code blocks\n", len(report.OrphanedCodeBlocks))
			}
			if len(report.MissingVectorIDs) > 0 {
				fmt.Printf("  %d ids missing from the vector index\n", len(report.MissingVectorIDs))
			}
			return nil
		},
	}
}
