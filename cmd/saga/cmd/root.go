package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/pkg/version"
)

var debugMode bool

// NewRootCmd creates the root command for the saga CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saga",
		Short: "Local-first document store with semantic and keyword search",
		Long: `saga ingests documents, chunks and embeds them, and serves
semantic queries over the result entirely on the local filesystem.

There is no server to run; every subcommand opens the store directly.`,
		Version: version.Version,
	}
	cmd.SetVersionTemplate("saga version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newSearchCodeCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newDeleteCrawlCmd())
	cmd.AddCommand(newCrawlSessionCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
