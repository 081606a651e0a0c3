package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version.Full())
			return nil
		},
	}
}
