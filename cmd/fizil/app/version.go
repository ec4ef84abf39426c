package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the tool's release version, set at build time via -ldflags.
var Version = "dev"

// NewVersionCommand creates the "version" subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fizil version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return nil
		},
	}
}
