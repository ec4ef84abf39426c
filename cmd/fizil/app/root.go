package app

import (
	"github.com/spf13/cobra"
)

// NewFizilCommand creates the root command for the fizil tool.
func NewFizilCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fizil",
		Short: "A coverage-guided fuzzer for managed executables.",
		Long:  `Fizil mutates a seed corpus and runs each test case against a target, persisting inputs that crash it along a newly observed coverage path.`,
	}

	cmd.AddCommand(NewFuzzCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
