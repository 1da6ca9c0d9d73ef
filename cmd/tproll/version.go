package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/tproll/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("tproll"))
		},
	}
}
