package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/scriptc/opt"
)

func newPassesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List the registered passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range opt.DefaultRegistry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
