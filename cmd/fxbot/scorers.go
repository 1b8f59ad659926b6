package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScorersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scorers",
		Short: "List the registered signal scorers",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			for _, name := range orch.Registry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
