package main

import (
	"fmt"

	"github.com/pevans/ytexport/control"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the videos found on the agent's page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}

			status := session.Open(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, status.Message)

			if status.Kind == control.StatusFound {
				session.Preview().Render(out)
			}
			return status.Err()
		},
	}
}
