package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage sessions tracked by the service",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Stop tracking one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			if err := api.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.messages(cmd), "Deleted session %s\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Stop tracking every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			n, err := api.ClearSessions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.messages(cmd), "Cleared %d sessions\n", n)
			return nil
		},
	})
	return cmd
}
