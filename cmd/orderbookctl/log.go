package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cmdLog() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Ask the server to log a snapshot of every book it hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverAddr, _ := cmd.Flags().GetString("server")
			conn, err := dial(serverAddr)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", serverAddr, err)
			}
			defer conn.Close()

			return sendLog(conn)
		},
	}
	return cmd
}
