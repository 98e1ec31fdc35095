// Command orderbookctl is a TCP client for orderbookd, structured as
// a cobra.Command subcommand tree: one subcommand per wire operation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orderbookctl",
		Short: "Client for an orderbookd matching-engine server",
	}

	cmd.PersistentFlags().String("server", "127.0.0.1:9001", "address of the orderbookd server")

	cmd.AddCommand(
		cmdPlace(),
		cmdCancel(),
		cmdModify(),
		cmdLog(),
	)
	return cmd
}
