package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func cmdCancel() *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "cancel [order-id]",
		Short: "Cancel a resting order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id: %w", err)
			}

			serverAddr, _ := cmd.Flags().GetString("server")
			conn, err := dial(serverAddr)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", serverAddr, err)
			}
			defer conn.Close()

			if err := sendCancelOrder(conn, symbol, id); err != nil {
				return fmt.Errorf("sending cancel: %w", err)
			}
			awaitReport(conn)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "AAPL", "symbol the order belongs to")
	return cmd
}
