package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func cmdModify() *cobra.Command {
	var symbol string
	var newQty int64

	cmd := &cobra.Command{
		Use:   "modify [order-id]",
		Short: "Change the remaining quantity of a resting order",
		Long: `Decreasing the quantity keeps the order's place in the queue.
Increasing it re-queues the order behind all orders currently resting
at its price.`,
		Args: cobra.ExactArgs(1),
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

			if err := sendModifyOrder(conn, symbol, id, newQty); err != nil {
				return fmt.Errorf("sending modify: %w", err)
			}
			awaitReport(conn)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "AAPL", "symbol the order belongs to")
	cmd.Flags().Int64Var(&newQty, "qty", 0, "new remaining quantity")
	return cmd
}
