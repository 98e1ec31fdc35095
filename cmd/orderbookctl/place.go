package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ironbook/internal/book"
)

func cmdPlace() *cobra.Command {
	var symbol, sideStr, typeStr string
	var price float64
	var qty int64

	cmd := &cobra.Command{
		Use:   "place [order-id]",
		Short: "Place a new limit or market order",
		Long: `Place a new order against a running orderbookd.

Examples:
  orderbookctl place 1 --symbol AAPL --side buy --type limit --price 100.50 --qty 10
  orderbookctl place 2 --symbol AAPL --side sell --type market --qty 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id: %w", err)
			}

			side, err := parseSide(sideStr)
			if err != nil {
				return err
			}
			typ, err := parseType(typeStr)
			if err != nil {
				return err
			}

			serverAddr, _ := cmd.Flags().GetString("server")
			conn, err := dial(serverAddr)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", serverAddr, err)
			}
			defer conn.Close()

			if err := sendNewOrder(conn, symbol, side, typ, id, price, qty); err != nil {
				return fmt.Errorf("sending order: %w", err)
			}
			awaitReport(conn)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "AAPL", "symbol to trade")
	cmd.Flags().StringVar(&sideStr, "side", "buy", "order side: buy or sell")
	cmd.Flags().StringVar(&typeStr, "type", "limit", "order type: limit or market")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price (ignored for market orders)")
	cmd.Flags().Int64Var(&qty, "qty", 0, "quantity")
	return cmd
}

func parseSide(s string) (book.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return book.Buy, nil
	case "sell":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("invalid side %q (use buy or sell)", s)
	}
}

func parseType(s string) (book.OrderType, error) {
	switch strings.ToLower(s) {
	case "limit":
		return book.LimitOrder, nil
	case "market":
		return book.MarketOrder, nil
	default:
		return 0, fmt.Errorf("invalid order type %q (use limit or market)", s)
	}
}
