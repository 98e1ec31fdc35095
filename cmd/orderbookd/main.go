// Command orderbookd runs the TCP front end over one or more
// symbol order books, with signal-driven graceful shutdown.
package main

import (
	"context"
	"flag"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ironbook/internal/netproto"
)

func main() {
	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 9001, "port to listen on")
	symbols := flag.String("symbols", "AAPL", "comma-separated list of symbols to host")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	syms := splitSymbols(*symbols)
	srv := netproto.New(*address, *port, syms...)

	log.Info().Strs("symbols", syms).Msg("starting orderbookd")
	srv.Run(ctx)
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
