package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"symbol_backend/internal/app/cli"
	"symbol_backend/internal/app/config"
	"symbol_backend/internal/app/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(ctx context.Context, cfg config.Config, logger *slog.Logger) (cli.SymbolService, func(), error) {
		p, err := di.NewPipeline(ctx, cfg, di.Options{}, logger)
		if err != nil {
			return nil, nil, err
		}
		return p.Registry, p.Close, nil
	}

	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, build)
	stop()
	os.Exit(code)
}
