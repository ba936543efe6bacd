package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"productpulse/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := app.StartupContext(ctx)
	application, err := app.NewApplication(startCtx)
	cancel()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
