package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(logger, level).ExecuteContext(ctx); err != nil {
		logger.Error("Conversion failed", "err", err)
		stop()
		os.Exit(1)
	}
}
