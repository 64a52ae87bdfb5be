package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ChatDigest/internal/app"
	"ChatDigest/internal/config"
	"ChatDigest/internal/logging"
)

func main() {
	var opts app.Options
	flag.BoolVar(&opts.TestMode, "test", false, "cap traversal and classification volume")
	flag.BoolVar(&opts.AnalyzeLatest, "analyze-latest", false, "classify the most recent persisted snapshot instead of collecting")
	flag.BoolVar(&opts.Once, "once", false, "run a single pipeline execution and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger, nil, opts)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
