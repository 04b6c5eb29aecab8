// Package main is the entry point for the collider uploader.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/voxhull/collider-uploader/internal/config"
	"github.com/voxhull/collider-uploader/internal/logger"
	"github.com/voxhull/collider-uploader/internal/pipeline"
	"github.com/voxhull/collider-uploader/internal/upload"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Collider Uploader ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := openSink(ctx, cfg)
	if err != nil {
		logger.Error("failed to open upload sink", zap.Error(err))
		os.Exit(1)
	}
	defer sink.Close()

	p, err := pipeline.New(cfg, sink)
	if err != nil {
		logger.Error("failed to build pipeline", zap.Error(err))
		os.Exit(1)
	}

	rep, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline error", zap.Error(err))
		os.Exit(1)
	}

	for _, w := range rep.Warnings {
		logger.Warn(w)
	}
	logger.Info("done",
		zap.Int("collected", rep.Collected),
		zap.Int("bodies", rep.Bodies),
		zap.Int("uploaded", rep.Uploaded),
	)
	if !rep.Clean() {
		os.Exit(2)
	}
}

// openSink connects the configured delivery sink. Dry runs log bodies
// instead of sending them anywhere.
func openSink(ctx context.Context, cfg *config.Config) (upload.Sink, error) {
	if cfg.Upload.DryRun {
		return upload.LogSink{}, nil
	}

	client := upload.NewClient()
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Upload.ConnectTimeout)
	defer cancel()
	if err := client.Connect(dialCtx, cfg.Upload.Endpoint); err != nil {
		return nil, err
	}
	return client, nil
}
