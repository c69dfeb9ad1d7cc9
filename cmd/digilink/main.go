package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tracefirst/digilink/internal/config"
	"github.com/tracefirst/digilink/internal/telemetry"
	"github.com/tracefirst/digilink/pkg/digilink"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := os.Getenv("DIGILINK_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("digilink", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	opts := append([]digilink.Option{digilink.WithLogger(logger)}, digilink.FromConfig(cfg)...)
	app, err := digilink.New(opts...)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if _, statErr := os.Stat(configPath); statErr == nil {
		if err := config.Watch(ctx, configPath, logger, func(next *config.Config) {
			// Listen port and storage cannot change while running; flag the
			// drift so operators know a restart is needed.
			logger.Warn("config file changed on disk, restart to apply",
				slog.Int("port", next.Server.Port),
				slog.String("storage", next.Storage.Type))
		}); err != nil {
			logger.Error("config watch failed", slog.String("error", err.Error()))
		}
	}

	logger.Info("digilink started",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage", cfg.Storage.Type),
		slog.Bool("assistant_configured", cfg.Assistant.APIKey != ""),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
