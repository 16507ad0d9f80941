package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"maa-remote/agent/internal/client"
	"maa-remote/agent/internal/config"
	"maa-remote/agent/internal/executor"
	"maa-remote/agent/internal/identity"
	"maa-remote/agent/internal/logger"
	"maa-remote/agent/internal/runtime"
)

func main() {
	var (
		cfgPath = flag.String("config", "config/config.yaml", "Path to configuration file")
		verbose = flag.Bool("verbose", false, "Enable debug logs")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogPath, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open log file:", err)
		os.Exit(1)
	}

	deviceID, err := identity.Load(cfg.DBPath, cfg.DeviceID)
	if err != nil {
		log.Error().Err(err).Msg("cannot resolve device identity")
		os.Exit(1)
	}
	if cfg.DeviceID == "" {
		log.Warn().Str("device", deviceID).Msg("no device_id configured, using locally stored id")
	}

	c := client.New(cfg.ServerBase, cfg.GetTaskPath, cfg.ReportStatusPath, &http.Client{})
	runner := runtime.New(cfg, c, executor.ProcessExecutor{}, deviceID, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("agent stopped")
		os.Exit(1)
	}
	log.Info().Msg("agent stopped")
}
