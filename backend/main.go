package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maa-remote/backend/initialize"
	"maa-remote/backend/server"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	app, err := initialize.Build(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup failed:", err)
		os.Exit(1)
	}

	srv := server.StartHTTP(app.Cfg.HTTP.Host, app.Cfg.HTTP.Port, app.Router, func(err error) {
		app.Logger.Error().Err(err).Msg("http server stopped")
	})
	app.Logger.Info().Str("addr", srv.Addr).Msg("dispatch server listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Logger.Info().Msg("shutting down")
	if err := server.Shutdown(srv, 5*time.Second); err != nil {
		app.Logger.Error().Err(err).Msg("shutdown failed")
	}
}
