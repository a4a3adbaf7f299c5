// Package main is the entry point for the cspellio HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CageChen/cspellio/internal/config"
	"github.com/CageChen/cspellio/internal/handler"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	backend := flag.String("backend", "", "Backend to serve (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
			os.Exit(1)
		}
	}

	log := cfg.NewLogger(os.Stderr)
	slog.SetDefault(log)

	io, err := cfg.NewBackend(log)
	if err != nil {
		log.Error("failed to create backend", "backend", cfg.Backend, "err", err)
		os.Exit(1)
	}

	log.Info("cspellio server",
		"config", cfg.GetConfigFilePath(),
		"backend", cfg.Backend,
		"root", cfg.Root,
		"url", fmt.Sprintf("http://localhost:%d", cfg.Port),
	)

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(io, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	if err := handler.ListenAndServe(ctx, addr, r, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
