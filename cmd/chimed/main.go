// Package main is the entry point for the chimed sound preview daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/daemon"
	"github.com/jmylchreest/chime/internal/dbus"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/chime/config.toml)")
	flag.Parse()

	if *showVersion {
		fmt.Println("chimed version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("chimed failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	logger.Info("starting chimed", "version", version)

	if configPath == "" {
		var err error
		configPath, err = config.ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.DBus.Enabled {
		logger.Warn("dbus.enabled is false; chimed will not be reachable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := daemon.New(cfg, configPath, logger)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		d.Stop()
		return err
	}

	logger.Info("chimed ready", "dbus_interface", dbus.DBusInterface, "path", dbus.DBusPath)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	cancel()
	d.Stop()

	logger.Info("chimed stopped")
	return nil
}
