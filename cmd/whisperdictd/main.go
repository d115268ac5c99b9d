// Command whisperdictd runs the whisperdict daemon in the foreground. It is
// normally launched detached by `whisperdict daemon start`, but can be run
// directly or supervised by an init system.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"whisperdict/internal/config"
	"whisperdict/internal/daemon"
	"whisperdict/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	socketFlag := flag.String("socket", "", "daemon socket path override")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if socket := strings.TrimSpace(*socketFlag); socket != "" {
		cfg.Daemon.SocketPath = socket
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Daemon.LogLevel,
		Format: cfg.Daemon.LogFormat,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d := daemon.New(cfg, logger)

	// SIGINT and SIGTERM stop via context cancellation above; SIGUSR1
	// toggles pause and resume.
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	go func() {
		for range usr1 {
			d.HandleSignal(syscall.SIGUSR1)
		}
	}()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited with error", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("whisperdictd shut down")
}
