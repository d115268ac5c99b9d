package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"whisperdict/internal/daemon"
	"whisperdict/internal/logging"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if socket, err := ctx.socketPath(); err == nil {
				cfg.Daemon.SocketPath = socket
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Daemon.LogLevel,
				Format: cfg.Daemon.LogFormat,
			})
			if err != nil {
				return err
			}

			d := daemon.New(cfg, logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			usr1 := make(chan os.Signal, 1)
			signal.Notify(usr1, syscall.SIGUSR1)
			defer signal.Stop(usr1)
			go func() {
				for range usr1 {
					d.HandleSignal(syscall.SIGUSR1)
				}
			}()

			return d.Run(runCtx)
		},
	}
}
