package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"whisperdict/internal/daemonctl"
	"whisperdict/internal/ipc"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the whisperdict daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	daemonCmd.AddCommand(
		newDaemonRunCommand(ctx),
		newDaemonStartCommand(ctx),
		newDaemonStopCommand(ctx),
		newDaemonStatusCommand(ctx),
		newDaemonPauseCommand(ctx),
		newDaemonResumeCommand(ctx),
	)
	return daemonCmd
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon, launching the background process if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}

			if status, err := daemonctl.ProbeStatus(socket); err == nil {
				fmt.Fprintf(stdout, "Daemon already running (state %s)\n", status.State)
				return nil
			} else if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				return presentError(err)
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			fmt.Fprintln(stdout, "Daemon not running, launching...")
			if err := daemonctl.Launch(exe, daemonctl.LaunchOptions{
				SocketPath: socket,
				ConfigPath: ctx.configPath(),
			}); err != nil {
				return err
			}

			client, err := daemonctl.WaitForClient(socket, 10*time.Second)
			if err != nil {
				return err
			}
			defer client.Close()

			status, err := client.Status()
			if err != nil {
				return presentError(err)
			}
			fmt.Fprintf(stdout, "Daemon started (state %s)\n", status.State)
			return nil
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}

			err = daemonctl.StopAndWait(socket, 10*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return presentError(err)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status()
			if err != nil {
				return presentError(err)
			}

			rows := [][]string{
				{"State", status.State},
				{"Uptime", formatUptime(status.Uptime)},
				{"Model loaded", yesNo(status.ModelLoaded)},
			}
			if status.CurrentModel != "" {
				rows = append(rows, []string{"Model", status.CurrentModel})
			}
			if status.ErrorMessage != "" {
				rows = append(rows, []string{"Error", status.ErrorMessage})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newDaemonPauseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lifecycleRequest(cmd, ctx, func(client *ipc.Client) (ipc.StatusPayload, error) {
				return client.Pause()
			})
		},
	}
}

func newDaemonResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lifecycleRequest(cmd, ctx, func(client *ipc.Client) (ipc.StatusPayload, error) {
				return client.Resume()
			})
		},
	}
}

func lifecycleRequest(cmd *cobra.Command, ctx *commandContext, op func(*ipc.Client) (ipc.StatusPayload, error)) error {
	client, err := ctx.client()
	if err != nil {
		return err
	}
	status, err := op(client)
	if err != nil {
		return presentError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Daemon is now %s (uptime %s)\n", status.State, formatUptime(status.Uptime))
	return nil
}

func formatUptime(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Truncate(time.Second).String()
}
