package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisperdict/internal/ipc"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Control audio recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	recordCmd.AddCommand(newRecordStartCommand(ctx), newRecordStopCommand(ctx))
	return recordCmd
}

func newRecordStartCommand(ctx *commandContext) *cobra.Command {
	var (
		device   string
		rate     int
		channels int
		backend  string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.StartRecordingRequest{
				DeviceID:   device,
				SampleRate: rate,
				Channels:   channels,
				Backend:    backend,
			}
			if cfg, err := ctx.ensureConfig(); err == nil {
				if !cmd.Flags().Changed("device") && cfg.Audio.Device != "" {
					req.DeviceID = cfg.Audio.Device
				}
				if !cmd.Flags().Changed("rate") {
					req.SampleRate = cfg.Audio.SampleRate
				}
				if !cmd.Flags().Changed("channels") {
					req.Channels = cfg.Audio.Channels
				}
				if !cmd.Flags().Changed("backend") && cfg.Audio.Backend != "" {
					req.Backend = cfg.Audio.Backend
				}
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.StartRecording(req)
			if err != nil {
				return presentError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recording started from %s (daemon %s)\n", req.DeviceID, status.State)
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "default", "Audio device ID")
	cmd.Flags().IntVar(&rate, "rate", 16000, "Sample rate in Hz")
	cmd.Flags().IntVar(&channels, "channels", 1, "Number of channels")
	cmd.Flags().StringVar(&backend, "backend", "", "Capture backend (parec, pw-cat, sox)")
	return cmd
}

func newRecordStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the current recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if _, err := client.StopRecording(); err != nil {
				return presentError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recording stopped")
			return nil
		},
	}
}
