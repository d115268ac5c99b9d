package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"whisperdict/internal/sessions"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Show recording session history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Sessions.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Session history is disabled in the configuration")
				return nil
			}

			store, err := sessions.Open(cfg.Sessions.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			recorded, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recorded) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recording sessions yet")
				return nil
			}

			rows := make([][]string, 0, len(recorded))
			for _, session := range recorded {
				ended := "recording"
				if session.EndedAt != nil {
					ended = session.Duration().Truncate(time.Second).String()
				}
				rows = append(rows, []string{
					session.ID[:8],
					session.DeviceID,
					session.Backend,
					fmt.Sprintf("%d Hz", session.SampleRate),
					session.StartedAt.Local().Format("2006-01-02 15:04:05"),
					ended,
					humanize.Bytes(uint64(session.Bytes)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Device", "Backend", "Rate", "Started", "Duration", "Data"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show (0 for all)")
	return cmd
}
