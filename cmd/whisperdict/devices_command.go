package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices the daemon can record from",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			devices, err := client.ListDevices()
			if err != nil {
				return presentError(err)
			}

			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audio input devices found")
				return nil
			}

			rows := make([][]string, 0, len(devices))
			for _, device := range devices {
				rows = append(rows, []string{
					device.ID,
					device.Name,
					device.Description,
					yesNo(device.IsDefault),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Description", "Default"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}
