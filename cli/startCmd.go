package cli

import (
	"fmt"

	"soundamp/event"

	"github.com/spf13/cobra"
)

var (
	startCmdInput  int
	startCmdOutput int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Route an input device to an output device",
	Run: func(cmd *cobra.Command, args []string) {
		body, err := event.Start(startCmdInput, startCmdOutput)
		if err != nil {
			fmt.Println("Unable to create start event:", err)
			return
		}
		send(body, func(e *event.Event) bool {
			return e.Type == event.LinkedEvent || e.Type == event.ErrorEvent
		})
	},
}

func init() {
	startCmd.Flags().IntVarP(
		&startCmdInput,
		"input",
		"i",
		0,
		"Input device index, see the devices command")
	startCmd.Flags().IntVarP(
		&startCmdOutput,
		"output",
		"o",
		-1,
		"Output device index, the default output when negative")
}
