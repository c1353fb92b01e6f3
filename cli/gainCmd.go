package cli

import (
	"fmt"

	"soundamp/event"
	"soundamp/gain"

	"github.com/spf13/cobra"
)

var (
	gainCmdDelta float32
	gainCmdDown  bool
)

var gainCmd = &cobra.Command{
	Use:   "gain",
	Short: "Adjust the gain",
	Run: func(cmd *cobra.Command, args []string) {
		delta := gainCmdDelta
		if !cmd.Flags().Changed("delta") {
			delta = gain.NewConfig().Step()
		}
		if gainCmdDown {
			delta = -delta
		}
		body, err := event.Gain(delta)
		if err != nil {
			fmt.Println("Unable to create gain event:", err)
			return
		}
		send(body, func(e *event.Event) bool {
			return e.Type == event.GainChangedEvent || e.Type == event.ErrorEvent
		})
	},
}

func init() {
	gainCmd.Flags().Float32VarP(
		&gainCmdDelta,
		"delta",
		"d",
		0,
		"Amount to add to the gain, defaults to gain.step")
	gainCmd.Flags().BoolVar(
		&gainCmdDown,
		"down",
		false,
		"Lower the gain instead of raising it")
}
