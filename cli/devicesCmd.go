package cli

import (
	"fmt"

	"soundamp/audio"
	"soundamp/device"

	"github.com/spf13/cobra"
)

// Prints a device list in index order, marking the default device
func printDevices(title string, devices []*device.Device, def *device.Device) {
	fmt.Println(title)
	for _, d := range devices {
		mark := " "
		if def != nil && d.ID == def.ID {
			mark = "*"
		}
		fmt.Printf("%s %s (%d channels, %.0f Hz)\n", mark, d, d.Channels, d.SampleRate)
	}
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input and output devices",
	Run: func(cmd *cobra.Command, args []string) {
		pa := audio.NewPortAudio(audio.NewConfig())
		if err := pa.Initialize(); err != nil {
			fmt.Println("Unable to initialise audio:", err)
			return
		}
		defer pa.Terminate()
		l := device.PortAudio{}
		inputs, err := l.Inputs()
		if err != nil {
			fmt.Println("Unable to list input devices:", err)
			return
		}
		outputs, err := l.Outputs()
		if err != nil {
			fmt.Println("Unable to list output devices:", err)
			return
		}
		def, err := l.DefaultOutput()
		if err != nil {
			fmt.Println("No default output device:", err)
		}
		printDevices("Inputs:", inputs, nil)
		printDevices("Outputs:", outputs, def)
	},
}
