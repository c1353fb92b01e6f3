package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"soundamp/console"
	"soundamp/event"
	"soundamp/gain"

	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Control a running router from the keyboard",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := dial()
		if err != nil {
			fmt.Println("Unable to connect to soundamp:", err)
			return
		}
		defer client.Close()
		c := console.New(os.Stdin, os.Stdout, client, gain.NewConfig().Step())
		go func() {
			for {
				b, err := client.Read()
				if err != nil {
					return
				}
				e := &event.Event{}
				if err := json.Unmarshal(b, e); err != nil {
					continue
				}
				c.Println(console.Describe(e))
			}
		}()
		if err := c.Run(); err != nil {
			fmt.Println("Console error:", err)
		}
	},
}
