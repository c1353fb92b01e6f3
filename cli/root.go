package cli

import (
	"fmt"
	"os"

	"soundamp/config"
	"soundamp/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "soundamp",
	Short: "Route a microphone to the speakers with adjustable gain",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Read(configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Unable to read config:", err)
		}
		logger.SetGlobalLogger(logger.New(logger.NewConfig()))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Optional absolute path to toml config file")
	rootCmd.PersistentFlags().StringVarP(
		&logLevel,
		"log-level",
		"l",
		"",
		"Log level (debug, info, warn, error)")
	logger.BindLogLevelFlag(rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.AddCommand(
		serveCmd,
		devicesCmd,
		startCmd,
		gainCmd,
		consoleCmd,
		buildCmd)
}

func Run() error {
	return rootCmd.Execute()
}
