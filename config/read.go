// Configuration file and environment
//
// Configuration is read from a TOML file, either the path given on the
// command line or config.toml in /etc/soundamp or $HOME/.config/soundamp.
// Every key can be overridden by an environment variable prefixed with
// SOUNDAMP_, e.g. SOUNDAMP_LINK_CAPACITY=96000.

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Configuration defaults
func init() {
	viper.SetTypeByDefaultValue(true)
	viper.SetConfigType("toml")
	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/soundamp")
	viper.AddConfigPath("$HOME/.config/soundamp")
	viper.SetEnvPrefix("SOUNDAMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Read configuration, path may be empty to search the default locations.
// A missing config file in the default locations is not an error.
func Read(path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return err
		}
		viper.SetConfigFile(path)
	}
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if path == "" && errors.As(err, &notFound) {
		return nil
	}
	return err
}
