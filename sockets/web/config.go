package web

import (
	"time"

	"github.com/spf13/viper"
)

const (
	vEnabled = "websocket.enabled"
	vHost    = "websocket.host"
	vPath    = "websocket.path"
	vRetry   = "websocket.retry"
)

func init() {
	viper.BindEnv(vEnabled)
	viper.SetDefault(vEnabled, false)
	viper.BindEnv(vHost)
	viper.SetDefault(vHost, "localhost:8000")
	viper.BindEnv(vPath)
	viper.SetDefault(vPath, "/")
	viper.BindEnv(vRetry)
	viper.SetDefault(vRetry, "5s")
}

type Configurer interface {
	Enabled() bool
	Host() string
	Path() string
	Retry() time.Duration
}

type Config struct{}

// Connect to a remote controller
func (c Config) Enabled() bool {
	return viper.GetBool(vEnabled)
}

func (c Config) Host() string {
	return viper.GetString(vHost)
}

func (c Config) Path() string {
	return viper.GetString(vPath)
}

// Delay between connection attempts
func (c Config) Retry() time.Duration {
	return viper.GetDuration(vRetry)
}

func NewConfig() Config {
	return Config{}
}
