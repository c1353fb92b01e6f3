package nats

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
)

const (
	vEnabled       = "nats.enabled"
	vURL           = "nats.url"
	vSubject       = "nats.subject"
	vEventsSubject = "nats.events_subject"
	vRetry         = "nats.retry"
)

func init() {
	viper.BindEnv(vEnabled)
	viper.SetDefault(vEnabled, false)
	viper.BindEnv(vURL)
	viper.SetDefault(vURL, nats.DefaultURL)
	viper.BindEnv(vSubject)
	viper.SetDefault(vSubject, "soundamp.commands")
	viper.BindEnv(vEventsSubject)
	viper.SetDefault(vEventsSubject, "soundamp.events")
	viper.BindEnv(vRetry)
	viper.SetDefault(vRetry, "2s")
}

type Configurer interface {
	Enabled() bool
	URL() string
	Subject() string
	EventsSubject() string
	Retry() time.Duration
}

type Config struct{}

func (c Config) Enabled() bool {
	return viper.GetBool(vEnabled)
}

func (c Config) URL() string {
	return viper.GetString(vURL)
}

// Subject command events are received on
func (c Config) Subject() string {
	return viper.GetString(vSubject)
}

// Subject notifications are published on
func (c Config) EventsSubject() string {
	return viper.GetString(vEventsSubject)
}

// Delay between reconnection attempts
func (c Config) Retry() time.Duration {
	return viper.GetDuration(vRetry)
}

func NewConfig() Config {
	return Config{}
}
