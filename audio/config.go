// Link Configuration
//
// Example TOML:
// [link]
// capacity = 48000
// prefill = 0
// latency = "high"
// frames_per_buffer = 0

package audio

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	vCapacity        = "link.capacity"
	vPrefill         = "link.prefill"
	vLatency         = "link.latency"
	vFramesPerBuffer = "link.frames_per_buffer"
)

func init() {
	viper.BindEnv(vCapacity)
	viper.SetDefault(vCapacity, 48000)
	viper.BindEnv(vPrefill)
	viper.SetDefault(vPrefill, 0)
	viper.BindEnv(vLatency)
	viper.SetDefault(vLatency, "high")
	viper.BindEnv(vFramesPerBuffer)
	viper.SetDefault(vFramesPerBuffer, FRAMES_PER_BUFFER)
}

type Configurer interface {
	Capacity() int
	Prefill() int
	LowLatency() bool
	FramesPerBuffer() int
}

type Config struct{}

// Sample queue capacity of each link
func (c Config) Capacity() int {
	return viper.GetInt(vCapacity)
}

// Silent samples queued before a link starts
func (c Config) Prefill() int {
	return viper.GetInt(vPrefill)
}

// Use the devices' low latency defaults rather than the high latency ones
func (c Config) LowLatency() bool {
	return strings.ToLower(viper.GetString(vLatency)) == "low"
}

// Frames per callback buffer, 0 lets the host decide
func (c Config) FramesPerBuffer() int {
	return viper.GetInt(vFramesPerBuffer)
}

func NewConfig() Config {
	return Config{}
}

// Link options from configuration
func OptionsFromConfig(c Configurer) Options {
	return Options{
		Capacity: c.Capacity(),
		Prefill:  c.Prefill(),
	}
}
