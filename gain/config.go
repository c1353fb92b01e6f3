package gain

import "github.com/spf13/viper"

const (
	vInitial = "gain.initial"
	vCeiling = "gain.ceiling"
	vStep    = "gain.step"
)

func init() {
	viper.BindEnv(vInitial)
	viper.SetDefault(vInitial, 1.0)
	viper.BindEnv(vCeiling)
	viper.SetDefault(vCeiling, 0.0)
	viper.BindEnv(vStep)
	viper.SetDefault(vStep, 0.1)
}

type Configurer interface {
	Initial() float32
	Ceiling() float32
	Step() float32
}

type Config struct{}

// Gain applied when the process starts
func (c Config) Initial() float32 {
	return float32(viper.GetFloat64(vInitial))
}

// Maximum gain, 0 disables the limit
func (c Config) Ceiling() float32 {
	return float32(viper.GetFloat64(vCeiling))
}

// Amount a single louder / quieter key press adjusts the gain by
func (c Config) Step() float32 {
	return float32(viper.GetFloat64(vStep))
}

func NewConfig() Config {
	return Config{}
}

// Constructs a Control from configuration
func NewFromConfig(c Configurer) *Control {
	return New(c.Initial(), c.Ceiling())
}
