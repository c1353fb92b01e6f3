package audio

import (
	"time"

	"soundamp/device"
)

const (
	// Channels are passed through untouched, capped to stereo
	MAX_CHANNELS = 2
	// Let the host pick the callback buffer size
	FRAMES_PER_BUFFER = 0
)

// Native stream configuration of a device
type StreamConfig struct {
	Channels        int
	SampleRate      float64
	FramesPerBuffer int
	Latency         time.Duration
}

// A hardware stream, created stopped
type Stream interface {
	Start() error
	Stop() error // Returns once the callback is no longer running
	Close() error
}

// Backend opens callback driven hardware streams. Callbacks receive
// interleaved samples and run on the audio subsystem's realtime threads.
type Backend interface {
	InputConfig(d *device.Device) (StreamConfig, error)
	OutputConfig(d *device.Device) (StreamConfig, error)
	OpenInput(d *device.Device, c StreamConfig, cb func(in []float32)) (Stream, error)
	OpenOutput(d *device.Device, c StreamConfig, cb func(out []float32)) (Stream, error)
}
