// Port Audio Streaming

package audio

import (
	"errors"
	"fmt"
	"sync"

	"soundamp/device"
	"soundamp/logger"

	"github.com/gordonklaus/portaudio"
)

// Returned when a device was not enumerated through portaudio
var ErrNotPortAudio = errors.New("not a portaudio device")

// Port audio stream backend
type PortAudio struct {
	// Exported Fields
	Config Configurer
	// Unexported Fields
	lock        *sync.Mutex
	initialized bool
}

// Initialise the portaudio library, safe to call more than once
func (pa *PortAudio) Initialize() error {
	pa.lock.Lock()
	defer pa.lock.Unlock()
	if pa.initialized {
		return nil
	}
	logger.Debug("initialise portaudio")
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialise portaudio: %w", err)
	}
	pa.initialized = true
	return nil
}

// Terminate the portaudio library, all streams must be closed
func (pa *PortAudio) Terminate() error {
	pa.lock.Lock()
	defer pa.lock.Unlock()
	if !pa.initialized {
		return nil
	}
	logger.Debug("terminate portaudio")
	pa.initialized = false
	return portaudio.Terminate()
}

// Native configuration of the device for the given direction
func (pa *PortAudio) native(d *device.Device, dir device.Direction) (StreamConfig, error) {
	info := d.PortAudio()
	if info == nil {
		return StreamConfig{}, ErrNotPortAudio
	}
	channels := info.MaxInputChannels
	latency := info.DefaultHighInputLatency
	if pa.Config.LowLatency() {
		latency = info.DefaultLowInputLatency
	}
	if dir == device.Output {
		channels = info.MaxOutputChannels
		latency = info.DefaultHighOutputLatency
		if pa.Config.LowLatency() {
			latency = info.DefaultLowOutputLatency
		}
	}
	if channels < 1 {
		return StreamConfig{}, fmt.Errorf("device has no %s channels", dir)
	}
	if channels > MAX_CHANNELS {
		channels = MAX_CHANNELS
	}
	if info.DefaultSampleRate <= 0 {
		return StreamConfig{}, fmt.Errorf("device has no default sample rate")
	}
	c := StreamConfig{
		Channels:        channels,
		SampleRate:      info.DefaultSampleRate,
		FramesPerBuffer: pa.Config.FramesPerBuffer(),
		Latency:         latency,
	}
	if err := portaudio.IsFormatSupported(params(d, dir, c), func([]float32) {}); err != nil {
		return StreamConfig{}, err
	}
	return c, nil
}

// Build portaudio stream parameters for one direction
func params(d *device.Device, dir device.Direction, c StreamConfig) portaudio.StreamParameters {
	p := portaudio.StreamParameters{
		SampleRate:      c.SampleRate,
		FramesPerBuffer: c.FramesPerBuffer,
	}
	if p.FramesPerBuffer <= 0 {
		p.FramesPerBuffer = portaudio.FramesPerBufferUnspecified
	}
	dp := portaudio.StreamDeviceParameters{
		Device:   d.PortAudio(),
		Channels: c.Channels,
		Latency:  c.Latency,
	}
	if dir == device.Input {
		p.Input = dp
	} else {
		p.Output = dp
	}
	return p
}

func (pa *PortAudio) InputConfig(d *device.Device) (StreamConfig, error) {
	return pa.native(d, device.Input)
}

func (pa *PortAudio) OutputConfig(d *device.Device) (StreamConfig, error) {
	return pa.native(d, device.Output)
}

func (pa *PortAudio) open(d *device.Device, dir device.Direction, c StreamConfig, cb func([]float32)) (Stream, error) {
	if d.PortAudio() == nil {
		return nil, ErrNotPortAudio
	}
	logger.WithFields(logger.F{
		"device":    d.Name,
		"direction": dir.String(),
		"rate":      c.SampleRate,
		"channels":  c.Channels,
	}).Debug("open portaudio stream")
	stream, err := portaudio.OpenStream(params(d, dir, c), cb)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Opens a capture stream, cb receives interleaved input samples
func (pa *PortAudio) OpenInput(d *device.Device, c StreamConfig, cb func([]float32)) (Stream, error) {
	return pa.open(d, device.Input, c, cb)
}

// Opens a playback stream, cb fills interleaved output samples
func (pa *PortAudio) OpenOutput(d *device.Device, c StreamConfig, cb func([]float32)) (Stream, error) {
	return pa.open(d, device.Output, c, cb)
}

// Construct a new port audio backend, call Initialize before use
func NewPortAudio(c Configurer) *PortAudio {
	return &PortAudio{
		Config: c,
		lock:   &sync.Mutex{},
	}
}
