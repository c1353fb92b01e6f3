package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Lists devices through portaudio, portaudio must be initialised
type PortAudio struct{}

func (PortAudio) list(dir Direction) ([]*Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}
	devices := make([]*Device, 0, len(infos))
	for _, info := range infos {
		channels := info.MaxInputChannels
		if dir == Output {
			channels = info.MaxOutputChannels
		}
		if channels < 1 {
			continue
		}
		devices = append(devices, &Device{
			ID:         len(devices),
			Name:       info.Name,
			Direction:  dir,
			Channels:   channels,
			SampleRate: info.DefaultSampleRate,
			info:       info,
		})
	}
	return devices, nil
}

// Available capture devices
func (p PortAudio) Inputs() ([]*Device, error) {
	return p.list(Input)
}

// Available playback devices
func (p PortAudio) Outputs() ([]*Device, error) {
	return p.list(Output)
}

// The host's default playback device
func (p PortAudio) DefaultOutput() (*Device, error) {
	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}
	outputs, err := p.Outputs()
	if err != nil {
		return nil, err
	}
	for _, d := range outputs {
		if d.info.Index == info.Index {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: default output %q", ErrNotFound, info.Name)
}
