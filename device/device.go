// Audio device discovery
//
// Devices are enumerated per direction, a device's ID is its position in the
// list for that direction. This is the index control surfaces send in start
// events.

package device

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

var (
	// Returned when the audio subsystem can not list its devices
	ErrEnumeration = errors.New("device enumeration failed")
	// Returned when a device index does not exist
	ErrNotFound = errors.New("device not found")
)

// Direction of audio through a device
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Device is a handle to a capture or playback endpoint
type Device struct {
	ID         int // Position in the enumerated list
	Name       string
	Direction  Direction
	Channels   int     // Maximum channels for the direction
	SampleRate float64 // Native sample rate
	// Portaudio device, nil for devices not backed by portaudio
	info *portaudio.DeviceInfo
}

// Returns the underlying portaudio device info, nil if there is none
func (d *Device) PortAudio() *portaudio.DeviceInfo {
	return d.info
}

func (d *Device) String() string {
	return fmt.Sprintf("%d: %s", d.ID, d.Name)
}

// Constructs a device which is not backed by the audio subsystem
func New(id int, name string, dir Direction, channels int, rate float64) *Device {
	return &Device{
		ID:         id,
		Name:       name,
		Direction:  dir,
		Channels:   channels,
		SampleRate: rate,
	}
}

// Lister enumerates the available devices
type Lister interface {
	Inputs() ([]*Device, error)
	Outputs() ([]*Device, error)
	DefaultOutput() (*Device, error)
}

func pick(devices []*Device, err error, i int, dir Direction) (*Device, error) {
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(devices) {
		return nil, fmt.Errorf("%w: %s %d of %d", ErrNotFound, dir, i, len(devices))
	}
	return devices[i], nil
}

// Input device by index
func InputAt(l Lister, i int) (*Device, error) {
	devices, err := l.Inputs()
	return pick(devices, err, i, Input)
}

// Output device by index
func OutputAt(l Lister, i int) (*Device, error) {
	devices, err := l.Outputs()
	return pick(devices, err, i, Output)
}
