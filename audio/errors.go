package audio

import (
	"errors"
	"fmt"

	"soundamp/device"
)

var (
	// The device has no usable default stream configuration
	ErrStreamConfig = errors.New("stream config error")
	// The audio subsystem refused to create the stream
	ErrStreamOpen = errors.New("stream open error")
	// The stream was created but failed to run
	ErrStreamStart = errors.New("stream start error")
)

// Stage of link construction that failed
type Kind int

const (
	KindConfig Kind = iota + 1
	KindOpen
	KindStart
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrStreamConfig
	case KindStart:
		return ErrStreamStart
	default:
		return ErrStreamOpen
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// LinkError is returned when a link can not be opened. It matches its kind's
// sentinel and the underlying cause with errors.Is.
type LinkError struct {
	Kind      Kind
	Direction device.Direction
	Device    string
	Err       error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: %s device %q: %v", e.Kind, e.Direction, e.Device, e.Err)
}

func (e *LinkError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

func linkError(k Kind, d *device.Device, dir device.Direction, err error) *LinkError {
	name := "<none>"
	if d != nil {
		name = d.Name
	}
	return &LinkError{
		Kind:      k,
		Direction: dir,
		Device:    name,
		Err:       err,
	}
}
