package event

import (
	"encoding/json"
	"errors"
	"time"

	"soundamp/audio"
	"soundamp/router"
)

// Events sent by control clients
const (
	StartEvent string = "start"
	GainEvent  string = "gain"
)

// Events broadcast to control clients
const (
	LinkedEvent      string = router.LinkedNotification
	UnlinkedEvent    string = router.UnlinkedNotification
	GainChangedEvent string = router.GainNotification
	ErrorEvent       string = router.ErrorNotification
)

// A gain event without a delta, this is also the shape of a gain broadcast
// echoed back by a remote controller
var ErrNoDelta = errors.New("gain event has no delta")

type Reader interface {
	Read() ([]byte, error)
}

type Writer interface {
	Write(b []byte) (int, error)
}

type Closer interface {
	Close() error
}

type ReadWriteCloser interface {
	Reader
	Writer
	Closer
}

type Event struct {
	Type    string          `json:"type"`
	Created time.Time       `json:"created"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type StartPayload struct {
	Input  int  `json:"input"`            // Input device index
	Output *int `json:"output,omitempty"` // Output device index, default output when absent
}

type GainPayload struct {
	Delta float32 `json:"delta"`
}

// Payload of linked and unlinked events
type LinkPayload struct {
	ID     string  `json:"id"`
	Input  string  `json:"input"`
	Output string  `json:"output"`
	Gain   float32 `json:"gain"`
}

// Payload of gain broadcasts
type LevelPayload struct {
	Gain float32 `json:"gain"`
}

type ErrorPayload struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Direction string `json:"direction,omitempty"`
	Device    string `json:"device,omitempty"`
}

// Marshals an event with the given type and payload, payload may be nil
func New(typ string, payload interface{}) ([]byte, error) {
	return marshal(typ, time.Now().UTC(), payload)
}

func marshal(typ string, created time.Time, payload interface{}) ([]byte, error) {
	e := &Event{
		Type:    typ,
		Created: created,
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		e.Payload = b
	}
	return json.Marshal(e)
}

// Start event for the given device indexes, a negative output selects the
// default output device
func Start(input, output int) ([]byte, error) {
	p := &StartPayload{Input: input}
	if output >= 0 {
		p.Output = &output
	}
	return New(StartEvent, p)
}

// Gain event adjusting the gain by delta
func Gain(delta float32) ([]byte, error) {
	return New(GainEvent, &GainPayload{Delta: delta})
}

// Converts a supervisor notification into a broadcast event
func FromNotification(n router.Notification) ([]byte, error) {
	var payload interface{}
	switch n.Type {
	case router.LinkedNotification, router.UnlinkedNotification:
		payload = &LinkPayload{
			ID:     n.LinkID,
			Input:  n.Input,
			Output: n.Output,
			Gain:   n.Gain,
		}
	case router.GainNotification:
		payload = &LevelPayload{Gain: n.Gain}
	case router.ErrorNotification:
		p := &ErrorPayload{}
		if n.Err != nil {
			p.Error = n.Err.Error()
		}
		var le *audio.LinkError
		if errors.As(n.Err, &le) {
			p.Kind = le.Kind.String()
			p.Direction = le.Direction.String()
			p.Device = le.Device
		}
		payload = p
	}
	created := n.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return marshal(n.Type, created, payload)
}
