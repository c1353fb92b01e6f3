// Keyboard control
//
// Reads single key presses from a terminal and turns them into control
// events: 0-9 start routing input device N to the default output, + and -
// adjust the gain by the configured step and q quits.

package console

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"soundamp/event"
	"soundamp/logger"

	"golang.org/x/term"
)

// Keys ending the console
const (
	keyQuit      = 'q'
	keyInterrupt = 0x03 // Ctrl-C, raw mode does not raise SIGINT
	keyEOT       = 0x04 // Ctrl-D
)

const help = "0-9 start input, + louder, - quieter, q quit"

// KeyEvent returns the control event for a key press. The body is nil for
// keys without a binding and quit is true for keys ending the console.
func KeyEvent(key byte, step float32) (body []byte, quit bool, err error) {
	switch {
	case key >= '0' && key <= '9':
		body, err = event.Start(int(key-'0'), -1)
	case key == '+' || key == '=':
		body, err = event.Gain(step)
	case key == '-' || key == '_':
		body, err = event.Gain(-step)
	case key == keyQuit || key == 'Q' || key == keyInterrupt || key == keyEOT:
		quit = true
	}
	return body, quit, err
}

// Describe renders a broadcast event for the operator
func Describe(e *event.Event) string {
	switch e.Type {
	case event.LinkedEvent, event.UnlinkedEvent:
		p := &event.LinkPayload{}
		if err := json.Unmarshal(e.Payload, p); err != nil {
			return e.Type
		}
		return fmt.Sprintf("%s %s -> %s (gain %.2f)", e.Type, p.Input, p.Output, p.Gain)
	case event.GainChangedEvent:
		p := &event.LevelPayload{}
		if err := json.Unmarshal(e.Payload, p); err != nil {
			return e.Type
		}
		return fmt.Sprintf("gain %.2f", p.Gain)
	case event.ErrorEvent:
		p := &event.ErrorPayload{}
		if err := json.Unmarshal(e.Payload, p); err != nil {
			return e.Type
		}
		return "error: " + p.Error
	}
	return e.Type
}

// Console forwards key presses to a running router
type Console struct {
	// Unexported Fields
	in   io.Reader
	out  io.Writer
	w    event.Writer
	step float32
}

// Prints a line, raw terminals need an explicit carriage return
func (c *Console) Println(s string) {
	fmt.Fprint(c.out, s+"\r\n")
}

// Run reads keys until quit or end of input. A terminal input is switched
// to raw mode for the duration so keys arrive without Enter.
func (c *Console) Run() error {
	logger.Debug("start console")
	defer logger.Debug("exit console")
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}
	c.Println(help)
	reader := bufio.NewReader(c.in)
	for {
		key, err := reader.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		body, quit, err := KeyEvent(key, c.step)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if body == nil {
			continue
		}
		if _, err := c.w.Write(body); err != nil {
			return err
		}
	}
}

// Constructs a console reading keys from in, writing events to w and
// messages to out
func New(in io.Reader, out io.Writer, w event.Writer, step float32) *Console {
	return &Console{
		in:   in,
		out:  out,
		w:    w,
		step: step,
	}
}
