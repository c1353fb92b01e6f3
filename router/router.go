// Routing supervisor
//
// The supervisor owns at most one audio link. Commands are queued without
// blocking the submitter and applied one at a time, in submission order, by
// a single worker goroutine which is the only code that opens or closes
// links. Starting a new route always closes the active link before the new
// one is opened so two links never claim the same device.

package router

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"soundamp/audio"
	"soundamp/device"
	"soundamp/gain"
	"soundamp/logger"
	"soundamp/run"
)

// Notifications buffered for control surfaces
const NOTIFICATION_BUFFER = 64

// Returned by Submit once the supervisor is closed
var ErrClosed = errors.New("supervisor closed")

// Supervisor state
type State int

const (
	Idle State = iota
	Linked
)

func (s State) String() string {
	if s == Linked {
		return "linked"
	}
	return "idle"
}

// Command is one of Start or AdjustGain
type Command interface {
	command()
}

// Route an input device to an output device, both are list indexes.
// A negative Output selects the default output device.
type Start struct {
	Input  int
	Output int
}

// Add Delta to the gain
type AdjustGain struct {
	Delta float32
}

func (Start) command()      {}
func (AdjustGain) command() {}

// Notification types
const (
	LinkedNotification   = "linked"
	UnlinkedNotification = "unlinked"
	GainNotification     = "gain"
	ErrorNotification    = "error"
)

// Notification reports the outcome of a command
type Notification struct {
	Type    string
	Created time.Time
	LinkID  string
	Input   string
	Output  string
	Gain    float32
	Err     error
}

type Supervisor struct {
	// Unexported Fields
	backend audio.Backend
	devices device.Lister
	gain    *gain.Control
	opts    audio.Options
	// Pending commands
	pendingLock *sync.Mutex
	pending     []Command
	closed      bool
	wakeC       chan struct{}
	// Active link, only written by the worker
	linkLock *sync.RWMutex
	link     *audio.Link
	// Outcomes
	notifyC chan Notification
	// Close orchestration
	wg        *sync.WaitGroup
	closeC    chan struct{}
	closeOnce *sync.Once
}

// Submit queues a command and returns immediately
func (s *Supervisor) Submit(cmd Command) error {
	s.pendingLock.Lock()
	if s.closed {
		s.pendingLock.Unlock()
		return ErrClosed
	}
	s.pending = append(s.pending, cmd)
	s.pendingLock.Unlock()
	select {
	case s.wakeC <- struct{}{}:
	default: // worker already woken
	}
	return nil
}

// Next pending command
func (s *Supervisor) next() (Command, bool) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()
	if len(s.pending) == 0 {
		return nil, false
	}
	cmd := s.pending[0]
	s.pending[0] = nil
	s.pending = s.pending[1:]
	return cmd, true
}

// Notifications of applied commands
func (s *Supervisor) Notifications() <-chan Notification {
	return (<-chan Notification)(s.notifyC)
}

// Current state
func (s *Supervisor) State() State {
	if s.Link() != nil {
		return Linked
	}
	return Idle
}

// Active link, nil when idle
func (s *Supervisor) Link() *audio.Link {
	s.linkLock.RLock()
	defer s.linkLock.RUnlock()
	return s.link
}

// Shared gain control
func (s *Supervisor) Gain() *gain.Control {
	return s.gain
}

func (s *Supervisor) setLink(l *audio.Link) {
	s.linkLock.Lock()
	s.link = l
	s.linkLock.Unlock()
}

func (s *Supervisor) notify(n Notification) {
	n.Created = time.Now().UTC()
	n.Gain = s.gain.Get()
	select {
	case s.notifyC <- n:
	default:
		logger.WithField("type", n.Type).Warn("notification dropped")
	}
}

// Starts the worker
func (s *Supervisor) Start() {
	s.wg.Add(1)
	go s.process()
}

// Worker applying queued commands in order
func (s *Supervisor) process() {
	logger.Debug("start routing supervisor")
	defer logger.Debug("exit routing supervisor")
	defer s.wg.Done()
	for {
		select {
		case <-s.closeC:
			return
		case <-s.wakeC:
			for {
				cmd, ok := s.next()
				if !ok {
					break
				}
				s.apply(cmd)
			}
		}
	}
}

func (s *Supervisor) apply(cmd Command) {
	defer run.Recover()
	switch c := cmd.(type) {
	case Start:
		s.start(c)
	case AdjustGain:
		v := s.gain.Adjust(c.Delta)
		logger.WithFields(logger.F{
			"delta": c.Delta,
			"gain":  v,
		}).Debug("gain adjusted")
		s.notify(Notification{Type: GainNotification})
	default:
		logger.WithField("command", fmt.Sprintf("%T", cmd)).Warn("unknown command")
	}
}

// Close the active link, if any
func (s *Supervisor) unlink() {
	l := s.Link()
	if l == nil {
		return
	}
	s.setLink(nil)
	if err := l.Close(); err != nil {
		logger.WithError(err).WithField("link", l.ID()).Warn("link closed with errors")
	}
	s.notify(Notification{
		Type:   UnlinkedNotification,
		LinkID: l.ID(),
		Input:  l.Input().Name,
		Output: l.Output().Name,
	})
}

// Resolves device indexes, unknown indexes are stream open errors
func (s *Supervisor) resolve(c Start) (*device.Device, *device.Device, error) {
	wrap := func(err error, dir device.Direction, i int) error {
		if errors.Is(err, device.ErrNotFound) {
			return &audio.LinkError{
				Kind:      audio.KindOpen,
				Direction: dir,
				Device:    fmt.Sprintf("#%d", i),
				Err:       err,
			}
		}
		return err
	}
	in, err := device.InputAt(s.devices, c.Input)
	if err != nil {
		return nil, nil, wrap(err, device.Input, c.Input)
	}
	var out *device.Device
	if c.Output < 0 {
		out, err = s.devices.DefaultOutput()
	} else {
		out, err = device.OutputAt(s.devices, c.Output)
	}
	if err != nil {
		return nil, nil, wrap(err, device.Output, c.Output)
	}
	return in, out, nil
}

func (s *Supervisor) start(c Start) {
	log := logger.WithFields(logger.F{
		"input":  c.Input,
		"output": c.Output,
	})
	log.Debug("start link")
	s.unlink()
	in, out, err := s.resolve(c)
	if err == nil {
		var l *audio.Link
		l, err = audio.Open(s.backend, in, out, s.opts, s.gain)
		if err == nil {
			s.setLink(l)
			s.notify(Notification{
				Type:   LinkedNotification,
				LinkID: l.ID(),
				Input:  in.Name,
				Output: out.Name,
			})
			return
		}
	}
	log.WithError(err).Error("failed to start link")
	s.notify(Notification{
		Type: ErrorNotification,
		Err:  err,
	})
}

// Close stops the worker and closes the active link. Commands still queued
// are discarded.
func (s *Supervisor) Close() error {
	s.closeOnce.Do(func() {
		logger.Debug("close routing supervisor")
		defer logger.Info("closed routing supervisor")
		s.pendingLock.Lock()
		s.closed = true
		s.pending = nil
		s.pendingLock.Unlock()
		close(s.closeC)
		s.wg.Wait()
		s.unlink()
	})
	return nil
}

// Constructs a new Supervisor, call Start to begin processing commands
func New(b audio.Backend, l device.Lister, g *gain.Control, opts audio.Options) *Supervisor {
	return &Supervisor{
		backend:     b,
		devices:     l,
		gain:        g,
		opts:        opts,
		pendingLock: &sync.Mutex{},
		wakeC:       make(chan struct{}, 1),
		linkLock:    &sync.RWMutex{},
		notifyC:     make(chan Notification, NOTIFICATION_BUFFER),
		wg:          &sync.WaitGroup{},
		closeC:      make(chan struct{}),
		closeOnce:   &sync.Once{},
	}
}
