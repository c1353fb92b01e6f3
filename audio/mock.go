package audio

import (
	"errors"
	"fmt"
	"sync"

	"soundamp/device"
)

// Returned by MockBackend when opening a disconnected device
var ErrDisconnected = errors.New("device disconnected")

// MockBackend implements Backend without hardware. Streams only run their
// callbacks when ticked, which keeps tests deterministic.
type MockBackend struct {
	mu        sync.Mutex
	configErr map[string]error
	openErr   map[string]error
	startErr  map[string]error
	source    func(dev string, buf []float32)
	streams   []*MockStream
	played    []float32
}

// NewMockBackend creates a mock backend whose inputs capture a ramp of
// 0.001 steps
func NewMockBackend() *MockBackend {
	return &MockBackend{
		configErr: make(map[string]error),
		openErr:   make(map[string]error),
		startErr:  make(map[string]error),
	}
}

// SetConfigError makes the named device report no usable configuration
func (m *MockBackend) SetConfigError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configErr[name] = err
}

// SetOpenError makes opening a stream on the named device fail
func (m *MockBackend) SetOpenError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr[name] = err
}

// SetStartError makes starting a stream on the named device fail
func (m *MockBackend) SetStartError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr[name] = err
}

// Disconnect makes every later open of the named device fail
func (m *MockBackend) Disconnect(name string) {
	m.SetOpenError(name, ErrDisconnected)
}

// Reconnect clears every injected error for the named device
func (m *MockBackend) Reconnect(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configErr, name)
	delete(m.openErr, name)
	delete(m.startErr, name)
}

// SetSource replaces the generator used to fill input buffers
func (m *MockBackend) SetSource(fn func(dev string, buf []float32)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = fn
}

// Played returns every sample written by output callbacks so far
func (m *MockBackend) Played() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float32, len(m.played))
	copy(out, m.played)
	return out
}

// Streams returns every stream opened on the named device, oldest first
func (m *MockBackend) Streams(name string) []*MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*MockStream
	for _, s := range m.streams {
		if s.Device.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Running returns the streams that are started and not stopped
func (m *MockBackend) Running() []*MockStream {
	m.mu.Lock()
	streams := make([]*MockStream, len(m.streams))
	copy(streams, m.streams)
	m.mu.Unlock()
	var out []*MockStream
	for _, s := range streams {
		if s.IsRunning() {
			out = append(out, s)
		}
	}
	return out
}

// Tick runs one callback of every running stream, inputs first
func (m *MockBackend) Tick(frames int) {
	running := m.Running()
	for _, dir := range []device.Direction{device.Input, device.Output} {
		for _, s := range running {
			if s.Direction == dir {
				s.Tick(frames)
			}
		}
	}
}

func (m *MockBackend) config(d *device.Device) (StreamConfig, error) {
	m.mu.Lock()
	err := m.configErr[d.Name]
	m.mu.Unlock()
	if err != nil {
		return StreamConfig{}, err
	}
	if d.Channels < 1 || d.SampleRate <= 0 {
		return StreamConfig{}, fmt.Errorf("device %q has no usable configuration", d.Name)
	}
	channels := d.Channels
	if channels > MAX_CHANNELS {
		channels = MAX_CHANNELS
	}
	return StreamConfig{
		Channels:        channels,
		SampleRate:      d.SampleRate,
		FramesPerBuffer: 256,
	}, nil
}

func (m *MockBackend) InputConfig(d *device.Device) (StreamConfig, error) {
	return m.config(d)
}

func (m *MockBackend) OutputConfig(d *device.Device) (StreamConfig, error) {
	return m.config(d)
}

func (m *MockBackend) open(d *device.Device, dir device.Direction, c StreamConfig, cb func([]float32)) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.openErr[d.Name]; err != nil {
		return nil, err
	}
	s := &MockStream{
		Device:    d,
		Direction: dir,
		Config:    c,
		backend:   m,
		callback:  cb,
		startErr:  m.startErr[d.Name],
	}
	m.streams = append(m.streams, s)
	return s, nil
}

func (m *MockBackend) OpenInput(d *device.Device, c StreamConfig, cb func([]float32)) (Stream, error) {
	return m.open(d, device.Input, c, cb)
}

func (m *MockBackend) OpenOutput(d *device.Device, c StreamConfig, cb func([]float32)) (Stream, error) {
	return m.open(d, device.Output, c, cb)
}

func (m *MockBackend) fill(dev string, buf []float32) {
	m.mu.Lock()
	source := m.source
	m.mu.Unlock()
	if source != nil {
		source(dev, buf)
		return
	}
	for i := range buf {
		buf[i] = float32(i+1) * 0.001
	}
}

func (m *MockBackend) record(buf []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, buf...)
}

// MockStream implements Stream for MockBackend
type MockStream struct {
	Device    *device.Device
	Direction device.Direction
	Config    StreamConfig
	// Unexported Fields
	mu       sync.Mutex // held while the callback runs
	backend  *MockBackend
	callback func([]float32)
	startErr error
	started  bool
	stopped  bool
	closed   bool
	calls    int
}

// Tick runs the callback once with a buffer of frames*channels samples if the
// stream is running. Returns whether the callback ran.
func (s *MockStream) Tick(frames int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return false
	}
	buf := make([]float32, frames*s.Config.Channels)
	if s.Direction == device.Input {
		s.backend.fill(s.Device.Name, buf)
	}
	s.callback(buf)
	if s.Direction == device.Output {
		s.backend.record(buf)
	}
	s.calls++
	return true
}

// Number of callback invocations
func (s *MockStream) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Started and not stopped
func (s *MockStream) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.stopped
}

func (s *MockStream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *MockStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if s.started && !s.stopped {
		return fmt.Errorf("stream already active")
	}
	s.started = true
	s.stopped = false
	return nil
}

// Stop waits for a running callback to return
func (s *MockStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return fmt.Errorf("stream not active")
	}
	s.stopped = true
	return nil
}

func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopped = true
	return nil
}
