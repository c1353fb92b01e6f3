// Audio link
//
// A link owns an input stream and an output stream joined by a sample queue.
// The input callback scales every captured sample by the current gain and
// pushes it onto the queue, the output callback pops samples from the queue
// and plays silence when there are none.

package audio

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"soundamp/device"
	"soundamp/gain"
	"soundamp/logger"
	"soundamp/queue"

	"github.com/rs/xid"
)

// Link construction options
type Options struct {
	Capacity int // Queue capacity in samples
	Prefill  int // Silent samples queued before the streams start
}

// Link diagnostics
type Stats struct {
	Buffered    int    // Samples waiting in the queue
	Overflows   uint64 // Captured samples dropped on a full queue
	Underruns   uint64 // Output samples played as silence
	InputCalls  uint64 // Input callback invocations
	OutputCalls uint64 // Output callback invocations
}

// A running input to output route
type Link struct {
	id     string
	input  *device.Device
	output *device.Device
	// Streams
	inStream  Stream
	outStream Stream
	// Queue ends, each only touched by its stream's callback
	producer *queue.Producer
	consumer *queue.Consumer
	gain     *gain.Control
	// Diagnostics
	inCalls  atomic.Uint64
	outCalls atomic.Uint64
	// Close orchestration
	closeOnce sync.Once
	closeErr  error
}

// Input stream callback
func (l *Link) capture(in []float32) {
	l.inCalls.Add(1)
	for _, s := range in {
		l.producer.Push(s * l.gain.Get())
	}
}

// Output stream callback
func (l *Link) playback(out []float32) {
	l.outCalls.Add(1)
	for i := range out {
		s, ok := l.consumer.Pop()
		if !ok {
			s = 0
		}
		out[i] = s
	}
}

// Unique link id
func (l *Link) ID() string {
	return l.id
}

// Capture device
func (l *Link) Input() *device.Device {
	return l.input
}

// Playback device
func (l *Link) Output() *device.Device {
	return l.output
}

// Current diagnostics
func (l *Link) Stats() Stats {
	return Stats{
		Buffered:    l.consumer.Len(),
		Overflows:   l.producer.Overflows(),
		Underruns:   l.consumer.Underruns(),
		InputCalls:  l.inCalls.Load(),
		OutputCalls: l.outCalls.Load(),
	}
}

func (l *Link) log() *logger.Entry {
	return logger.WithFields(logger.F{
		"link":   l.id,
		"input":  l.input.Name,
		"output": l.output.Name,
	})
}

// Close stops both streams and then releases them. The queue is not
// released until both callbacks have stopped. Safe to call more than once.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.log().Debug("close link")
		var errs []error
		for _, s := range []Stream{l.inStream, l.outStream} {
			if err := s.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, s := range []Stream{l.inStream, l.outStream} {
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		l.closeErr = errors.Join(errs...)
		stats := l.Stats()
		l.log().WithFields(logger.F{
			"overflows": stats.Overflows,
			"underruns": stats.Underruns,
		}).Info("closed link")
	})
	return l.closeErr
}

// Formats the link passes through without conversion
func mismatches(in, out StreamConfig) []string {
	var m []string
	if in.Channels != out.Channels {
		m = append(m, "channel counts")
	}
	if in.SampleRate != out.SampleRate {
		m = append(m, "sample rates")
	}
	return m
}

// Closes streams that were opened before a later step failed
func abandon(streams ...Stream) {
	for _, s := range streams {
		if s == nil {
			continue
		}
		if err := s.Stop(); err != nil {
			logger.WithError(err).Debug("stop abandoned stream")
		}
		if err := s.Close(); err != nil {
			logger.WithError(err).Warn("close abandoned stream")
		}
	}
}

// Open builds a link from in to out and starts it. Either both streams are
// running when Open returns or none are and a *LinkError is returned.
func Open(b Backend, in, out *device.Device, opts Options, g *gain.Control) (*Link, error) {
	if in == nil {
		return nil, linkError(KindOpen, in, device.Input, device.ErrNotFound)
	}
	if out == nil {
		return nil, linkError(KindOpen, out, device.Output, device.ErrNotFound)
	}
	if opts.Capacity < 1 {
		opts.Capacity = queue.DefaultCapacity
	}
	inCfg, err := b.InputConfig(in)
	if err != nil {
		return nil, linkError(KindConfig, in, device.Input, err)
	}
	outCfg, err := b.OutputConfig(out)
	if err != nil {
		return nil, linkError(KindConfig, out, device.Output, err)
	}
	l := &Link{
		id:     xid.New().String(),
		input:  in,
		output: out,
		gain:   g,
	}
	l.producer, l.consumer = queue.New(opts.Capacity)
	if opts.Prefill > 0 {
		l.producer.Fill(opts.Prefill)
	}
	l.log().WithFields(logger.F{
		"inputRate":  inCfg.SampleRate,
		"outputRate": outCfg.SampleRate,
		"channels":   inCfg.Channels,
		"capacity":   opts.Capacity,
		"prefill":    opts.Prefill,
	}).Debug("open link")
	if m := mismatches(inCfg, outCfg); len(m) > 0 {
		l.log().WithFields(logger.F{
			"inputChannels":  inCfg.Channels,
			"outputChannels": outCfg.Channels,
			"inputRate":      inCfg.SampleRate,
			"outputRate":     outCfg.SampleRate,
		}).Warn("input and output %s differ, samples are passed through unconverted", strings.Join(m, " and "))
	}
	l.inStream, err = b.OpenInput(in, inCfg, l.capture)
	if err != nil {
		return nil, linkError(KindOpen, in, device.Input, err)
	}
	l.outStream, err = b.OpenOutput(out, outCfg, l.playback)
	if err != nil {
		abandon(l.inStream)
		return nil, linkError(KindOpen, out, device.Output, err)
	}
	if err := l.inStream.Start(); err != nil {
		abandon(l.inStream, l.outStream)
		return nil, linkError(KindStart, in, device.Input, err)
	}
	if err := l.outStream.Start(); err != nil {
		abandon(l.inStream, l.outStream)
		return nil, linkError(KindStart, out, device.Output, err)
	}
	l.log().Info("link running")
	return l, nil
}
