// Single producer, single consumer sample queue
//
// The queue bridges the input stream callback and the output stream callback
// of a link. Both ends run on realtime audio threads so neither end ever
// blocks: a full queue drops the pushed sample, an empty queue reports no
// sample and the caller plays silence.

package queue

import "sync/atomic"

// One second of mono audio at 48kHz
const DefaultCapacity = 48000

// Backing store shared by the two ends. The cursors only ever grow, their
// difference is the number of buffered samples.
type ring struct {
	buf  []float32
	size uint64
	// Next slot to write, stored only by the producer
	write atomic.Uint64
	_     [56]byte
	// Next slot to read, stored only by the consumer
	read atomic.Uint64
	_    [56]byte
	// Diagnostics
	overflows atomic.Uint64
	underruns atomic.Uint64
}

func (r *ring) len() int {
	rd := r.read.Load() // load read first so write >= read
	return int(r.write.Load() - rd)
}

// Producer is the write end of a queue. It must only be used from one
// goroutine or callback thread at a time.
type Producer struct {
	r *ring
}

// Push appends a sample, returns false and drops the sample if the queue is full
func (p *Producer) Push(s float32) bool {
	r := p.r
	w := r.write.Load()
	if w-r.read.Load() >= r.size {
		r.overflows.Add(1)
		return false
	}
	r.buf[w%r.size] = s
	r.write.Store(w + 1)
	return true
}

// Fill writes up to n silent samples, returning how many were written.
// Used to give the consumer a cushion before the producer starts.
func (p *Producer) Fill(n int) int {
	r := p.r
	w := r.write.Load()
	free := r.size - (w - r.read.Load())
	if uint64(n) > free {
		n = int(free)
	}
	for i := 0; i < n; i++ {
		r.buf[(w+uint64(i))%r.size] = 0
	}
	r.write.Store(w + uint64(n))
	return n
}

// Number of buffered samples
func (p *Producer) Len() int { return p.r.len() }

// Queue capacity
func (p *Producer) Cap() int { return int(p.r.size) }

// Number of pushes dropped because the queue was full
func (p *Producer) Overflows() uint64 { return p.r.overflows.Load() }

// Consumer is the read end of a queue. It must only be used from one
// goroutine or callback thread at a time.
type Consumer struct {
	r *ring
}

// Pop removes the oldest sample, returns false if the queue is empty
func (c *Consumer) Pop() (float32, bool) {
	r := c.r
	rd := r.read.Load()
	if rd == r.write.Load() {
		r.underruns.Add(1)
		return 0, false
	}
	s := r.buf[rd%r.size]
	r.read.Store(rd + 1)
	return s, true
}

// Number of buffered samples
func (c *Consumer) Len() int { return c.r.len() }

// Queue capacity
func (c *Consumer) Cap() int { return int(c.r.size) }

// Number of pops that found the queue empty
func (c *Consumer) Underruns() uint64 { return c.r.underruns.Load() }

// New constructs a queue holding at most capacity samples and returns its
// two ends. A capacity below one is a programming error and panics.
func New(capacity int) (*Producer, *Consumer) {
	if capacity < 1 {
		panic("queue: capacity must be at least 1")
	}
	r := &ring{
		buf:  make([]float32, capacity),
		size: uint64(capacity),
	}
	return &Producer{r}, &Consumer{r}
}
