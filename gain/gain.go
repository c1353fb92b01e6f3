// Gain control shared between the control surfaces and the realtime input
// callback of the active link.

package gain

import (
	"math"
	"sync/atomic"
)

// Control holds a float32 gain factor stored as its IEEE 754 bits so that
// reads from the audio thread are a single atomic load.
type Control struct {
	bits    atomic.Uint32
	ceiling float32 // 0 means no upper bound
}

func (c *Control) clamp(v float32) float32 {
	if v < 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if c.ceiling > 0 && v > c.ceiling {
		return c.ceiling
	}
	return v
}

// Get returns the current gain
func (c *Control) Get() float32 {
	return math.Float32frombits(c.bits.Load())
}

// Adjust adds delta to the gain and returns the new value. The gain never
// drops below 0 and never exceeds the ceiling when one is set.
func (c *Control) Adjust(delta float32) float32 {
	for {
		old := c.bits.Load()
		v := c.clamp(math.Float32frombits(old) + delta)
		if c.bits.CompareAndSwap(old, math.Float32bits(v)) {
			return v
		}
	}
}

// Store replaces the gain, clamped the same way as Adjust
func (c *Control) Store(v float32) float32 {
	v = c.clamp(v)
	c.bits.Store(math.Float32bits(v))
	return v
}

// Upper bound of the gain, 0 if unbounded
func (c *Control) Ceiling() float32 {
	return c.ceiling
}

// New constructs a gain control. A ceiling of 0 or less leaves the gain
// unbounded.
func New(initial, ceiling float32) *Control {
	if ceiling < 0 {
		ceiling = 0
	}
	c := &Control{ceiling: ceiling}
	c.Store(initial)
	return c
}
