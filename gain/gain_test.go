package gain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjust(t *testing.T) {
	tt := []struct {
		name     string
		initial  float32
		ceiling  float32
		deltas   []float32
		expected float32
	}{
		{"louder", 1, 0, []float32{0.5}, 1.5},
		{"quieter", 1, 0, []float32{-0.25}, 0.75},
		{"floor at zero", 1, 0, []float32{-3}, 0},
		{"recovers from floor", 1, 0, []float32{-3, 0.5}, 0.5},
		{"unbounded", 1, 0, []float32{100, 100}, 201},
		{"ceiling", 1, 4, []float32{10}, 4},
		{"no change", 2, 0, []float32{0}, 2},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := New(tc.initial, tc.ceiling)
			var v float32
			for _, d := range tc.deltas {
				v = c.Adjust(d)
			}
			assert.InDelta(t, tc.expected, v, 1e-6)
			assert.InDelta(t, tc.expected, c.Get(), 1e-6)
		})
	}
}

func TestAdjustAddsToPrevious(t *testing.T) {
	c := New(1, 0)
	for _, d := range []float32{0.1, -0.4, 2, -0.7} {
		prev := c.Get()
		expected := prev + d
		if expected < 0 {
			expected = 0
		}
		assert.Equal(t, expected, c.Adjust(d))
	}
}

func TestStore(t *testing.T) {
	tt := []struct {
		name     string
		ceiling  float32
		value    float32
		expected float32
	}{
		{"plain", 0, 0.3, 0.3},
		{"negative", 0, -1, 0},
		{"over ceiling", 2, 5, 2},
		{"negative ceiling is unbounded", -1, 5, 5},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := New(1, tc.ceiling)
			assert.Equal(t, tc.expected, c.Store(tc.value))
			assert.Equal(t, tc.expected, c.Get())
		})
	}
}

func TestConcurrentAdjust(t *testing.T) {
	c := New(0, 0)
	wg := &sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Adjust(1)
				_ = c.Get()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, float32(8000), c.Get())
}

func TestNewFromConfig(t *testing.T) {
	c := NewFromConfig(NewConfig())
	assert.Equal(t, float32(1), c.Get())
	assert.Equal(t, float32(0), c.Ceiling())
}
