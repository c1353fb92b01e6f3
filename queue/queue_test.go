package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, c := New(DefaultCapacity)
	assert.Equal(t, 48000, p.Cap())
	assert.Equal(t, 48000, c.Cap())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, c.Len())
	assert.Panics(t, func() { New(0) })
}

func TestPushPop(t *testing.T) {
	tt := []struct {
		name     string
		capacity int
		push     []float32
		expected []float32
		dropped  int
	}{
		{
			"three samples in order",
			8,
			[]float32{0.1, 0.2, 0.3},
			[]float32{0.1, 0.2, 0.3},
			0,
		},
		{
			"exactly full",
			4,
			[]float32{1, 2, 3, 4},
			[]float32{1, 2, 3, 4},
			0,
		},
		{
			"overflow keeps the first samples",
			4,
			[]float32{1, 2, 3, 4, 5, 6, 7},
			[]float32{1, 2, 3, 4},
			3,
		},
		{
			"out of range values pass through",
			2,
			[]float32{-3.5, 12},
			[]float32{-3.5, 12},
			0,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p, c := New(tc.capacity)
			dropped := 0
			for _, s := range tc.push {
				if !p.Push(s) {
					dropped++
				}
				assert.LessOrEqual(t, p.Len(), tc.capacity)
			}
			assert.Equal(t, tc.dropped, dropped)
			assert.Equal(t, uint64(tc.dropped), p.Overflows())
			var got []float32
			for {
				s, ok := c.Pop()
				if !ok {
					break
				}
				got = append(got, s)
			}
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, uint64(1), c.Underruns())
		})
	}
}

func TestScenario(t *testing.T) {
	p, c := New(8)
	for _, s := range []float32{0.1, 0.2, 0.3} {
		require.True(t, p.Push(s))
	}
	for _, expected := range []float32{0.1, 0.2, 0.3} {
		s, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, expected, s)
	}
	s, ok := c.Pop()
	assert.False(t, ok)
	assert.Equal(t, float32(0), s)
}

func TestPopEmpty(t *testing.T) {
	_, c := New(1)
	for i := 0; i < 3; i++ {
		_, ok := c.Pop()
		assert.False(t, ok)
	}
	assert.Equal(t, uint64(3), c.Underruns())
}

func TestWrapAround(t *testing.T) {
	p, c := New(3)
	next := float32(0)
	expected := float32(0)
	for round := 0; round < 10; round++ {
		for i := 0; i < 2; i++ {
			require.True(t, p.Push(next))
			next++
		}
		for i := 0; i < 2; i++ {
			s, ok := c.Pop()
			require.True(t, ok)
			assert.Equal(t, expected, s)
			expected++
		}
	}
	assert.Equal(t, 0, c.Len())
}

func TestFill(t *testing.T) {
	tt := []struct {
		name     string
		capacity int
		before   int
		fill     int
		expected int
	}{
		{"empty queue", 8, 0, 4, 4},
		{"fill past capacity", 8, 0, 20, 8},
		{"partially used", 8, 6, 4, 2},
		{"nothing", 8, 0, 0, 0},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p, c := New(tc.capacity)
			for i := 0; i < tc.before; i++ {
				p.Push(1)
			}
			assert.Equal(t, tc.expected, p.Fill(tc.fill))
			assert.Equal(t, tc.before+tc.expected, c.Len())
			assert.Equal(t, uint64(0), p.Overflows())
			for i := 0; i < tc.before; i++ {
				s, _ := c.Pop()
				assert.Equal(t, float32(1), s)
			}
			for i := 0; i < tc.expected; i++ {
				s, ok := c.Pop()
				assert.True(t, ok)
				assert.Equal(t, float32(0), s)
			}
		})
	}
}

// Runs both ends on separate goroutines, every sample the consumer sees must
// arrive exactly once and in push order
func TestConcurrentFIFO(t *testing.T) {
	const total = 200000
	p, c := New(64)
	wg := &sync.WaitGroup{}
	wg.Add(2)
	accepted := make([]float32, 0, total)
	producerDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(producerDone)
		for i := 0; i < total; i++ {
			if p.Push(float32(i)) {
				accepted = append(accepted, float32(i))
			}
		}
	}()
	received := make([]float32, 0, total)
	go func() {
		defer wg.Done()
		for {
			if s, ok := c.Pop(); ok {
				received = append(received, s)
				continue
			}
			select {
			case <-producerDone:
				for {
					s, ok := c.Pop()
					if !ok {
						return
					}
					received = append(received, s)
				}
			default:
			}
		}
	}()
	wg.Wait()
	assert.Equal(t, accepted, received)
	assert.Equal(t, uint64(total), uint64(len(accepted))+p.Overflows())
}
