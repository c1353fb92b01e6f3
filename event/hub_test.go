package event

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"soundamp/audio"
	"soundamp/device"
	"soundamp/gain"
	"soundamp/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In memory control client
type testClient struct {
	readC   chan []byte
	writeC  chan []byte
	closeC  chan struct{}
	closeMu sync.Once
}

func (c *testClient) Read() ([]byte, error) {
	select {
	case b := <-c.readC:
		return b, nil
	case <-c.closeC:
		return nil, io.EOF
	}
}

func (c *testClient) Write(b []byte) (int, error) {
	c.writeC <- b
	return len(b), nil
}

func (c *testClient) Close() error {
	c.closeMu.Do(func() { close(c.closeC) })
	return nil
}

func newTestClient() *testClient {
	return &testClient{
		readC:  make(chan []byte),
		writeC: make(chan []byte, 16),
		closeC: make(chan struct{}),
	}
}

func (c *testClient) next(t *testing.T) *Event {
	t.Helper()
	select {
	case b := <-c.writeC:
		e := &Event{}
		require.NoError(t, json.Unmarshal(b, e))
		return e
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no event written")
	}
	return nil
}

type testSubmitter struct {
	cmdC chan router.Command
}

func (s *testSubmitter) Submit(cmd router.Command) error {
	s.cmdC <- cmd
	return nil
}

func TestCommand(t *testing.T) {
	tt := []struct {
		name     string
		event    string
		expected router.Command
		err      bool
	}{
		{
			"start with default output",
			`{"type":"start","payload":{"input":1}}`,
			router.Start{Input: 1, Output: -1},
			false,
		},
		{
			"start with output",
			`{"type":"start","payload":{"input":0,"output":2}}`,
			router.Start{Input: 0, Output: 2},
			false,
		},
		{
			"gain",
			`{"type":"gain","payload":{"delta":-0.1}}`,
			router.AdjustGain{Delta: -0.1},
			false,
		},
		{
			"gain broadcast echo",
			`{"type":"gain","payload":{"gain":1.5}}`,
			nil,
			true,
		},
		{
			"bad start payload",
			`{"type":"start","payload":{"input":"mic"}}`,
			nil,
			true,
		},
		{
			"not a command",
			`{"type":"linked","payload":{"id":"abc"}}`,
			nil,
			false,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			e := &Event{}
			require.NoError(t, json.Unmarshal([]byte(tc.event), e))
			cmd, err := Command(e)
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, cmd)
		})
	}
}

func TestStartGainRoundTrip(t *testing.T) {
	b, err := Start(3, -1)
	require.NoError(t, err)
	e := &Event{}
	require.NoError(t, json.Unmarshal(b, e))
	assert.Equal(t, StartEvent, e.Type)
	assert.NotContains(t, string(e.Payload), "output")
	cmd, err := Command(e)
	require.NoError(t, err)
	assert.Equal(t, router.Start{Input: 3, Output: -1}, cmd)

	b, err = Gain(0.25)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, e))
	cmd, err = Command(e)
	require.NoError(t, err)
	assert.Equal(t, router.AdjustGain{Delta: 0.25}, cmd)
}

func TestFromNotification(t *testing.T) {
	created := time.Date(2016, 12, 23, 16, 25, 10, 0, time.UTC)
	b, err := FromNotification(router.Notification{
		Type:    router.ErrorNotification,
		Created: created,
		Err: &audio.LinkError{
			Kind:      audio.KindOpen,
			Direction: device.Input,
			Device:    "mic",
			Err:       audio.ErrDisconnected,
		},
	})
	require.NoError(t, err)
	e := &Event{}
	require.NoError(t, json.Unmarshal(b, e))
	assert.Equal(t, ErrorEvent, e.Type)
	assert.True(t, created.Equal(e.Created))
	p := &ErrorPayload{}
	require.NoError(t, json.Unmarshal(e.Payload, p))
	assert.Equal(t, "stream open error", p.Kind)
	assert.Equal(t, "input", p.Direction)
	assert.Equal(t, "mic", p.Device)
	assert.Contains(t, p.Error, "device disconnected")

	b, err = FromNotification(router.Notification{
		Type:   router.LinkedNotification,
		LinkID: "abc",
		Input:  "mic",
		Output: "speakers",
		Gain:   1.5,
	})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, e))
	assert.Equal(t, LinkedEvent, e.Type)
	assert.False(t, e.Created.IsZero())
	lp := &LinkPayload{}
	require.NoError(t, json.Unmarshal(e.Payload, lp))
	assert.Equal(t, LinkPayload{ID: "abc", Input: "mic", Output: "speakers", Gain: 1.5}, *lp)
}

func TestHubSubmitsInOrder(t *testing.T) {
	s := &testSubmitter{cmdC: make(chan router.Command, 8)}
	h := NewHub(s)
	h.Start(make(chan router.Notification))
	c := newTestClient()
	h.AddClient(c)
	defer h.Close()
	defer c.Close()

	start, _ := Start(1, -1)
	up, _ := Gain(0.5)
	c.readC <- start
	c.readC <- []byte("not json")
	c.readC <- up
	for _, expected := range []router.Command{
		router.Start{Input: 1, Output: -1},
		router.AdjustGain{Delta: 0.5},
	} {
		select {
		case cmd := <-s.cmdC:
			assert.Equal(t, expected, cmd)
		case <-time.After(2 * time.Second):
			require.FailNow(t, "no command submitted")
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	s := &testSubmitter{cmdC: make(chan router.Command, 8)}
	h := NewHub(s)
	notifyC := make(chan router.Notification)
	h.Start(notifyC)
	a, b := newTestClient(), newTestClient()
	h.AddClient(a)
	h.AddClient(b)
	assert.Equal(t, 2, h.Len())

	notifyC <- router.Notification{Type: router.GainNotification, Gain: 0.5}
	for _, c := range []*testClient{a, b} {
		e := c.next(t)
		assert.Equal(t, GainChangedEvent, e.Type)
		assert.JSONEq(t, `{"gain":0.5}`, string(e.Payload))
	}

	// closed clients are removed from the hub
	require.NoError(t, a.Close())
	assert.Eventually(t, func() bool { return h.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, b.Close())
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

func TestHubWithSupervisor(t *testing.T) {
	b := audio.NewMockBackend()
	l := device.NewStatic([]string{"mic", "line"}, []string{"speakers"})
	s := router.New(b, l, gain.New(1, 0), audio.Options{Capacity: 64})
	s.Start()
	defer s.Close()
	h := NewHub(s)
	h.Start(s.Notifications())
	c := newTestClient()
	h.AddClient(c)
	defer h.Close()
	defer c.Close()

	start, _ := Start(1, -1)
	c.readC <- start
	e := c.next(t)
	require.Equal(t, LinkedEvent, e.Type)
	p := &LinkPayload{}
	require.NoError(t, json.Unmarshal(e.Payload, p))
	assert.Equal(t, "line", p.Input)
	assert.Equal(t, "speakers", p.Output)

	start, _ = Start(5, -1)
	c.readC <- start
	assert.Equal(t, UnlinkedEvent, c.next(t).Type)
	e = c.next(t)
	assert.Equal(t, ErrorEvent, e.Type)
	assert.Contains(t, string(e.Payload), "device not found")
	assert.Equal(t, router.Idle, s.State())
}

// Client whose writes block until released
type stalledClient struct {
	*testClient
	releaseC chan struct{}
	writingC chan struct{}
}

func (c *stalledClient) Write(b []byte) (int, error) {
	c.writingC <- struct{}{}
	<-c.releaseC
	return len(b), nil
}

func TestHubBroadcastStalledClient(t *testing.T) {
	s := &testSubmitter{cmdC: make(chan router.Command, 8)}
	h := NewHub(s)
	stalled := &stalledClient{
		testClient: newTestClient(),
		releaseC:   make(chan struct{}),
		writingC:   make(chan struct{}, 1),
	}
	h.AddClient(stalled)
	doneC := make(chan struct{})
	go func() {
		defer close(doneC)
		h.Broadcast([]byte(`{"type":"gain"}`))
	}()
	select {
	case <-stalled.writingC:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "broadcast did not reach the client")
	}

	// the client list stays usable while a write is blocked
	added := make(chan struct{})
	other := newTestClient()
	go func() {
		defer close(added)
		h.AddClient(other)
		h.Len()
	}()
	select {
	case <-added:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "client lock held during broadcast")
	}
	assert.Equal(t, 2, h.Len())

	close(stalled.releaseC)
	<-doneC
	require.NoError(t, stalled.Close())
	require.NoError(t, other.Close())
	require.NoError(t, h.Close())
}
