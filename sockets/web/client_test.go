package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"soundamp/event"
	"soundamp/router"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	host string
}

func (c testConfig) Enabled() bool        { return true }
func (c testConfig) Host() string         { return c.host }
func (c testConfig) Path() string         { return "/control" }
func (c testConfig) Retry() time.Duration { return 10 * time.Millisecond }

type testSubmitter struct {
	cmdC chan router.Command
}

func (s *testSubmitter) Submit(cmd router.Command) error {
	s.cmdC <- cmd
	return nil
}

// Remote controller accepting websocket connections
func controller(t *testing.T) (*httptest.Server, chan *websocket.Conn) {
	connC := make(chan *websocket.Conn, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/control", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connC <- conn
	}))
	t.Cleanup(srv.Close)
	return srv, connC
}

func accept(t *testing.T, connC chan *websocket.Conn) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-connC:
		return conn
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no websocket connection")
	}
	return nil
}

func TestClient(t *testing.T) {
	srv, connC := controller(t)
	sub := &testSubmitter{cmdC: make(chan router.Command, 4)}
	hub := event.NewHub(sub)
	notifyC := make(chan router.Notification)
	hub.Start(notifyC)
	defer hub.Close()

	client := New(testConfig{strings.TrimPrefix(srv.URL, "http://")}, hub)
	client.Start()
	defer client.Close()
	conn := accept(t, connC)
	defer conn.Close()

	body, err := event.Gain(0.5)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, body))
	select {
	case cmd := <-sub.cmdC:
		assert.Equal(t, router.AdjustGain{Delta: 0.5}, cmd)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no command submitted")
	}

	notifyC <- router.Notification{Type: router.GainNotification, Gain: 1.5}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	e := &event.Event{}
	require.NoError(t, json.Unmarshal(b, e))
	assert.Equal(t, event.GainChangedEvent, e.Type)
	assert.True(t, client.Connected())
}

func TestClientReconnects(t *testing.T) {
	srv, connC := controller(t)
	sub := &testSubmitter{cmdC: make(chan router.Command, 4)}
	hub := event.NewHub(sub)
	hub.Start(make(chan router.Notification))
	defer hub.Close()

	client := New(testConfig{strings.TrimPrefix(srv.URL, "http://")}, hub)
	client.Start()
	defer client.Close()

	first := accept(t, connC)
	require.NoError(t, first.Close())
	second := accept(t, connC)
	defer second.Close()

	// the dropped connection left the hub
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	body, err := event.Start(1, -1)
	require.NoError(t, err)
	require.NoError(t, second.WriteMessage(websocket.TextMessage, body))
	select {
	case cmd := <-sub.cmdC:
		assert.Equal(t, router.Start{Input: 1, Output: -1}, cmd)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no command submitted")
	}
}

func TestClientWriteDisconnected(t *testing.T) {
	client := New(testConfig{"127.0.0.1:1"}, nil)
	n, err := client.Write([]byte("{}"))
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, client.Connected())
	require.NoError(t, client.Close())
}
