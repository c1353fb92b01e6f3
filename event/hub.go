package event

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"soundamp/logger"
	"soundamp/router"

	"github.com/rs/xid"
)

// Receives commands decoded from client events, implemented by the routing
// supervisor
type Submitter interface {
	Submit(cmd router.Command) error
}

// Type for holding a list of hub clients
type Clients map[string]ReadWriteCloser

// Get a client by id
func (c Clients) Get(id string) ReadWriteCloser {
	s, ok := c[id]
	if !ok {
		return nil
	}
	return s
}

// Add client convenience method returning the client id
func (c Clients) Add(id string, rwc ReadWriteCloser) string {
	c[id] = rwc
	return id
}

// Delete client convenience method
func (c Clients) Del(id string) {
	delete(c, id)
}

// Hub reads events from every control client, turns them into supervisor
// commands and broadcasts supervisor notifications back to every client.
type Hub struct {
	// Unexported Fields
	submitter   Submitter       // Command sink
	clientsLock *sync.Mutex     // Client lock
	clients     Clients         // Event clients
	eventsC     chan []byte     // Event processor channel
	closeWg     *sync.WaitGroup // Wait for internal goroutines to exit
	closeC      chan struct{}   // Closes internal goroutines
	closeOnce   *sync.Once
}

// Goroutine for reading client events
func (h *Hub) read(id string, rwc ReadWriteCloser) {
	logger.Debug("start event hub client read")
	defer logger.Debug("exit event hub client read")
	defer h.closeWg.Done()
	defer h.DelClient(id) // Remove the client from the hub
	for {
		b, err := rwc.Read()
		if err != nil {
			if err != io.EOF {
				logger.WithError(err).Error("unexpected hub read error")
			}
			return // Exit on any error
		}
		select {
		case h.eventsC <- b:
		case <-h.closeC:
			return
		}
	}
}

// Add a client to the hub and start reading from it, returns the client id.
// The client must be closed by its owner before the hub is closed.
func (h *Hub) AddClient(rwc ReadWriteCloser) string {
	id := xid.New().String()
	h.clientsLock.Lock()
	h.clients.Add(id, rwc)
	h.clientsLock.Unlock()
	h.closeWg.Add(1)
	go h.read(id, rwc)
	logger.WithField("client", id).Debug("event hub client added")
	return id
}

// Remove a client from the hub
func (h *Hub) DelClient(id string) {
	h.clientsLock.Lock()
	h.clients.Del(id)
	h.clientsLock.Unlock()
	logger.WithField("client", id).Debug("event hub client removed")
}

// Number of connected clients
func (h *Hub) Len() int {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()
	return len(h.clients)
}

// Broadcast event to all connected clients. Writes happen outside the
// client lock so a stalled client does not block adding or removing others.
func (h *Hub) Broadcast(b []byte) {
	h.clientsLock.Lock()
	clients := make(Clients, len(h.clients))
	for id, client := range h.clients {
		clients.Add(id, client)
	}
	h.clientsLock.Unlock()
	for id, client := range clients {
		if _, err := client.Write(b); err != nil {
			logger.WithError(err).WithField("client", id).Error("failed to write to client")
		}
	}
}

// Starts processing client events and forwarding notifications
func (h *Hub) Start(notifications <-chan router.Notification) {
	h.closeWg.Add(2)
	go h.process()
	go h.forward(notifications)
}

// Goroutine to process events from clients. Events are handled one at a
// time so commands reach the supervisor in the order they were read.
func (h *Hub) process() {
	logger.Debug("start event hub processor")
	defer logger.Debug("exit event hub processor")
	defer h.closeWg.Done()
	for {
		select {
		case b := <-h.eventsC:
			if err := h.handle(b); err != nil {
				logger.WithFields(logger.F{
					"event": string(b),
				}).WithError(err).Error("failed to handle event")
			}
		case <-h.closeC:
			return
		}
	}
}

// Goroutine broadcasting supervisor notifications
func (h *Hub) forward(notifications <-chan router.Notification) {
	logger.Debug("start event hub forwarder")
	defer logger.Debug("exit event hub forwarder")
	defer h.closeWg.Done()
	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return
			}
			b, err := FromNotification(n)
			if err != nil {
				logger.WithError(err).Error("failed to encode notification")
				continue
			}
			h.Broadcast(b)
		case <-h.closeC:
			return
		}
	}
}

// Handles a received event
func (h *Hub) handle(b []byte) error {
	logger.WithField("event", string(b)).Debug("handle event")
	event := &Event{}
	if err := json.Unmarshal(b, event); err != nil {
		return err
	}
	cmd, err := Command(event)
	if errors.Is(err, ErrNoDelta) {
		logger.Debug("ignore gain event without delta")
		return nil
	}
	if err != nil || cmd == nil {
		return err
	}
	return h.submitter.Submit(cmd)
}

// Command decodes a client event into a supervisor command. Events which are
// not commands, such as broadcasts echoed by a remote controller, return a
// nil command and no error.
func Command(e *Event) (router.Command, error) {
	switch e.Type {
	case StartEvent:
		payload := &StartPayload{}
		if err := json.Unmarshal(e.Payload, payload); err != nil {
			return nil, err
		}
		cmd := router.Start{Input: payload.Input, Output: -1}
		if payload.Output != nil {
			cmd.Output = *payload.Output
		}
		return cmd, nil
	case GainEvent:
		payload := &GainPayload{}
		if len(e.Payload) > 0 {
			if err := json.Unmarshal(e.Payload, payload); err != nil {
				return nil, err
			}
		}
		if payload.Delta == 0 {
			return nil, ErrNoDelta
		}
		return router.AdjustGain{Delta: payload.Delta}, nil
	}
	return nil, nil
}

// Closes the event hub, waiting for internal goroutines to exit
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		logger.Debug("close event hub")
		defer logger.Info("closed event hub")
		close(h.closeC)
		h.closeWg.Wait()
	})
	return nil
}

// Constructor for the Event Hub
func NewHub(s Submitter) *Hub {
	if s == nil {
		panic(errors.New("event hub requires a submitter"))
	}
	return &Hub{
		submitter:   s,
		clientsLock: &sync.Mutex{},
		clients:     make(Clients),
		eventsC:     make(chan []byte),
		closeWg:     &sync.WaitGroup{},
		closeC:      make(chan struct{}),
		closeOnce:   &sync.Once{},
	}
}
