// NATS control surface
//
// Command events are received on the configured subject and notifications
// are published on the events subject, so a controller never receives its
// own commands back.

package nats

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"soundamp/event"
	"soundamp/logger"

	"github.com/nats-io/nats.go"
	"github.com/rs/xid"
)

// Connection is the part of *nats.Conn the client uses
type Connection interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Publish(subject string, data []byte) error
	Close()
}

// Adapts *nats.Conn to Connection
type ConnectionAdapter struct {
	conn *nats.Conn
}

func NewConnectionAdapter(conn *nats.Conn) *ConnectionAdapter {
	return &ConnectionAdapter{conn: conn}
}

func (a *ConnectionAdapter) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	return a.conn.Subscribe(subject, cb)
}

func (a *ConnectionAdapter) Publish(subject string, data []byte) error {
	return a.conn.Publish(subject, data)
}

func (a *ConnectionAdapter) Close() {
	a.conn.Close()
}

// Accepts clients, implemented by the event hub
type Registrar interface {
	AddClient(rwc event.ReadWriteCloser) string
}

// NATS control client
type Client struct {
	// Exported Fields
	Config Configurer
	// Unexported Fields
	id        string
	conn      Connection
	registrar Registrar
	messageC  chan []byte
	closeC    chan struct{}
	closeOnce *sync.Once
}

// Returns instance ID
func (c *Client) ID() string {
	return c.id
}

// Message handler, runs on the nats dispatch goroutine
func (c *Client) handle(msg *nats.Msg) {
	logger.WithField("subject", msg.Subject).Debug("nats message received")
	select {
	case c.messageC <- msg.Data:
	case <-c.closeC:
	}
}

// Subscribes to the command subject and registers with the event hub
func (c *Client) Start() error {
	sub, err := c.conn.Subscribe(c.Config.Subject(), c.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.Config.Subject(), err)
	}
	if sub == nil {
		return fmt.Errorf("failed to subscribe to %s: no subscription", c.Config.Subject())
	}
	c.registrar.AddClient(c)
	logger.WithFields(logger.F{
		"subject": c.Config.Subject(),
		"events":  c.Config.EventsSubject(),
	}).Info("subscribed to nats control subject")
	return nil
}

// Read the next command event
func (c *Client) Read() ([]byte, error) {
	select {
	case <-c.closeC:
		return nil, io.EOF
	case b := <-c.messageC:
		return b, nil
	}
}

// Publishes a notification event
func (c *Client) Write(b []byte) (int, error) {
	if err := c.conn.Publish(c.Config.EventsSubject(), b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Closes the nats connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		logger.Debug("close nats client")
		defer logger.Info("closed nats client")
		close(c.closeC)
		c.conn.Close()
	})
	return nil
}

// Constructs a client with an existing connection
func NewWithConnection(conn Connection, c Configurer, r Registrar) *Client {
	return &Client{
		Config:    c,
		id:        xid.New().String(),
		conn:      conn,
		registrar: r,
		messageC:  make(chan []byte),
		closeC:    make(chan struct{}),
		closeOnce: &sync.Once{},
	}
}

// Connects to the configured nats server. The connection reconnects on its
// own when the server goes away.
func Dial(c Configurer, r Registrar) (*Client, error) {
	if c.URL() == "" {
		return nil, errors.New("nats url not configured")
	}
	nc, err := nats.Connect(c.URL(),
		nats.Name("soundamp"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(c.Retry()),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("nats reconnected")
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", c.URL(), err)
	}
	logger.WithField("url", c.URL()).Info("connected to nats")
	return NewWithConnection(NewConnectionAdapter(nc), c, r), nil
}
