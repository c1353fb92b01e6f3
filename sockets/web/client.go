// Websocket Client
//
// Connects to a remote controller and registers with the event hub while the
// connection is up. Dropped connections are retried after the configured
// delay.
// Usage:
// ws := web.New(web.NewConfig(), hub)
// ws.Start() // Graceful reconnection
// defer ws.Close()
//

package web

import (
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"soundamp/event"
	"soundamp/logger"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

type message struct {
	msg []byte
	err error
}

// Websocket connection interface
type ReadWriteCloser interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Implemented by websocket.Dialer
type Dialer interface {
	Dial(urlStr string, headers http.Header) (*websocket.Conn, *http.Response, error)
}

// Accepts clients, implemented by the event hub
type Registrar interface {
	AddClient(rwc event.ReadWriteCloser) string
}

// Websocket client
type Client struct {
	// Exported Fields
	Config Configurer
	// Unexported Fields
	id        string
	dialer    Dialer
	registrar Registrar
	// Connection & state
	connLock *sync.Mutex
	conn     ReadWriteCloser
	// Received messages
	messageC chan message
	// Orchestration
	wg        *sync.WaitGroup
	closeC    chan struct{}
	closeOnce *sync.Once
}

// Constructs the connection url
func (c *Client) url() string {
	u := url.URL{Scheme: "ws", Host: c.Config.Host(), Path: c.Config.Path()}
	return u.String()
}

// Returns headers to use for connecting to the server
func (c *Client) headers() http.Header {
	return http.Header{}
}

// Connect to server
func (c *Client) connect() (ReadWriteCloser, error) {
	logger.WithField("url", c.url()).Debug("connecting to websocket server")
	conn, _, err := c.dialer.Dial(c.url(), c.headers())
	if err != nil {
		return nil, err
	}
	c.connLock.Lock()
	defer c.connLock.Unlock()
	select {
	case <-c.closeC:
		conn.Close()
		return nil, io.EOF
	default:
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) disconnect() {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Returns true while connected to the server
func (c *Client) Connected() bool {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	return c.conn != nil
}

// Passes messages from the connection to Read until the connection fails
func (c *Client) read(conn ReadWriteCloser) error {
	logger.Debug("start websocket read loop")
	defer logger.Debug("exit websocket read loop")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			// Ends the hub reader for this connection
			select {
			case c.messageC <- message{err: io.EOF}:
			case <-c.closeC:
			}
			return err
		}
		select {
		case c.messageC <- message{msg: msg}:
		case <-c.closeC:
			return nil
		}
	}
}

// Returns instance ID
func (c *Client) ID() string {
	return c.id
}

// Start the connection loop
func (c *Client) Start() {
	c.wg.Add(1)
	go c.run()
}

// Connects, serves the connection until it drops and reconnects
func (c *Client) run() {
	logger.Debug("start websocket connect loop")
	defer logger.Debug("exit websocket connect loop")
	defer c.wg.Done()
	var delay time.Duration // connect immediately
	for {
		select {
		case <-c.closeC:
			return
		case <-time.After(delay):
		}
		delay = c.Config.Retry()
		conn, err := c.connect()
		if err != nil {
			logger.WithError(err).WithFields(logger.F{
				"retry": c.Config.Retry(),
				"url":   c.url(),
			}).Error("failed connecting to websocket server")
			continue
		}
		logger.WithField("url", c.url()).Info("connected to websocket server")
		c.registrar.AddClient(c)
		err = c.read(conn)
		c.disconnect()
		select {
		case <-c.closeC:
			return // Don't reconnect if closing
		default:
			logger.WithError(err).Error("error reading websocket server")
		}
	}
}

// Read messages from the websocket server
func (c *Client) Read() ([]byte, error) {
	select {
	case <-c.closeC:
		return nil, io.EOF
	case message := <-c.messageC:
		return message.msg, message.err
	}
}

// Writes messages to websocket server
func (c *Client) Write(b []byte) (int, error) {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil {
		logger.Warn("unable to write to websocket server")
		return 0, nil
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Gracefully closes the websocket connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		logger.Debug("close websocket client")
		defer logger.Info("closed websocket client")
		close(c.closeC)
		c.connLock.Lock()
		if c.conn != nil {
			err := c.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(
					websocket.CloseNormalClosure, ""))
			if err != nil {
				logger.WithError(err).Error("error closing connection")
			}
			if err := c.conn.Close(); err != nil {
				logger.WithError(err).Error("error closing connection")
			}
			c.conn = nil
		}
		c.connLock.Unlock()
		// Wait for routines to exit
		c.wg.Wait()
	})
	return nil
}

// Constructs a new websocket Client
func New(c Configurer, r Registrar) *Client {
	return &Client{
		// Exported Fields
		Config: c,
		// ID
		id:        xid.New().String(),
		dialer:    websocket.DefaultDialer,
		registrar: r,
		connLock:  &sync.Mutex{},
		// Read messages
		messageC: make(chan message),
		// Orchestration
		wg:        &sync.WaitGroup{},
		closeC:    make(chan struct{}),
		closeOnce: &sync.Once{},
	}
}
