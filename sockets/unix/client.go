package unix

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"soundamp/logger"

	"github.com/rs/xid"
)

// Map for storing client connections
type Clients map[string]*Client

// Convenience add client connection to map
func (c Clients) Add(client *Client) {
	c[client.id] = client
}

// Convenience delete client connection from map
func (c Clients) Del(id string) {
	delete(c, id)
}

// A unix socket client, messages are newline delimited
type Client struct {
	// Unexported Fields
	id        string
	conn      net.Conn
	reader    *bufio.Reader
	writeLock *sync.Mutex
	closeOnce *sync.Once
	// Called once when Read fails, the peer has gone
	onDisconnect   func()
	disconnectOnce *sync.Once
}

// Returns the clients ID
func (c *Client) ID() string {
	return c.id
}

// Connect to a Unix socket
func (c *Client) Connect(address string) error {
	conn, err := net.Dial("unix", address)
	if err != nil {
		return err
	}
	c.setConn(conn)
	return nil
}

func (c *Client) setConn(conn net.Conn) {
	c.conn = conn
	c.reader = bufio.NewReader(conn)
}

// Reads the next message from the socket, blocks until a full line is
// received. Returns io.EOF once the connection is closed.
func (c *Client) Read() ([]byte, error) {
	b, err := c.reader.ReadBytes('\n') // EOF on connection close
	if err != nil {
		c.disconnected()
	}
	if errors.Is(err, net.ErrClosed) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) disconnected() {
	c.disconnectOnce.Do(func() {
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	})
}

// Writes data to the client unix socket connection
func (c *Client) Write(b []byte) (int, error) {
	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.Write(b)
}

// Close the Client, closing the connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		logger.Debug("close socket client")
		defer logger.Debug("closed socket client")
		if c.conn != nil {
			if err := c.conn.Close(); err != nil {
				logger.WithError(err).Error("failed to close socket client conn")
			}
		}
	})
	return nil
}

// Constructs a new Client
func NewClient() *Client {
	return &Client{
		id:        xid.New().String(),
		writeLock:      &sync.Mutex{},
		closeOnce:      &sync.Once{},
		disconnectOnce: &sync.Once{},
	}
}

// Constructs a new client with an already open connection
func NewClientWithConn(conn net.Conn) *Client {
	client := NewClient()
	client.setConn(conn)
	return client
}
