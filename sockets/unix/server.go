package unix

import (
	"net"
	"os"
	"sync"

	"soundamp/event"
	"soundamp/logger"
)

// Accepts clients, implemented by the event hub
type Registrar interface {
	AddClient(rwc event.ReadWriteCloser) string
}

// Socket server type
type Server struct {
	// Exported Fields
	Config Configurer
	// Unexported Fields
	registrar   Registrar       // Event hub
	listener    net.Listener    // Unix socket listener
	clientsLock *sync.Mutex     // Guards clients
	clients     Clients         // Connected clients
	ready       chan struct{}   // Closed once listening
	wg          *sync.WaitGroup // Wait group for clean exit
	closeC      chan struct{}   // close channel for close orchestration
	closeOnce   *sync.Once
}

// Name of the event producer
func (s *Server) Name() string {
	return "unix socket server"
}

// Closed once the server is accepting connections
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Listens for new Unix socket client connections, accepted connections are
// registered with the event hub
func (s *Server) Listen() error {
	logger.Debug("start socket server listen")
	defer logger.Debug("exit socket server listen")
	s.clientsLock.Lock()
	if s.closing() {
		s.clientsLock.Unlock()
		return nil
	}
	s.wg.Add(1)
	s.clientsLock.Unlock()
	defer s.wg.Done()
	// Remove a socket file left behind by an unclean exit
	if err := os.Remove(s.Config.Address()); err != nil && !os.IsNotExist(err) {
		return err
	}
	l, err := net.Listen("unix", s.Config.Address())
	if err != nil {
		return err
	}
	s.clientsLock.Lock()
	if s.closing() {
		// Closed while binding
		s.clientsLock.Unlock()
		l.Close()
		return nil
	}
	s.listener = l
	s.clientsLock.Unlock()
	close(s.ready)
	logger.WithField("address", s.Config.Address()).Info("unix socket server listening")
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.closeC:
				return nil
			default:
				logger.WithError(err).Error("failed to accept unix connection")
				continue
			}
		}
		client := NewClientWithConn(conn)
		client.onDisconnect = func() { s.release(client) }
		s.clientsLock.Lock()
		s.clients.Add(client)
		s.clientsLock.Unlock()
		s.registrar.AddClient(client)
		logger.WithField("client", client.ID()).Debug("unix socket client connected")
	}
}

// True once Close has been called, clientsLock must be held
func (s *Server) closing() bool {
	select {
	case <-s.closeC:
		return true
	default:
		return false
	}
}

// Forgets and closes a client whose peer disconnected
func (s *Server) release(client *Client) {
	s.clientsLock.Lock()
	s.clients.Del(client.ID())
	s.clientsLock.Unlock()
	client.Close()
	logger.WithField("client", client.ID()).Debug("unix socket client disconnected")
}

// Number of connected clients
func (s *Server) Len() int {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	return len(s.clients)
}

// Gracefully closes the socket connection, closing every connected client
// and waiting for the listen loop to exit
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		logger.Debug("close socket server")
		defer logger.Info("closed socket server")
		s.clientsLock.Lock()
		close(s.closeC)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.WithError(err).Warn("failed to close unix listener")
			}
		}
		for id, client := range s.clients {
			client.Close()
			s.clients.Del(id)
		}
		s.clientsLock.Unlock()
		s.wg.Wait()
		os.Remove(s.Config.Address())
	})
	return nil
}

// Constructs a new Socket Server
func NewServer(c Configurer, r Registrar) *Server {
	return &Server{
		Config:      c,
		registrar:   r,
		clientsLock: &sync.Mutex{},
		clients:     make(Clients),
		ready:       make(chan struct{}),
		wg:          &sync.WaitGroup{},
		closeC:      make(chan struct{}),
		closeOnce:   &sync.Once{},
	}
}
