// Package notify pushes review events to UDP listeners that registered with
// a {"type":"register","client_id":...} datagram.
package notify

import (
	"encoding/json"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	synchub "testimonials/internal/sync"
	"testimonials/pkg/logging"
)

const RegisterMessageType = "register"

type RegisterMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

type Client struct {
	ID   string
	Addr *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(id string, addr *net.UDPAddr) {
	if id == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[id] = Client{ID: id, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

// Server listens for registrations and implements sync.Publisher.
type Server struct {
	addr     string
	registry *Registry
	logger   *zap.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *zap.Logger) *Server {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Server{addr: addr, registry: registry, logger: logging.OrNop(logger)}
}

// Listen binds the socket. Run calls it when the caller has not.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *Server) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Run reads registrations until Close. It returns nil after Close.
func (s *Server) Run() error {
	if err := s.Listen(); err != nil {
		return err
	}
	conn := s.udpConn()
	s.logger.Info("udp notify server listening", zap.String("addr", conn.LocalAddr().String()))

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Debug("invalid udp message", zap.Stringer("from", addr), zap.Error(err))
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.ClientID, addr)
		s.logger.Info("udp client registered", zap.String("client", msg.ClientID), zap.Stringer("addr", addr))
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Server) udpConn() *net.UDPConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Publish sends ev to every registered client. Clients that fail twice are
// dropped.
func (s *Server) Publish(ev synchub.ReviewEvent) {
	conn := s.udpConn()
	if conn == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("marshal udp event", zap.Error(err))
		return
	}
	for _, client := range s.registry.Snapshot() {
		s.sendWithRetry(conn, client, payload)
	}
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.logger.Warn("udp notify failed", zap.String("client", client.ID), zap.Stringer("addr", client.Addr), zap.Error(err))
		s.registry.Remove(client.ID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.ClientID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
