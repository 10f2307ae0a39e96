package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"testimonials/pkg/logging"
)

type Server struct {
	Addr   string
	Hub    *Hub
	Logger *zap.Logger

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub, logger *zap.Logger) *Server {
	return &Server{Addr: addr, Hub: hub, Logger: logging.OrNop(logger)}
}

// Run accepts TCP clients until Close is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.Logger.Info("tcp sync listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		sub := tcpSubscriber(conn)
		if err := s.Hub.join(sub, "tcp"); err != nil {
			s.Logger.Debug("tcp sync greeting failed", zap.Error(err))
			continue
		}
		s.Logger.Debug("tcp sync client connected", zap.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.leave(sub)
				s.Logger.Debug("tcp sync client disconnected", zap.String("remote", c.RemoteAddr().String()))
			}()

			// clients only listen; drain anything they send
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

// ListenAddr is the bound address once Run has started, or "".
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
