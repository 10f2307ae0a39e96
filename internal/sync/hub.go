package sync

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

type transport int

const (
	transportTCP transport = iota
	transportWS
)

// subscriber is one open page or sync client. Frames to a single
// connection are serialized by mu; different connections are written
// independently.
type subscriber struct {
	kind  transport
	mu    sync.Mutex
	write func(frame []byte) error
	close func() error
}

func (s *subscriber) send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(frame)
}

// Hub fans review events out to every connected testimonials page and TCP
// sync client so they can refresh their list.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

func tcpSubscriber(conn net.Conn) *subscriber {
	return &subscriber{
		kind: transportTCP,
		write: func(frame []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, err := conn.Write(frame)
			return err
		},
		close: conn.Close,
	}
}

func wsSubscriber(ws *websocket.Conn) *subscriber {
	return &subscriber{
		kind: transportWS,
		write: func(frame []byte) error {
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			return ws.WriteMessage(websocket.TextMessage, frame)
		},
		close: ws.Close,
	}
}

// join greets the subscriber and then registers it, so the greeting is
// always its first frame.
func (h *Hub) join(sub *subscriber, transportName string) error {
	greeting := fmt.Sprintf(`{"type":"welcome","transport":%q,"clients":%d}`+"\n", transportName, h.size()+1)
	if err := sub.send([]byte(greeting)); err != nil {
		_ = sub.close()
		return err
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return nil
}

func (h *Hub) leave(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if ok {
		_ = sub.close()
	}
}

func (h *Hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) snapshot() []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		out = append(out, sub)
	}
	return out
}

// Publish sends ev as one JSON line. A subscriber whose write fails is
// dropped; a slow one only delays its own frame.
func (h *Hub) Publish(ev ReviewEvent) {
	frame, err := json.Marshal(ev)
	if err != nil {
		return
	}
	frame = append(frame, '\n')

	for _, sub := range h.snapshot() {
		if err := sub.send(frame); err != nil {
			h.leave(sub)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	var st Stats
	for sub := range h.subs {
		switch sub.kind {
		case transportTCP:
			st.TCPClients++
		case transportWS:
			st.WSClients++
		}
	}
	return st
}
