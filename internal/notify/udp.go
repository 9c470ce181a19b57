package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/goccy/go-json"
)

// RegisterMessageType is the only datagram a listener sends: it subscribes
// the sender's address to progress events under Name.
const RegisterMessageType = "register"

type RegisterMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type Listener struct {
	Name string
	Addr *net.UDPAddr
}

type Registry struct {
	mu        sync.RWMutex
	listeners map[string]Listener
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[string]Listener)}
}

func (r *Registry) Register(name string, addr *net.UDPAddr) {
	if name == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.listeners[name] = Listener{Name: name, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	delete(r.listeners, name)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *Registry) Snapshot() []Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

// Server pushes export progress events as JSON datagrams to registered
// listeners. It implements export.Notifier.
type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu        sync.Mutex
	conn      *net.UDPConn
	ready     chan struct{}
	readyOnce sync.Once
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger, ready: make(chan struct{})}
}

// Run accepts registrations until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.markReady()

	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.markReady()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	s.logger.Printf("[udp] progress feed listening on %s", conn.LocalAddr())

	buf := make([]byte, 2048)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		var msg RegisterMessage
		if err := json.Unmarshal(buf[:n], &msg); err != nil {
			s.logger.Printf("[udp] invalid message from %s: %v", from, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.Name, from)
		s.logger.Printf("[udp] registered %s (%s)", msg.Name, from)
	}
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Addr blocks until Run is listening and returns the bound address, or
// nil once Run has given up without listening.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *Server) BroadcastJSON(v any) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Printf("[udp] marshal event: %v", err)
		return
	}
	for _, l := range s.registry.Snapshot() {
		s.sendWithRetry(conn, l, payload)
	}
}

// sendWithRetry tries twice, then forgets the listener.
func (s *Server) sendWithRetry(conn *net.UDPConn, l Listener, payload []byte) {
	if _, err := conn.WriteToUDP(payload, l.Addr); err == nil {
		return
	}
	if _, err := conn.WriteToUDP(payload, l.Addr); err != nil {
		s.logger.Printf("[udp] drop listener %s at %s: %v", l.Name, l.Addr, err)
		s.registry.Remove(l.Name)
	}
}
