package events

import (
	"log"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// welcomeFrame is the first frame every client receives.
var welcomeFrame = []byte(`{"type":"welcome","transport":"websocket"}`)

// Hub fans export progress events out to websocket clients. It keeps the
// latest event so a client that joins mid-run learns where the run is.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte
	sent    int
	dropped int
}

type Stats struct {
	Clients int `json:"clients"`
	Sent    int `json:"sent"`
	Dropped int `json:"dropped"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Join greets ws, replays the latest event and subscribes it. A client
// that cannot take the greeting is closed and not subscribed.
func (h *Hub) Join(ws *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	frames := [][]byte{welcomeFrame}
	if h.last != nil {
		frames = append(frames, h.last)
	}
	for _, f := range frames {
		if err := write(ws, f); err != nil {
			_ = ws.Close()
			return false
		}
	}
	h.clients[ws] = struct{}{}
	return true
}

func (h *Hub) Leave(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON sends v to every client. Clients that cannot keep up
// are dropped.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[ws] marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = b
	h.sent++
	for ws := range h.clients {
		if err := write(ws, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
			h.dropped++
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients), Sent: h.sent, Dropped: h.dropped}
}

func write(ws *websocket.Conn, frame []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.TextMessage, frame)
}
