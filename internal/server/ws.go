package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/handscene/internal/scene"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSource provides the current scene state.
type SnapshotSource interface {
	Snapshot() scene.Snapshot
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// SceneStream pushes scene snapshots to WebSocket clients.
//
// Each client has a one-slot outbox. A client that has not drained the
// previous snapshot misses the next one instead of stalling the publisher.
type SceneStream struct {
	source  SnapshotSource
	clients map[uuid.UUID]*wsClient
	mu      sync.RWMutex
}

// NewSceneStream creates a new SceneStream. New clients receive the current
// snapshot from source immediately.
func NewSceneStream(source SnapshotSource) *SceneStream {
	return &SceneStream{
		source:  source,
		clients: make(map[uuid.UUID]*wsClient),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SceneStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.New()
	client := &wsClient{conn: conn, send: make(chan []byte, 1)}

	if msg, err := json.Marshal(h.source.Snapshot()); err == nil {
		client.send <- msg
	}

	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()

	done := make(chan struct{})
	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		close(done)
	}()

	go h.writeLoop(client, done)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *SceneStream) writeLoop(c *wsClient, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// Publish sends snap to every connected client.
func (h *SceneStream) Publish(snap scene.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("snapshot encode error: %v", err)
		return
	}

	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *SceneStream) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
