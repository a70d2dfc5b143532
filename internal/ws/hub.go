// Package ws fans out collection snapshots to every connected POS
// terminal. Terminals never send data; they re-render from each
// snapshot event, so a reconnecting client only needs the next write
// to converge.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/store"
)

// EventSnapshot is the single event type: a full collection snapshot.
const EventSnapshot = "snapshot"

// Event is a WebSocket message broadcast to all terminals.
type Event struct {
	Type       string          `json:"type"`
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload"`
}

// Hub maintains the set of connected terminals. One room: the whole
// restaurant sees every change.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a hub; call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		clients:    make(map[*Client]bool),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				logrus.WithError(err).Error("marshal ws event")
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the connection rather
					// than block every other terminal.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastSnapshot queues a collection snapshot for delivery to all
// terminals. Wired as a store.SubscribeFunc by the server.
func (h *Hub) BroadcastSnapshot(collection string, snap store.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Error("marshal snapshot")
		return
	}
	h.broadcast <- Event{Type: EventSnapshot, Collection: collection, Payload: payload}
}
