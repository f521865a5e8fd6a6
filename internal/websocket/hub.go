package websocket

import (
	"sync"

	"github.com/filedash/filedash_server/internal/media"
	"github.com/rs/zerolog/log"
)

// Hub fans file-status events out to every connected observer. Delivery is
// best-effort and at-most-once: events published before a client connects
// are never replayed, and a client whose send buffer is full drops the
// event. Events stay ordered per connection because a single Run loop
// drains the broadcast channel.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *media.FileStatusEvent
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *media.FileStatusEvent, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.broadcast:
			h.broadcastEvent(ev)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	log.Info().
		Str("remoteAddr", client.remoteAddr).
		Int("totalClients", len(h.clients)).
		Msg("[WS] Observer connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	log.Info().
		Str("remoteAddr", client.remoteAddr).
		Int("totalClients", len(h.clients)).
		Msg("[WS] Observer disconnected")
}

func (h *Hub) broadcastEvent(ev *media.FileStatusEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	msg := &OutgoingMessage{Event: EventFileStatus, Data: ev}

	for _, client := range clients {
		select {
		case client.send <- msg:
		default:
			log.Warn().
				Str("remoteAddr", client.remoteAddr).
				Str("fileId", ev.ID).
				Msg("[WS] Observer send buffer full, dropping event")
		}
	}

	log.Debug().
		Str("fileId", ev.ID).
		Str("status", string(ev.Status)).
		Int("recipients", len(clients)).
		Msg("[WS] File status broadcast")
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastFileStatus implements media.Broadcaster. A full queue drops the
// event rather than stalling the publisher.
func (h *Hub) BroadcastFileStatus(ev *media.FileStatusEvent) {
	select {
	case h.broadcast <- ev:
	default:
		log.Warn().
			Str("fileId", ev.ID).
			Str("status", string(ev.Status)).
			Msg("[WS] Broadcast queue full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
