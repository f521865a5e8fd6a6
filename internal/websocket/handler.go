package websocket

import (
	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.FastHTTPUpgrader
}

// NewHandler creates the upgrade handler for the push channel. With no
// configured origins every origin is accepted (development mode).
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.FastHTTPUpgrader{
			CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
				if len(allowed) == 0 || allowed["*"] {
					return true
				}
				return allowed[string(ctx.Request.Header.Peek("Origin"))]
			},
		},
	}
}

// HandleFastHTTP upgrades the request and keeps the connection open until
// the observer disconnects.
func (h *Handler) HandleFastHTTP(ctx *fasthttp.RequestCtx) {
	remoteAddr := ctx.RemoteAddr().String()

	err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		client := NewClient(h.hub, conn, remoteAddr)
		h.hub.Register(client)

		client.send <- &OutgoingMessage{Event: EventConnected}

		go client.WritePump()
		client.ReadPump() // Blocks until disconnect
	})

	if err != nil {
		log.Error().Err(err).Msg("[WS] Failed to upgrade connection")
	}
}
