package websocket

import "github.com/filedash/filedash_server/internal/media"

type EventName string

const (
	EventConnected  EventName = "connected"
	EventFileStatus EventName = "file-status"
	EventPing       EventName = "ping"
	EventPong       EventName = "pong"
)

type IncomingMessage struct {
	Event EventName `json:"event"`
}

type OutgoingMessage struct {
	Event EventName              `json:"event"`
	Data  *media.FileStatusEvent `json:"data,omitempty"`
}
