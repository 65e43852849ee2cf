// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game channel.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	SessionClosedError  websocket.StatusCode = 3001 // The server tore the session down (shutdown).
)
