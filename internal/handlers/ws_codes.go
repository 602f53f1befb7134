// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes. These give more specific reasons for closure
// than the standard codes.
const (
	BadSubprotocolError = 3000 // Client connected without the bussfix subprotocol.
	SeatReplacedError   = 3001 // The seat was resumed elsewhere or the server is shutting down.
)
