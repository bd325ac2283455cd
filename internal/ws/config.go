package ws

import (
	"net/http"
	"time"
)

// Config holds websocket connection settings
type Config struct {
	// WriteTimeout bounds a single frame write to a peer
	WriteTimeout time.Duration
	// PongTimeout is how long a connection may stay silent before the read
	// side gives up; refreshed on every pong
	PongTimeout time.Duration
	// PingInterval is the keepalive ping cadence; must be below PongTimeout
	PingInterval time.Duration

	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	// SendBufferSize is the per-connection outbound queue; broadcasts are
	// dropped rather than blocking the session when a peer falls behind
	SendBufferSize int

	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns default websocket settings. The origin check admits
// everyone, matching the open CORS posture of the rest of the server.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}
