package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okeefe/typeduel/internal/model"
)

// client wraps one websocket connection. The read pump is the sole reader
// and the write pump the sole writer, so frame access never needs a lock.
type client struct {
	id     model.ConnectionID
	conn   *websocket.Conn
	send   chan model.Envelope
	cfg    Config
	logger *slog.Logger

	onEvent func(connID model.ConnectionID, env model.Envelope)
	onClose func(connID model.ConnectionID)

	connectedAt time.Time
}

func newClient(
	id model.ConnectionID,
	conn *websocket.Conn,
	cfg Config,
	logger *slog.Logger,
	onEvent func(connID model.ConnectionID, env model.Envelope),
	onClose func(connID model.ConnectionID),
) *client {
	return &client{
		id:          id,
		conn:        conn,
		send:        make(chan model.Envelope, cfg.SendBufferSize),
		cfg:         cfg,
		logger:      logger.With(slog.String("conn", string(id))),
		onEvent:     onEvent,
		onClose:     onClose,
		connectedAt: time.Now(),
	}
}

// readPump decodes inbound envelopes and hands them to the event callback.
// It owns connection teardown: when the read side ends for any reason the
// close callback fires exactly once.
func (c *client) readPump() {
	defer func() {
		c.onClose(c.id)
		_ = c.conn.Close()
		c.logger.Info("connection closed",
			slog.Duration("connected_for", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frames are tolerated; one peer's garbage must not
			// end their session, let alone anyone else's
			c.logger.Warn("undecodable message", slog.Any("error", err))
			continue
		}

		c.onEvent(c.id, env)
	}
}

// writePump serializes outbound envelopes and keepalive pings onto the wire
func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Warn("write failed", slog.Any("error", err))
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues an envelope for delivery, reporting whether it fit
func (c *client) enqueue(env model.Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}
