package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/services/session"
)

// Handler upgrades HTTP requests to websocket connections and dispatches the
// inbound protocol to the session controller
type Handler struct {
	hub      *Hub
	sessions *session.Controller
	upgrader websocket.Upgrader
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a websocket handler bound to a hub and session controller
func NewHandler(hub *Hub, sessions *session.Controller, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg:    cfg,
		logger: logger.With(slog.String("component", "ws-handler")),
	}
}

// ServeHTTP accepts a websocket connection and starts its pumps. Each
// connection gets a fresh opaque identifier that doubles as the player id
// clients see in rosters.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Warn("upgrade failed", slog.Any("error", err))
		return
	}

	connID := model.ConnectionID(uuid.NewString())
	c := newClient(connID, conn, h.cfg, h.logger, h.handleEvent, h.handleClose)

	h.hub.register(c)
	go c.writePump()
	go c.readPump()
}

// handleEvent routes one inbound envelope. Decode failures and unknown
// events are logged and dropped; no inbound message may take the server down
// or leak an error to another connection.
func (h *Handler) handleEvent(connID model.ConnectionID, env model.Envelope) {
	ctx := context.Background()

	var err error
	switch env.Event {
	case model.EventCreateRoom:
		var req model.CreateRoomRequest
		if err = json.Unmarshal(env.Data, &req); err == nil {
			_, err = h.sessions.CreateRoom(ctx, connID, req.Username)
		}

	case model.EventJoinRoom:
		var req model.JoinRoomRequest
		if err = json.Unmarshal(env.Data, &req); err == nil {
			// The session already notified the requester on a dead room id
			err = h.sessions.JoinRoom(ctx, model.RoomID(req.RoomID), connID, req.Username)
			if errors.Is(err, model.ErrRoomNotFound) {
				err = nil
			}
		}

	case model.EventPlayerReady:
		var req model.PlayerReadyRequest
		if err = json.Unmarshal(env.Data, &req); err == nil {
			err = h.sessions.PlayerReady(ctx, model.RoomID(req.RoomID), req.Username)
		}

	case model.EventProgressUpdate:
		var req model.ProgressUpdateRequest
		if err = json.Unmarshal(env.Data, &req); err == nil {
			err = h.sessions.ProgressUpdate(ctx, model.RoomID(req.RoomID), connID, req)
		}

	case model.EventFinishedGame:
		var req model.FinishedGameRequest
		if err = json.Unmarshal(env.Data, &req); err == nil {
			err = h.sessions.FinishedGame(ctx, model.RoomID(req.RoomID), req.Username, req.WPM)
		}

	default:
		h.logger.Warn("unknown event",
			slog.String("conn", string(connID)),
			slog.String("event", string(env.Event)))
		return
	}

	if err != nil {
		h.logger.Error("event handling failed",
			slog.String("conn", string(connID)),
			slog.String("event", string(env.Event)),
			slog.Any("error", err))
	}
}

// handleClose runs when a connection's read side ends: the hub entry goes
// first so room broadcasts stop targeting the dead connection, then the
// session applies the departure to every room it appears in.
func (h *Handler) handleClose(connID model.ConnectionID) {
	h.hub.unregister(connID)

	if err := h.sessions.Disconnect(context.Background(), connID); err != nil {
		h.logger.Error("disconnect cleanup failed",
			slog.String("conn", string(connID)),
			slog.Any("error", err))
	}
}
