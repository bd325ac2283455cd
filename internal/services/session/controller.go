package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/services/passage"
	"github.com/okeefe/typeduel/internal/services/registry"
)

// RoomNotFoundMessage is the errorMsg text sent on admission to a dead room
const RoomNotFoundMessage = "Room not found"

// Config holds tunables for the session state machine
type Config struct {
	// CountdownFrom is the first countdown value broadcast; ticks descend
	// from here to 0 inclusive
	CountdownFrom int
	// TickInterval is the delay between countdown ticks
	TickInterval time.Duration
}

// DefaultConfig returns the production countdown settings
func DefaultConfig() Config {
	return Config{
		CountdownFrom: 3,
		TickInterval:  time.Second,
	}
}

// Controller is the per-room state machine and protocol handler. It owns
// player admission, readiness aggregation, countdown sequencing, progress
// relay, winner arbitration and disconnect cleanup.
//
// All mutations to one room are serialized through that room's lock;
// different rooms proceed fully independently.
type Controller struct {
	registry    *registry.Registry
	passages    *passage.Service
	broadcaster *Broadcaster
	clock       clockwork.Clock
	cfg         Config
	logger      *slog.Logger

	mu         sync.Mutex
	roomLocks  map[model.RoomID]*sync.Mutex
	countdowns map[model.RoomID]context.CancelFunc
}

// NewController creates a new session Controller
func NewController(
	registry *registry.Registry,
	passages *passage.Service,
	broadcaster *Broadcaster,
	clock clockwork.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:    registry,
		passages:    passages,
		broadcaster: broadcaster,
		clock:       clock,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "session")),
		roomLocks:   make(map[model.RoomID]*sync.Mutex),
		countdowns:  make(map[model.RoomID]context.CancelFunc),
	}
}

// roomLock returns the exclusive lock for a room, creating it on first use.
// A lock may outlive its room; operations against a deleted room degrade to
// no-ops once they fail to resolve it.
func (c *Controller) roomLock(id model.RoomID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.roomLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.roomLocks[id] = lock
	}
	return lock
}

// forgetRoom drops the lock and countdown bookkeeping for a deleted room,
// canceling a still-running countdown so no timer outlives its room.
//
// A goroutine still holding or queued on the old lock can race a later event
// that mints a fresh lock for the same id. That is tolerated: room ids are
// never reused, and every critical section resolves the room first and
// no-ops once it is gone, so the stale holder can only observe not-found.
func (c *Controller) forgetRoom(id model.RoomID) {
	c.mu.Lock()
	cancel := c.countdowns[id]
	delete(c.countdowns, id)
	delete(c.roomLocks, id)
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// CreateRoom allocates a room with a fresh passage, admits the requester as
// its first player and notifies them of the new identifier and text.
func (c *Controller) CreateRoom(ctx context.Context, connID model.ConnectionID, username string) (*model.Room, error) {
	room, err := c.registry.Create(ctx, c.passages.Pick())
	if err != nil {
		return nil, err
	}

	lock := c.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	room.Players = append(room.Players, model.NewPlayer(connID, username))
	room.UpdatedAt = c.clock.Now()
	if err := c.registry.Save(ctx, room); err != nil {
		return nil, err
	}

	c.broadcaster.RoomCreated(connID, room, username)
	c.logger.Info("player created room",
		slog.String("room", string(room.ID)),
		slog.String("username", username))
	return room, nil
}

// JoinRoom admits the requester to an existing room and broadcasts the full
// roster and race text to every participant. A stale or mistyped identifier
// yields a targeted errorMsg notice and model.ErrRoomNotFound.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, connID model.ConnectionID, username string) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		c.broadcaster.Error(connID, RoomNotFoundMessage)
		return err
	}
	if err != nil {
		return err
	}

	room.Players = append(room.Players, model.NewPlayer(connID, username))
	room.UpdatedAt = c.clock.Now()
	if err := c.registry.Save(ctx, room); err != nil {
		return err
	}

	c.broadcaster.StartGame(room)
	c.logger.Info("player joined room",
		slog.String("room", string(room.ID)),
		slog.String("username", username))
	return nil
}

// PlayerReady marks the named player ready and broadcasts the updated ready
// count. When every player is ready and the room holds more than one, the
// room moves to Starting and the countdown begins. Unknown rooms and
// usernames are silent no-ops; a room already counting down or racing
// ignores further transition attempts.
func (c *Controller) PlayerReady(ctx context.Context, roomID model.RoomID, username string) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if room.Phase != model.PhaseLobby && room.Phase != model.PhaseStarting {
		return nil
	}

	player := room.GetPlayer(username)
	if player == nil {
		// Benign race between a disconnect and a stale ready message
		return nil
	}
	player.Ready = true
	room.UpdatedAt = c.clock.Now()

	startCountdown := room.Phase == model.PhaseLobby && room.AllReady() && len(room.Players) > 1
	if startCountdown {
		room.Phase = model.PhaseStarting
	}

	if err := c.registry.Save(ctx, room); err != nil {
		return err
	}

	c.broadcaster.PlayerReadyStatus(room, username)
	c.logger.Info("player ready",
		slog.String("room", string(room.ID)),
		slog.String("username", username),
		slog.Int("ready", room.ReadyCount()),
		slog.Int("total", len(room.Players)))

	if startCountdown {
		c.startCountdown(room.ID)
	}
	return nil
}

// ProgressUpdate records a player's live progress and relays it to every
// other participant. Reports outside the Racing phase are dropped; unknown
// rooms are silent no-ops.
func (c *Controller) ProgressUpdate(ctx context.Context, roomID model.RoomID, sender model.ConnectionID, req model.ProgressUpdateRequest) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if room.Phase != model.PhaseRacing {
		return nil
	}

	if player := room.GetPlayer(req.Username); player != nil {
		player.Progress = req.Progress
		player.WPM = req.WPM
		player.CorrectChars = req.CorrectChars
		room.UpdatedAt = c.clock.Now()
		if err := c.registry.Save(ctx, room); err != nil {
			return err
		}
	}

	c.broadcaster.OpponentProgress(room, sender, model.OpponentProgressPayload{
		Username:     req.Username,
		Progress:     req.Progress,
		WPM:          req.WPM,
		CorrectChars: req.CorrectChars,
	})
	return nil
}

// FinishedGame marks the reporting player finished. The first processed
// finish report sets the winner and triggers exactly one gameOver broadcast;
// later reports only latch the player's finished flag. Tolerated in any
// phase; unknown rooms are silent no-ops.
func (c *Controller) FinishedGame(ctx context.Context, roomID model.RoomID, username string, wpm float64) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if player := room.GetPlayer(username); player != nil {
		player.Finished = true
	}

	won := room.Winner == ""
	if won {
		room.Winner = username
	}
	room.UpdatedAt = c.clock.Now()
	if err := c.registry.Save(ctx, room); err != nil {
		return err
	}

	if won {
		c.broadcaster.GameOver(room, username, wpm)
		c.logger.Info("race won",
			slog.String("room", string(room.ID)),
			slog.String("winner", username),
			slog.Float64("wpm", wpm))
	}
	return nil
}

// Disconnect removes the departing connection's player from every room it
// appears in, notifies the remaining participants, and deletes rooms left
// empty. No single-room affinity is tracked for a connection, so every live
// room is scanned.
func (c *Controller) Disconnect(ctx context.Context, connID model.ConnectionID) error {
	ids, err := c.registry.ListIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := c.removeFromRoom(ctx, id, connID); err != nil {
			return err
		}
	}
	return nil
}

// removeFromRoom applies a departure to one room under its lock
func (c *Controller) removeFromRoom(ctx context.Context, roomID model.RoomID, connID model.ConnectionID) error {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	removed, ok := room.RemovePlayerByConnection(connID)
	if !ok {
		return nil
	}

	c.logger.Info("player disconnected",
		slog.String("room", string(room.ID)),
		slog.String("username", removed.Username))

	if room.IsEmpty() {
		if err := c.registry.Remove(ctx, room.ID); err != nil {
			return err
		}
		c.forgetRoom(room.ID)
		return nil
	}

	room.UpdatedAt = c.clock.Now()
	if err := c.registry.Save(ctx, room); err != nil {
		return err
	}
	c.broadcaster.PlayerDisconnected(room, removed.Username)
	return nil
}

// startCountdown launches the cancelable countdown task for a room that just
// moved to Starting. Caller holds the room's lock.
func (c *Controller) startCountdown(roomID model.RoomID) {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.countdowns[roomID] = cancel
	c.mu.Unlock()
	go c.runCountdown(ctx, roomID)
}

// runCountdown broadcasts descending ticks at the configured interval, then
// moves the room to Racing and broadcasts the race-start signal. It stops
// silently if the room is deleted first.
func (c *Controller) runCountdown(ctx context.Context, roomID model.RoomID) {
	defer func() {
		c.mu.Lock()
		delete(c.countdowns, roomID)
		c.mu.Unlock()
	}()

	ticker := c.clock.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for tick := c.cfg.CountdownFrom; tick >= 0; tick-- {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		// Re-resolve each tick so players joining mid-countdown hear it
		room, err := c.registry.Get(ctx, roomID)
		if err != nil {
			return
		}
		c.broadcaster.Countdown(room, tick)
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		return
	}
	room.Phase = model.PhaseRacing
	room.UpdatedAt = c.clock.Now()
	if err := c.registry.Save(ctx, room); err != nil {
		c.logger.Error("failed to persist race start",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
		return
	}

	c.broadcaster.RaceStart(room)
	c.logger.Info("race started", slog.String("room", string(roomID)))
}
