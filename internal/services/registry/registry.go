package registry

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/okeefe/typeduel/internal/dependencies/random"
	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/storage"
)

const (
	// RoomIDLength is the length of generated room identifiers
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room identifiers
	// (url-safe, avoids confusable characters)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// Registry owns the mapping from room identifier to room state. It creates,
// looks up and destroys rooms and guarantees identifier uniqueness; it never
// mutates room contents beyond allocation.
type Registry struct {
	storage storage.Storage
	clock   clockwork.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new Registry
func New(storage storage.Storage, clock clockwork.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Create allocates an empty room in phase Lobby with the given race text and
// returns it. The generated identifier is guaranteed not to belong to any
// currently live room.
func (r *Registry) Create(ctx context.Context, text string) (*model.Room, error) {
	var id model.RoomID
	for {
		id = model.RoomID(r.random.Token(RoomIDLength, RoomIDAlphabet))
		exists, err := r.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := r.clock.Now()
	room := &model.Room{
		ID:        id,
		Text:      text,
		Phase:     model.PhaseLobby,
		Players:   []model.Player{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created", slog.String("room", string(id)))
	return room, nil
}

// Get resolves an identifier to its room. Returns model.ErrRoomNotFound for
// stale or mistyped identifiers; callers decide whether that is surfaced or
// silently absorbed.
func (r *Registry) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// Save persists updated room state
func (r *Registry) Save(ctx context.Context, room *model.Room) error {
	return r.storage.SaveRoom(ctx, room)
}

// Remove deletes the registry entry for a room. The session invokes this
// exactly once, when a room's player sequence becomes empty.
func (r *Registry) Remove(ctx context.Context, id model.RoomID) error {
	if err := r.storage.DeleteRoom(ctx, id); err != nil {
		return err
	}
	r.logger.Info("room deleted", slog.String("room", string(id)))
	return nil
}

// ListIDs returns the identifiers of all live rooms
func (r *Registry) ListIDs(ctx context.Context) ([]model.RoomID, error) {
	return r.storage.ListRoomIDs(ctx)
}
