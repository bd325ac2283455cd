package memory

import (
	"context"
	"sync"

	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms    map[model.RoomID]*model.Room
	passages []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms: make(map[model.RoomID]*model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// cloneRoom returns an independent copy so callers cannot mutate stored
// state outside the session's room lock
func cloneRoom(room *model.Room) *model.Room {
	clone := *room
	clone.Players = make([]model.Player, len(room.Players))
	copy(clone.Players, room.Players)
	return &clone
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRoomIDs(ctx context.Context) ([]model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}

// Passage operations

func (s *Storage) SavePassages(ctx context.Context, passages []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = make([]string, len(passages))
	copy(s.passages, passages)
	return nil
}

func (s *Storage) GetPassages(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	passages := make([]string, len(s.passages))
	copy(passages, s.passages)
	return passages, nil
}
