package storage

import (
	"context"

	"github.com/okeefe/typeduel/internal/model"
)

// Storage defines the interface for room and passage persistence.
//
// Implementations return independent copies of stored rooms: mutating a
// returned room has no effect until it is saved back. Serialization of
// concurrent mutations to the same room is the session layer's concern,
// not the storage layer's.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	// ListRoomIDs returns the identifiers of all live rooms, used by the
	// disconnect scan which must check every room for a departing connection
	ListRoomIDs(ctx context.Context) ([]model.RoomID, error)

	// Passage operations
	SavePassages(ctx context.Context, passages []string) error
	GetPassages(ctx context.Context) ([]string, error)
}
