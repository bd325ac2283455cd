package redis

import (
	"fmt"

	"github.com/okeefe/typeduel/internal/model"
)

// Key prefix for all race-related data
const keyPrefix = "typeduel"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomIndexKey returns the Redis key for the SET of live room ids
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// passagesKey returns the Redis key for the passage pool
func passagesKey() string {
	return fmt.Sprintf("%s:passages", keyPrefix)
}
