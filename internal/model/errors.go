package model

import "errors"

// Common errors used across the application
var (
	// ErrRoomNotFound means the requested room identifier has no live room.
	// Surfaced to the requester only on admission paths; silently absorbed
	// on ready/progress/finish paths.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPlayerNotFound means a username has no matching player in the
	// targeted room. Always treated as a benign no-op, never surfaced.
	ErrPlayerNotFound = errors.New("player not found")
)
