package model

// ConnectionID identifies the transport connection backing a participant.
// It is assigned by the websocket layer when a socket is accepted and is the
// key used to target outbound messages and to detect disconnects.
type ConnectionID string

// Player represents a race participant inside a room.
//
// Progress, WPM and CorrectChars are caller-reported and deliberately
// unvalidated; the server relays them as-is. Ready and Finished are latches:
// once set they are never cleared for the lifetime of the player.
type Player struct {
	ConnectionID ConnectionID `json:"connectionId"`
	Username     string       `json:"username"`
	Progress     float64      `json:"progress"`
	WPM          float64      `json:"wpm"`
	CorrectChars int          `json:"correctChars"`
	Finished     bool         `json:"finished"`
	Ready        bool         `json:"ready"`
}

// NewPlayer creates a player with default race state.
func NewPlayer(connID ConnectionID, username string) Player {
	return Player{
		ConnectionID: connID,
		Username:     username,
	}
}
