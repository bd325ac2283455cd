package model

import "time"

// RoomID is the opaque token used to address a room in all protocol messages
type RoomID string

// Phase represents the current stage of a room's lifecycle
type Phase string

const (
	// PhaseLobby is the initial phase: players join and signal readiness
	PhaseLobby Phase = "lobby"
	// PhaseStarting means all players were ready and the countdown is running
	PhaseStarting Phase = "starting"
	// PhaseRacing means the countdown completed and progress reports are live
	PhaseRacing Phase = "racing"
	// PhaseFinished is the conceptual terminal phase. The session never
	// assigns it: winner determination leaves the room in PhaseRacing so
	// remaining players can keep reporting until they disconnect.
	PhaseFinished Phase = "finished"
)

// Room groups a bounded set of players racing the same text.
//
// Players is kept in join order. Winner is set at most once, to the username
// of the first processed finish report, and is never cleared or reassigned.
type Room struct {
	ID        RoomID    `json:"id"`
	Text      string    `json:"text"`
	Players   []Player  `json:"players"`
	Phase     Phase     `json:"phase"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetPlayer returns the player with the given username, or nil if not found.
// Usernames are not validated for uniqueness; the first match wins, matching
// how readiness and finish reports are attributed.
func (r *Room) GetPlayer(username string) *Player {
	for i := range r.Players {
		if r.Players[i].Username == username {
			return &r.Players[i]
		}
	}
	return nil
}

// GetPlayerByConnection returns the player backed by the given connection,
// or nil if no player in this room uses it.
func (r *Room) GetPlayerByConnection(connID ConnectionID) *Player {
	for i := range r.Players {
		if r.Players[i].ConnectionID == connID {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayerByConnection removes every player entry backed by the given
// connection, preserving join order of the rest. A connection that joined the
// same room more than once leaves no ghost entries behind, so an empty room
// is always detected. It returns the first removed player and true, or a zero
// player and false if the connection has no player here.
func (r *Room) RemovePlayerByConnection(connID ConnectionID) (Player, bool) {
	var removed Player
	found := false
	kept := r.Players[:0]
	for i := range r.Players {
		if r.Players[i].ConnectionID == connID {
			if !found {
				removed = r.Players[i]
				found = true
			}
			continue
		}
		kept = append(kept, r.Players[i])
	}
	r.Players = kept
	return removed, found
}

// ReadyCount returns the number of players that have signalled ready
func (r *Room) ReadyCount() int {
	count := 0
	for i := range r.Players {
		if r.Players[i].Ready {
			count++
		}
	}
	return count
}

// AllReady reports whether every current player has signalled ready
func (r *Room) AllReady() bool {
	return r.ReadyCount() == len(r.Players)
}

// IsEmpty reports whether the room has no players left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}
