package model

import "encoding/json"

// EventType identifies a protocol message on the wire
type EventType string

// Inbound events (client -> server)
const (
	EventCreateRoom     EventType = "createRoom"
	EventJoinRoom       EventType = "joinRoom"
	EventPlayerReady    EventType = "playerReady"
	EventProgressUpdate EventType = "progressUpdate"
	EventFinishedGame   EventType = "finishedGame"
)

// Outbound events (server -> client)
const (
	EventRoomCreated        EventType = "roomCreated"
	EventError              EventType = "errorMsg"
	EventStartGame          EventType = "startGame"
	EventPlayerReadyStatus  EventType = "playerReadyStatus"
	EventCountdown          EventType = "countdown"
	EventRaceStart          EventType = "raceStart"
	EventOpponentProgress   EventType = "opponentProgress"
	EventGameOver           EventType = "gameOver"
	EventPlayerDisconnected EventType = "playerDisconnected"
)

// Envelope is the framing for every message in both directions
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads. Fields are caller-supplied and not validated for range
// or type beyond JSON decoding; absent fields decode to zero values.

// CreateRoomRequest asks for a new room with the requester admitted
type CreateRoomRequest struct {
	Username string `json:"username"`
}

// JoinRoomRequest asks to admit the requester to an existing room
type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// PlayerReadyRequest signals that a player is ready to race
type PlayerReadyRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// ProgressUpdateRequest reports a player's live typing progress
type ProgressUpdateRequest struct {
	RoomID       string  `json:"roomId"`
	Username     string  `json:"username"`
	Progress     float64 `json:"progress"`
	WPM          float64 `json:"wpm"`
	CorrectChars int     `json:"correctChars"`
}

// FinishedGameRequest reports that a player completed the text
type FinishedGameRequest struct {
	RoomID   string  `json:"roomId"`
	Username string  `json:"username"`
	WPM      float64 `json:"wpm"`
}

// Outbound payloads

// RoomCreatedPayload is sent to the creator only
type RoomCreatedPayload struct {
	RoomID   string `json:"roomId"`
	Text     string `json:"text"`
	Username string `json:"username"`
}

// RosterEntry is one player in a startGame roster
type RosterEntry struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// StartGamePayload carries the race text and the full roster so every client
// converges on identical session state regardless of join order
type StartGamePayload struct {
	Text    string        `json:"text"`
	Players []RosterEntry `json:"players"`
}

// PlayerReadyStatusPayload broadcasts the updated ready count
type PlayerReadyStatusPayload struct {
	Username     string `json:"username"`
	Ready        bool   `json:"ready"`
	ReadyPlayers int    `json:"readyPlayers"`
	TotalPlayers int    `json:"totalPlayers"`
}

// OpponentProgressPayload relays one player's progress to the others
type OpponentProgressPayload struct {
	Username     string  `json:"username"`
	Progress     float64 `json:"progress"`
	WPM          float64 `json:"wpm"`
	CorrectChars int     `json:"correctChars"`
}

// GameOverPayload announces the winner, sent at most once per room
type GameOverPayload struct {
	Winner string  `json:"winner"`
	WPM    float64 `json:"wpm"`
}

// PlayerDisconnectedPayload notifies remaining participants of a departure
type PlayerDisconnectedPayload struct {
	Username string `json:"username"`
}

// NewEnvelope marshals a payload into a framed protocol message
func NewEnvelope(event EventType, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// Roster builds the startGame roster from a room's players in join order
func Roster(room *Room) []RosterEntry {
	roster := make([]RosterEntry, 0, len(room.Players))
	for i := range room.Players {
		roster = append(roster, RosterEntry{
			Username: room.Players[i].Username,
			ID:       string(room.Players[i].ConnectionID),
		})
	}
	return roster
}
