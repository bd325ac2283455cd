package session

import (
	"log/slog"

	"github.com/okeefe/typeduel/internal/model"
)

// Notifier delivers a framed protocol message to a single connection.
// Delivery is fire-and-forget: implementations must not block the caller.
type Notifier interface {
	Send(connID model.ConnectionID, env model.Envelope)
}

// Broadcaster fans session events out to a room's participants
type Broadcaster struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(notifier Notifier, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		notifier: notifier,
		logger:   logger.With(slog.String("component", "broadcaster")),
	}
}

// send marshals and delivers an event to one connection
func (b *Broadcaster) send(connID model.ConnectionID, event model.EventType, payload any) {
	env, err := model.NewEnvelope(event, payload)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}
	b.notifier.Send(connID, env)
}

// broadcast delivers an event to every player in the room
func (b *Broadcaster) broadcast(room *model.Room, event model.EventType, payload any) {
	for i := range room.Players {
		b.send(room.Players[i].ConnectionID, event, payload)
	}
}

// RoomCreated notifies the creator of their new room
func (b *Broadcaster) RoomCreated(connID model.ConnectionID, room *model.Room, username string) {
	b.send(connID, model.EventRoomCreated, model.RoomCreatedPayload{
		RoomID:   string(room.ID),
		Text:     room.Text,
		Username: username,
	})
}

// Error sends a targeted error notice to a single requester
func (b *Broadcaster) Error(connID model.ConnectionID, message string) {
	b.send(connID, model.EventError, message)
}

// StartGame broadcasts the race text and full roster to every participant,
// including the newly joined one
func (b *Broadcaster) StartGame(room *model.Room) {
	b.broadcast(room, model.EventStartGame, model.StartGamePayload{
		Text:    room.Text,
		Players: model.Roster(room),
	})
}

// PlayerReadyStatus broadcasts the updated ready count
func (b *Broadcaster) PlayerReadyStatus(room *model.Room, username string) {
	b.broadcast(room, model.EventPlayerReadyStatus, model.PlayerReadyStatusPayload{
		Username:     username,
		Ready:        true,
		ReadyPlayers: room.ReadyCount(),
		TotalPlayers: len(room.Players),
	})
}

// Countdown broadcasts a single countdown tick
func (b *Broadcaster) Countdown(room *model.Room, value int) {
	b.broadcast(room, model.EventCountdown, value)
}

// RaceStart broadcasts the race-start signal
func (b *Broadcaster) RaceStart(room *model.Room) {
	b.broadcast(room, model.EventRaceStart, nil)
}

// OpponentProgress relays a progress report to every participant except the
// reporting connection
func (b *Broadcaster) OpponentProgress(room *model.Room, sender model.ConnectionID, payload model.OpponentProgressPayload) {
	for i := range room.Players {
		if room.Players[i].ConnectionID == sender {
			continue
		}
		b.send(room.Players[i].ConnectionID, model.EventOpponentProgress, payload)
	}
}

// GameOver broadcasts the winner announcement
func (b *Broadcaster) GameOver(room *model.Room, winner string, wpm float64) {
	b.broadcast(room, model.EventGameOver, model.GameOverPayload{
		Winner: winner,
		WPM:    wpm,
	})
}

// PlayerDisconnected notifies the remaining participants of a departure
func (b *Broadcaster) PlayerDisconnected(room *model.Room, username string) {
	b.broadcast(room, model.EventPlayerDisconnected, model.PlayerDisconnectedPayload{
		Username: username,
	})
}
