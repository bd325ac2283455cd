package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/okeefe/typeduel/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: Complete race flow from room creation to a declared winner
func (s *IntegrationSuite) TestCompleteRaceFlow() {
	s.app.MockRandom.QueueToken("Race01")
	s.app.PassageService.LoadPassages([]string{"the quick brown fox"})

	// Step 1: Alice creates a room
	room, err := s.app.Sessions.CreateRoom(s.ctx, "conn-alice", "alice")
	s.Require().NoError(err)
	s.Equal(model.RoomID("Race01"), room.ID)
	s.Equal("the quick brown fox", room.Text)
	s.Equal(model.PhaseLobby, room.Phase)

	// Step 2: Bob joins
	err = s.app.Sessions.JoinRoom(s.ctx, room.ID, "conn-bob", "bob")
	s.Require().NoError(err)

	stored, err := s.app.Registry.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Len(stored.Players, 2)

	// Step 3: Both ready up; the countdown starts
	s.Require().NoError(s.app.Sessions.PlayerReady(s.ctx, room.ID, "alice"))
	s.Require().NoError(s.app.Sessions.PlayerReady(s.ctx, room.ID, "bob"))

	stored, err = s.app.Registry.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseStarting, stored.Phase)

	// Step 4: Drive the countdown (ticks 3, 2, 1, 0) until the race starts
	s.app.FakeClock.BlockUntil(1)
	s.Eventually(func() bool {
		s.app.FakeClock.Advance(time.Second)
		r, err := s.app.Registry.Get(s.ctx, room.ID)
		return err == nil && r.Phase == model.PhaseRacing
	}, time.Second, 5*time.Millisecond)

	// Step 5: Alice finishes first and wins
	s.Require().NoError(s.app.Sessions.FinishedGame(s.ctx, room.ID, "alice", 92))

	stored, err = s.app.Registry.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal("alice", stored.Winner)

	// Bob finishing afterwards does not displace the winner
	s.Require().NoError(s.app.Sessions.FinishedGame(s.ctx, room.ID, "bob", 95))

	stored, err = s.app.Registry.Get(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal("alice", stored.Winner)

	// Step 6: Both disconnect; the room is cleaned up
	s.Require().NoError(s.app.Sessions.Disconnect(s.ctx, "conn-alice"))
	s.Require().NoError(s.app.Sessions.Disconnect(s.ctx, "conn-bob"))

	_, err = s.app.Registry.Get(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *IntegrationSuite) TestRedisConfigRequired() {
	_, err := New(Config{StorageType: StorageTypeRedis})
	s.Error(err)
}

func (s *IntegrationSuite) TestUnknownStorageTypeRejected() {
	_, err := New(Config{StorageType: "postgres"})
	s.Error(err)
}
