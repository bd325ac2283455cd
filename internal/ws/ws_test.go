package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/okeefe/typeduel/internal/dependencies/random"
	"github.com/okeefe/typeduel/internal/model"
	"github.com/okeefe/typeduel/internal/services/passage"
	"github.com/okeefe/typeduel/internal/services/registry"
	"github.com/okeefe/typeduel/internal/services/session"
	"github.com/okeefe/typeduel/internal/storage/memory"
	"github.com/okeefe/typeduel/internal/testutil"
)

const readTimeout = 3 * time.Second

type WebsocketSuite struct {
	suite.Suite
	server   *httptest.Server
	hub      *Hub
	registry *registry.Registry
	ctx      context.Context
}

func TestWebsocketSuite(t *testing.T) {
	suite.Run(t, new(WebsocketSuite))
}

func (s *WebsocketSuite) SetupTest() {
	logger := testutil.NopLogger()
	store := memory.New()
	rnd := random.New()
	clock := clockwork.NewRealClock()

	s.registry = registry.New(store, clock, rnd, logger)

	passages := passage.New(store, rnd)
	passages.LoadPassages([]string{"a short passage for racing"})

	s.hub = NewHub(logger)
	broadcaster := session.NewBroadcaster(s.hub, logger)

	// Fast countdown so the full handshake completes quickly
	cfg := session.Config{CountdownFrom: 3, TickInterval: 20 * time.Millisecond}
	sessions := session.NewController(s.registry, passages, broadcaster, clock, cfg, logger)

	handler := NewHandler(s.hub, sessions, DefaultConfig(), logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	s.server = httptest.NewServer(mux)
	s.ctx = context.Background()
}

func (s *WebsocketSuite) TearDownTest() {
	s.server.Close()
}

func (s *WebsocketSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

func (s *WebsocketSuite) sendEvent(conn *websocket.Conn, event model.EventType, payload any) {
	env, err := model.NewEnvelope(event, payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(env))
}

// readEvent reads the next envelope from the connection
func (s *WebsocketSuite) readEvent(conn *websocket.Conn) model.Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var env model.Envelope
	s.Require().NoError(conn.ReadJSON(&env))
	return env
}

// waitFor reads envelopes until one matches the wanted type, returning both
// the match and everything skipped on the way
func (s *WebsocketSuite) waitFor(conn *websocket.Conn, want model.EventType) (model.Envelope, []model.Envelope) {
	var skipped []model.Envelope
	for {
		env := s.readEvent(conn)
		if env.Event == want {
			return env, skipped
		}
		skipped = append(skipped, env)
	}
}

func (s *WebsocketSuite) decode(env model.Envelope, out any) {
	s.Require().NoError(json.Unmarshal(env.Data, out))
}

// createRoom performs the createRoom handshake and returns the room id and text
func (s *WebsocketSuite) createRoom(conn *websocket.Conn, username string) (string, string) {
	s.sendEvent(conn, model.EventCreateRoom, model.CreateRoomRequest{Username: username})
	env, _ := s.waitFor(conn, model.EventRoomCreated)

	var payload model.RoomCreatedPayload
	s.decode(env, &payload)
	s.NotEmpty(payload.RoomID)
	s.Equal(username, payload.Username)
	return payload.RoomID, payload.Text
}

func (s *WebsocketSuite) TestCreateRoomHandshake() {
	alice := s.dial()
	defer alice.Close()

	roomID, text := s.createRoom(alice, "alice")
	s.Len(roomID, registry.RoomIDLength)
	s.Equal("a short passage for racing", text)
}

func (s *WebsocketSuite) TestJoinUnknownRoomYieldsError() {
	bob := s.dial()
	defer bob.Close()

	s.sendEvent(bob, model.EventJoinRoom, model.JoinRoomRequest{RoomID: "nope99", Username: "bob"})
	env, _ := s.waitFor(bob, model.EventError)

	var msg string
	s.decode(env, &msg)
	s.Equal(session.RoomNotFoundMessage, msg)
}

func (s *WebsocketSuite) TestMalformedFramesAreTolerated() {
	alice := s.dial()
	defer alice.Close()

	s.Require().NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	s.sendEvent(alice, "noSuchEvent", map[string]string{"x": "y"})

	// The connection survives and the protocol still works
	roomID, _ := s.createRoom(alice, "alice")
	s.NotEmpty(roomID)
}

func (s *WebsocketSuite) TestFullRace() {
	alice := s.dial()
	defer alice.Close()
	bob := s.dial()
	defer bob.Close()

	roomID, text := s.createRoom(alice, "alice")

	// bob joins; both converge on the same roster and text
	s.sendEvent(bob, model.EventJoinRoom, model.JoinRoomRequest{RoomID: roomID, Username: "bob"})
	for _, conn := range []*websocket.Conn{alice, bob} {
		env, _ := s.waitFor(conn, model.EventStartGame)
		var start model.StartGamePayload
		s.decode(env, &start)
		s.Equal(text, start.Text)
		s.Require().Len(start.Players, 2)
		s.Equal("alice", start.Players[0].Username)
		s.Equal("bob", start.Players[1].Username)
	}

	// readiness handshake reaches 2/2 and the countdown runs 3..0
	s.sendEvent(alice, model.EventPlayerReady, model.PlayerReadyRequest{RoomID: roomID, Username: "alice"})
	s.sendEvent(bob, model.EventPlayerReady, model.PlayerReadyRequest{RoomID: roomID, Username: "bob"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		_, skipped := s.waitFor(conn, model.EventRaceStart)

		var ticks []int
		ready := 0
		for _, e := range skipped {
			switch e.Event {
			case model.EventCountdown:
				var v int
				s.decode(e, &v)
				ticks = append(ticks, v)
			case model.EventPlayerReadyStatus:
				ready++
			}
		}
		s.Equal([]int{3, 2, 1, 0}, ticks)
		s.Equal(2, ready)
	}

	// alice's progress reaches bob but is not echoed back
	s.sendEvent(alice, model.EventProgressUpdate, model.ProgressUpdateRequest{
		RoomID: roomID, Username: "alice", Progress: 0.5, WPM: 72, CorrectChars: 110,
	})
	env, _ := s.waitFor(bob, model.EventOpponentProgress)
	var progress model.OpponentProgressPayload
	s.decode(env, &progress)
	s.Equal("alice", progress.Username)
	s.Equal(0.5, progress.Progress)

	// alice finishes first; both hear one gameOver for alice, and nothing
	// was echoed to alice before it
	s.sendEvent(alice, model.EventFinishedGame, model.FinishedGameRequest{
		RoomID: roomID, Username: "alice", WPM: 80,
	})
	for _, conn := range []*websocket.Conn{alice, bob} {
		over, skipped := s.waitFor(conn, model.EventGameOver)
		for _, e := range skipped {
			s.NotEqual(model.EventOpponentProgress, e.Event,
				"progress must not be echoed to its sender")
		}
		var payload model.GameOverPayload
		s.decode(over, &payload)
		s.Equal("alice", payload.Winner)
		s.Equal(80.0, payload.WPM)
	}
}

func (s *WebsocketSuite) TestDisconnectCleansUp() {
	alice := s.dial()
	defer alice.Close()
	bob := s.dial()

	roomID, _ := s.createRoom(alice, "alice")
	s.sendEvent(bob, model.EventJoinRoom, model.JoinRoomRequest{RoomID: roomID, Username: "bob"})
	_, _ = s.waitFor(alice, model.EventStartGame)
	_, _ = s.waitFor(bob, model.EventStartGame)

	s.Require().NoError(bob.Close())

	env, _ := s.waitFor(alice, model.EventPlayerDisconnected)
	var payload model.PlayerDisconnectedPayload
	s.decode(env, &payload)
	s.Equal("bob", payload.Username)

	// The last departure deletes the room from the registry
	s.Require().NoError(alice.Close())
	s.Require().Eventually(func() bool {
		_, err := s.registry.Get(s.ctx, model.RoomID(roomID))
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
	s.Require().Eventually(func() bool {
		return s.hub.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
