package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/wordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/protocol"
	"github.com/mcoot/wordgame-go/internal/services/auth"
	"github.com/mcoot/wordgame-go/internal/services/board"
	"github.com/mcoot/wordgame-go/internal/services/dictionary"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/services/tilebag"
	"github.com/mcoot/wordgame-go/internal/storage/memory"
	"github.com/mcoot/wordgame-go/internal/testutil"
)

// recorder is a Conn that keeps everything sent to it
type recorder struct {
	mu   sync.Mutex
	msgs []protocol.ServerMessage
}

func (r *recorder) Send(msg protocol.ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.MessageType()
	}
	return out
}

func (r *recorder) last() protocol.ServerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

// fakeNotifier routes by seat the way the websocket hub does
type fakeNotifier struct {
	mu     sync.Mutex
	conns  map[model.RoomCode]map[model.PlayerID]Conn
	closed []model.RoomCode
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{conns: make(map[model.RoomCode]map[model.PlayerID]Conn)}
}

func (n *fakeNotifier) Attach(code model.RoomCode, playerID model.PlayerID, conn Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conns[code] == nil {
		n.conns[code] = make(map[model.PlayerID]Conn)
	}
	n.conns[code][playerID] = conn
}

func (n *fakeNotifier) Detach(code model.RoomCode, playerID model.PlayerID, conn Conn) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conns[code][playerID] != conn {
		return false
	}
	delete(n.conns[code], playerID)
	return true
}

func (n *fakeNotifier) Send(code model.RoomCode, playerID model.PlayerID, msg protocol.ServerMessage) {
	n.mu.Lock()
	conn := n.conns[code][playerID]
	n.mu.Unlock()
	if conn != nil {
		conn.Send(msg)
	}
}

func (n *fakeNotifier) Close(code model.RoomCode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.conns, code)
	n.closed = append(n.closed, code)
}

type ControllerSuite struct {
	suite.Suite
	storage  *memory.Storage
	archive  *memory.Archive
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	notifier *fakeNotifier
	ctrl     *Controller
	ctx      context.Context

	alice, bob     *recorder
	aliceID, bobID model.PlayerID
	aliceToken     string
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.archive = memory.NewArchive()
	dict := dictionary.New(s.storage)
	s.Require().NoError(dict.LoadWords([]string{"cat", "at", "ta", "cab"}))
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = newFakeNotifier()
	s.ctrl = NewController(
		s.storage, s.archive, scoring.New(dict, board.New()), tilebag.New(s.random),
		auth.NewSeatTokens(bcrypt.MinCost), s.notifier, s.clock, s.random,
		DefaultConfig(), testutil.NopLogger(),
	)
	s.alice = &recorder{}
	s.bob = &recorder{}
}

// create opens room ABC234 for Alice
func (s *ControllerSuite) create() *model.Room {
	s.random.QueueString("ABC234")
	room, id, err := s.ctrl.CreateRoom(s.ctx, s.alice, "Alice")
	s.Require().NoError(err)
	s.aliceID = id
	created := s.alice.msgs[0].(protocol.RoomCreated)
	s.aliceToken = created.Token
	return room
}

// start seats Alice and Bob. The unshuffled bag deals AAAAAAA to Alice and AABBCCD to Bob.
func (s *ControllerSuite) start() *model.Room {
	s.create()
	room, id, err := s.ctrl.JoinRoom(s.ctx, s.bob, "ABC234", "Bob", "")
	s.Require().NoError(err)
	s.bobID = id
	s.alice.reset()
	s.bob.reset()
	return room
}

func (s *ControllerSuite) reload() *model.Room {
	room, err := s.ctrl.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	return room
}

// giveRack swaps the named letters into a seat's rack, keeping 100 tiles in play
func (s *ControllerSuite) giveRack(seat int, letters ...string) {
	room := s.reload()
	room.Bag.Tiles = append(room.Bag.Tiles, room.Seats[seat].Rack...)
	room.Seats[seat].Rack = nil
	for _, letter := range letters {
		for i, t := range room.Bag.Tiles {
			if t.Letter == letter {
				room.Seats[seat].Rack = append(room.Seats[seat].Rack, t)
				room.Bag.Tiles = append(room.Bag.Tiles[:i], room.Bag.Tiles[i+1:]...)
				break
			}
		}
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
}

func (s *ControllerSuite) cat() []model.PlacedTile {
	rack := s.reload().Seats[0].Rack
	var out []model.PlacedTile
	for i, letter := range []string{"C", "A", "T"} {
		for _, t := range rack {
			if t.Letter == letter {
				out = append(out, model.PlacedTile{Tile: t, Row: 7, Col: 6 + i})
				break
			}
		}
	}
	return out
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoom() {
	room := s.create()

	s.Equal(model.RoomCode("ABC234"), room.Code)
	s.Equal(model.RoomStateCreated, room.State)
	s.Len(room.Seats, 1)
	s.Len(room.Seats[0].Rack, model.RackSize)
	s.True(room.Seats[0].Connected)
	s.NotEmpty(s.aliceToken)
	s.NotEqual(s.aliceToken, room.Seats[0].TokenHash)
	s.Equal(model.TotalTiles, room.TileCount())

	s.Equal([]string{protocol.TypeRoomCreated, protocol.TypeGameState}, s.alice.types())
	created := s.alice.msgs[0].(protocol.RoomCreated)
	s.Equal("ABC234", created.Code)
	s.Equal(string(s.aliceID), created.PlayerID)
	state := s.alice.msgs[1].(protocol.GameState)
	s.False(state.Started)
	s.Equal(1, state.PlayerCount)
	s.Len(state.YourRack, model.RackSize)
}

func (s *ControllerSuite) TestCreateRoomRegeneratesCollidingCode() {
	s.create()
	s.random.QueueString("ABC234", "XYZ789")

	room, _, err := s.ctrl.CreateRoom(s.ctx, s.bob, "Bob")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("XYZ789"), room.Code)
}

func (s *ControllerSuite) TestConcurrentCreatesNeverShareACode() {
	s.random.QueueString("SAME22", "SAME22", "OTHER2")

	var wg sync.WaitGroup
	codes := make([]model.RoomCode, 2)
	errs := make([]error, 2)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, _, err := s.ctrl.CreateRoom(s.ctx, &recorder{}, "Player")
			errs[i] = err
			if err == nil {
				codes[i] = room.Code
			}
		}(i)
	}
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	s.ElementsMatch([]model.RoomCode{"SAME22", "OTHER2"}, codes)
	rooms, err := s.ctrl.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

func (s *ControllerSuite) TestCreateRoomRejectsEmptyName() {
	_, _, err := s.ctrl.CreateRoom(s.ctx, s.alice, "  ")
	s.ErrorIs(err, model.ErrInvalidName)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoomStartsGame() {
	s.create()
	s.alice.reset()

	room, id, err := s.ctrl.JoinRoom(s.ctx, s.bob, "abc234", "Bob", "")
	s.Require().NoError(err)

	s.Equal(model.RoomStateStarted, room.State)
	s.Len(room.Seats, 2)
	s.Equal(model.TotalTiles, room.TileCount())
	s.Equal(model.TotalTiles-2*model.RackSize, room.Bag.Len())

	s.Equal([]string{protocol.TypeRoomJoined, protocol.TypeGameStarted, protocol.TypeGameState}, s.bob.types())
	s.Equal(string(id), s.bob.msgs[0].(protocol.RoomJoined).PlayerID)
	s.Equal([]string{protocol.TypeGameStarted, protocol.TypeGameState}, s.alice.types())

	aliceState := s.alice.last().(protocol.GameState)
	s.True(aliceState.IsYourTurn)
	s.Equal("Bob", aliceState.OpponentName)
	s.Equal(model.RackSize, aliceState.OpponentRackCount)
	bobState := s.bob.last().(protocol.GameState)
	s.False(bobState.IsYourTurn)
}

func (s *ControllerSuite) TestJoinUnknownRoom() {
	_, _, err := s.ctrl.JoinRoom(s.ctx, s.bob, "NOPE22", "Bob", "")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinFullRoom() {
	s.start()
	_, _, err := s.ctrl.JoinRoom(s.ctx, &recorder{}, "ABC234", "Carol", "")
	s.ErrorIs(err, model.ErrRoomFull)
}

func (s *ControllerSuite) TestJoinTakesOverDisconnectedSeat() {
	s.start()
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.aliceID, s.alice))
	before := s.reload().Seats[0]

	carol := &recorder{}
	_, id, err := s.ctrl.JoinRoom(s.ctx, carol, "ABC234", "Carol", "")
	s.Require().NoError(err)

	s.Equal(s.aliceID, id)
	s.Equal([]string{protocol.TypeReconnected, protocol.TypeGameState}, carol.types())
	s.Equal(string(s.aliceID), carol.msgs[0].(protocol.Reconnected).PlayerID)

	after := s.reload().Seats[0]
	s.True(after.Connected)
	s.Equal(before.Rack, after.Rack)
	s.Equal(before.Score, after.Score)
}

func (s *ControllerSuite) TestJoinAfterCreatorDropsSeatsSecondPlayer() {
	s.create()
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.aliceID, s.alice))
	s.NotNil(s.reload().ExpiresAt)

	room, id, err := s.ctrl.JoinRoom(s.ctx, s.bob, "ABC234", "Bob", "")
	s.Require().NoError(err)

	s.NotEqual(s.aliceID, id)
	s.Equal(model.RoomStateStarted, room.State)
	s.Require().Len(room.Seats, 2)
	s.Equal("Alice", room.Seats[0].Name)
	s.False(room.Seats[0].Connected)
	s.Equal("Bob", room.Seats[1].Name)
	s.Nil(room.ExpiresAt)
	s.Equal([]string{protocol.TypeRoomJoined, protocol.TypeGameStarted, protocol.TypeGameState}, s.bob.types())

	// the creator can still come back with their token
	back := &recorder{}
	_, reclaimed, err := s.ctrl.JoinRoom(s.ctx, back, "ABC234", "", s.aliceToken)
	s.Require().NoError(err)
	s.Equal(s.aliceID, reclaimed)
	s.True(s.reload().Seats[0].Connected)
}

func (s *ControllerSuite) TestExchangeRecordsTilesActuallySwapped() {
	s.start()
	rack := s.reload().Seats[0].Rack

	s.Require().NoError(s.ctrl.ExchangeTiles(s.ctx, "ABC234", s.aliceID, []string{rack[0].ID, rack[0].ID, rack[1].ID}))

	room := s.reload()
	last := room.History[len(room.History)-1]
	s.Equal(model.MoveTypeExchange, last.Type)
	s.Equal(2, last.TileCount)
	s.Equal(model.TotalTiles, room.TileCount())
}

func (s *ControllerSuite) TestJoinWithTokenReclaimsConnectedSeat() {
	s.start()
	fresh := &recorder{}

	_, id, err := s.ctrl.JoinRoom(s.ctx, fresh, "ABC234", "", s.aliceToken)
	s.Require().NoError(err)
	s.Equal(s.aliceID, id)
	s.Equal(protocol.TypeReconnected, fresh.types()[0])

	// the replaced connection closing must not drop the seat
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.aliceID, s.alice))
	s.True(s.reload().Seats[0].Connected)
	s.NotContains(s.bob.types(), protocol.TypeOpponentDisconnected)
}

func (s *ControllerSuite) TestJoinWithWrongTokenIsRejectedWhenFull() {
	s.start()
	_, _, err := s.ctrl.JoinRoom(s.ctx, &recorder{}, "ABC234", "Eve", "forged")
	s.ErrorIs(err, model.ErrRoomFull)
}

// PlaceTiles tests

func (s *ControllerSuite) TestPlaceTilesCommitsAndBroadcasts() {
	s.start()
	s.giveRack(0, "C", "A", "T", "E", "E", "E", "E")

	s.Require().NoError(s.ctrl.PlaceTiles(s.ctx, "ABC234", s.aliceID, s.cat()))

	room := s.reload()
	s.Equal(10, room.Seats[0].Score)
	s.Equal(1, room.CurrentTurn)
	s.False(room.IsFirstMove)
	s.Len(room.Seats[0].Rack, model.RackSize)
	s.Equal(model.TotalTiles, room.TileCount())

	want := protocol.MoveMade{Player: "Alice", Word: "CAT", Score: 10}
	for _, conn := range []*recorder{s.alice, s.bob} {
		s.Equal([]string{protocol.TypeMoveMade, protocol.TypeGameState}, conn.types())
		s.Equal(want, conn.msgs[0])
	}
	s.True(s.bob.last().(protocol.GameState).IsYourTurn)
	s.Equal(10, s.bob.last().(protocol.GameState).OpponentScore)
}

func (s *ControllerSuite) TestPlaceTilesOutOfTurn() {
	s.start()
	before := s.reload()

	bobTile := []model.PlacedTile{{Tile: before.Seats[1].Rack[0], Row: 7, Col: 7}}
	err := s.ctrl.PlaceTiles(s.ctx, "ABC234", s.bobID, bobTile)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	s.False(model.IsPlacementError(err))

	s.Equal(before, s.reload())
	s.Empty(s.alice.types())
}

func (s *ControllerSuite) TestPlaceTilesRejectsInvalidWord() {
	s.start()
	s.giveRack(0, "C", "A", "E", "E", "E", "E", "E")
	rack := s.reload().Seats[0].Rack

	err := s.ctrl.PlaceTiles(s.ctx, "ABC234", s.aliceID, []model.PlacedTile{
		{Tile: rack[0], Row: 7, Col: 7}, {Tile: rack[2], Row: 7, Col: 8},
	})
	s.ErrorIs(err, model.ErrInvalidWord)
	s.True(model.IsPlacementError(err))
	s.Equal(0, s.reload().CurrentTurn)
}

func (s *ControllerSuite) TestPlaceTilesRejectsForeignTile() {
	s.start()
	bobTile := s.reload().Seats[1].Rack[0]

	err := s.ctrl.PlaceTiles(s.ctx, "ABC234", s.aliceID, []model.PlacedTile{{Tile: bobTile, Row: 7, Col: 7}})
	s.ErrorIs(err, model.ErrTileNotInRack)
	s.False(model.IsPlacementError(err))
}

func (s *ControllerSuite) TestPlaceTilesBeforeOpponentJoins() {
	s.create()
	err := s.ctrl.PlaceTiles(s.ctx, "ABC234", s.aliceID, nil)
	s.ErrorIs(err, model.ErrRoomNotReady)
}

func (s *ControllerSuite) TestPlaceTilesByStranger() {
	s.start()
	err := s.ctrl.PlaceTiles(s.ctx, "ABC234", "p_stranger", nil)
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ControllerSuite) TestRackOutEndsGame() {
	s.start()
	s.giveRack(0, "C", "A", "T")
	room := s.reload()
	room.Bag.Tiles = nil
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Require().NoError(s.ctrl.PlaceTiles(s.ctx, "ABC234", s.aliceID, s.cat()))

	room = s.reload()
	s.Equal(model.RoomStateGameOver, room.State)
	s.Equal(10+16, room.Seats[0].Score)
	s.Equal(-16, room.Seats[1].Score)
	s.Equal(string(s.aliceID), room.Winner)
	s.True(s.bob.last().(protocol.GameState).GameOver)

	err := s.ctrl.PassTurn(s.ctx, "ABC234", s.bobID)
	s.ErrorIs(err, model.ErrGameOver)
}

// Pass and exchange tests

func (s *ControllerSuite) TestFourPassesEndGame() {
	s.start()
	for i := 0; i < 2; i++ {
		s.Require().NoError(s.ctrl.PassTurn(s.ctx, "ABC234", s.aliceID))
		s.Require().NoError(s.ctrl.PassTurn(s.ctx, "ABC234", s.bobID))
	}

	room := s.reload()
	s.Equal(model.RoomStateGameOver, room.State)
	s.Equal(-7, room.Seats[0].Score)
	s.Equal(-16, room.Seats[1].Score)
	s.Equal(string(s.aliceID), room.Winner)

	results, err := s.archive.RecentResults(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Alice", results[0].Winner)
	s.Equal(model.GameModeRoom, results[0].Mode)
	s.Equal([]model.ResultEntry{{Name: "Alice", Score: -7}, {Name: "Bob", Score: -16}}, results[0].Players)
}

func (s *ControllerSuite) TestPassAdvancesTurn() {
	s.start()
	s.Require().NoError(s.ctrl.PassTurn(s.ctx, "ABC234", s.aliceID))

	room := s.reload()
	s.Equal(1, room.CurrentTurn)
	s.Equal(1, room.ConsecutivePasses)
	s.Equal([]string{protocol.TypeGameState}, s.bob.types())
}

func (s *ControllerSuite) TestExchangeTiles() {
	s.start()
	s.Require().NoError(s.ctrl.PassTurn(s.ctx, "ABC234", s.aliceID))
	rack := s.reload().Seats[1].Rack

	s.Require().NoError(s.ctrl.ExchangeTiles(s.ctx, "ABC234", s.bobID, []string{rack[0].ID, rack[1].ID}))

	room := s.reload()
	s.Equal(0, room.CurrentTurn)
	s.Equal(0, room.ConsecutivePasses)
	s.Len(room.Seats[1].Rack, model.RackSize)
	s.Equal(model.TotalTiles, room.TileCount())
	s.Equal(2, s.random.ShuffleCalls)
}

func (s *ControllerSuite) TestExchangeRejectedWhenBagSmall() {
	s.start()
	room := s.reload()
	room.Bag.Tiles = room.Bag.Tiles[:3]
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	err := s.ctrl.ExchangeTiles(s.ctx, "ABC234", s.aliceID, []string{room.Seats[0].Rack[0].ID})
	s.ErrorIs(err, model.ErrBagTooSmall)
}

// Disconnect and sweep tests

func (s *ControllerSuite) TestDisconnectNotifiesOpponent() {
	s.start()
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.bobID, s.bob))

	room := s.reload()
	s.False(room.Seats[1].Connected)
	s.Nil(room.ExpiresAt)
	s.Equal([]string{protocol.TypeOpponentDisconnected}, s.alice.types())
}

func (s *ControllerSuite) TestAllDisconnectedStartsGrace() {
	s.start()
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.bobID, s.bob))
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.aliceID, s.alice))

	room := s.reload()
	s.Require().NotNil(room.ExpiresAt)
	s.Equal(s.clock.Now().Add(5*time.Minute), *room.ExpiresAt)

	_, _, err := s.ctrl.JoinRoom(s.ctx, &recorder{}, "ABC234", "Alice", s.aliceToken)
	s.Require().NoError(err)
	s.Nil(s.reload().ExpiresAt)
}

func (s *ControllerSuite) TestSweepRemovesAbandonedRoomAfterGrace() {
	s.start()
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.bobID, s.bob))
	s.Require().NoError(s.ctrl.Disconnect(s.ctx, "ABC234", s.aliceID, s.alice))

	s.clock.Advance(4 * time.Minute)
	swept, err := s.ctrl.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, swept)

	s.clock.Advance(time.Minute)
	swept, err = s.ctrl.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, swept)

	_, err = s.ctrl.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Equal([]model.RoomCode{"ABC234"}, s.notifier.closed)
}

func (s *ControllerSuite) TestSweepRemovesOldRoomsEvenWhenConnected() {
	s.start()
	s.clock.Advance(59 * time.Minute)
	swept, err := s.ctrl.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, swept)

	s.clock.Advance(time.Minute)
	swept, err = s.ctrl.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, swept)
}

func (s *ControllerSuite) TestRunSweeperStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.ctrl.RunSweeper(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop")
	}
}

func (s *ControllerSuite) TestListRooms() {
	s.create()
	rooms, err := s.ctrl.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomCode("ABC234"), rooms[0].Code)
}
