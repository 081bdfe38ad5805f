package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/board"
	"github.com/mcoot/wordgame-go/internal/services/bot"
	"github.com/mcoot/wordgame-go/internal/services/dictionary"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/services/tilebag"
	"github.com/mcoot/wordgame-go/internal/storage/memory"
	"github.com/mcoot/wordgame-go/internal/testutil"
)

// fakeGenerator lets a test script the AI's moves
type fakeGenerator struct {
	generate func(b *model.Board, rack model.Rack) (bot.Candidate, bool)
	calls    int
}

func (f *fakeGenerator) Generate(b *model.Board, rack model.Rack, difficulty model.Difficulty, isFirstMove bool) (bot.Candidate, bool) {
	f.calls++
	if f.generate == nil {
		return bot.Candidate{}, false
	}
	return f.generate(b, rack)
}

// flakyStorage fails the next failSaves game saves
type flakyStorage struct {
	*memory.Storage
	failSaves int
}

func (f *flakyStorage) SaveGame(ctx context.Context, game *model.Game) error {
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("storage unavailable")
	}
	return f.Storage.SaveGame(ctx, game)
}

type ControllerSuite struct {
	suite.Suite
	storage   *memory.Storage
	archive   *memory.Archive
	dict      *dictionary.Service
	scoring   *scoring.Service
	clock     *mocks.MockClock
	random    *mocks.MockRandom
	scheduler *mocks.MockScheduler
	generator *fakeGenerator
	player    *model.Player
	ctrl      *Controller
	ctx       context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.archive = memory.NewArchive()
	s.dict = dictionary.New(s.storage)
	s.Require().NoError(s.dict.LoadWords([]string{"cat", "at", "ta", "tab", "bat", "cab"}))
	s.scoring = scoring.New(s.dict, board.New())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.scheduler = mocks.NewMockScheduler()
	s.generator = &fakeGenerator{}
	s.player = &model.Player{ID: "player-1", DisplayName: "Alice", IsGuest: true}
	s.ctrl = s.newController(s.generator)
}

func (s *ControllerSuite) newController(gen MoveGenerator) *Controller {
	return NewController(
		s.storage, s.archive, s.scoring, tilebag.New(s.random), gen,
		s.scheduler, s.clock, s.random, DefaultConfig(), testutil.NopLogger(),
	)
}

// newGame deals a game and swaps the named letters into the player rack.
// The unshuffled bag deals AAAAAAA to the player and AABBCCD to the AI.
func (s *ControllerSuite) newGame(letters ...string) *model.Game {
	game, err := s.ctrl.NewGame(s.ctx, s.player, model.DifficultyHard)
	s.Require().NoError(err)
	if len(letters) > 0 {
		game.Bag.Tiles = append(game.Bag.Tiles, game.PlayerRack...)
		game.PlayerRack = nil
		for _, letter := range letters {
			game.PlayerRack = append(game.PlayerRack, s.takeFromBag(game.Bag, letter))
		}
		s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	}
	return game
}

func (s *ControllerSuite) takeFromBag(bag *model.Bag, letter string) model.Tile {
	for i, t := range bag.Tiles {
		if t.Letter == letter {
			bag.Tiles = append(bag.Tiles[:i], bag.Tiles[i+1:]...)
			return t
		}
	}
	s.FailNow("letter not in bag", letter)
	return model.Tile{}
}

func (s *ControllerSuite) reload(id model.GameID) *model.Game {
	game, err := s.ctrl.GetGame(s.ctx, id)
	s.Require().NoError(err)
	return game
}

// place builds placements for rack tiles by letter, left to right from (row, col)
func place(rack model.Rack, row, col int, horizontal bool, word string) []model.PlacedTile {
	used := map[string]bool{}
	var out []model.PlacedTile
	for i, r := range word {
		for _, t := range rack {
			if t.Letter == string(r) && !used[t.ID] {
				used[t.ID] = true
				p := model.PlacedTile{Tile: t, Row: row, Col: col + i}
				if !horizontal {
					p.Row, p.Col = row+i, col
				}
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// NewGame tests

func (s *ControllerSuite) TestNewGameDealsRacks() {
	game, err := s.ctrl.NewGame(s.ctx, s.player, model.DifficultyEasy)
	s.Require().NoError(err)

	s.Equal(model.PhaseAwaitingPlayer, game.Phase)
	s.Equal(model.DifficultyEasy, game.Difficulty)
	s.Len(game.PlayerRack, model.RackSize)
	s.Len(game.AIRack, model.RackSize)
	s.Equal(model.TotalTiles-2*model.RackSize, game.Bag.Len())
	s.Equal(model.TotalTiles, game.TileCount())
	s.True(game.IsFirstMove)
	s.Equal(1, s.random.ShuffleCalls)

	stored := s.reload(game.ID)
	s.Equal(game.PlayerRack, stored.PlayerRack)
}

func (s *ControllerSuite) TestNewGameDefaultsToMedium() {
	game, err := s.ctrl.NewGame(s.ctx, s.player, "")
	s.Require().NoError(err)
	s.Equal(model.DifficultyMedium, game.Difficulty)
}

func (s *ControllerSuite) TestNewGameRejectsUnknownDifficulty() {
	_, err := s.ctrl.NewGame(s.ctx, s.player, "impossible")
	s.ErrorIs(err, model.ErrInvalidDifficulty)
}

// SubmitMove tests

func (s *ControllerSuite) TestSubmitMoveScoresAndHandsToAI() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")

	updated, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	s.Equal(10, updated.PlayerScore)
	s.Equal(model.PhaseAIThinking, updated.Phase)
	s.False(updated.IsFirstMove)
	s.Len(updated.PlayerRack, model.RackSize)
	s.Equal("C", updated.Board.Get(model.Position{Row: 7, Col: 6}).Letter)
	s.Require().Len(updated.History, 1)
	s.Equal("CAT", updated.History[0].Word)
	s.Equal(model.TotalTiles, updated.TileCount())
	s.Equal(1, s.scheduler.Pending())
	s.Equal([]time.Duration{400 * time.Millisecond}, s.scheduler.Delays)

	s.Equal(model.PhaseAIThinking, s.reload(game.ID).Phase)
}

func (s *ControllerSuite) TestSubmitMoveThinkDelayIsRandomised() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	s.random.QueueIntn(250)

	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.Equal([]time.Duration{650 * time.Millisecond}, s.scheduler.Delays)
}

func (s *ControllerSuite) TestSubmitMoveRejectsInvalidWordWithoutChanges() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")

	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAE"))
	s.ErrorIs(err, model.ErrInvalidWord)

	stored := s.reload(game.ID)
	s.Equal(model.PhaseAwaitingPlayer, stored.Phase)
	s.Equal(game.PlayerRack, stored.PlayerRack)
	s.Equal(0, stored.Board.TileCount())
	s.Equal(0, s.scheduler.Pending())
}

func (s *ControllerSuite) TestSubmitMoveRejectsOffCenterOpening() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")

	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 0, 0, true, "CAT"))
	s.ErrorIs(err, model.ErrFirstMoveCenter)
}

func (s *ControllerSuite) TestSubmitMoveRejectsForeignTile() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	foreign := []model.PlacedTile{{Tile: game.AIRack[0], Row: 7, Col: 7}}

	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, foreign)
	s.ErrorIs(err, model.ErrTileNotInRack)
}

func (s *ControllerSuite) TestSubmitMoveRequiresOwner() {
	game := s.newGame()
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, "someone-else", nil)
	s.ErrorIs(err, model.ErrNotGameOwner)
}

func (s *ControllerSuite) TestSubmitMoveRejectedWhileAIThinking() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	_, err = s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
}

func (s *ControllerSuite) TestSubmitMoveUnknownGame() {
	_, err := s.ctrl.SubmitMove(s.ctx, "missing", s.player.ID, nil)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Pending tests

func (s *ControllerSuite) TestPendingTilesLeaveRackAndSubmit() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")

	staged, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.Len(staged.Pending, 3)
	s.Len(staged.PlayerRack, 4)
	s.Equal(model.TotalTiles, staged.TileCount())

	updated, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, nil)
	s.Require().NoError(err)
	s.Equal(10, updated.PlayerScore)
	s.Empty(updated.Pending)
	s.Len(updated.PlayerRack, model.RackSize)
}

func (s *ControllerSuite) TestSetPendingReplacesPreviousSet() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")

	_, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	staged, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 7, true, "AT"))
	s.Require().NoError(err)

	s.Len(staged.Pending, 2)
	s.Len(staged.PlayerRack, 5)
}

func (s *ControllerSuite) TestSetPendingRejectsDuplicateCell() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	tiles := place(game.PlayerRack, 7, 6, true, "CA")
	tiles[1].Col = 6

	_, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, tiles)
	s.ErrorIs(err, model.ErrCellOccupied)
}

func (s *ControllerSuite) TestRecallPending() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	recalled, err := s.ctrl.RecallPending(s.ctx, game.ID, s.player.ID)
	s.Require().NoError(err)
	s.Empty(recalled.Pending)
	s.ElementsMatch(game.PlayerRack, recalled.PlayerRack)
}

// Pass and exchange tests

func (s *ControllerSuite) TestPassRecallsPendingAndHandsToAI() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	updated, err := s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
	s.Require().NoError(err)
	s.Empty(updated.Pending)
	s.Len(updated.PlayerRack, model.RackSize)
	s.Equal(1, updated.ConsecutivePasses)
	s.Equal(model.PhaseAIThinking, updated.Phase)
	s.Equal(model.MoveTypePass, updated.History[0].Type)
}

func (s *ControllerSuite) TestExchangeResetsPassCounter() {
	game := s.newGame()
	_, err := s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
	s.Require().NoError(err)
	s.scheduler.RunPending()

	rack := s.reload(game.ID).PlayerRack
	updated, err := s.ctrl.Exchange(s.ctx, game.ID, s.player.ID, []string{rack[0].ID, rack[1].ID})
	s.Require().NoError(err)

	s.Equal(0, updated.ConsecutivePasses)
	s.Len(updated.PlayerRack, model.RackSize)
	s.Equal(model.TotalTiles-2*model.RackSize, updated.Bag.Len())
	s.Equal(model.PhaseAIThinking, updated.Phase)
	s.Equal(model.TotalTiles, updated.TileCount())
	s.Equal(model.MoveTypeExchange, updated.History[len(updated.History)-1].Type)
}

func (s *ControllerSuite) TestExchangeRecordsTilesActuallySwapped() {
	game := s.newGame()
	id := game.PlayerRack[0].ID

	updated, err := s.ctrl.Exchange(s.ctx, game.ID, s.player.ID, []string{id, id})
	s.Require().NoError(err)

	last := updated.History[len(updated.History)-1]
	s.Equal(model.MoveTypeExchange, last.Type)
	s.Equal(1, last.TileCount)
	s.Equal(model.TotalTiles, updated.TileCount())
}

func (s *ControllerSuite) TestExchangeRejectedWhenBagSmall() {
	game := s.newGame()
	game.Bag.Tiles = game.Bag.Tiles[:tilebag.MinExchangeBag-1]
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err := s.ctrl.Exchange(s.ctx, game.ID, s.player.ID, []string{game.PlayerRack[0].ID})
	s.ErrorIs(err, model.ErrBagTooSmall)
	s.Equal(model.PhaseAwaitingPlayer, s.reload(game.ID).Phase)
}

// AI turn tests

func (s *ControllerSuite) TestAITurnPlaysScriptedMove() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	s.generator.generate = func(b *model.Board, rack model.Rack) (bot.Candidate, bool) {
		// AABBCCD: hang AB under the C for CAB
		return bot.Candidate{Placed: []model.PlacedTile{{Tile: rack[0], Row: 8, Col: 6}, {Tile: rack[2], Row: 9, Col: 6}}}, true
	}
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.Equal(1, s.scheduler.RunPending())

	updated := s.reload(game.ID)
	s.Equal(1, s.generator.calls)
	s.Equal(model.PhaseAwaitingPlayer, updated.Phase)
	s.Require().Len(updated.History, 2)
	ai := updated.History[1]
	s.Equal("CAB", ai.Word)
	s.Equal(8, ai.Score)
	s.Equal(AIName, ai.PlayerName)
	s.Equal(updated.AIScore, ai.Score)
	s.Len(updated.AIRack, model.RackSize)
	s.Equal(model.TotalTiles, updated.TileCount())
}

func (s *ControllerSuite) TestAITurnPassesWithoutCandidate() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.scheduler.RunPending()

	updated := s.reload(game.ID)
	s.Equal(model.PhaseAwaitingPlayer, updated.Phase)
	s.Equal(1, updated.ConsecutivePasses)
	s.Equal(model.MoveTypePass, updated.History[1].Type)
}

func (s *ControllerSuite) TestAITurnPassesWhenCandidateIsRejected() {
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	s.generator.generate = func(b *model.Board, rack model.Rack) (bot.Candidate, bool) {
		// nowhere near CAT
		return bot.Candidate{Placed: []model.PlacedTile{{Tile: rack[0], Row: 0, Col: 0}, {Tile: rack[2], Row: 0, Col: 1}}}, true
	}
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.scheduler.RunPending()

	updated := s.reload(game.ID)
	s.Equal(model.PhaseAwaitingPlayer, updated.Phase)
	s.Require().Len(updated.History, 2)
	s.Equal(model.MoveTypePass, updated.History[1].Type)
	s.Equal(AIName, updated.History[1].PlayerName)
	s.Zero(updated.AIScore)
	s.Nil(updated.Board.Get(model.Position{Row: 0, Col: 0}))
}

func (s *ControllerSuite) TestAITurnFallsBackToPassWhenSaveFails() {
	flaky := &flakyStorage{Storage: s.storage}
	s.ctrl = NewController(
		flaky, s.archive, s.scoring, tilebag.New(s.random), s.generator,
		s.scheduler, s.clock, s.random, DefaultConfig(), testutil.NopLogger(),
	)
	s.generator.generate = func(b *model.Board, rack model.Rack) (bot.Candidate, bool) {
		return bot.Candidate{Placed: []model.PlacedTile{{Tile: rack[0], Row: 8, Col: 6}, {Tile: rack[2], Row: 9, Col: 6}}}, true
	}
	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	flaky.failSaves = 1
	s.Equal(1, s.scheduler.RunPending())

	updated := s.reload(game.ID)
	s.Equal(model.PhaseAwaitingPlayer, updated.Phase)
	s.Require().Len(updated.History, 2)
	s.Equal(model.MoveTypePass, updated.History[1].Type)
	s.Equal(1, updated.ConsecutivePasses)
	s.Equal(model.TotalTiles, updated.TileCount())

	_, err = s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
	s.NoError(err)
}

func (s *ControllerSuite) TestAITurnIgnoredUnlessThinking() {
	game := s.newGame()
	s.Require().NoError(s.ctrl.playAI(s.ctx, game.ID))
	s.Equal(0, s.generator.calls)
	s.Empty(s.reload(game.ID).History)
}

func (s *ControllerSuite) TestAITurnWithRealGenerator() {
	strategies := bot.DefaultStrategies(s.random)
	real := bot.NewService(s.scoring, s.dict, strategies, bot.DefaultConfig(), testutil.NopLogger())
	s.ctrl = s.newController(real)

	game := s.newGame("C", "A", "T", "E", "E", "E", "E")
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)
	s.scheduler.RunPending()

	updated := s.reload(game.ID)
	s.Equal(model.PhaseAwaitingPlayer, updated.Phase)
	s.Require().Len(updated.History, 2)
	s.Equal(model.MoveTypePlay, updated.History[1].Type)
	s.Positive(updated.AIScore)
	s.Equal(model.TotalTiles, updated.TileCount())
}

// Endgame tests

func (s *ControllerSuite) TestFourPassesEndGame() {
	game := s.newGame()
	for i := 0; i < 2; i++ {
		_, err := s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
		s.Require().NoError(err)
		s.scheduler.RunPending()
	}

	updated := s.reload(game.ID)
	s.Equal(model.PhaseGameOver, updated.Phase)
	s.Equal(model.MaxConsecutivePasses, updated.ConsecutivePasses)
	s.Equal(-7, updated.PlayerScore)
	s.Equal(-16, updated.AIScore)
	s.Equal(model.WinnerPlayer, updated.Winner)

	results, err := s.archive.RecentResults(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Alice", results[0].Winner)
	s.Equal(model.GameModeSinglePlayer, results[0].Mode)
	s.Equal(string(game.ID), results[0].Reference)
}

func (s *ControllerSuite) TestRackOutEndsGame() {
	game := s.newGame("C", "A", "T")
	game.Bag.Tiles = nil
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	updated, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	s.Equal(model.PhaseGameOver, updated.Phase)
	s.Equal(10+16, updated.PlayerScore)
	s.Equal(-16, updated.AIScore)
	s.Equal(model.WinnerPlayer, updated.Winner)
	s.Equal(0, s.scheduler.Pending())
}

func (s *ControllerSuite) TestTieWhenScoresEqual() {
	game := s.newGame()
	game.PlayerRack = game.PlayerRack[:0]
	game.AIRack = game.AIRack[:0]
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	for i := 0; i < 2; i++ {
		_, err := s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
		s.Require().NoError(err)
		s.scheduler.RunPending()
	}

	updated := s.reload(game.ID)
	s.Equal(model.WinnerTie, updated.Winner)
	results, err := s.archive.RecentResults(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.WinnerTie, results[0].Winner)
}

func (s *ControllerSuite) TestGameOverRejectsActions() {
	game := s.newGame("C", "A", "T")
	game.Bag.Tiles = nil
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	_, err := s.ctrl.SubmitMove(s.ctx, game.ID, s.player.ID, place(game.PlayerRack, 7, 6, true, "CAT"))
	s.Require().NoError(err)

	_, err = s.ctrl.Pass(s.ctx, game.ID, s.player.ID)
	s.ErrorIs(err, model.ErrGameOver)
	_, err = s.ctrl.Exchange(s.ctx, game.ID, s.player.ID, []string{"x"})
	s.ErrorIs(err, model.ErrGameOver)
	_, err = s.ctrl.SetPending(s.ctx, game.ID, s.player.ID, nil)
	s.ErrorIs(err, model.ErrGameOver)
}
