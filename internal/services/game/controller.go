package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/wordgame-go/internal/dependencies/clock"
	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/wordgame-go/internal/keylock"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/bot"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/services/tilebag"
	"github.com/mcoot/wordgame-go/internal/storage"
)

// AIName is the display name recorded for AI moves
const AIName = "AI"

// aiTurnTimeout bounds a scheduled AI turn, which runs detached from any request
const aiTurnTimeout = 10 * time.Second

// Config controls AI pacing
type Config struct {
	ThinkMin time.Duration
	ThinkMax time.Duration
}

// DefaultConfig returns the default AI pacing
func DefaultConfig() Config {
	return Config{
		ThinkMin: 400 * time.Millisecond,
		ThinkMax: 1800 * time.Millisecond,
	}
}

// MoveGenerator picks the AI's move
type MoveGenerator interface {
	Generate(b *model.Board, rack model.Rack, difficulty model.Difficulty, isFirstMove bool) (bot.Candidate, bool)
}

// Controller runs single-player games against the AI
type Controller struct {
	storage   storage.Storage
	archive   storage.Archive
	scoring   scoring.ServiceInterface
	tiles     *tilebag.Service
	bot       MoveGenerator
	scheduler scheduler.Scheduler
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	locks     *keylock.Locker
	config    Config
}

// NewController creates a new game Controller. archive may be nil.
func NewController(
	storage storage.Storage,
	archive storage.Archive,
	scoringService scoring.ServiceInterface,
	tiles *tilebag.Service,
	generator MoveGenerator,
	sched scheduler.Scheduler,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.ThinkMax < cfg.ThinkMin {
		cfg.ThinkMax = cfg.ThinkMin
	}
	return &Controller{
		storage:   storage,
		archive:   archive,
		scoring:   scoringService,
		tiles:     tiles,
		bot:       generator,
		scheduler: sched,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "game-controller")),
		locks:     keylock.New(),
		config:    cfg,
	}
}

// NewGame deals a fresh game for the player
func (c *Controller) NewGame(ctx context.Context, player *model.Player, difficulty model.Difficulty) (*model.Game, error) {
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	if !difficulty.IsValid() {
		return nil, model.ErrInvalidDifficulty
	}

	now := c.clock.Now()
	bag := c.tiles.NewBag()
	game := &model.Game{
		ID:          model.GameID(uuid.NewString()),
		PlayerID:    player.ID,
		PlayerName:  player.DisplayName,
		Difficulty:  difficulty,
		Phase:       model.PhaseAwaitingPlayer,
		Board:       model.NewBoard(),
		Bag:         bag,
		PlayerRack:  tilebag.Draw(bag, model.RackSize),
		AIRack:      tilebag.Draw(bag, model.RackSize),
		IsFirstMove: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(player.ID)),
		slog.String("difficulty", string(difficulty)),
	)
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// SetPending stages tiles on the board without submitting them, replacing any
// previously staged set
func (c *Controller) SetPending(ctx context.Context, id model.GameID, playerID model.PlayerID, tiles []model.PlacedTile) (*model.Game, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.playerTurn(ctx, id, playerID)
	if err != nil {
		return nil, err
	}

	recall(game)
	placed, err := tilebag.Resolve(game.PlayerRack, tiles)
	if err != nil {
		return nil, err
	}
	seen := make(map[model.Position]struct{}, len(placed))
	for _, p := range placed {
		pos := p.Position()
		if !game.Board.IsValidPosition(pos) {
			return nil, model.ErrInvalidPosition
		}
		if _, dup := seen[pos]; dup || !game.Board.IsEmpty(pos) {
			return nil, model.ErrCellOccupied
		}
		seen[pos] = struct{}{}
	}

	game.PlayerRack = game.PlayerRack.Without(tileIDs(placed)...)
	game.Pending = placed
	return game, c.save(ctx, game)
}

// RecallPending returns every staged tile to the rack
func (c *Controller) RecallPending(ctx context.Context, id model.GameID, playerID model.PlayerID) (*model.Game, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.playerTurn(ctx, id, playerID)
	if err != nil {
		return nil, err
	}
	recall(game)
	return game, c.save(ctx, game)
}

// SubmitMove plays tiles for the player. An empty tile list submits the staged set.
// A rejected move leaves the game exactly as it was.
func (c *Controller) SubmitMove(ctx context.Context, id model.GameID, playerID model.PlayerID, tiles []model.PlacedTile) (*model.Game, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.playerTurn(ctx, id, playerID)
	if err != nil {
		return nil, err
	}

	if len(tiles) == 0 {
		tiles = game.Pending
	}
	recall(game)

	placed, err := tilebag.Resolve(game.PlayerRack, tiles)
	if err != nil {
		return nil, err
	}
	result, err := c.scoring.Evaluate(game.Board, placed, game.IsFirstMove)
	if err != nil {
		return nil, err
	}

	game.Phase = model.PhasePlayerMoveSubmitted
	game.PlayerRack = c.commit(game, result, game.PlayerRack, game.PlayerID, game.PlayerName)
	game.PlayerScore += result.Score
	c.logger.Info("move committed",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(playerID)),
		slog.String("word", result.MainWord()),
		slog.Int("score", result.Score),
		slog.String("phase", string(game.Phase)),
	)

	if len(game.PlayerRack) == 0 && game.Bag.Len() == 0 {
		c.finish(ctx, game, func(s []scoring.Standing) { scoring.SettleRackOut(s, 0) })
		return game, c.save(ctx, game)
	}
	return c.handToAI(ctx, game)
}

// Pass gives up the player's turn
func (c *Controller) Pass(ctx context.Context, id model.GameID, playerID model.PlayerID) (*model.Game, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.playerTurn(ctx, id, playerID)
	if err != nil {
		return nil, err
	}

	recall(game)
	c.recordPass(game, game.PlayerID, game.PlayerName)
	if game.ConsecutivePasses >= model.MaxConsecutivePasses {
		c.finish(ctx, game, scoring.SettlePasses)
		return game, c.save(ctx, game)
	}
	return c.handToAI(ctx, game)
}

// Exchange swaps rack tiles for fresh ones from the bag, using the player's turn
func (c *Controller) Exchange(ctx context.Context, id model.GameID, playerID model.PlayerID, ids []string) (*model.Game, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.playerTurn(ctx, id, playerID)
	if err != nil {
		return nil, err
	}

	recall(game)
	rack, swapped, err := c.tiles.Exchange(game.Bag, game.PlayerRack, ids)
	if err != nil {
		return nil, err
	}
	game.PlayerRack = rack
	game.ConsecutivePasses = 0
	game.History = append(game.History, model.MoveRecord{
		PlayerID:   game.PlayerID,
		PlayerName: game.PlayerName,
		Type:       model.MoveTypeExchange,
		TileCount:  swapped,
		CreatedAt:  c.clock.Now(),
	})
	return c.handToAI(ctx, game)
}

// playerTurn loads the game and checks it is the owner's move
func (c *Controller) playerTurn(ctx context.Context, id model.GameID, playerID model.PlayerID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	if game.IsOver() {
		return nil, model.ErrGameOver
	}
	if game.Phase != model.PhaseAwaitingPlayer {
		return nil, model.ErrNotPlayerTurn
	}
	return game, nil
}

// handToAI saves the game in ai_thinking and schedules the AI's turn
func (c *Controller) handToAI(ctx context.Context, game *model.Game) (*model.Game, error) {
	game.Phase = model.PhaseAIThinking
	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	id := game.ID
	delay := c.thinkDelay()
	c.scheduler.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), aiTurnTimeout)
		defer cancel()
		c.runAI(ctx, id)
	})
	c.logger.Debug("ai turn scheduled",
		slog.String("game_id", string(id)),
		slog.Duration("delay", delay),
	)
	return game, nil
}

func (c *Controller) thinkDelay() time.Duration {
	spread := c.config.ThinkMax - c.config.ThinkMin
	if spread <= 0 {
		return c.config.ThinkMin
	}
	return c.config.ThinkMin + time.Duration(c.random.Intn(int(spread/time.Millisecond)+1))*time.Millisecond
}

// runAI plays the AI's turn. If that fails the AI passes instead, so the game
// never stays in ai_thinking with nothing scheduled.
func (c *Controller) runAI(ctx context.Context, id model.GameID) {
	err := c.playAI(ctx, id)
	if err == nil {
		return
	}
	c.logger.Error("ai turn failed",
		slog.String("game_id", string(id)),
		slog.String("error", err.Error()),
	)
	if err := c.forfeitAITurn(ctx, id); err != nil {
		c.logger.Error("ai fallback pass failed",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

// forfeitAITurn records a pass for the AI if the game is still waiting on it
func (c *Controller) forfeitAITurn(ctx context.Context, id model.GameID) error {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.Phase != model.PhaseAIThinking {
		return nil
	}
	return c.aiPass(ctx, game)
}

// playAI makes the AI's move. It is a no-op unless the game is waiting on the AI.
func (c *Controller) playAI(ctx context.Context, id model.GameID) error {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.Phase != model.PhaseAIThinking {
		return nil
	}

	candidate, ok := c.bot.Generate(game.Board, game.AIRack, game.Difficulty, game.IsFirstMove)
	if !ok {
		return c.aiPass(ctx, game)
	}

	result, err := c.scoring.Evaluate(game.Board, candidate.Placed, game.IsFirstMove)
	if err != nil {
		c.logger.Warn("ai candidate rejected, passing",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return c.aiPass(ctx, game)
	}
	aiID := model.PlayerID(model.WinnerAI)
	game.Phase = model.PhaseAIMoveApplied
	game.AIRack = c.commit(game, result, game.AIRack, aiID, AIName)
	game.AIScore += result.Score
	c.logger.Info("ai move applied",
		slog.String("game_id", string(game.ID)),
		slog.String("word", result.MainWord()),
		slog.Int("score", result.Score),
		slog.String("phase", string(game.Phase)),
	)

	if len(game.AIRack) == 0 && game.Bag.Len() == 0 {
		c.finish(ctx, game, func(s []scoring.Standing) { scoring.SettleRackOut(s, 1) })
		return c.save(ctx, game)
	}
	game.Phase = model.PhaseAwaitingPlayer
	return c.save(ctx, game)
}

// aiPass records a pass for the AI and hands the turn back, or ends the game
// on the fourth pass in a row
func (c *Controller) aiPass(ctx context.Context, game *model.Game) error {
	c.recordPass(game, model.PlayerID(model.WinnerAI), AIName)
	if game.ConsecutivePasses >= model.MaxConsecutivePasses {
		c.finish(ctx, game, scoring.SettlePasses)
		return c.save(ctx, game)
	}
	game.Phase = model.PhaseAwaitingPlayer
	return c.save(ctx, game)
}

// commit applies an evaluated move and returns the mover's refilled rack
func (c *Controller) commit(game *model.Game, result *scoring.MoveResult, rack model.Rack, playerID model.PlayerID, name string) model.Rack {
	game.Board.Apply(result.Placed)
	rack = tilebag.Refill(game.Bag, rack.Without(tileIDs(result.Placed)...))
	game.IsFirstMove = false
	game.ConsecutivePasses = 0
	game.History = append(game.History, model.MoveRecord{
		PlayerID:   playerID,
		PlayerName: name,
		Type:       model.MoveTypePlay,
		Word:       result.MainWord(),
		Words:      result.WordList(),
		Score:      result.Score,
		Tiles:      result.Placed,
		TileCount:  len(result.Placed),
		CreatedAt:  c.clock.Now(),
	})
	return rack
}

func (c *Controller) recordPass(game *model.Game, playerID model.PlayerID, name string) {
	game.ConsecutivePasses++
	game.History = append(game.History, model.MoveRecord{
		PlayerID:   playerID,
		PlayerName: name,
		Type:       model.MoveTypePass,
		CreatedAt:  c.clock.Now(),
	})
}

// finish settles final scores, ends the game and archives the result
func (c *Controller) finish(ctx context.Context, game *model.Game, settle func([]scoring.Standing)) {
	standings := []scoring.Standing{
		{ID: model.WinnerPlayer, Score: game.PlayerScore, Rack: game.PlayerRack},
		{ID: model.WinnerAI, Score: game.AIScore, Rack: game.AIRack},
	}
	settle(standings)
	game.PlayerScore = standings[0].Score
	game.AIScore = standings[1].Score

	game.Winner = scoring.DetermineWinner(standings)
	if game.Winner == "" {
		game.Winner = model.WinnerTie
	}
	game.Phase = model.PhaseGameOver

	c.logger.Info("game over",
		slog.String("game_id", string(game.ID)),
		slog.String("winner", game.Winner),
		slog.Int("player_score", game.PlayerScore),
		slog.Int("ai_score", game.AIScore),
	)

	if c.archive == nil {
		return
	}
	winner := model.WinnerTie
	switch game.Winner {
	case model.WinnerPlayer:
		winner = game.PlayerName
	case model.WinnerAI:
		winner = AIName
	}
	result := &model.GameResult{
		Mode:      model.GameModeSinglePlayer,
		Reference: string(game.ID),
		Players: []model.ResultEntry{
			{Name: game.PlayerName, Score: game.PlayerScore},
			{Name: AIName, Score: game.AIScore},
		},
		Winner:     winner,
		Moves:      len(game.History),
		FinishedAt: c.clock.Now(),
	}
	if err := c.archive.RecordResult(ctx, result); err != nil {
		c.logger.Error("failed to archive result",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) save(ctx context.Context, game *model.Game) error {
	game.UpdatedAt = c.clock.Now()
	return c.storage.SaveGame(ctx, game)
}

// recall moves staged tiles back onto the rack
func recall(game *model.Game) {
	for _, p := range game.Pending {
		game.PlayerRack = append(game.PlayerRack, tilebag.ResetBlank(p.Tile))
	}
	game.Pending = nil
}

func tileIDs(placed []model.PlacedTile) []string {
	ids := make([]string, len(placed))
	for i, p := range placed {
		ids[i] = p.ID
	}
	return ids
}

// Interface for dependency injection
type ControllerInterface interface {
	NewGame(ctx context.Context, player *model.Player, difficulty model.Difficulty) (*model.Game, error)
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	SetPending(ctx context.Context, id model.GameID, playerID model.PlayerID, tiles []model.PlacedTile) (*model.Game, error)
	RecallPending(ctx context.Context, id model.GameID, playerID model.PlayerID) (*model.Game, error)
	SubmitMove(ctx context.Context, id model.GameID, playerID model.PlayerID, tiles []model.PlacedTile) (*model.Game, error)
	Pass(ctx context.Context, id model.GameID, playerID model.PlayerID) (*model.Game, error)
	Exchange(ctx context.Context, id model.GameID, playerID model.PlayerID, ids []string) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
