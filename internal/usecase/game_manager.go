package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	MakeTurn(game *entity.Game) (int, error)
}

// GameManager - runs human vs computer sessions: applies the human's move,
// answers with the computer's move and stores the result.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	bot      botService

	// per game id, so turns on one game never interleave
	locks sync.Map
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		bot:      bot,
	}
}

// NewGame - creates a game. When the computer is first its opening is already on the board.
func (that *GameManager) NewGame(ctx context.Context, computerFirst bool) (*entity.Game, error) {
	first := entity.Human
	if computerFirst {
		first = entity.Computer
	}

	game := entity.NewGame(uuid.NewString(), first)

	if err := that.computerTurn(game); err != nil {
		return nil, err
	}

	if err := that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "gameID", game.ID, "first", first)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeTurn - plays cell for the human and, unless the game ended, the computer's reply.
// A rejected move leaves the stored game untouched.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", gameID)

	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = game.HumanTurn(cell); err != nil {
		log.Debug("human turn rejected", "cell", cell, "error", err)
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.computerTurn(game); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsOver() {
		log.Info("game finished", "result", game.Outcome.Result, "winner", game.Outcome.Player)
	}

	return game, nil
}

// Restart - clears the board of an existing game, keeping who goes first.
func (that *GameManager) Restart(ctx context.Context, gameID string) (*entity.Game, error) {
	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	game.Restart()

	if err = that.computerTurn(game); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, gameID string) error {
	unlock := that.lock(gameID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.locks.Delete(gameID)

	return nil
}

// lock - serializes read-modify-write cycles on one game within this process.
func (that *GameManager) lock(gameID string) func() {
	mu, _ := that.locks.LoadOrStore(gameID, &sync.Mutex{})
	gameMu := mu.(*sync.Mutex) //nolint: forcetypeassert // only mutexes are stored

	gameMu.Lock()

	return gameMu.Unlock
}

func (that *GameManager) computerTurn(game *entity.Game) error {
	if !game.IsComputerTurn() {
		return nil
	}

	if _, err := that.bot.MakeTurn(game); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
