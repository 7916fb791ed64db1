package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

type Phase string

const (
	PhaseWaitingForHuman Phase = "waiting_for_human"
	PhaseComputerMoves   Phase = "computer_moves"
	PhaseGameOver        Phase = "game_over"
)

const (
	AnnounceHumanWins    = "You win!"
	AnnounceComputerWins = "You lose."
	AnnounceTie          = "Tie Game!"
)

// Game - a single human vs computer session.
type Game struct {
	ID          string  `json:"id"`
	Board       Board   `json:"board"`
	Phase       Phase   `json:"phase"`
	FirstPlayer Player  `json:"first_player"`
	Outcome     Outcome `json:"outcome"`
	LastMove    *int    `json:"last_move,omitempty"`
}

func NewGame(id string, first Player) *Game {
	if !first.IsValid() {
		first = Human
	}

	game := &Game{
		ID:          id,
		FirstPlayer: first,
	}
	game.Restart()

	return game
}

// Restart - clears the board and hands the first move to FirstPlayer.
func (that *Game) Restart() {
	that.Board.Reset()
	that.Outcome = InProgress()
	that.LastMove = nil
	that.Phase = phaseFor(that.FirstPlayer)
}

func (that *Game) HumanTurn(cell int) error {
	return that.makeTurn(Human, cell)
}

func (that *Game) ComputerTurn(cell int) error {
	return that.makeTurn(Computer, cell)
}

func (that *Game) makeTurn(player Player, cell int) error {
	if that.IsOver() {
		return apperror.ErrGameFinished
	}

	if that.Phase != phaseFor(player) {
		return fmt.Errorf("%w: %s", apperror.ErrNotYourTurn, player)
	}

	if err := that.Board.ApplyMove(cell, player); err != nil {
		return fmt.Errorf("%s failed to make turn: %w", player, err)
	}

	that.LastMove = &cell
	that.updateState(player)

	return nil
}

func (that *Game) updateState(lastPlayer Player) {
	that.Outcome = that.Board.Outcome()
	if that.Outcome.IsOver() {
		that.Phase = PhaseGameOver
		return
	}

	that.Phase = phaseFor(lastPlayer.Opponent())
}

func (that *Game) IsOver() bool {
	return that.Phase == PhaseGameOver
}

func (that *Game) IsComputerTurn() bool {
	return that.Phase == PhaseComputerMoves
}

func (that *Game) IsHumanTurn() bool {
	return that.Phase == PhaseWaitingForHuman
}

// Announcement - final message for the human, empty while the game continues.
func (that *Game) Announcement() string {
	switch {
	case that.Outcome.Result == ResultTie:
		return AnnounceTie
	case that.Outcome.IsWin() && that.Outcome.Player == Human:
		return AnnounceHumanWins
	case that.Outcome.IsWin() && that.Outcome.Player == Computer:
		return AnnounceComputerWins
	default:
		return ""
	}
}

func phaseFor(player Player) Phase {
	if player == Computer {
		return PhaseComputerMoves
	}

	return PhaseWaitingForHuman
}
