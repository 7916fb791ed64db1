package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// Scores are always seen from the computer's side.
const (
	ScoreComputerWin = 10
	ScoreHumanWin    = -10
	ScoreTie         = 0
)

// NoIndex - marks a Move produced by a terminal board.
const NoIndex = -1

type Move struct {
	Index int
	Score int
}

func (that Move) HasIndex() bool {
	return that.Index != NoIndex
}

// Minimax - evaluates every continuation of board with player to move and
// returns the best one for that player. The board is mutated during the search
// and restored before returning.
func Minimax(board *entity.Board, player entity.Player) Move {
	if score, ok := terminalScore(board); ok {
		return Move{Index: NoIndex, Score: score}
	}

	cells := board.EmptyCells()
	candidates := make([]Move, 0, len(cells))
	for _, cell := range cells {
		candidates = append(candidates, Move{
			Index: cell,
			Score: evaluate(board, cell, player),
		})
	}

	return selectMove(candidates, player)
}

// BestMove - cell the computer should play next. The board is not modified.
func BestMove(board *entity.Board) (int, error) {
	if len(board.EmptyCells()) == 0 {
		return NoIndex, fmt.Errorf("%w: board is full", apperror.ErrNoMovesAvailable)
	}

	scratch := *board

	move := Minimax(&scratch, entity.Computer)
	if !move.HasIndex() {
		return NoIndex, fmt.Errorf("%w: game is already won", apperror.ErrNoMovesAvailable)
	}

	return move.Index, nil
}

func terminalScore(board *entity.Board) (int, bool) {
	switch {
	case board.Winner(entity.Human).IsWin():
		return ScoreHumanWin, true
	case board.Winner(entity.Computer).IsWin():
		return ScoreComputerWin, true
	case board.IsFull():
		return ScoreTie, true
	default:
		return 0, false
	}
}

// evaluate - score of player taking cell, with the cell cleared again afterwards.
func evaluate(board *entity.Board, cell int, player entity.Player) int {
	undo := tentative(board, cell, player)
	defer undo()

	return Minimax(board, player.Opponent()).Score
}

func tentative(board *entity.Board, cell int, player entity.Player) func() {
	previous := board[cell]
	board[cell] = player.Mark()

	return func() {
		board[cell] = previous
	}
}

// selectMove - the computer maximises, the human minimises. On equal scores the
// earliest candidate wins.
func selectMove(candidates []Move, player entity.Player) Move {
	best := Move{Index: NoIndex}
	for i, candidate := range candidates {
		if i == 0 || better(player, candidate.Score, best.Score) {
			best = candidate
		}
	}

	return best
}

func better(player entity.Player, score, than int) bool {
	if player == entity.Computer {
		return score > than
	}

	return score < than
}
