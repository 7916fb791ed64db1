package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

// BoardSize - number of cells on the 3x3 board.
const BoardSize = 9

// Cell - content of a single board cell.
type Cell uint8

const (
	EmptyCell Cell = iota
	MarkX
	MarkO
)

var ErrUnknownMark = errors.New("unknown mark")

func (that Cell) String() string {
	switch that {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return ""
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = MarkX
	case "O":
		*that = MarkO
	case "":
		*that = EmptyCell
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMark, text)
	}

	return nil
}

// Player - side taking part in the game.
type Player uint8

const (
	NoPlayer Player = iota
	Human
	Computer
)

var ErrUnknownPlayer = errors.New("unknown player")

// Mark - the symbol placed by the player. Human always plays X.
func (that Player) Mark() Cell {
	switch that {
	case Human:
		return MarkX
	case Computer:
		return MarkO
	default:
		return EmptyCell
	}
}

func (that Player) Opponent() Player {
	switch that {
	case Human:
		return Computer
	case Computer:
		return Human
	default:
		return NoPlayer
	}
}

func (that Player) IsValid() bool {
	return that == Human || that == Computer
}

func (that Player) String() string {
	switch that {
	case Human:
		return "human"
	case Computer:
		return "computer"
	default:
		return ""
	}
}

func (that Player) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "human":
		*that = Human
	case "computer":
		*that = Computer
	case "":
		*that = NoPlayer
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, text)
	}

	return nil
}

// WinLine - three cell indices that win when marked by the same player.
type WinLine [3]int

// WinLines - rows, columns and diagonals in the order they are scanned.
var WinLines = [8]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{6, 4, 2},
}

// Result - state of the game as seen from the board.
type Result string

const (
	ResultInProgress Result = "in_progress"
	ResultWin        Result = "win"
	ResultTie        Result = "tie"
)

type Outcome struct {
	Result Result   `json:"result"`
	Player Player   `json:"player,omitempty"`
	Line   *WinLine `json:"line,omitempty"`
}

func InProgress() Outcome {
	return Outcome{Result: ResultInProgress}
}

func Win(player Player, line WinLine) Outcome {
	return Outcome{Result: ResultWin, Player: player, Line: &line}
}

func Tie() Outcome {
	return Outcome{Result: ResultTie}
}

func (that Outcome) IsWin() bool {
	return that.Result == ResultWin
}

func (that Outcome) IsOver() bool {
	return that.Result == ResultWin || that.Result == ResultTie
}

// Board - 3x3 grid laid out row-major, cells 0..8.
type Board [BoardSize]Cell

// EmptyCells - indices of all empty cells in ascending order.
func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// Winner - reports the first line fully marked by player, or InProgress.
func (that *Board) Winner(player Player) Outcome {
	mark := player.Mark()
	if mark == EmptyCell {
		return InProgress()
	}

	for _, line := range WinLines {
		if that[line[0]] == mark && that[line[1]] == mark && that[line[2]] == mark {
			return Win(player, line)
		}
	}

	return InProgress()
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *Board) IsTerminal() bool {
	return that.Outcome().IsOver()
}

// Outcome - combined status of the board for both players.
func (that *Board) Outcome() Outcome {
	if outcome := that.Winner(Human); outcome.IsWin() {
		return outcome
	}

	if outcome := that.Winner(Computer); outcome.IsWin() {
		return outcome
	}

	if that.IsFull() {
		return Tie()
	}

	return InProgress()
}

// ApplyMove - marks cell for player. The board is left untouched on error.
func (that *Board) ApplyMove(cell int, player Player) error {
	if !player.IsValid() {
		return fmt.Errorf("%w: %w %d", apperror.ErrIllegalMove, ErrUnknownPlayer, player)
	}

	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrIllegalMove, cell)
	}

	if that[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d is already occupied", apperror.ErrIllegalMove, cell)
	}

	that[cell] = player.Mark()

	return nil
}

// Reset - clears all cells.
func (that *Board) Reset() {
	*that = Board{}
}

func (that *Board) String() string {
	var out []byte
	for i, cell := range that {
		if cell == EmptyCell {
			out = append(out, '_')
		} else {
			out = append(out, cell.String()...)
		}

		switch {
		case i == BoardSize-1:
		case i%3 == 2:
			out = append(out, '\n')
		default:
			out = append(out, ' ')
		}
	}

	return string(out)
}
