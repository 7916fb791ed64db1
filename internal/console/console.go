package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const (
	humanColor    = "#83e85a"
	computerColor = "#f5587b"
)

const (
	cmdNew  = "new"
	cmdQuit = "quit"
)

type uGame interface {
	NewGame(ctx context.Context, computerFirst bool) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, gameID string) (*entity.Game, error)
}

// Session - plays games in a terminal, one line of input per command.
type Session struct {
	logger *slog.Logger
	uGame  uGame
	out    *termenv.Output

	computerFirst bool
}

func NewSession(logger *slog.Logger, uGame uGame, out *termenv.Output, computerFirst bool) *Session {
	return &Session{
		logger:        logger.With("component", "console"),
		uGame:         uGame,
		out:           out,
		computerFirst: computerFirst,
	}
}

// Run - reads commands from in until quit, EOF or ctx is done.
func (that *Session) Run(ctx context.Context, in io.Reader) error {
	game, err := that.uGame.NewGame(ctx, that.computerFirst)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	that.printf("Cells are numbered 0-8 left to right, top to bottom. Type %q or %q.\n", cmdNew, cmdQuit)
	that.render(game)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		command := strings.ToLower(strings.TrimSpace(scanner.Text()))

		var next *entity.Game

		switch command {
		case "":
			continue
		case cmdQuit:
			return nil
		case cmdNew:
			next, err = that.uGame.Restart(ctx, game.ID)
		default:
			next, err = that.turn(ctx, game, command)
		}

		// a rejected command keeps the current game
		if err != nil {
			if !isUserError(err) {
				return err
			}

			that.printf("%s\n", err)
			continue
		}

		game = next
		that.render(game)
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *Session) turn(ctx context.Context, game *entity.Game, command string) (*entity.Game, error) {
	cell, err := strconv.Atoi(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a cell", apperror.ErrIllegalMove, command)
	}

	next, err := that.uGame.MakeTurn(ctx, game.ID, cell)
	if err != nil {
		return nil, err
	}

	return next, nil
}

func (that *Session) render(game *entity.Game) {
	var builder strings.Builder

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if col > 0 {
				builder.WriteString(" ")
			}

			builder.WriteString(that.cell(game, row*3+col))
		}

		builder.WriteString("\n")
	}

	that.printf("%s", builder.String())

	if message := game.Announcement(); message != "" {
		that.printf("%s Type %q to play again.\n", message, cmdNew)
	}
}

// cell - the mark at index, colored when it belongs to the winning line.
func (that *Session) cell(game *entity.Game, index int) string {
	mark := game.Board[index]

	text := mark.String()
	if mark == entity.EmptyCell {
		text = "_"
	}

	outcome := game.Outcome
	if !outcome.IsWin() || outcome.Line == nil || !onLine(*outcome.Line, index) {
		return text
	}

	color := humanColor
	if outcome.Player == entity.Computer {
		color = computerColor
	}

	return that.out.String(text).Foreground(that.out.Color(color)).Bold().String()
}

func (that *Session) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

func onLine(line entity.WinLine, index int) bool {
	for _, cell := range line {
		if cell == index {
			return true
		}
	}

	return false
}

func isUserError(err error) bool {
	return errors.Is(err, apperror.ErrIllegalMove) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrNotYourTurn)
}
