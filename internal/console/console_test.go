package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-minimax/mocks/usecase"
)

func newTestSession(buf *bytes.Buffer, profile termenv.Profile, computerFirst bool) *Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), service.NewBotService(logger))
	out := termenv.NewOutput(buf, termenv.WithProfile(profile))

	return NewSession(logger, manager, out, computerFirst)
}

func TestSessionRun(t *testing.T) {
	t.Run("Prints the empty board and stops on quit", func(t *testing.T) {
		// Given: a session where the human opens
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, false)

		// When: the player quits right away
		err := session.Run(context.Background(), strings.NewReader("quit\n4\n"))

		// Then: only the empty board was printed
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "_ _ _\n_ _ _\n_ _ _\n")
		assert.NotContains(t, buf.String(), "X")
	})

	t.Run("Computer opens in the first corner", func(t *testing.T) {
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, true)

		err := session.Run(context.Background(), strings.NewReader(""))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "O _ _\n_ _ _\n_ _ _\n")
	})

	t.Run("Rejected input keeps the session going", func(t *testing.T) {
		// Given: a session where the human opens
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, false)

		// When: the player types garbage, then plays a cell twice
		err := session.Run(context.Background(), strings.NewReader("abc\n4\n4\n9\n"))

		// Then: every bad command is reported and the centre move was played
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, `"abc" is not a cell`)
		assert.Contains(t, out, "cell 4 is already occupied")
		assert.Contains(t, out, "out of range")
		assert.Contains(t, out, "_ X _")
	})

	t.Run("Commands after a rejected input use the same game", func(t *testing.T) {
		// Given: a session where the human opens
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, false)

		// When: garbage is followed by a move, and an illegal move by a restart
		err := session.Run(context.Background(), strings.NewReader("abc\n4\n9\nnew\n"))

		// Then: the session survives every command
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, `"abc" is not a cell`)
		assert.Contains(t, out, "out of range")
		assert.Contains(t, out, "_ X _")
		assert.Equal(t, 2, strings.Count(out, "_ _ _\n_ _ _\n_ _ _\n"))
	})

	t.Run("New clears the board", func(t *testing.T) {
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, false)

		err := session.Run(context.Background(), strings.NewReader("4\nnew\n"))

		require.NoError(t, err)
		boards := strings.Count(buf.String(), "_ _ _\n_ _ _\n_ _ _\n")
		assert.Equal(t, 2, boards)
	})

	t.Run("Storage failure stops the session", func(t *testing.T) {
		// Given: a game manager whose repository fails
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		mockGameRepo := mockedUseCase.NewMockgameRepo(t)
		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(errors.New("redis down")).
			Once()

		manager := usecase.NewGameManager(logger, mockGameRepo, service.NewBotService(logger))
		var buf bytes.Buffer
		session := NewSession(logger, manager, termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)), false)

		// When: running the session
		err := session.Run(context.Background(), strings.NewReader("4\n"))

		// Then: the error is returned
		assert.ErrorContains(t, err, "redis down")
	})
}

func TestSessionCell(t *testing.T) {
	game := entity.NewGame("id", entity.Human)
	game.Board = entity.Board{
		entity.MarkO, entity.MarkX, entity.MarkX,
		entity.EmptyCell, entity.MarkO, entity.MarkX,
		entity.EmptyCell, entity.EmptyCell, entity.MarkO,
	}
	game.Outcome = game.Board.Outcome()
	require.True(t, game.Outcome.IsWin())

	t.Run("Winning line is colored for the winner", func(t *testing.T) {
		// Given: a true color terminal
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.TrueColor, false)

		// When: rendering a winning cell and a plain cell
		winning := session.cell(game, 4)
		plain := session.cell(game, 1)

		// Then: only the winning cell carries escape codes
		assert.Contains(t, winning, "\x1b[")
		assert.Contains(t, winning, "O")
		assert.Equal(t, "X", plain)
		assert.Equal(t, "_", session.cell(game, 3))
	})

	t.Run("No colors on a plain terminal", func(t *testing.T) {
		var buf bytes.Buffer
		session := newTestSession(&buf, termenv.Ascii, false)

		assert.Equal(t, "O", session.cell(game, 0))
	})
}
