package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/usecase"
)

func newTestServer(t *testing.T, computerFirst bool) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), service.NewBotService(logger))

	return New(logger, manager, computerFirst)
}

func dial(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, message Message) Reply {
	t.Helper()

	require.NoError(t, conn.WriteJSON(message))

	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, message.Action, reply.Action)

	return reply
}

func TestWebSocketGame(t *testing.T) {
	t.Run("Plays a full game over one connection", func(t *testing.T) {
		// Given: a connected client
		conn := dial(t, newTestServer(t, false))

		// When: starting a game
		reply := send(t, conn, Message{Action: ActionNewGame})

		// Then: an empty board is waiting for the human
		require.Empty(t, reply.Payload.Error)
		require.NotNil(t, reply.Payload.Game)
		game := reply.Payload.Game
		assert.Equal(t, entity.Board{}, game.Board)
		assert.Equal(t, entity.PhaseWaitingForHuman, game.Phase)

		// When: the human keeps playing the first empty cell
		for game.Phase != entity.PhaseGameOver {
			reply = send(t, conn, Message{
				Action:  ActionTurn,
				Payload: map[string]any{"game_id": game.ID, "cell": game.Board.EmptyCells()[0]},
			})
			require.Empty(t, reply.Payload.Error)
			game = reply.Payload.Game
		}

		// Then: the human did not win
		assert.Contains(t, []string{entity.AnnounceComputerWins, entity.AnnounceTie}, reply.Payload.Message)

		// When: restarting
		reply = send(t, conn, Message{Action: ActionRestart, Payload: map[string]any{"game_id": game.ID}})

		// Then: the same game is fresh again
		require.Empty(t, reply.Payload.Error)
		assert.Equal(t, game.ID, reply.Payload.Game.ID)
		assert.Equal(t, entity.Board{}, reply.Payload.Game.Board)

		// When: reading it back
		reply = send(t, conn, Message{Action: ActionGetGame, Payload: map[string]any{"game_id": game.ID}})

		// Then: it is the restarted game
		require.Empty(t, reply.Payload.Error)
		assert.Equal(t, entity.PhaseWaitingForHuman, reply.Payload.Game.Phase)
	})

	t.Run("Computer opens when asked", func(t *testing.T) {
		// Given: a server where the human opens by default
		conn := dial(t, newTestServer(t, false))

		// When: the client asks the computer to open
		reply := send(t, conn, Message{Action: ActionNewGame, Payload: map[string]any{"computer_first": true}})

		// Then: the computer took the first corner
		require.Empty(t, reply.Payload.Error)
		assert.Equal(t, entity.MarkO, reply.Payload.Game.Board[0])
	})
}

func TestWebSocketErrors(t *testing.T) {
	// Given: a connected client with a game where the computer opened at 0
	conn := dial(t, newTestServer(t, true))
	created := send(t, conn, Message{Action: ActionNewGame})
	require.NotNil(t, created.Payload.Game)
	gameID := created.Payload.Game.ID

	tests := []struct {
		name    string
		message Message
		want    string
	}{
		{
			name:    "unknown action",
			message: Message{Action: "game:surrender"},
			want:    ErrUnknownAction.Error(),
		},
		{
			name:    "occupied cell",
			message: Message{Action: ActionTurn, Payload: map[string]any{"game_id": gameID, "cell": 0}},
			want:    apperror.ErrIllegalMove.Error(),
		},
		{
			name:    "missing cell",
			message: Message{Action: ActionTurn, Payload: map[string]any{"game_id": gameID}},
			want:    "cell is required",
		},
		{
			name:    "unknown key",
			message: Message{Action: ActionTurn, Payload: map[string]any{"game_id": gameID, "cell": 1, "mark": "X"}},
			want:    ErrBadPayload.Error(),
		},
		{
			name:    "fractional cell",
			message: Message{Action: ActionTurn, Payload: map[string]any{"game_id": gameID, "cell": 4.5}},
			want:    "not a whole number",
		},
		{
			name:    "missing game id",
			message: Message{Action: ActionGetGame},
			want:    "game_id is required",
		},
		{
			name:    "unknown game",
			message: Message{Action: ActionRestart, Payload: map[string]any{"game_id": "missing"}},
			want:    apperror.ErrGameNotFound.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: sending the message
			reply := send(t, conn, tt.message)

			// Then: the reply carries the error and no game
			assert.Nil(t, reply.Payload.Game)
			assert.Contains(t, reply.Payload.Error, tt.want)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("JSON numbers decode into cells", func(t *testing.T) {
		var req turnPayload

		err := decodePayload(map[string]any{"game_id": "abc", "cell": float64(4)}, &req)

		require.NoError(t, err)
		require.NotNil(t, req.Cell)
		assert.Equal(t, 4, *req.Cell)
		assert.NoError(t, req.validate())
	})

	t.Run("Wrong type is rejected", func(t *testing.T) {
		var req turnPayload

		err := decodePayload(map[string]any{"game_id": "abc", "cell": "four"}, &req)

		assert.True(t, errors.Is(err, ErrBadPayload))
	})

	t.Run("Fractional cell is rejected", func(t *testing.T) {
		// Given: a cell that is not a whole number
		var req turnPayload

		// When: decoding it
		err := decodePayload(map[string]any{"game_id": "abc", "cell": 4.7}, &req)

		// Then: nothing is truncated
		assert.True(t, errors.Is(err, ErrBadPayload))
	})

	t.Run("Nil payload leaves defaults", func(t *testing.T) {
		var req newGamePayload

		require.NoError(t, decodePayload(nil, &req))
		assert.Nil(t, req.ComputerFirst)
	})
}

func TestStartStopsWithContext(t *testing.T) {
	// Given: a running server
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- newTestServer(t, false).Start(ctx, "0")
	}()

	// When: the context is canceled
	cancel()

	// Then: Start returns without error
	assert.NoError(t, <-done)
}
