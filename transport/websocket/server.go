package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const shutdownTimeout = 5 * time.Second

var ErrUnknownAction = errors.New("unknown action")

type uGame interface {
	NewGame(ctx context.Context, computerFirst bool) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, gameID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, payload map[string]any) (*entity.Game, error)

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	upgrader websocket.Upgrader

	computerFirst bool

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame, computerFirst bool) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		computerFirst: computerFirst,
	}

	server.handlers = map[string]handlerFunc{
		ActionNewGame: server.handleNewGame,
		ActionGetGame: server.handleGetGame,
		ActionTurn:    server.handleTurn,
		ActionRestart: server.handleRestart,
	}

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint: contextcheck // parent is already canceled
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(r.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages until the client goes away.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := conn.WriteJSON(that.process(ctx, &message)); err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
}

func (that *Server) process(ctx context.Context, message *Message) Reply {
	reply := Reply{Action: message.Action}

	handler, ok := that.handlers[message.Action]
	if !ok {
		reply.Payload.Error = fmt.Errorf("%w: %q", ErrUnknownAction, message.Action).Error()
		return reply
	}

	game, err := handler(ctx, message.Payload)
	if err != nil {
		that.logger.Debug("action failed", "action", message.Action, "error", err)
		reply.Payload.Error = err.Error()
		return reply
	}

	reply.Payload.Game = game
	reply.Payload.Message = game.Announcement()

	return reply
}
