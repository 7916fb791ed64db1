package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type uGame interface {
	NewGame(ctx context.Context, computerFirst bool) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, gameID string) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type newGameRequest struct {
	ComputerFirst *bool `json:"computer_first"`
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type Response struct {
	Game    *entity.Game `json:"game,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

var ErrBadRequest = errors.New("bad request")

type handlers struct {
	logger *slog.Logger
	uGame  uGame

	computerFirst bool
}

// NewRouter - HTTP API for playing against the computer. computerFirst is used
// when a new game request does not say who opens.
func NewRouter(logger *slog.Logger, uGame uGame, computerFirst bool) http.Handler {
	h := &handlers{
		logger:        logger.With("component", "rest"),
		uGame:         uGame,
		computerFirst: computerFirst,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", h.ping)
	router.Route("/games", func(r chi.Router) {
		r.Post("/", h.createGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Delete("/", h.deleteGame)
			r.Post("/turn", h.makeTurn)
			r.Post("/restart", h.restart)
		})
	})

	return router
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	computerFirst := that.computerFirst
	if req.ComputerFirst != nil {
		computerFirst = *req.ComputerFirst
	}

	game, err := that.uGame.NewGame(r.Context(), computerFirst)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusCreated, game)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, fmt.Errorf("%w: cell is required", ErrBadRequest))
		return
	}

	game, err := that.uGame.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game)
}

func (that *handlers) restart(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game)
}

// decodeBody - an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return errors.Join(ErrBadRequest, err)
}

func (that *handlers) writeGame(w http.ResponseWriter, status int, game *entity.Game) {
	that.writeJSON(w, status, Response{
		Game:    game,
		Message: game.Announcement(),
	})
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, Response{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// StatusFor - HTTP status matching an application error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrNotYourTurn), errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
