package websocket

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

func (that *Server) handleNewGame(ctx context.Context, payload map[string]any) (*entity.Game, error) {
	var req newGamePayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	computerFirst := that.computerFirst
	if req.ComputerFirst != nil {
		computerFirst = *req.ComputerFirst
	}

	return that.uGame.NewGame(ctx, computerFirst)
}

func (that *Server) handleGetGame(ctx context.Context, payload map[string]any) (*entity.Game, error) {
	var req gamePayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	return that.uGame.GetGame(ctx, req.GameID)
}

func (that *Server) handleTurn(ctx context.Context, payload map[string]any) (*entity.Game, error) {
	var req turnPayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	return that.uGame.MakeTurn(ctx, req.GameID, *req.Cell)
}

func (that *Server) handleRestart(ctx context.Context, payload map[string]any) (*entity.Game, error) {
	var req gamePayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	if err := req.validate(); err != nil {
		return nil, err
	}

	return that.uGame.Restart(ctx, req.GameID)
}
