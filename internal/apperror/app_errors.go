package apperror

import "errors"

var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoMovesAvailable = errors.New("no moves available")
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameNotFound     = errors.New("game not found")
)
