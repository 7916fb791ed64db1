package websocket

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const (
	ActionNewGame = "game:new"
	ActionGetGame = "game:get"
	ActionTurn    = "game:turn"
	ActionRestart = "game:restart"
)

var ErrBadPayload = errors.New("bad payload")

// Message represents a WebSocket request with an action type and a payload.
type Message struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Reply is sent back for every Message, with the same action.
type Reply struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

type ResponsePayload struct {
	Game    *entity.Game `json:"game,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type newGamePayload struct {
	ComputerFirst *bool `json:"computer_first"`
}

type gamePayload struct {
	GameID string `json:"game_id"`
}

type turnPayload struct {
	GameID string `json:"game_id"`
	Cell   *int   `json:"cell"`
}

// decodePayload - fills v from the generic payload map. Unknown keys are rejected.
func decodePayload(payload map[string]any, v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      v,
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  rejectFractions,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err = decoder.Decode(payload); err != nil {
		return errors.Join(ErrBadPayload, err)
	}

	return nil
}

func (that gamePayload) validate() error {
	if that.GameID == "" {
		return fmt.Errorf("%w: game_id is required", ErrBadPayload)
	}

	return nil
}

func (that turnPayload) validate() error {
	if that.GameID == "" {
		return fmt.Errorf("%w: game_id is required", ErrBadPayload)
	}

	if that.Cell == nil {
		return fmt.Errorf("%w: cell is required", ErrBadPayload)
	}

	return nil
}

// rejectFractions - JSON numbers arrive as float64, only whole ones may fill an integer.
func rejectFractions(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() == reflect.Ptr {
		to = to.Elem()
	}

	number, ok := data.(float64)
	if !ok || from.Kind() != reflect.Float64 {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if number != math.Trunc(number) {
			return nil, fmt.Errorf("%w: %v is not a whole number", ErrBadPayload, number)
		}
	}

	return data, nil
}
