package errors

import "errors"

var (
	ErrGameNotActive     = errors.New("game is not active")
	ErrWrongTurn         = errors.New("it is not this color's turn")
	ErrOutOfBounds       = errors.New("coordinate is out of bounds")
	ErrOccupiedPoint     = errors.New("point is already occupied")
	ErrKoViolation       = errors.New("ko rule forbids immediate recapture")
	ErrSuicideMove       = errors.New("move would leave own group without liberties")
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyActive = errors.New("conversation already has a live game")
	ErrCreateGameFailed  = errors.New("create game failed")
	ErrInternal          = errors.New("internal error")
)
