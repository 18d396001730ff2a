package apperror

import "errors"

var (
	ErrSessionFull        = errors.New("session is full")
	ErrSessionEnded       = errors.New("session has ended")
	ErrSessionNotStarted  = errors.New("session is waiting for a second participant")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrInvalidCoordinate  = errors.New("coordinate is out of range")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrInvalidMark        = errors.New("invalid mark")
	ErrMalformedMove      = errors.New("malformed move")
)
