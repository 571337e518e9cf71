package gate

import "errors"

// Errors returned for rejected operations. Callers treat all of them as
// silent no-ops: the game state is untouched when one is returned.
var (
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrOutOfPhase         = errors.New("action not allowed in current phase")
	ErrInvalidBet         = errors.New("bet must be a positive amount")
	ErrInvalidChoice      = errors.New("invalid side choice for this gate")
	ErrNoParticipants     = errors.New("no participants at the table")
)
