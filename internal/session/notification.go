package session

import "github.com/rocketscienceinc/tictactoe-session/internal/entity"

type Kind string

const (
	KindJoined       Kind = "joined"
	KindMatchStarted Kind = "match_started"
	KindBoard        Kind = "board"
	KindTurn         Kind = "turn"
	KindWin          Kind = "win"
	KindDraw         Kind = "draw"
	KindReset        Kind = "reset"
	KindSessionEnded Kind = "session_ended"

	// KindRejected is never broadcast; transports use it to report a refused
	// move back to the connection that sent it.
	KindRejected Kind = "rejected"
)

// Notification is one state change pushed to a participant. Subject names the
// participant the notification is about: the joiner, the player to move, the
// winner or the one who left.
type Notification struct {
	Kind      Kind                 `json:"kind"`
	SessionID string               `json:"session_id"`
	Round     int                  `json:"round"`
	Board     entity.Snapshot      `json:"board"`
	Players   []entity.Participant `json:"players,omitempty"`
	Subject   *entity.Participant  `json:"subject,omitempty"`
	Outcome   *entity.Outcome      `json:"outcome,omitempty"`
	Err       error                `json:"-"`
}

// ParticipantLink pushes notifications to one connected participant.
// Send is called while the session lock is held and must not block.
type ParticipantLink interface {
	Send(n Notification) error
}

// Rejected builds the notification a transport sends back to the origin of a
// refused move.
func Rejected(err error) Notification {
	return Notification{Kind: KindRejected, Err: err}
}
