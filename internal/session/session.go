package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

const (
	maxParticipants = 2

	// startingTurn is the slot that moves first in every game of a session.
	startingTurn = 0
)

type Phase string

const (
	PhaseAwaitingSecondParticipant Phase = "awaiting_second_participant"
	PhaseAwaitingMove              Phase = "awaiting_move"
	PhaseEvaluating                Phase = "evaluating"
	PhaseConcluded                 Phase = "concluded"
	PhaseEnded                     Phase = "ended"
)

type participant struct {
	entity.Participant
	link ParticipantLink
}

// Session coordinates one two-player game. Board, turn and phase are only
// touched under mu, and every broadcast for a move is sent before mu is
// released, so both participants observe the same sequence of states.
type Session struct {
	logger *slog.Logger
	id     string

	mu           sync.Mutex
	board        *entity.Board
	participants [maxParticipants]*participant
	joined       int
	turn         int
	phase        Phase
	round        int

	observers []ParticipantLink
}

// Status is a point-in-time view of a session.
type Status struct {
	ID      string               `json:"id"`
	Phase   Phase                `json:"phase"`
	Round   int                  `json:"round"`
	Turn    int                  `json:"turn"`
	Board   entity.Snapshot      `json:"board"`
	Players []entity.Participant `json:"players"`
}

// New creates an empty session. Observers receive every broadcast after both
// participants.
func New(logger *slog.Logger, observers ...ParticipantLink) *Session {
	id := uuid.NewString()

	return &Session{
		logger:    logger.With("component", "session", "session_id", id),
		id:        id,
		board:     entity.NewBoard(),
		turn:      startingTurn,
		phase:     PhaseAwaitingSecondParticipant,
		round:     1,
		observers: observers,
	}
}

func (that *Session) ID() string {
	return that.id
}

// Join seats a participant in the next open slot. The first successful join
// always gets slot 0 and MarkA.
func (that *Session) Join(name string, link ParticipantLink) (int, entity.Mark, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == PhaseEnded {
		return 0, entity.Empty, apperror.ErrSessionEnded
	}

	if that.joined >= maxParticipants {
		return 0, entity.Empty, fmt.Errorf("%w: %d participants", apperror.ErrSessionFull, that.joined)
	}

	index := that.joined
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Player %d", index+1)
	}

	joiner := &participant{
		Participant: entity.Participant{
			Index: index,
			Name:  name,
			Mark:  entity.MarkForIndex(index),
		},
		link: link,
	}
	that.participants[index] = joiner
	that.joined++

	that.logger.Info("participant joined", "index", index, "name", name, "mark", joiner.Mark.String())

	joined := that.notification(KindJoined)
	joined.Subject = subjectOf(joiner)
	that.deliver(joiner, joined)

	if that.joined == maxParticipants {
		that.turn = startingTurn
		that.phase = PhaseAwaitingMove

		that.broadcast(that.notification(KindMatchStarted))
		that.broadcast(that.turnNotification())
	}

	return index, joiner.Mark, nil
}

// SubmitMove applies a move for the participant at index. A rejected move
// leaves the board and turn untouched and is only reported through the
// returned error.
func (that *Session) SubmitMove(index, row, col int) (entity.Outcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "SubmitMove", "index", index, "row", row, "col", col)

	if err := that.confirmAcceptingMoves(index); err != nil {
		log.Debug("move rejected", "error", err)
		return entity.Outcome{}, err
	}

	mover := that.participants[index]
	if err := that.board.Place(row, col, mover.Mark); err != nil {
		log.Debug("move rejected", "error", err)
		return entity.Outcome{}, err
	}

	that.phase = PhaseEvaluating
	outcome := entity.Evaluate(that.board.Snapshot())

	if outcome.IsOngoing() {
		that.turn = 1 - that.turn
		that.phase = PhaseAwaitingMove

		that.broadcast(that.notification(KindBoard))
		that.broadcast(that.turnNotification())

		return outcome, nil
	}

	that.phase = PhaseConcluded
	log.Info("game concluded", "round", that.round, "outcome", outcome.Status.String())

	that.broadcast(that.notification(KindBoard))
	that.broadcast(that.outcomeNotification(outcome))

	that.board.Reset()
	that.turn = startingTurn
	that.round++
	that.phase = PhaseAwaitingMove

	reset := that.turnNotification()
	reset.Kind = KindReset
	that.broadcast(reset)

	return outcome, nil
}

// Leave ends the session. The other participant is told that the session is
// over; every later Join or SubmitMove fails with ErrSessionEnded.
func (that *Session) Leave(index int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == PhaseEnded {
		return nil
	}

	if index < 0 || index >= that.joined {
		return fmt.Errorf("%w: index %d", apperror.ErrUnknownParticipant, index)
	}

	leaver := that.participants[index]
	that.phase = PhaseEnded

	that.logger.Info("participant left, session ended", "index", index, "name", leaver.Name)

	ended := that.notification(KindSessionEnded)
	ended.Subject = subjectOf(leaver)

	for _, p := range that.participants {
		if p != nil && p.Index != index {
			that.deliver(p, ended)
		}
	}
	that.notifyObservers(ended)

	return nil
}

func (that *Session) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board.Snapshot()
}

func (that *Session) Turn() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.turn
}

func (that *Session) Phase() Phase {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.phase
}

func (that *Session) Ended() bool {
	return that.Phase() == PhaseEnded
}

func (that *Session) Status() Status {
	that.mu.Lock()
	defer that.mu.Unlock()

	return Status{
		ID:      that.id,
		Phase:   that.phase,
		Round:   that.round,
		Turn:    that.turn,
		Board:   that.board.Snapshot(),
		Players: that.players(),
	}
}

func (that *Session) confirmAcceptingMoves(index int) error {
	switch {
	case that.phase == PhaseEnded:
		return apperror.ErrSessionEnded
	case that.joined < maxParticipants:
		return apperror.ErrSessionNotStarted
	case index < 0 || index >= maxParticipants:
		return fmt.Errorf("%w: index %d", apperror.ErrUnknownParticipant, index)
	case index != that.turn:
		return apperror.ErrNotYourTurn
	default:
		return nil
	}
}

func (that *Session) players() []entity.Participant {
	players := make([]entity.Participant, 0, that.joined)
	for _, p := range that.participants {
		if p != nil {
			players = append(players, p.Participant)
		}
	}
	return players
}

func (that *Session) notification(kind Kind) Notification {
	return Notification{
		Kind:      kind,
		SessionID: that.id,
		Round:     that.round,
		Board:     that.board.Snapshot(),
		Players:   that.players(),
	}
}

func (that *Session) turnNotification() Notification {
	n := that.notification(KindTurn)
	n.Subject = subjectOf(that.participants[that.turn])
	return n
}

func (that *Session) outcomeNotification(outcome entity.Outcome) Notification {
	n := that.notification(KindDraw)
	n.Outcome = &outcome

	if winner := outcome.WinnerIndex(); winner >= 0 {
		n.Kind = KindWin
		n.Subject = subjectOf(that.participants[winner])
	}

	return n
}

func subjectOf(p *participant) *entity.Participant {
	subject := p.Participant
	return &subject
}

// broadcast delivers n to slot 0, slot 1 and then the observers, always in
// that order.
func (that *Session) broadcast(n Notification) {
	for _, p := range that.participants {
		if p != nil {
			that.deliver(p, n)
		}
	}
	that.notifyObservers(n)
}

func (that *Session) deliver(p *participant, n Notification) {
	if p.link == nil {
		return
	}

	if err := p.link.Send(n); err != nil {
		that.logger.Warn("failed to deliver notification", "index", p.Index, "kind", string(n.Kind), "error", err)
	}
}

func (that *Session) notifyObservers(n Notification) {
	for _, observer := range that.observers {
		if err := observer.Send(n); err != nil {
			that.logger.Warn("failed to notify observer", "kind", string(n.Kind), "error", err)
		}
	}
}
