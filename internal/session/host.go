package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
)

// Seat is the handle a transport receives for one admitted connection. It
// routes that connection's moves into the session it was admitted to.
type Seat struct {
	Session *Session
	Index   int
	Mark    entity.Mark
}

func (that *Seat) Move(row, col int) (entity.Outcome, error) {
	return that.Session.SubmitMove(that.Index, row, col)
}

func (that *Seat) Leave() error {
	return that.Session.Leave(that.Index)
}

// Host admits connections into the current session. Once that session has
// ended a fresh one is opened for the next pair.
type Host struct {
	base      *slog.Logger
	logger    *slog.Logger
	observers []ParticipantLink

	mu      sync.Mutex
	current *Session
}

func NewHost(logger *slog.Logger, observers ...ParticipantLink) *Host {
	return &Host{
		base:      logger,
		logger:    logger.With("component", "host"),
		observers: observers,
	}
}

// Admit seats name in the current session. A third connection gets
// apperror.ErrSessionFull and must be closed by the caller. A session that has
// ended is replaced by a fresh one, even when it ends between lookup and join.
func (that *Host) Admit(name string, link ParticipantLink) (*Seat, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.current == nil {
		that.open()
	}

	index, mark, err := that.current.Join(name, link)
	if errors.Is(err, apperror.ErrSessionEnded) {
		that.open()
		index, mark, err = that.current.Join(name, link)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to join session %s: %w", that.current.ID(), err)
	}

	return &Seat{
		Session: that.current,
		Index:   index,
		Mark:    mark,
	}, nil
}

func (that *Host) open() {
	that.current = New(that.base, that.observers...)
	that.logger.Info("session opened", "session_id", that.current.ID())
}

// Current returns the session new connections are admitted to, or nil before
// the first admission.
func (that *Host) Current() *Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.current
}
