package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-session/internal/session"
	"github.com/rocketscienceinc/tictactoe-session/internal/transport/outbox"
)

const mirrorBacklog = 1024

type eventRepo interface {
	Publish(ctx context.Context, n session.Notification) error
}

// EventMirror is a session observer that republishes every broadcast through
// an event repository. Publishing happens on the Run goroutine, so Send never
// waits on the network. While the repository is stalled only the newest
// mirrorBacklog notifications are kept.
type EventMirror struct {
	logger *slog.Logger
	repo   eventRepo
	box    *outbox.Outbox[session.Notification]

	// reported is only touched by the Run goroutine.
	reported uint64
}

func NewEventMirror(logger *slog.Logger, repo eventRepo) *EventMirror {
	return &EventMirror{
		logger: logger.With("component", "event_mirror"),
		repo:   repo,
		box:    outbox.NewWithPolicy[session.Notification](mirrorBacklog, outbox.DropOldest),
	}
}

func (that *EventMirror) Send(n session.Notification) error {
	return that.box.Send(n)
}

// Run publishes queued notifications until ctx is done or Close is called.
// A failed publish is logged and skipped.
func (that *EventMirror) Run(ctx context.Context) error {
	err := that.box.Run(ctx, func(n session.Notification) error {
		that.reportDropped()

		if err := that.repo.Publish(ctx, n); err != nil {
			that.logger.Error("failed to publish notification", "session_id", n.SessionID, "kind", string(n.Kind), "error", err)
		}
		return nil
	})
	that.reportDropped()

	if err != nil {
		return fmt.Errorf("event mirror stopped: %w", err)
	}

	return nil
}

func (that *EventMirror) Close() {
	that.box.Close()
}

func (that *EventMirror) reportDropped() {
	dropped := that.box.Dropped()
	if dropped == that.reported {
		return
	}

	that.logger.Warn("dropped notifications while publishing was stalled", "count", dropped-that.reported)
	that.reported = dropped
}
