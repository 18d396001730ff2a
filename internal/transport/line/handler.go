package line

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/render"
	"github.com/rocketscienceinc/tictactoe-session/internal/session"
	"github.com/rocketscienceinc/tictactoe-session/internal/transport/outbox"
)

// MaxLineLength bounds one inbound line in bytes.
const MaxLineLength = 1024

var errSessionOver = errors.New("session over")

// Conn is a connection that exchanges lines of text.
type Conn interface {
	ReadLine() (string, error)
	// WriteLines writes the lines of one notification together.
	WriteLines(lines []string) error
	Close() error
}

type admitter interface {
	Admit(name string, link session.ParticipantLink) (*session.Seat, error)
}

// Handler runs the line protocol for one connection at a time: a name
// prompt, admission into the current session, then one move per line.
type Handler struct {
	logger     *slog.Logger
	host       admitter
	renderer   *render.Renderer
	sendBuffer int

	mu       sync.Mutex
	draining bool
	active   sync.WaitGroup
}

func NewHandler(logger *slog.Logger, host admitter, renderer *render.Renderer, sendBuffer int) *Handler {
	return &Handler{
		logger:     logger.With("component", "line"),
		host:       host,
		renderer:   renderer,
		sendBuffer: sendBuffer,
	}
}

// Serve blocks until the connection is gone, the session is over or ctx is
// done. conn is always closed on return.
func (that *Handler) Serve(ctx context.Context, conn Conn, remote string) {
	log := that.logger.With("method", "Serve", "remote", remote)

	if !that.track() {
		_ = conn.Close()
		return
	}
	defer that.active.Done()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	if err := conn.WriteLines([]string{that.renderer.Welcome()}); err != nil {
		log.Debug("failed to send welcome", "error", err)
		return
	}

	name, err := conn.ReadLine()
	if err != nil {
		log.Debug("connection closed before a name was sent", "error", err)
		return
	}

	box := outbox.New[session.Notification](that.sendBuffer)

	seat, err := that.host.Admit(strings.TrimSpace(name), box)
	if errors.Is(err, apperror.ErrSessionFull) {
		log.Info("rejecting connection, session full")
		if err = conn.WriteLines([]string{that.renderer.ServerFull()}); err != nil {
			log.Debug("failed to send server full", "error", err)
		}
		return
	}
	if err != nil {
		log.Error("failed to admit connection", "error", err)
		return
	}

	log = log.With("session_id", seat.Session.ID(), "index", seat.Index)
	log.Info("connection admitted")

	written := make(chan struct{})
	go func() {
		defer close(written)
		defer conn.Close()

		if err := box.Run(ctx, that.writer(conn)); err != nil && !errors.Is(err, errSessionOver) {
			log.Info("stopped writing to connection", "error", err)
		}
	}()

	that.readMoves(conn, seat, box, log)

	if err = seat.Leave(); err != nil {
		log.Error("failed to leave session", "error", err)
	}

	box.Close()
	<-written

	log.Info("connection closed")
}

// Wait refuses new connections and blocks until every Serve call has
// returned.
func (that *Handler) Wait() {
	that.mu.Lock()
	that.draining = true
	that.mu.Unlock()

	that.active.Wait()
}

func (that *Handler) track() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.draining {
		return false
	}

	that.active.Add(1)
	return true
}

func (that *Handler) writer(conn Conn) func(session.Notification) error {
	return func(n session.Notification) error {
		if err := conn.WriteLines(that.renderer.Notification(n)); err != nil {
			return err
		}

		if n.Kind == session.KindSessionEnded {
			return errSessionOver
		}

		return nil
	}
}

func (that *Handler) readMoves(conn Conn, seat *session.Seat, box *outbox.Outbox[session.Notification], log *slog.Logger) {
	for {
		text, err := conn.ReadLine()
		if err != nil {
			log.Debug("stopped reading from connection", "error", err)
			return
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		row, col, err := ParseMove(text)
		if err == nil {
			_, err = seat.Move(row, col)
		}

		if err != nil {
			if sendErr := box.Send(session.Rejected(err)); sendErr != nil {
				log.Debug("failed to queue rejection", "error", sendErr)
			}
		}
	}
}
