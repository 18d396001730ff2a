package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-session/internal/entity"
	"github.com/rocketscienceinc/tictactoe-session/internal/session"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

var (
	registerOnce sync.Once
	errRegister  error

	matcher = language.NewMatcher(supported)

	markColors = map[entity.Mark]termenv.Color{
		entity.MarkA: termenv.ANSI.Color("1"),
		entity.MarkB: termenv.ANSI.Color("4"),
	}
)

// Renderer turns session notifications into the human-readable lines sent to
// a terminal client.
type Renderer struct {
	printer *message.Printer
	color   bool
}

// New returns a renderer for locale ("en", "pt", "pt-PT", ...). With color
// set, marks are wrapped in ANSI colour sequences.
func New(locale string, color bool) (*Renderer, error) {
	registerOnce.Do(func() {
		errRegister = register()
	})
	if errRegister != nil {
		return nil, errRegister
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	return &Renderer{
		printer: message.NewPrinter(supported[index]),
		color:   color,
	}, nil
}

func (that *Renderer) Welcome() string {
	return that.printer.Sprintf(msgWelcome)
}

func (that *Renderer) ServerFull() string {
	return that.printer.Sprintf(msgServerFull)
}

// Notification renders n as one or more lines.
func (that *Renderer) Notification(n session.Notification) []string {
	switch n.Kind {
	case session.KindJoined:
		lines := []string{that.participantLine(msgJoined, n.Subject)}
		if len(n.Players) < 2 {
			lines = append(lines, that.printer.Sprintf(msgWaiting))
		}
		return append(lines, that.Board(n.Board)...)
	case session.KindMatchStarted:
		lines := []string{that.matchLine(n.Players)}
		return append(lines, that.Board(n.Board)...)
	case session.KindBoard:
		return that.Board(n.Board)
	case session.KindTurn:
		return []string{that.participantLine(msgTurn, n.Subject)}
	case session.KindWin:
		return []string{that.participantLine(msgWin, n.Subject)}
	case session.KindDraw:
		return []string{that.printer.Sprintf(msgDraw)}
	case session.KindReset:
		lines := that.Board(n.Board)
		lines = append(lines, that.printer.Sprintf(msgNewGame))
		return append(lines, that.participantLine(msgTurn, n.Subject))
	case session.KindSessionEnded:
		name := ""
		if n.Subject != nil {
			name = n.Subject.Name
		}
		return []string{that.printer.Sprintf(msgLeft, name)}
	case session.KindRejected:
		return []string{that.Error(n.Err)}
	default:
		return nil
	}
}

// Board renders one line per row with marks separated by spaces and a blank
// for an empty cell.
func (that *Renderer) Board(board entity.Snapshot) []string {
	lines := make([]string, 0, entity.BoardSize)
	for _, row := range board {
		cells := make([]string, 0, entity.BoardSize)
		for _, cell := range row {
			cells = append(cells, that.mark(cell))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

// Error renders the reason a move was refused.
func (that *Renderer) Error(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		return that.printer.Sprintf(msgNotYourTurn)
	case errors.Is(err, apperror.ErrInvalidCoordinate):
		return that.printer.Sprintf(msgInvalidCoordinate)
	case errors.Is(err, apperror.ErrCellOccupied):
		return that.printer.Sprintf(msgCellOccupied)
	case errors.Is(err, apperror.ErrSessionNotStarted):
		return that.printer.Sprintf(msgNotStarted)
	case errors.Is(err, apperror.ErrSessionEnded):
		return that.printer.Sprintf(msgSessionEnded)
	case errors.Is(err, apperror.ErrMalformedMove):
		return that.printer.Sprintf(msgMalformedMove)
	case errors.Is(err, apperror.ErrSessionFull):
		return that.printer.Sprintf(msgServerFull)
	default:
		return that.printer.Sprintf(msgInvalidMove)
	}
}

func (that *Renderer) participantLine(key string, p *entity.Participant) string {
	if p == nil {
		return ""
	}
	return that.printer.Sprintf(key, p.Name, that.mark(p.Mark))
}

func (that *Renderer) matchLine(players []entity.Participant) string {
	if len(players) < 2 {
		return ""
	}
	return that.printer.Sprintf(msgMatchStarted,
		players[0].Name, that.mark(players[0].Mark),
		players[1].Name, that.mark(players[1].Mark))
}

func (that *Renderer) mark(m entity.Mark) string {
	symbol := m.String()
	if symbol == "" {
		return " "
	}

	if !that.color {
		return symbol
	}

	return termenv.ANSI.String(symbol).Foreground(markColors[m]).Bold().String()
}
