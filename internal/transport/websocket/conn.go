package websocket

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-session/internal/transport/line"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// conn carries the line protocol over text frames: one frame per inbound
// line and one frame per outbound notification.
type conn struct {
	ws        *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	that := &conn{
		ws:   ws,
		done: make(chan struct{}),
	}

	ws.SetReadLimit(line.MaxLineLength)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go that.heartbeat()

	return that
}

func (that *conn) ReadLine() (string, error) {
	for {
		kind, data, err := that.ws.ReadMessage()
		if err != nil {
			return "", err
		}

		if kind == websocket.TextMessage {
			return strings.TrimRight(string(data), "\r\n"), nil
		}
	}
}

func (that *conn) WriteLines(lines []string) error {
	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.ws.WriteMessage(websocket.TextMessage, []byte(strings.Join(lines, "\n")))
}

func (that *conn) Close() error {
	var err error
	that.closeOnce.Do(func() {
		close(that.done)
		err = that.ws.Close()
	})
	return err
}

// heartbeat pings with control frames, which may be written alongside the
// notification writer.
func (that *conn) heartbeat() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-that.done:
			return
		case <-ticker.C:
			if err := that.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
