package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-session/internal/transport/line"
)

type Server struct {
	logger   *slog.Logger
	handler  *line.Handler
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, handler *line.Handler) *Server {
	return &Server{
		logger:  logger.With("component", "websocket"),
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler upgrades requests and plays the line protocol on them. Connections
// are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := that.upgrader.Upgrade(w, r, nil)
		if err != nil {
			that.logger.Error("failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
			return
		}

		that.handler.Serve(ctx, newConn(ws), r.RemoteAddr)
	}
}
