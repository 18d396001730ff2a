package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-session/internal/session"
)

type sessionSource interface {
	Current() *session.Session
}

type handlers struct {
	logger *slog.Logger
	host   sessionSource
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// Session reports the session new connections are admitted to.
func (that *handlers) Session(w http.ResponseWriter, _ *http.Request) {
	current := that.host.Current()
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session has been opened yet"})
		return
	}

	writeJSON(w, http.StatusOK, current.Status())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
