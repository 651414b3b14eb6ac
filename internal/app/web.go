package app

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// StatusProvider is the read side of the detector used by the HTTP API.
type StatusProvider interface {
	IsSourceAvailable() bool
	Snapshot() motion.Snapshot
}

// NewWebHandler returns the HTTP API:
//
//	GET /api/status     detector snapshot
//	GET /api/available  {"available": bool}
//	    /ws/stream      websocket status stream
func NewWebHandler(status StatusProvider, hub *StreamHub, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, status.Snapshot())
	})

	mux.HandleFunc("GET /api/available", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, map[string]bool{"available": status.IsSourceAvailable()})
	})

	mux.Handle("/ws/stream", hub)

	return mux
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("web: json encode error", "err", err)
	}
}
