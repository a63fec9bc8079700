package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/drafthook/drafthook/backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

type Handler struct {
	history service.HistoryService
	db      Pinger
}

func New(history service.HistoryService, db Pinger) *Handler {
	return &Handler{history, db}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Print(err.Error())
	}
}
