package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, messageResponse{Message: "pong"})
	case "test":
		writeJSON(w, http.StatusOK, messageResponse{Message: "service is up"})
	default:
		writeError(w, http.StatusNotFound, "unknown health-check action")
	}
}
