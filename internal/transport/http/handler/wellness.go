package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/wellness"
)

type WellnessHandler struct {
	svc wellness.Service
}

func NewWellnessHandler(svc wellness.Service) *WellnessHandler {
	return &WellnessHandler{svc: svc}
}

func (h *WellnessHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	suggestions, err := h.svc.Suggestions(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}
