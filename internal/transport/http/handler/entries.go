package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/entry"
	"github.com/caretaker-api/internal/domain"
)

type EntryHandler struct {
	svc entry.Service
}

func NewEntryHandler(svc entry.Service) *EntryHandler {
	return &EntryHandler{svc: svc}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req domain.CreateEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.svc.Log(r.Context(), sid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.List(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	alerts, err := h.svc.Alerts(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
