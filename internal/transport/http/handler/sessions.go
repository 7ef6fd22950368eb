package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/session"
	"github.com/caretaker-api/internal/domain"
)

type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type sessionResponse struct {
	Session *domain.Session `json:"session"`
	Bearer  string          `json:"bearer,omitempty"`
}

// Create opens a new monitoring session. The response carries the bearer
// token for all subsequent calls; without a signing keypair the session id
// doubles as the credential via the X-Session-ID header.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, bearer, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, Bearer: bearer})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Get(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

func (h *SessionHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Get(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Metrics)
}

func (h *SessionHandler) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req domain.UpdateMetricsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.svc.UpdateMetrics(r.Context(), sid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Metrics)
}
