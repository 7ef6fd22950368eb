package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/verification"
	"github.com/caretaker-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type issueRequest struct {
	Method string `json:"method"`
}

type challengeResponse struct {
	Challenge *domain.OtpChallenge `json:"challenge"`
	Message   string               `json:"message"`
}

// Action dispatches the verification sub-operations for one contact:
// request, resend, validate-code and cancel.
func (h *VerificationHandler) Action(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")

	switch chi.URLParam(r, "action") {
	case "request", "resend":
		h.issue(w, r, sid, contactID)
	case "validate-code":
		h.validate(w, r, sid, contactID)
	case "cancel":
		h.cancel(w, r, sid, contactID)
	default:
		writeError(w, http.StatusNotFound, "unknown verification action")
	}
}

func (h *VerificationHandler) issue(w http.ResponseWriter, r *http.Request, sid, contactID string) {
	var req issueRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ch, err := h.svc.Issue(r.Context(), sid, contactID, req.Method)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challengeResponse{Challenge: ch, Message: "verification code sent"})
}

func (h *VerificationHandler) validate(w http.ResponseWriter, r *http.Request, sid, contactID string) {
	var req domain.ValidateCodeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// An empty submission must not burn an attempt.
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	c, err := h.svc.Validate(r.Context(), sid, contactID, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contactResponse{Contact: c, Message: "contact verified"})
}

func (h *VerificationHandler) cancel(w http.ResponseWriter, r *http.Request, sid, contactID string) {
	if err := h.svc.Cancel(r.Context(), sid, contactID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "verification cancelled"})
}
