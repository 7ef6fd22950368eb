package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/contact"
	"github.com/caretaker-api/internal/application/verification"
	"github.com/caretaker-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contacts     contact.Service
	verification verification.Service
}

func NewContactHandler(contacts contact.Service, verification verification.Service) *ContactHandler {
	return &ContactHandler{contacts: contacts, verification: verification}
}

type contactResponse struct {
	Contact   *domain.Contact      `json:"contact"`
	Challenge *domain.OtpChallenge `json:"challenge,omitempty"`
	Message   string               `json:"message,omitempty"`
}

// Create registers a pending contact and immediately starts its verification.
// The contact stays pending until the delivered code is validated.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req domain.CreateContactRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.contacts.AddPending(r.Context(), sid, req)
	if err != nil {
		httpError(w, err)
		return
	}
	ch, err := h.verification.Issue(r.Context(), sid, c.ContactID, req.Method)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contactResponse{
		Contact:   c,
		Challenge: ch,
		Message:   "verification code sent",
	})
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	contacts, err := h.contacts.List(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")
	if err := h.contacts.RemoveVerified(r.Context(), sid, contactID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "contact removed"})
}
