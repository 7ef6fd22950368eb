package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/transport/http/middleware"
)

type errorResponse struct {
	Error             string `json:"error"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// httpError maps domain errors onto HTTP status codes. Unrecognised errors
// become 500s with the detail kept out of the response body.
func httpError(w http.ResponseWriter, err error) {
	var incorrect *domain.IncorrectCodeError
	if errors.As(err, &incorrect) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:             incorrect.Error(),
			RemainingAttempts: &incorrect.Remaining,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrOTPExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrAttemptsExhausted):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes the request body into v. An empty body is tolerated when
// allowEmpty is set; every field then keeps its zero value.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return errors.New("invalid request body")
}

// sessionID pulls the authenticated session id out of the request context,
// answering 401 itself when the auth middleware did not run.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return "", false
	}
	return sid, true
}
