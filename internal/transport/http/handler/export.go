package handler

import (
	"net/http"

	"github.com/caretaker-api/internal/application/export"
)

type ExportHandler struct {
	svc export.Service
}

func NewExportHandler(svc export.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type exportResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	url, key, err := h.svc.Export(r.Context(), sid)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exportResponse{URL: url, Key: key})
}
