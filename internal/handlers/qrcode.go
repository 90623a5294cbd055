package handlers

import (
	"net/http"

	"techie-backend/internal/services"
)

type QRHandler struct {
	qr *services.QRService
}

func NewQRHandler(qr *services.QRService) *QRHandler {
	return &QRHandler{qr: qr}
}

// Generate issues a new code for the caller, revoking the old one.
func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)

	code, err := h.qr.Issue(r.Context(), caller, caller.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, code)
}

func (h *QRHandler) Current(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)

	code, err := h.qr.Current(r.Context(), caller, caller.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, code)
}
