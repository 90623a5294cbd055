package handlers

import (
	"encoding/json"
	"net/http"

	"techie-backend/internal/models"
	"techie-backend/internal/services"
)

type CheckInHandler struct {
	ledger *services.Ledger
	qr     *services.QRService
}

func NewCheckInHandler(ledger *services.Ledger, qr *services.QRService) *CheckInHandler {
	return &CheckInHandler{ledger: ledger, qr: qr}
}

// CheckIn opens a session for the caller.
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)

	session, err := h.ledger.CheckIn(r.Context(), caller, caller.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	session, err := h.ledger.CheckOut(r.Context(), callerFrom(r), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Scan processes a QR payload read at the door.
func (h *CheckInHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	result, err := h.qr.Scan(r.Context(), callerFrom(r), req.Payload)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Action == models.ScanCheckedIn {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// Current returns the user's active session, or null.
func (h *CheckInHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	view, err := h.ledger.GetActive(r.Context(), callerFrom(r), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"check_in": view})
}

func (h *CheckInHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}
	limit, ok := intQuery(r, "limit", 0)
	if !ok {
		badRequest(w, r, "limit must be an integer")
		return
	}

	sessions, err := h.ledger.GetRecent(r.Context(), callerFrom(r), userID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
