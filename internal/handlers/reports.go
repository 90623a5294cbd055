package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/clock"
	"techie-backend/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
	clock   clock.Clock
}

func NewReportHandler(reports *services.ReportService, clk clock.Clock) *ReportHandler {
	return &ReportHandler{reports: reports, clock: clk}
}

// reportParams reads userId, period (default monthly) and date (default now).
func (h *ReportHandler) reportParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, time.Time, bool) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return uuid.Nil, "", time.Time{}, false
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = clock.PeriodMonthly
	}

	ref, err := parseDate(r.URL.Query().Get("date"), h.clock.Now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid date",
			map[string]string{"date": "Use YYYY-MM-DD or RFC 3339"}, r))
		return uuid.Nil, "", time.Time{}, false
	}

	return userID, period, ref, true
}

func (h *ReportHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	userID, period, ref, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	sessions, err := h.reports.Attendance(r.Context(), callerFrom(r), userID, period, ref)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *ReportHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, period, ref, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Usage(r.Context(), callerFrom(r), userID, period, ref)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Billing(w http.ResponseWriter, r *http.Request) {
	userID, period, ref, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	records, err := h.reports.Billing(r.Context(), callerFrom(r), userID, period, ref)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *ReportHandler) BillingHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	records, err := h.reports.BillingHistory(r.Context(), callerFrom(r), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// PaymentMethods is a placeholder; no payment provider is integrated.
func (h *ReportHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	if err := services.RequireSelf(callerFrom(r), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, []struct{}{})
}
