package handlers

import (
	"encoding/json"
	"net/http"

	"techie-backend/internal/models"
	"techie-backend/internal/services"
)

type UsageHandler struct {
	quota   *services.QuotaService
	reports *services.ReportService
}

func NewUsageHandler(quota *services.QuotaService, reports *services.ReportService) *UsageHandler {
	return &UsageHandler{quota: quota, reports: reports}
}

// Plans lists the pricing table. Public.
func (h *UsageHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quota.Plans())
}

func (h *UsageHandler) WeeklyUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	usage, err := h.quota.WeeklyUsage(r.Context(), callerFrom(r), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}

func (h *UsageHandler) WeeklyAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userId")
	if !ok {
		return
	}

	days, err := h.reports.WeeklyBreakdown(r.Context(), callerFrom(r), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, days)
}

// ChangePlan switches the caller's plan and returns the new billing record.
func (h *UsageHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	caller := callerFrom(r)
	record, err := h.quota.ChangePlan(r.Context(), caller, caller.UserID, req.PlanType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}
