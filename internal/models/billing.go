package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing statuses
const (
	BillingPending = "pending"
	BillingPaid    = "paid"
	BillingOverdue = "overdue"
)

// BillingRecord is appended on every plan change and never rewritten by the
// usage engine.
type BillingRecord struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	PlanType  string     `json:"plan_type"`
	Amount    int        `json:"amount"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Status    string     `json:"status"`
}
