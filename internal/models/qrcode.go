package models

import (
	"time"

	"github.com/google/uuid"
)

// QRPayload is the JSON content encoded into a member's QR image.
type QRPayload struct {
	UserID    uuid.UUID `json:"userId" validate:"required"`
	Workspace string    `json:"workspace" validate:"required"`
	Timestamp int64     `json:"timestamp" validate:"required,gt=0"`
	Token     string    `json:"token" validate:"required,hexadecimal,len=32"`
}

type QRCode struct {
	QRCode     string    `json:"qr_code"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type ScanRequest struct {
	Payload string `json:"payload"`
}

// Scan actions
const (
	ScanCheckedIn  = "checked_in"
	ScanCheckedOut = "checked_out"
)

type ScanResult struct {
	Action  string   `json:"action"`
	Session *Session `json:"session"`
}
