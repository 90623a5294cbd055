package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"techie-backend/internal/clock"
	"techie-backend/internal/metrics"
	"techie-backend/internal/models"
	"techie-backend/internal/qrcode"
)

// Workspace is the only workspace a scanned payload may name.
const Workspace = "techie"

const (
	qrTokenPrefix   = "techie:qr:token:"
	qrCurrentPrefix = "techie:qr:current:"
	qrTokenBytes    = 16
)

// storedCode is what Redis keeps for a user's current QR code.
type storedCode struct {
	QRCode     string    `json:"qr_code"`
	ExpiryDate time.Time `json:"expiry_date"`
	Token      string    `json:"token"`
}

// QRService issues member QR codes and turns scans into check-ins or check-outs.
type QRService struct {
	redis          *redis.Client
	encoder        qrcode.Encoder
	ledger         *Ledger
	clock          clock.Clock
	validityMonths int
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewQRService(redisClient *redis.Client, encoder qrcode.Encoder, ledger *Ledger, clk clock.Clock, validityMonths int, logger zerolog.Logger) *QRService {
	if validityMonths <= 0 {
		validityMonths = 1
	}
	return &QRService{
		redis:          redisClient,
		encoder:        encoder,
		ledger:         ledger,
		clock:          clk,
		validityMonths: validityMonths,
		validate:       newValidator(),
		logger:         logger.With().Str("component", "qr").Logger(),
	}
}

// Issue generates a fresh code for userID and revokes the previous one.
func (s *QRService) Issue(ctx context.Context, caller Caller, userID uuid.UUID) (*models.QRCode, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	token, err := generateToken(qrTokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	payload, err := json.Marshal(models.QRPayload{
		UserID:    userID,
		Workspace: Workspace,
		Timestamp: now.UnixMilli(),
		Token:     token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr payload: %w", err)
	}

	image, err := s.encoder.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	expiry := now.AddDate(0, s.validityMonths, 0)
	ttl := expiry.Sub(now)

	prev, err := s.loadCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}

	record, err := json.Marshal(storedCode{QRCode: image, ExpiryDate: expiry, Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr record: %w", err)
	}

	// Revoking the previous token and storing the new one commit together.
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil {
			pipe.Del(ctx, qrTokenPrefix+prev.Token)
		}
		pipe.Set(ctx, qrTokenPrefix+token, userID.String(), ttl)
		pipe.Set(ctx, qrCurrentPrefix+userID.String(), record, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store qr code: %w", err)
	}

	metrics.QRCodesIssued.Inc()
	s.logger.Info().
		Str("user_id", userID.String()).
		Time("expires_at", expiry).
		Msg("QR code issued")

	return &models.QRCode{QRCode: image, ExpiryDate: expiry}, nil
}

// Current returns the user's unexpired code.
func (s *QRService) Current(ctx context.Context, caller Caller, userID uuid.UUID) (*models.QRCode, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	stored, err := s.loadCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.ExpiryDate.After(s.clock.Now()) {
		return nil, &NotFoundError{Message: "No active QR code found"}
	}
	return &models.QRCode{QRCode: stored.QRCode, ExpiryDate: stored.ExpiryDate}, nil
}

// ParsePayload decodes and validates a scanned payload. Anything that is not
// a well-formed payload for this workspace is a ValidationError.
func (s *QRService) ParsePayload(raw string) (*models.QRPayload, error) {
	var payload models.QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fieldError("payload", "Malformed QR payload")
	}
	if err := validateStruct(s.validate, payload); err != nil {
		return nil, err
	}
	if payload.Workspace != Workspace {
		return nil, fieldError("workspace", "QR code does not belong to this workspace")
	}
	return &payload, nil
}

// Scan validates the payload and its token, then checks the member out if
// they have an active session and in otherwise.
func (s *QRService) Scan(ctx context.Context, caller Caller, raw string) (*models.ScanResult, error) {
	payload, err := s.ParsePayload(raw)
	if err != nil {
		metrics.QRScansTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := Authorize(caller, payload.UserID); err != nil {
		metrics.QRScansTotal.WithLabelValues("forbidden").Inc()
		return nil, err
	}

	owner, err := s.redis.Get(ctx, qrTokenPrefix+payload.Token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to look up qr token: %w", err)
	}
	if errors.Is(err, redis.Nil) || owner != payload.UserID.String() {
		metrics.QRScansTotal.WithLabelValues("unknown_token").Inc()
		return nil, fieldError("token", "QR code is expired or has been replaced")
	}

	result, err := s.ledger.toggle(ctx, caller, payload.UserID)
	if err != nil {
		metrics.QRScansTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.QRScansTotal.WithLabelValues(result.Action).Inc()
	s.logger.Info().
		Str("user_id", payload.UserID.String()).
		Str("action", result.Action).
		Msg("QR scan processed")

	return result, nil
}

func (s *QRService) loadCurrent(ctx context.Context, userID uuid.UUID) (*storedCode, error) {
	data, err := s.redis.Get(ctx, qrCurrentPrefix+userID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load qr code: %w", err)
	}

	var stored storedCode
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode qr record: %w", err)
	}
	return &stored, nil
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
