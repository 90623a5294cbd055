package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"techie-backend/internal/clock"
	"techie-backend/internal/metrics"
	"techie-backend/internal/models"
	"techie-backend/internal/plans"
	"techie-backend/internal/repository"
)

// QuotaService reports weekly usage against a plan and handles plan changes.
type QuotaService struct {
	users    UserStore
	billings BillingStore
	usage    *UsageAggregator
	clock    clock.Clock
	logger   zerolog.Logger
}

func NewQuotaService(users UserStore, billings BillingStore, usage *UsageAggregator, clk clock.Clock, logger zerolog.Logger) *QuotaService {
	return &QuotaService{
		users:    users,
		billings: billings,
		usage:    usage,
		clock:    clk,
		logger:   logger.With().Str("component", "quota").Logger(),
	}
}

// Plans returns the pricing table.
func (s *QuotaService) Plans() []plans.Policy {
	return plans.All()
}

// WeeklyUsage totals the current week against the user's plan allowance.
func (s *QuotaService) WeeklyUsage(ctx context.Context, caller Caller, userID uuid.UUID) (*models.WeeklyUsage, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, err
	}

	policy := plans.Resolve(user.CurrentPlan)
	total, err := s.usage.TotalMinutes(ctx, userID, clock.WeekWindow(s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to total weekly usage: %w", err)
	}

	return &models.WeeklyUsage{
		UserID:             userID,
		Plan:               policy.Plan,
		TotalMinutes:       total,
		WeeklyLimit:        policy.WeeklyMinuteAllowance,
		UtilizationPercent: plans.UtilizationPercent(total, policy.WeeklyMinuteAllowance),
	}, nil
}

// ChangePlan switches the user's plan and appends a pending billing record
// at the plan's rate.
func (s *QuotaService) ChangePlan(ctx context.Context, caller Caller, userID uuid.UUID, plan string) (*models.BillingRecord, error) {
	return s.changePlan(ctx, caller, userID, plan, nil)
}

// changePlan also writes profile, when given, in the plan change's transaction.
func (s *QuotaService) changePlan(ctx context.Context, caller Caller, userID uuid.UUID, plan string, profile *models.ProfileUpdate) (*models.BillingRecord, error) {
	if err := Authorize(caller, userID); err != nil {
		return nil, err
	}

	policy, ok := plans.Lookup(plan)
	if !ok {
		return nil, fieldError("plan_type", "Plan must be one of: "+strings.Join(plans.Names(), ", "))
	}

	record, err := s.billings.RecordPlanChange(ctx, userID, policy.Plan, policy.Rate, s.clock.Now(), profile)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Message: "User not found"}
		case errors.Is(err, repository.ErrDuplicate):
			return nil, &ConflictError{Message: "Email already in use"}
		}
		return nil, err
	}

	metrics.PlanChangesTotal.WithLabelValues(policy.Plan).Inc()
	s.logger.Info().
		Str("user_id", userID.String()).
		Str("plan", policy.Plan).
		Int("amount", policy.Rate).
		Msg("Plan changed")

	return record, nil
}
