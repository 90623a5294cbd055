package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techie-backend/internal/models"
)

const billingColumns = `id, user_id, plan_type, amount, start_date, end_date, status`

type BillingRepo struct {
	pool *pgxpool.Pool
}

func NewBillingRepo(pool *pgxpool.Pool) *BillingRepo {
	return &BillingRepo{pool: pool}
}

// RecordPlanChange switches the user's plan and appends a pending billing
// record in one transaction, together with any profile edits. Earlier
// records are left untouched.
func (r *BillingRepo) RecordPlanChange(ctx context.Context, userID uuid.UUID, plan string, amount int, start time.Time, profile *models.ProfileUpdate) (*models.BillingRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin plan change: %w", err)
	}
	defer tx.Rollback(ctx)

	if profile != nil {
		if _, err := tx.Exec(ctx,
			"UPDATE users SET full_name = $1, email = $2 WHERE id = $3",
			profile.FullName, profile.Email, userID,
		); err != nil {
			if code, _ := pgErrorCode(err); code == uniqueViolation {
				return nil, ErrDuplicate
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, "UPDATE users SET current_plan = $1 WHERE id = $2", plan, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO billings (user_id, plan_type, amount, start_date, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING `+billingColumns,
		userID, plan, amount, start,
	)
	record, err := scanBilling(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert billing record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit plan change: %w", err)
	}
	return record, nil
}

func (r *BillingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BillingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+billingColumns+`
		FROM billings
		WHERE user_id = $1
		ORDER BY start_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectBillings(rows)
}

func (r *BillingRepo) ListStartedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.BillingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+billingColumns+`
		FROM billings
		WHERE user_id = $1
		  AND start_date >= $2
		  AND start_date <= $3
		ORDER BY start_date DESC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collectBillings(rows)
}

func scanBilling(row pgx.Row) (*models.BillingRecord, error) {
	b := &models.BillingRecord{}
	if err := row.Scan(&b.ID, &b.UserID, &b.PlanType, &b.Amount, &b.StartDate, &b.EndDate, &b.Status); err != nil {
		return nil, err
	}
	return b, nil
}

func collectBillings(rows pgx.Rows) ([]models.BillingRecord, error) {
	defer rows.Close()

	records := make([]models.BillingRecord, 0)
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *b)
	}
	return records, rows.Err()
}
