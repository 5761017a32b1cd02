package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/coreybb/lectio/models"
)

const defaultListLimit = 50

type DeliveryAttemptRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewDeliveryAttemptRepository(db *sql.DB, dialect Dialect) *DeliveryAttemptRepository {
	return &DeliveryAttemptRepository{db: db, dialect: dialect}
}

func (r *DeliveryAttemptRepository) CreateAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error {
	if _, err := uuid.Parse(attempt.ID); err != nil {
		return fmt.Errorf("invalid attempt ID format: %w", err)
	}
	if attempt.PlanFingerprint == "" {
		return fmt.Errorf("attempt is missing a plan fingerprint")
	}

	query := `
		INSERT INTO delivery_attempts (id, plan_fingerprint, day, reference, destination_type, created_at, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, rebind(r.dialect, query),
		attempt.ID, attempt.PlanFingerprint, attempt.Day, attempt.Reference,
		attempt.DestinationType, attempt.CreatedAt.UTC(), attempt.Status, attempt.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the most recent attempts first.
func (r *DeliveryAttemptRepository) ListAttempts(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, plan_fingerprint, day, reference, destination_type, created_at, status, error_message
		FROM delivery_attempts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.DeliveryAttempt{}
	for rows.Next() {
		var a models.DeliveryAttempt
		if err := rows.Scan(
			&a.ID, &a.PlanFingerprint, &a.Day, &a.Reference,
			&a.DestinationType, &a.CreatedAt, &a.Status, &a.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery attempt: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery attempts: %w", err)
	}
	return attempts, nil
}

// HasDelivered reports whether day of the plan was already delivered.
func (r *DeliveryAttemptRepository) HasDelivered(ctx context.Context, planFingerprint string, day int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM delivery_attempts
		WHERE plan_fingerprint = $1 AND day = $2 AND status = $3
	`
	var n int
	err := r.db.QueryRowContext(ctx, rebind(r.dialect, query),
		planFingerprint, day, string(models.DeliveryStatusDelivered),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check delivery history: %w", err)
	}
	return n > 0, nil
}
