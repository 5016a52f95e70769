package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-academic-api/internal/models"
)

// NotificationRepository stores outbound notifications and their delivery state.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a queued notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusQueued
	}
	const query = `INSERT INTO notifications (id, user_id, student_id, channel, kind, recipient, subject, body, status, reference_id, created_at)
        VALUES (:id, :user_id, :student_id, :channel, :kind, :recipient, :subject, :body, :status, :reference_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// FindByID returns a notification by ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, user_id, student_id, channel, kind, recipient, subject, body, status, reference_id, error, created_at, sent_at FROM notifications WHERE id = $1`
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkSent records a successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	const query = `UPDATE notifications SET status = $2, sent_at = $3, error = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.NotificationStatusSent, sentAt); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery that will not be retried.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	const query = `UPDATE notifications SET status = $2, error = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.NotificationStatusFailed, reason); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// ExistsSince reports whether a notification of the kind was created for the reference after since.
func (r *NotificationRepository) ExistsSince(ctx context.Context, kind models.NotificationKind, referenceID string, since time.Time) (bool, error) {
	const query = `SELECT 1 FROM notifications WHERE kind = $1 AND reference_id = $2 AND created_at >= $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, kind, referenceID, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check notification: %w", err)
	}
	return true, nil
}
