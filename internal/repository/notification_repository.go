package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/pkg/database"
)

// NotificationRepository stores per-user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification and fills its generated id.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const query = `INSERT INTO notifications (user_id, request_id, message, is_read, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING notification_id`
	row := database.Conn(ctx, r.db).QueryRowxContext(ctx, query, n.UserID, n.RequestID, n.Message, n.IsRead, n.CreatedAt)
	if err := row.Scan(&n.ID); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	const query = `SELECT notification_id, user_id, request_id, message, is_read, created_at
FROM notifications WHERE user_id = $1
ORDER BY created_at DESC, notification_id DESC`
	var items []models.Notification
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// GetByID returns sql.ErrNoRows when the notification does not exist.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	const query = `SELECT notification_id, user_id, request_id, message, is_read, created_at
FROM notifications WHERE notification_id = $1`
	var n models.Notification
	if err := database.Conn(ctx, r.db).GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// MarkRead flags a notification as read. Repeating it is harmless.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return expectAffected(res)
}

// CountUnread counts unread notifications of a user.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM notifications WHERE notification_id = $1`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return expectAffected(res)
}

// DeleteAllForUser clears a user's notifications and reports how many were removed.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	const query = `DELETE FROM notifications WHERE user_id = $1`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications for user: %w", err)
	}
	return res.RowsAffected()
}
